// Package main is the entry point for the spoils API server.
// By default it also runs an embedded worker agent, so a single binary
// serves requests and processes the jobs they enqueue; dedicated
// workers (cmd/worker) can be added alongside for more throughput.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"spoils/internal/config"
	"spoils/internal/jobs"
	"spoils/internal/logger"
	"spoils/internal/nutrition"
	"spoils/internal/observability"
	"spoils/internal/openfoodfacts"
	"spoils/internal/resolver"
	"spoils/internal/server"
	"spoils/internal/server/handlers"
	"spoils/internal/store/postgres"
	"spoils/internal/worker"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	workerFlag := flag.Bool("worker", true, "Run an embedded worker agent")
	flag.Parse()

	// Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg := logger.New()

	// Setup Database
	ctx := context.Background()
	st, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer st.Close()

	// Run migrations if requested
	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(st.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "spoils-server", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	if err := observability.RegisterQueueDepth(st, func(err error) {
		log.Printf("Failed to count queue depth: %v", err)
	}); err != nil {
		log.Printf("Failed to register queue depth metric: %v", err)
	}

	// Wire the job engine and the resolution workflow.
	registry := jobs.NewRegistry()
	queue := jobs.NewQueue(st, registry, logg)

	res := resolver.New(
		st, st, st, queue,
		nutrition.NewHTTPClient(cfg.NutritionAPIURL, cfg.NutritionAPIKey, logg),
		openfoodfacts.NewHTTPClient(cfg.ProductAPIURL, logg),
		resolver.Config{JobRetention: cfg.JobRetention, LeaseTimeout: cfg.LeaseTimeout},
		logg,
	)
	res.Register(registry)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Arm the nightly cleanup. Uniqueness makes this idempotent across
	// restarts and replicas.
	if _, _, err := queue.Enqueue(runCtx, resolver.TaskCleanup, struct{}{}); err != nil {
		log.Fatalf("Failed to schedule cleanup job: %v", err)
	}

	var agent *worker.Agent
	if *workerFlag {
		agent = worker.New(st, registry, queue, worker.AgentConfig{
			ID:           workerID(),
			Concurrency:  cfg.WorkerConcurrency,
			PollInterval: cfg.WorkerPollInterval,
			MaxBackoff:   cfg.WorkerMaxBackoff,
			LeaseTimeout: cfg.LeaseTimeout,
		}, logg)
		go agent.Run(runCtx)
	}

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := server.New(addr, handlers.New(st, queue, res, logg), logg, server.Options{
		APIKey:         cfg.APIKey,
		MetricsHandler: metricsHandler,
	})

	go func() {
		log.Printf("Spoils server starting on %s", addr)
		if err := srv.Run(runCtx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cancel()
	if agent != nil {
		<-agent.Done()
	}
	log.Println("Server exited properly")
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "server"
	}
	return fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
}
