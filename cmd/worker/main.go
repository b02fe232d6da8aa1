// Package main is the entry point for a dedicated spoils worker.
// It runs the lease-execute-report loop against the shared database
// without serving the public API; run as many as throughput needs.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"spoils/internal/config"
	"spoils/internal/jobs"
	"spoils/internal/logger"
	"spoils/internal/nutrition"
	"spoils/internal/observability"
	"spoils/internal/openfoodfacts"
	"spoils/internal/resolver"
	"spoils/internal/store/postgres"
	"spoils/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer st.Close()

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "spoils-worker", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

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

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}

	agent := worker.New(st, registry, queue, worker.AgentConfig{
		ID:           fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8]),
		Concurrency:  cfg.WorkerConcurrency,
		PollInterval: cfg.WorkerPollInterval,
		MaxBackoff:   cfg.WorkerMaxBackoff,
		LeaseTimeout: cfg.LeaseTimeout,
	}, logg)

	log.Printf("Worker started with concurrency %d", cfg.WorkerConcurrency)
	go agent.Run(ctx)

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

	// Start a dedicated metrics server on port 6162
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		log.Println("Worker metrics listening on :6162")
		if err := http.ListenAndServe(":6162", mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	cancel()

	<-agent.Done()
}
