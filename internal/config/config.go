// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
// It is built once at startup and passed into constructors explicitly;
// nothing else in the codebase reads the process environment.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port
	HTTPPort int

	// Worker-specific configuration
	WorkerConcurrency int

	// Worker poll interval (minimum; the poll loop backs off when idle)
	WorkerPollInterval time.Duration

	// Maximum idle-poll backoff
	WorkerMaxBackoff time.Duration

	// How long a lease may be held before the cleanup sweep requeues it
	LeaseTimeout time.Duration

	// How long terminal jobs are kept before the cleanup job purges them
	JobRetention time.Duration

	// Nutrition data provider (FoodData Central style search API)
	NutritionAPIURL string
	NutritionAPIKey string

	// Product data provider (Open Food Facts style product API)
	ProductAPIURL string

	// OTLP collector endpoint for traces
	OTELEndpoint string

	// Optional API key for the job submission endpoints; empty disables auth
	APIKey string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := 8080 // Default
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		port = p
	}

	concurrency := 5 // Default
	if concurrencyStr := os.Getenv("WORKER_CONCURRENCY"); concurrencyStr != "" {
		c, err := strconv.Atoi(concurrencyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
		}
		concurrency = c
	}

	pollInterval := 1 * time.Second // Default
	if pollIntervalStr := os.Getenv("WORKER_POLL_INTERVAL"); pollIntervalStr != "" {
		pi, err := time.ParseDuration(pollIntervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_POLL_INTERVAL: %w", err)
		}
		pollInterval = pi
	}

	maxBackoff := 30 * time.Second // Default
	if maxBackoffStr := os.Getenv("WORKER_MAX_BACKOFF"); maxBackoffStr != "" {
		mb, err := time.ParseDuration(maxBackoffStr)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_MAX_BACKOFF: %w", err)
		}
		maxBackoff = mb
	}

	leaseTimeout := 5 * time.Minute // Default
	if leaseTimeoutStr := os.Getenv("LEASE_TIMEOUT"); leaseTimeoutStr != "" {
		lt, err := time.ParseDuration(leaseTimeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid LEASE_TIMEOUT: %w", err)
		}
		leaseTimeout = lt
	}

	retention := 30 * 24 * time.Hour // Default
	if retentionStr := os.Getenv("JOB_RETENTION"); retentionStr != "" {
		ret, err := time.ParseDuration(retentionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JOB_RETENTION: %w", err)
		}
		retention = ret
	}

	nutritionURL := os.Getenv("NUTRITION_API_URL")
	if nutritionURL == "" {
		nutritionURL = "https://api.nal.usda.gov/fdc"
	}

	productURL := os.Getenv("PRODUCT_API_URL")
	if productURL == "" {
		productURL = "https://world.openfoodfacts.org"
	}

	return &Config{
		DatabaseURL:        dbURL,
		HTTPPort:           port,
		WorkerConcurrency:  concurrency,
		WorkerPollInterval: pollInterval,
		WorkerMaxBackoff:   maxBackoff,
		LeaseTimeout:       leaseTimeout,
		JobRetention:       retention,
		NutritionAPIURL:    nutritionURL,
		NutritionAPIKey:    os.Getenv("NUTRITION_API_KEY"),
		ProductAPIURL:      productURL,
		OTELEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		APIKey:             os.Getenv("SPOILS_API_KEY"),
	}, nil
}
