// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// jobDurationBuckets covers the spread of job handlers: most complete
// in well under a second, provider-bound fetches can take tens of
// seconds, and the nightly cleanup may run for minutes.
var jobDurationBuckets = []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300}

// InitMetrics initializes the OpenTelemetry metrics provider with a
// Prometheus exporter and the job engine's histogram views. It returns
// the HTTP handler for the /metrics endpoint and a shutdown function.
// The shutdown function should be called on application exit for graceful cleanup.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithView(metric.NewView(
			metric.Instrument{Name: "spoils.jobs.duration"},
			metric.Stream{Aggregation: metric.AggregationExplicitBucketHistogram{
				Boundaries: jobDurationBuckets,
			}},
		)),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// RunnableCounter reports how many jobs are currently eligible to run.
type RunnableCounter interface {
	CountRunnable(ctx context.Context) (int64, error)
}

// RegisterQueueDepth exposes the runnable-job count as an observable
// gauge. The store is queried only when the gauge is scraped, and a
// count failure skips the observation rather than failing the scrape.
func RegisterQueueDepth(counter RunnableCounter, onError func(error)) error {
	meter := otel.Meter("spoils")
	_, err := meter.Int64ObservableGauge("spoils.queue.depth",
		otelmetric.WithDescription("Jobs currently eligible to run"),
		otelmetric.WithInt64Callback(func(ctx context.Context, obs otelmetric.Int64Observer) error {
			count, err := counter.CountRunnable(ctx)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return nil
			}
			obs.Observe(count)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to register queue depth gauge: %w", err)
	}
	return nil
}
