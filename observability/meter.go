package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns on metric export.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		Enabled:        true,
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Call outcomes reported by RecordCall.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

// PipelineMetrics holds the instruments recorded by the request pipeline.
// All methods are safe on a nil receiver.
type PipelineMetrics struct {
	calls     metric.Int64Counter
	duration  metric.Float64Histogram
	attempts  metric.Int64Counter
	retries   metric.Int64Counter
	refreshes metric.Int64Counter
	cache     metric.Int64Counter
	inFlight  metric.Int64UpDownCounter
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	calls, err := meter.Int64Counter("cap.calls",
		metric.WithDescription("Completed pipeline executions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.calls counter: %w", err)
	}

	duration, err := meter.Float64Histogram("cap.call.duration",
		metric.WithDescription("Duration of pipeline executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.call.duration histogram: %w", err)
	}

	attempts, err := meter.Int64Counter("cap.attempts",
		metric.WithDescription("Transport sends, including retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.attempts counter: %w", err)
	}

	retries, err := meter.Int64Counter("cap.retries",
		metric.WithDescription("Retries scheduled after a failed attempt"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.retries counter: %w", err)
	}

	refreshes, err := meter.Int64Counter("cap.auth.refreshes",
		metric.WithDescription("Credential refreshes triggered by an unauthorized response"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.auth.refreshes counter: %w", err)
	}

	cacheLookups, err := meter.Int64Counter("cap.cache.lookups",
		metric.WithDescription("Response cache lookups by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.cache.lookups counter: %w", err)
	}

	inFlight, err := meter.Int64UpDownCounter("cap.in_flight",
		metric.WithDescription("Pipeline executions currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cap.in_flight counter: %w", err)
	}

	return &PipelineMetrics{
		calls:     calls,
		duration:  duration,
		attempts:  attempts,
		retries:   retries,
		refreshes: refreshes,
		cache:     cacheLookups,
		inFlight:  inFlight,
	}, nil
}

// RecordCall records a finished execution. errKind is empty on success.
func (m *PipelineMetrics) RecordCall(ctx context.Context, apiID, method, outcome, errKind string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", apiID),
		attribute.String("method", method),
		attribute.String("outcome", outcome),
		attribute.String("error_kind", errKind),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("api", apiID),
		attribute.String("method", method),
	))
}

// RecordAttempt counts one transport send.
func (m *PipelineMetrics) RecordAttempt(ctx context.Context, apiID string) {
	if m == nil {
		return
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("api", apiID)))
}

// RecordRetry counts a scheduled retry.
func (m *PipelineMetrics) RecordRetry(ctx context.Context, apiID, errKind string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api", apiID),
		attribute.String("error_kind", errKind),
	))
}

// RecordRefresh counts a credential refresh and whether it succeeded.
func (m *PipelineMetrics) RecordRefresh(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", ok)))
}

// RecordCache counts a cache lookup.
func (m *PipelineMetrics) RecordCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// InFlight adjusts the in-flight gauge by delta.
func (m *PipelineMetrics) InFlight(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, delta)
}
