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
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
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

// Metrics holds OpenTelemetry metric instruments for run and instance
// execution.
type Metrics struct {
	runTotal         metric.Int64Counter
	runDuration      metric.Float64Histogram
	instanceTotal    metric.Int64Counter
	instanceDuration metric.Float64Histogram
	retryTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("run.total",
		metric.WithDescription("Total number of runs by final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("run.duration",
		metric.WithDescription("Wall-clock duration of runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating run.duration histogram: %w", err)
	}

	instanceTotal, err := meter.Int64Counter("instance.total",
		metric.WithDescription("Total task instances by task and terminal status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating instance.total counter: %w", err)
	}

	instanceDuration, err := meter.Float64Histogram("instance.duration",
		metric.WithDescription("Duration of task instances in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating instance.duration histogram: %w", err)
	}

	retryTotal, err := meter.Int64Counter("retry.total",
		metric.WithDescription("Total retried attempts by task"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry.total counter: %w", err)
	}

	return &Metrics{
		runTotal:         runTotal,
		runDuration:      runDuration,
		instanceTotal:    instanceTotal,
		instanceDuration: instanceDuration,
		retryTotal:       retryTotal,
	}, nil
}

// RecordRun records a completed run.
func (m *Metrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.runDuration.Record(ctx, duration.Seconds())
}

// RecordInstance records a task instance reaching a terminal state.
func (m *Metrics) RecordInstance(ctx context.Context, taskName, status string, duration time.Duration) {
	m.instanceTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", taskName),
		attribute.String("status", status),
	))
	m.instanceDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("task", taskName),
	))
}

// RecordRetry records one retried attempt.
func (m *Metrics) RecordRetry(ctx context.Context, taskName string) {
	m.retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", taskName),
	))
}
