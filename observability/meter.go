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

	"github.com/kbukum/seqkit/logger"
)

// MeterConfig configures metric export.
type MeterConfig struct {
	Export
	// Interval is the export period. Zero keeps the SDK default.
	Interval time.Duration
}

// InitMeter installs a periodic OTLP meter provider as the global provider.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get(component).Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// StreamMetrics holds the instruments recorded by stream terminal operations.
type StreamMetrics struct {
	terminalTotal    metric.Int64Counter
	terminalDuration metric.Float64Histogram
	elements         metric.Int64Counter
	partitions       metric.Int64Histogram
	errorTotal       metric.Int64Counter
}

// NewStreamMetrics creates stream instruments on the given meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	terminalTotal, err := meter.Int64Counter("stream.terminal.total",
		metric.WithDescription("Total number of terminal operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.terminal.total counter: %w", err)
	}

	terminalDuration, err := meter.Float64Histogram("stream.terminal.duration",
		metric.WithDescription("Duration of terminal operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.terminal.duration histogram: %w", err)
	}

	elements, err := meter.Int64Counter("stream.elements",
		metric.WithDescription("Elements delivered to terminal operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.elements counter: %w", err)
	}

	partitions, err := meter.Int64Histogram("stream.partitions",
		metric.WithDescription("Partitions used by parallel terminal operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.partitions histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("stream.error.total",
		metric.WithDescription("Failed terminal operations by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.error.total counter: %w", err)
	}

	return &StreamMetrics{
		terminalTotal:    terminalTotal,
		terminalDuration: terminalDuration,
		elements:         elements,
		partitions:       partitions,
		errorTotal:       errorTotal,
	}, nil
}

// RecordTerminal records a completed terminal operation.
func (m *StreamMetrics) RecordTerminal(ctx context.Context, operation, status string, elements int64, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.terminalTotal.Add(ctx, 1, attrs)
	m.terminalDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
	m.elements.Add(ctx, elements, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordPartitions records the partition count of a parallel run.
func (m *StreamMetrics) RecordPartitions(ctx context.Context, operation string, n int) {
	m.partitions.Record(ctx, int64(n), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordError records a failed terminal operation by error code.
func (m *StreamMetrics) RecordError(ctx context.Context, code, operation string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operation", operation),
	))
}
