package config

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/oteladapters"
)

const shutdownTimeout = 5 * time.Second

// TelemetryOption adds exporters to the telemetry providers.
type TelemetryOption func(*telemetryOptions)

type telemetryOptions struct {
	spanProcessors []sdktrace.SpanProcessor
	metricReaders  []sdkmetric.Reader
}

// WithSpanProcessor registers a span processor, e.g. a batcher around an OTLP exporter.
func WithSpanProcessor(processor sdktrace.SpanProcessor) TelemetryOption {
	return func(o *telemetryOptions) {
		o.spanProcessors = append(o.spanProcessors, processor)
	}
}

// WithMetricReader registers a metric reader, e.g. a periodic reader around an OTLP exporter.
func WithMetricReader(reader sdkmetric.Reader) TelemetryOption {
	return func(o *telemetryOptions) {
		o.metricReaders = append(o.metricReaders, reader)
	}
}

// Telemetry holds the OpenTelemetry providers of the entity store.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource

	serviceName string
}

// NewTelemetry creates the tracer and meter providers for the configured service and installs
// them as the global providers.
func (c TelemetryConfig) NewTelemetry(ctx context.Context, options ...TelemetryOption) (*Telemetry, error) {
	opts := &telemetryOptions{}
	for _, option := range options {
		option(opts)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(c.ServiceName),
			semconv.ServiceVersionKey.String(c.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, processor := range opts.spanProcessors {
		traceOptions = append(traceOptions, sdktrace.WithSpanProcessor(processor))
	}

	meterOptions := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range opts.metricReaders {
		meterOptions = append(meterOptions, sdkmetric.WithReader(reader))
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOptions...)
	meterProvider := sdkmetric.NewMeterProvider(meterOptions...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Telemetry{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Resource:       res,
		serviceName:    c.ServiceName,
	}, nil
}

// Tracer returns the tracer of the service.
func (t *Telemetry) Tracer() trace.Tracer {
	return t.TracerProvider.Tracer(t.serviceName)
}

// Meter returns the meter of the service.
func (t *Telemetry) Meter() metric.Meter {
	return t.MeterProvider.Meter(t.serviceName)
}

// StoreOptions returns the dbal options reporting spans, metrics and contextual logs through
// the providers.
func (t *Telemetry) StoreOptions() []dbal.Option {
	return []dbal.Option{
		dbal.WithTracing(oteladapters.NewTracingCollector(t.Tracer())),
		dbal.WithMetrics(oteladapters.NewMetricsCollector(t.Meter())),
		dbal.WithContextualLogger(oteladapters.NewSlogBridgeLogger(t.serviceName)),
	}
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return errors.Join(t.TracerProvider.Shutdown(ctx), t.MeterProvider.Shutdown(ctx))
}
