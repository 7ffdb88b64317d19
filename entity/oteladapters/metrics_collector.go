package oteladapters

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	descriptionDuration = "Entity store operation duration"
	descriptionCounter  = "Entity store operation counter"
	descriptionGauge    = "Entity store current value"

	logMsgInstrumentFailed = "creating metric instrument failed"
	logAttrMetric          = "metric"
	logAttrError           = "error"
)

// MetricsCollector implements entity.ContextualMetricsCollector with the OpenTelemetry metrics API:
//   - RecordDuration -> Float64Histogram in seconds
//   - IncrementCounter -> Int64Counter
//   - RecordValue -> Float64Gauge
//
// Instruments are created on first use and reused afterward. It is safe for concurrent use.
type MetricsCollector struct {
	meter  metric.Meter
	logger entity.Logger

	mu         sync.Mutex
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

// MetricsOption defines a functional option for configuring a MetricsCollector.
type MetricsOption func(*MetricsCollector)

// WithInstrumentLogger sets the logger which receives instrument creation failures.
func WithInstrumentLogger(logger entity.Logger) MetricsOption {
	return func(m *MetricsCollector) {
		m.logger = logger
	}
}

// NewMetricsCollector creates a MetricsCollector on meter, usually obtained from the MeterProvider.
// A nil meter records nothing.
func NewMetricsCollector(meter metric.Meter, options ...MetricsOption) *MetricsCollector {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("entity")
	}

	m := &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// RecordDuration implements entity.MetricsCollector.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

// RecordDurationContext implements entity.ContextualMetricsCollector.
func (m *MetricsCollector) RecordDurationContext(ctx context.Context, metricName string, duration time.Duration, labels map[string]string) {
	histogram, ok := instrument(m, m.histograms, metricName, func(name string) (metric.Float64Histogram, error) {
		return m.meter.Float64Histogram(name, metric.WithDescription(descriptionDuration), metric.WithUnit("s"))
	})
	if !ok {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attributes(labels)...))
}

// IncrementCounter implements entity.MetricsCollector.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

// IncrementCounterContext implements entity.ContextualMetricsCollector.
func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	counter, ok := instrument(m, m.counters, metricName, func(name string) (metric.Int64Counter, error) {
		return m.meter.Int64Counter(name, metric.WithDescription(descriptionCounter))
	})
	if !ok {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(attributes(labels)...))
}

// RecordValue implements entity.MetricsCollector.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

// RecordValueContext implements entity.ContextualMetricsCollector.
func (m *MetricsCollector) RecordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	gauge, ok := instrument(m, m.gauges, metricName, func(name string) (metric.Float64Gauge, error) {
		return m.meter.Float64Gauge(name, metric.WithDescription(descriptionGauge))
	})
	if !ok {
		return
	}

	gauge.Record(ctx, value, metric.WithAttributes(attributes(labels)...))
}

// instrument returns the cached instrument of name or creates it. Failed creations are logged
// and retried on the next call.
func instrument[T any](m *MetricsCollector, cache map[string]T, name string, create func(string) (T, error)) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := cache[name]; ok {
		return existing, true
	}

	created, err := create(name)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn(logMsgInstrumentFailed, logAttrMetric, name, logAttrError, err.Error())
		}

		var zero T

		return zero, false
	}

	cache[name] = created

	return created, true
}

// attributes converts labels into attributes ordered by key.
func attributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	slices.SortFunc(attrs, func(a, b attribute.KeyValue) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})

	return attrs
}

var _ entity.ContextualMetricsCollector = (*MetricsCollector)(nil)
