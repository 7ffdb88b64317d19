package oteladapters_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/dynamic-entities-go/entity/oteladapters"
	"github.com/AntonStoeckl/dynamic-entities-go/testutil/observability/testdoubles"
)

func newMeter() (metric.Meter, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return provider.Meter("entity-test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Aggregation {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return nil
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	labels := map[string]string{"operation": "read", "entity": "product", "status": "success"}
	collector.RecordDuration("entitystore_read_duration_seconds", 150*time.Millisecond, labels)
	collector.RecordDurationContext(context.Background(), "entitystore_read_duration_seconds", 50*time.Millisecond, labels)

	histogram, ok := findMetric(t, collect(t, reader), "entitystore_read_duration_seconds").(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(2), dataPoint.Count)
	assert.InDelta(t, 0.2, dataPoint.Sum, 0.001)

	expected := attribute.NewSet(
		attribute.String("operation", "read"),
		attribute.String("entity", "product"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	labels := map[string]string{"entity": "tax"}
	collector.IncrementCounter("entitycache_hits_total", labels)
	collector.IncrementCounter("entitycache_hits_total", labels)
	collector.IncrementCounterContext(context.Background(), "entitycache_hits_total", labels)
	collector.IncrementCounter("entitycache_hits_total", nil)

	sum, ok := findMetric(t, collect(t, reader), "entitycache_hits_total").(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)

	byEntity := map[string]int64{}
	for _, dataPoint := range sum.DataPoints {
		value, _ := dataPoint.Attributes.Value("entity")
		byEntity[value.AsString()] = dataPoint.Value
	}

	assert.Equal(t, map[string]int64{"tax": 3, "": 1}, byEntity)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	meter, reader := newMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	collector.RecordValue("entitystore_rows_read_total", 10, nil)
	collector.RecordValueContext(context.Background(), "entitystore_rows_read_total", 4, nil)

	gauge, ok := findMetric(t, collect(t, reader), "entitystore_rows_read_total").(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 4.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_NilMeter(t *testing.T) {
	collector := oteladapters.NewMetricsCollector(nil)

	assert.NotPanics(t, func() {
		collector.RecordDuration("noop", time.Second, nil)
		collector.IncrementCounter("noop", nil)
		collector.RecordValue("noop", 1, nil)
	})
}

// errorInjectingMeter fails to create instruments whose name starts with "broken".
type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "broken_histogram" {
		return nil, errors.New("histogram creation failed")
	}

	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "broken_counter" {
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "broken_gauge" {
		return nil, errors.New("gauge creation failed")
	}

	return m.Meter.Float64Gauge(name, options...)
}

func Test_MetricsCollector_InstrumentCreationErrors(t *testing.T) {
	meter, _ := newMeter()
	logHandler := testdoubles.NewLogHandlerSpy(false)
	collector := oteladapters.NewMetricsCollector(&errorInjectingMeter{Meter: meter}, oteladapters.WithInstrumentLogger(slog.New(logHandler)))

	testCases := []struct {
		name   string
		record func()
		metric string
	}{
		{name: "histogram", record: func() { collector.RecordDuration("broken_histogram", time.Second, nil) }, metric: "broken_histogram"},
		{name: "counter", record: func() { collector.IncrementCounter("broken_counter", nil) }, metric: "broken_counter"},
		{name: "gauge", record: func() { collector.RecordValue("broken_gauge", 1, nil) }, metric: "broken_gauge"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, tc.record)
			assert.True(t, logHandler.HasWarnLogWithMessage("creating metric instrument failed").WithAttr("metric", tc.metric).Assert())
		})
	}
}
