// Package oteladapters implements the observability interfaces of package entity with OpenTelemetry:
//   - MetricsCollector: histograms, counters and gauges created on demand from a metric.Meter
//   - TracingCollector: spans from a trace.Tracer
//   - SlogBridgeLogger and OTelLogger: context-aware loggers with trace correlation
//
// Wire them into the dbal store with dbal.WithMetrics, dbal.WithTracing and dbal.WithContextualLogger.
package oteladapters
