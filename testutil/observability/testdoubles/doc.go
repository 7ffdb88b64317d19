// Package testdoubles provides spies for the observability interfaces of the entity store:
//   - MetricsCollectorSpy: captures duration, counter and value records
//   - TracingCollectorSpy: captures started and finished spans
//   - ContextualLoggerSpy: captures context-aware log calls
//   - LogHandlerSpy: a slog.Handler capturing records, for *slog.Logger based logging
//
// They allow asserting instrumentation without any telemetry backend.
package testdoubles
