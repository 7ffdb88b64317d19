package dbal

import (
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithDialect sets the SQL dialect statements are rendered for. The default is DialectPostgres.
func WithDialect(dialect Dialect) Option {
	return func(s *Store) error {
		parsed, err := ParseDialect(string(dialect))
		if err != nil {
			return err
		}

		s.dialect = parsed

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: row counts and durations per operation (production-safe)
// Warn level: non-critical issues like failing to close rows
// Error level: failures that abort an operation.
func WithLogger(logger entity.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives read and write durations, row counts and database errors.
func WithMetrics(collector entity.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// One span is started per search, read, write and delete operation.
func WithTracing(collector entity.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// It receives the same messages as the logger, with the context of the operation,
// so trace and span ids can be correlated.
func WithContextualLogger(logger entity.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}
