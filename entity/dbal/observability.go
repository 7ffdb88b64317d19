package dbal

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	operationSearchIDs = "search_ids"
	operationRead      = "read"
	operationWrite     = "write"
	operationDelete    = "delete"

	spanNamePrefix = "entitystore."

	spanAttrOperation = "operation"
	spanAttrEntity    = "entity"
	spanAttrRowCount  = "row_count"
	spanAttrErrorType = "error_type"
	spanAttrDuration  = "duration_ms"

	metricDurationFmt    = "entitystore_%s_duration_seconds"
	metricRowsFmt        = "entitystore_rows_%s_total"
	metricDatabaseErrors = "entitystore_database_errors_total"

	labelStatus = "status"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery = "build_query_error"
	errorTypeDatabase   = "database_error"
	errorTypeScan       = "row_scan_error"
	errorTypeParse      = "query_parse_error"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical failures at warn level.
func (s *Store) logWarn(ctx context.Context, message string, err error) {
	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
	}
}

// logError logs failures at error level.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (s *Store) recordDurationMetricsContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(entity.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

// recordValueMetricsContext records value metrics with context if the collector supports it.
func (s *Store) recordValueMetricsContext(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(entity.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}

// recordErrorMetricsContext increments the database error counter with context if the collector supports it.
func (s *Store) recordErrorMetricsContext(ctx context.Context, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(entity.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s *Store) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, entity.SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s *Store) finishTraceSpan(span entity.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// === Operation Observer Pattern ===
// An operationObserver bundles span lifecycle and metrics recording of one store operation.

type operationObserver struct {
	s          *Store
	ctx        context.Context
	span       entity.SpanContext
	operation  string
	entityName string
	start      time.Time
}

// observe starts the span of an operation and returns the context to run the operation with.
func (s *Store) observe(ctx context.Context, operation, entityName string) (*operationObserver, context.Context) {
	spanCtx, span := s.startTraceSpan(ctx, spanNamePrefix+operation, map[string]string{
		spanAttrOperation: operation,
		spanAttrEntity:    entityName,
	})

	return &operationObserver{
		s:          s,
		ctx:        spanCtx,
		span:       span,
		operation:  operation,
		entityName: entityName,
		start:      time.Now(),
	}, spanCtx
}

func (o *operationObserver) labels(status string) map[string]string {
	return map[string]string{
		spanAttrOperation: o.operation,
		spanAttrEntity:    o.entityName,
		labelStatus:       status,
	}
}

// finishSuccess records duration and row count and finishes the span successfully.
func (o *operationObserver) finishSuccess(rowCount int) {
	duration := time.Since(o.start)

	o.s.recordDurationMetricsContext(o.ctx, fmt.Sprintf(metricDurationFmt, o.operation), duration, o.labels(statusSuccess))
	o.s.recordValueMetricsContext(o.ctx, fmt.Sprintf(metricRowsFmt, o.operation), float64(rowCount), o.labels(statusSuccess))

	if o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.span.AddAttribute(spanAttrRowCount, strconv.Itoa(rowCount))
	o.span.AddAttribute(spanAttrDuration, fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)))

	o.s.finishTraceSpan(o.span, statusSuccess, map[string]string{spanAttrRowCount: strconv.Itoa(rowCount)})
}

// finishError records duration and the error counter and finishes the span with the error type.
func (o *operationObserver) finishError(errorType string) {
	duration := time.Since(o.start)

	labels := o.labels(statusError)
	o.s.recordDurationMetricsContext(o.ctx, fmt.Sprintf(metricDurationFmt, o.operation), duration, labels)

	labels[spanAttrErrorType] = errorType
	o.s.recordErrorMetricsContext(o.ctx, labels)

	if o.span == nil {
		return
	}

	o.span.SetStatus(statusError)
	o.span.AddAttribute(spanAttrErrorType, errorType)

	o.s.finishTraceSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}
