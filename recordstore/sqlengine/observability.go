package sqlengine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	metricStatementDuration    = "recordstore_statement_duration_seconds"
	metricTransactionDuration  = "recordstore_transaction_duration_seconds"
	metricRecordsRead          = "recordstore_records_read_total"
	metricDatabaseErrors       = "recordstore_database_errors_total"
	metricConcurrencyConflicts = "recordstore_concurrency_conflicts_total"
	spanNameTransaction        = "recordstore.transaction"
	spanAttrOperation          = "operation"
	spanAttrReadOnly           = "read_only"
	spanAttrDialect            = "dialect"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	spanAttrStatementCount     = "statement_count"
	labelStatus                = "status"
	labelConflictType          = "conflict_type"
	statusSuccess              = "success"
	statusError                = "error"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (rs *RecordStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	operation string,
	duration time.Duration,
) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, logAttrDurationMS, rs.toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if rs.logger != nil {
		rs.logger.Debug(logMsgSQLExecuted+operation, logAttrDurationMS, rs.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (rs *RecordStore) logOperation(ctx context.Context, action string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if rs.logger != nil {
		rs.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical problems like cleanup failures.
func (rs *RecordStore) logWarn(ctx context.Context, message string, err error) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
		return
	}

	if rs.logger != nil {
		rs.logger.Warn(message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level.
func (rs *RecordStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if rs.contextualLogger != nil {
		rs.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if rs.logger != nil {
		rs.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (rs *RecordStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordErrorMetrics records database error metrics if the metrics collector is configured.
func (rs *RecordStore) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := rs.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	rs.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// recordDurationMetrics records duration metrics with context if the collector supports it.
func (rs *RecordStore) recordDurationMetrics(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := rs.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	rs.metricsCollector.RecordDuration(metricName, duration, labels)
}

// recordValueMetrics records value metrics with context if the collector supports it.
func (rs *RecordStore) recordValueMetrics(ctx context.Context, metricName string, value float64, operation string) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusSuccess,
	}

	if contextualCollector, ok := rs.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		return
	}

	rs.metricsCollector.RecordValue(metricName, value, labels)
}

// recordConflictMetrics records concurrency conflicts and unique violations.
func (rs *RecordStore) recordConflictMetrics(ctx context.Context, operation, conflictType string) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelConflictType: conflictType,
	}

	if contextualCollector, ok := rs.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricConcurrencyConflicts, labels)
		return
	}

	rs.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
}

// transactionTracingObserver encapsulates the span lifecycle of one transaction.
type transactionTracingObserver struct {
	rs   *RecordStore
	span recordstore.SpanContext
}

func (rs *RecordStore) startTransactionTracing(ctx context.Context, readOnly bool) *transactionTracingObserver {
	observer := &transactionTracingObserver{rs: rs}

	if rs.tracingCollector == nil {
		return observer
	}

	_, observer.span = rs.tracingCollector.StartSpan(ctx, spanNameTransaction, map[string]string{
		spanAttrReadOnly: strconv.FormatBool(readOnly),
		spanAttrDialect:  rs.dialect,
	})

	return observer
}

func (o *transactionTracingObserver) finishSuccess(outcome string, statementCount int, duration time.Duration) {
	if o.span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrOperation:      outcome,
		spanAttrStatementCount: strconv.Itoa(statementCount),
		spanAttrDurationMS:     o.formatDuration(duration),
	}

	o.rs.tracingCollector.FinishSpan(o.span, statusSuccess, attrs)
}

func (o *transactionTracingObserver) finishError(errorType string, duration time.Duration) {
	if o.span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: o.formatDuration(duration),
	}

	o.rs.tracingCollector.FinishSpan(o.span, statusError, attrs)
}

func (o *transactionTracingObserver) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", o.rs.toMilliseconds(duration))
}
