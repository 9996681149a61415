package sqlengine

import (
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Option defines a functional option for configuring RecordStore.
type Option func(*RecordStore) error

// WithTableNames overrides the default table names "books", "users" and "loans".
func WithTableNames(books, users, loans string) Option {
	return func(rs *RecordStore) error {
		if books == "" || users == "" || loans == "" {
			return ErrEmptyTableNameSupplied
		}

		rs.booksTable = books
		rs.usersTable = users
		rs.loansTable = loans

		return nil
	}
}

// WithLogger sets the logger for the RecordStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: transaction outcomes, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger recordstore.Logger) Option {
	return func(rs *RecordStore) error {
		rs.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over the plain logger.
func WithContextualLogger(logger recordstore.ContextualLogger) Option {
	return func(rs *RecordStore) error {
		rs.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for statement and transaction durations, database errors,
// and concurrency conflicts.
func WithMetrics(collector recordstore.MetricsCollector) Option {
	return func(rs *RecordStore) error {
		rs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector. Every transaction becomes one span.
func WithTracing(collector recordstore.TracingCollector) Option {
	return func(rs *RecordStore) error {
		rs.tracingCollector = collector
		return nil
	}
}
