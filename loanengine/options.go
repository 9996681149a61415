package loanengine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
)

var (
	ErrNilClock       = errors.New("clock must not be nil")
	ErrNilIDGenerator = errors.New("id generator must not be nil")
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithClock sets the source of the current time used for borrow, return and audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) error {
		if clock == nil {
			return ErrNilClock
		}

		e.clock = clock

		return nil
	}
}

// WithIDGenerator sets the generator for the IDs of new loans, books and users.
func WithIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(e *Engine) error {
		if newID == nil {
			return ErrNilIDGenerator
		}

		e.newID = newID

		return nil
	}
}

// WithRetryOptions configures the conflict retries of every command handler.
func WithRetryOptions(retryOptions ...shell.RetryOption) Option {
	return func(e *Engine) error {
		e.retryOptions = append(e.retryOptions, retryOptions...)
		return nil
	}
}

// WithLogger sets the logger for all operations.
func WithLogger(logger shell.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for all operations.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for all operations.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for all operations.
func WithTracing(collector shell.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
