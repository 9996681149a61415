package shell

import (
	"time"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

// HandlerResult represents the outcome of a command handler execution.
// It captures the business outcome (idempotency, rejection, notice) next to execution metadata
// (retry information) without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Idempotent indicates that no state change was needed.
	Idempotent bool

	// Rejection is set when a business rule refused the command. Nothing was written then.
	Rejection *core.Rejection

	// Notice is a non-failure remark, e.g. that a returned copy was not restocked.
	Notice core.Notice

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the last error encountered during retries.
	// Values: "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted is true when every attempt failed with a concurrency conflict.
	RetriesExhausted bool
}

// NewResultFromDecision creates a HandlerResult for the decision a handler acted on.
func NewResultFromDecision(retryMetrics RetryMetrics, decision core.DecisionResult) HandlerResult {
	switch {
	case decision.IsRejected():
		return NewRejectedResult(retryMetrics, *decision.Rejection)
	case decision.IsIdempotent():
		return NewIdempotentResult(retryMetrics)
	default:
		result := NewSuccessResult(retryMetrics)
		result.Notice = decision.Notice

		return result
	}
}

// NewSuccessResult creates a HandlerResult for operations that changed state.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(HandlerResult{}, retryMetrics)
}

// NewIdempotentResult creates a HandlerResult for idempotent operations.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(HandlerResult{Idempotent: true}, retryMetrics)
}

// NewRejectedResult creates a HandlerResult for a refused command.
func NewRejectedResult(retryMetrics RetryMetrics, rejection core.Rejection) HandlerResult {
	return withRetryMetrics(HandlerResult{Rejection: &rejection}, retryMetrics)
}

// NewErrorResult creates a HandlerResult for failed operations.
// This is used when the handler returns an error but still wants to report retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(HandlerResult{}, retryMetrics)
}

func withRetryMetrics(result HandlerResult, retryMetrics RetryMetrics) HandlerResult {
	result.RetryAttempts = retryMetrics.Attempts
	result.TotalRetryDelay = retryMetrics.TotalDelay
	result.LastErrorType = retryMetrics.LastErrorType
	result.RetriesExhausted = retryMetrics.RetriesExhausted

	return result
}

// HandlerOutcome lets feature results that embed HandlerResult satisfy CommandResult.
func (r HandlerResult) HandlerOutcome() HandlerResult {
	return r
}

func (r HandlerResult) IsRejected() bool {
	return r.Rejection != nil
}

// BusinessOutcome classifies the result for metrics and logs.
func (r HandlerResult) BusinessOutcome() string {
	switch {
	case r.IsRejected():
		return StatusRejected
	case r.Idempotent:
		return StatusIdempotent
	default:
		return StatusSuccess
	}
}
