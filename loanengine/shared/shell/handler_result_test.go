package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

func Test_NewResultFromDecision(t *testing.T) {
	retryMetrics := shell.RetryMetrics{
		Attempts:      2,
		TotalDelay:    12 * time.Millisecond,
		LastErrorType: "concurrency_conflict",
	}

	testCases := []struct {
		name            string
		decision        core.DecisionResult
		businessOutcome string
		notice          core.Notice
	}{
		{"success", core.SuccessDecision(), shell.StatusSuccess, core.NoNotice},
		{"success with notice", core.SuccessDecisionWithNotice(core.NoticeBookInactiveNotRestocked), shell.StatusSuccess, core.NoticeBookInactiveNotRestocked},
		{"idempotent", core.IdempotentDecision(), shell.StatusIdempotent, core.NoNotice},
		{"rejected", core.RejectedDecision(core.Conflict("loan already returned")), shell.StatusRejected, core.NoNotice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := shell.NewResultFromDecision(retryMetrics, tc.decision)

			// assert
			assert.Equal(t, tc.businessOutcome, result.BusinessOutcome())
			assert.Equal(t, tc.notice, result.Notice)
			assert.Equal(t, 2, result.RetryAttempts)
			assert.Equal(t, 12*time.Millisecond, result.TotalRetryDelay)
			assert.Equal(t, "concurrency_conflict", result.LastErrorType)
			assert.Equal(t, result, result.HandlerOutcome())
		})
	}
}

func Test_NewRejectedResult_KeepsRejection(t *testing.T) {
	// act
	result := shell.NewRejectedResult(shell.RetryMetrics{Attempts: 1}, core.NotFound("loan not found"))

	// assert
	assert.True(t, result.IsRejected())
	assert.Equal(t, core.NotFound("loan not found"), *result.Rejection)
}

func Test_ClassifyError(t *testing.T) {
	assert.Equal(t, shell.StatusCanceled, shell.ClassifyError(errors.Join(recordstore.ErrTransactionFailed, context.Canceled)))
	assert.Equal(t, shell.StatusTimeout, shell.ClassifyError(context.DeadlineExceeded))
	assert.Equal(t, shell.StatusConcurrencyConflict, shell.ClassifyError(errors.Join(recordstore.ErrTransactionFailed, recordstore.ErrConcurrencyConflict)))
	assert.Equal(t, shell.StatusError, shell.ClassifyError(errors.New("disk full")))
}
