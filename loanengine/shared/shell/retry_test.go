package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetryOnConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return errors.Join(recordstore.ErrConcurrencyConflict, errors.New("zero rows affected"))
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return recordstore.ErrConcurrencyConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(time.Millisecond),
		WithJitterFactor(0),
	)

	assert.ErrorIs(t, err, recordstore.ErrTransactionFailed)
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay)
	assert.True(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_PermanentErrorFailsFast(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	storeFailure := errors.New("connection reset")

	fn := func(_ context.Context) error {
		callCount++
		return storeFailure
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, storeFailure)
	assert.ErrorIs(t, err, recordstore.ErrTransactionFailed)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "other", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_TimeoutIsNotRetried(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return errors.Join(recordstore.ErrConcurrencyConflict, context.DeadlineExceeded)
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "context_deadline_exceeded", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		cancel()
		return recordstore.ErrConcurrencyConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Second))

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, recordstore.ErrTransactionFailed)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	testCases := []struct {
		name        string
		option      RetryOption
		expectedErr error
	}{
		{"zero max attempts", WithMaxAttempts(0), ErrInvalidMaxAttempts},
		{"negative base delay", WithBaseDelay(-time.Millisecond), ErrNegativeBaseDelay},
		{"jitter below zero", WithJitterFactor(-0.1), ErrInvalidJitterFactor},
		{"jitter above one", WithJitterFactor(1.1), ErrInvalidJitterFactor},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RetryWithExponentialBackoff(ctx, fn, tc.option)

			assert.ErrorIs(t, err, tc.expectedErr)
			assert.NotErrorIs(t, err, recordstore.ErrTransactionFailed)
		})
	}
}

func Test_RetryConfig_BackoffDelay_DoublesPerAttempt(t *testing.T) {
	config := &retryConfig{baseDelay: 10 * time.Millisecond, jitterFactor: 0}

	assert.Equal(t, 10*time.Millisecond, config.backoffDelay(1))
	assert.Equal(t, 20*time.Millisecond, config.backoffDelay(2))
	assert.Equal(t, 40*time.Millisecond, config.backoffDelay(3))
}

func Test_RetryConfig_BackoffDelay_JitterStaysWithinFactor(t *testing.T) {
	config := &retryConfig{baseDelay: 10 * time.Millisecond, jitterFactor: 0.3}

	for i := 0; i < 100; i++ {
		delay := config.backoffDelay(2)

		assert.GreaterOrEqual(t, delay, 20*time.Millisecond)
		assert.LessOrEqual(t, delay, 26*time.Millisecond)
	}
}
