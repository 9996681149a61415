package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// OptionalRecord turns the result of a single-record lookup into a pointer that is nil when the
// record does not exist. Any other error is returned unchanged.
//
//	book, err := shell.OptionalRecord(tx.BookByID(ctx, bookID))
func OptionalRecord[T any](record T, err error) (*T, error) {
	if errors.Is(err, recordstore.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &record, nil
}

// UniqueViolationAsConflict makes a unique violation retryable. A retried attempt re-reads
// and decides again, which turns the lost race into a business rejection.
func UniqueViolationAsConflict(err error) error {
	if errors.Is(err, recordstore.ErrUniqueViolation) {
		return errors.Join(recordstore.ErrConcurrencyConflict, err)
	}

	return err
}

// ReadInTx runs fn in a read-only transaction with eventual consistency. Stores with a replica
// serve it from there, so readers can see slightly stale data.
func ReadInTx(ctx context.Context, store recordstore.Store, fn func(tx recordstore.Reader) error) error {
	ctx = recordstore.WithEventualConsistency(ctx)

	return recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		return fn(tx)
	})
}
