package helper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// FailingWritesStore wraps a store so that every write in its transactions fails with Err,
// while reads, commits and rollbacks reach the wrapped store. Counting Begin calls lets tests
// assert how often a handler retried.
type FailingWritesStore struct {
	recordstore.Store
	Err   error
	Begun int
}

func (s *FailingWritesStore) Begin(ctx context.Context) (recordstore.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	s.Begun++

	return failingWritesTx{Tx: tx, err: s.Err}, nil
}

type failingWritesTx struct {
	recordstore.Tx
	err error
}

func (t failingWritesTx) InsertBook(context.Context, recordstore.Book) error { return t.err }

func (t failingWritesTx) UpdateBook(context.Context, recordstore.Book, recordstore.Book) error {
	return t.err
}

func (t failingWritesTx) InsertUser(context.Context, recordstore.User) error { return t.err }
func (t failingWritesTx) UpdateUser(context.Context, recordstore.User) error { return t.err }
func (t failingWritesTx) InsertLoan(context.Context, recordstore.Loan) error { return t.err }

func (t failingWritesTx) CloseLoan(context.Context, uuid.UUID, time.Time) error { return t.err }
func (t failingWritesTx) DeleteLoan(context.Context, uuid.UUID, bool) error     { return t.err }

func (t failingWritesTx) DecrementAvailableCopies(context.Context, uuid.UUID) error { return t.err }

func (t failingWritesTx) IncrementAvailableCopies(context.Context, uuid.UUID, bool) error {
	return t.err
}
