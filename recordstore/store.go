package recordstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store opens transactions. All reads and writes go through the explicit Tx handle it returns.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Reader contains the lookups available inside a transaction.
// Single-record lookups return ErrRecordNotFound when nothing matches.
type Reader interface {
	BookByID(ctx context.Context, id uuid.UUID) (Book, error)
	BookByISBN(ctx context.Context, isbn string) (Book, error)
	Books(ctx context.Context, filter BookFilter) ([]Book, error)
	UserByID(ctx context.Context, id uuid.UUID) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	LoanByID(ctx context.Context, id uuid.UUID) (Loan, error)
	OpenLoanExists(ctx context.Context, userID uuid.UUID, bookID uuid.UUID) (bool, error)
	Loans(ctx context.Context, filter LoanFilter) ([]LoanView, error)
}

// Writer contains the mutations available inside a transaction.
//
// Guarded writes return ErrConcurrencyConflict when their guard no longer holds,
// which means another transaction changed the row after it was read:
//   - DecrementAvailableCopies requires an active book with at least one available copy.
//   - IncrementAvailableCopies requires an existing book, and an active one if onlyIfActive is set.
//   - CloseLoan and DeleteLoan require the loan to exist. CloseLoan also requires it to be open,
//     DeleteLoan only if onlyIfOpen is set, so a delete that restocks never races a return.
//   - UpdateBook requires the stored book to still have previous' available copies and active flag,
//     so a catalog edit never overwrites a concurrent lend or return.
//
// Inserts return ErrUniqueViolation when a unique key (ISBN, email, open loan per user and book) is taken.
type Writer interface {
	InsertBook(ctx context.Context, book Book) error
	UpdateBook(ctx context.Context, previous Book, updated Book) error
	InsertUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	InsertLoan(ctx context.Context, loan Loan) error
	CloseLoan(ctx context.Context, loanID uuid.UUID, returnedAt time.Time) error
	DeleteLoan(ctx context.Context, loanID uuid.UUID, onlyIfOpen bool) error
	DecrementAvailableCopies(ctx context.Context, bookID uuid.UUID) error
	IncrementAvailableCopies(ctx context.Context, bookID uuid.UUID, onlyIfActive bool) error
}

// Tx is an open transaction. Exactly one of Commit or Rollback finishes it.
type Tx interface {
	Reader
	Writer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// RunInTx begins a transaction, hands it to fn, and commits when fn succeeds.
// When fn fails, the transaction is rolled back and fn's error is returned,
// joined with the rollback error if rolling back failed as well.
// A panic in fn rolls the transaction back before it propagates.
func RunInTx(ctx context.Context, store Store, fn func(tx Tx) error) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if fnErr := fn(tx); fnErr != nil {
		if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			return errors.Join(fnErr, rollbackErr)
		}

		return fnErr
	}

	return tx.Commit(ctx)
}
