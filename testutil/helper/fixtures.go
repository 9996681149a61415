package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// FixedClock is the point in time most fixtures are created at.
var FixedClock = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureBook returns an active book with the given number of copies and a unique ISBN.
func FixtureBook(t testing.TB, copies int) recordstore.Book {
	id := GivenUniqueID(t)

	return recordstore.Book{
		ID:              id,
		Title:           "Learning Domain-Driven Design",
		Author:          "Vlad Khononov",
		ISBN:            "978-" + id.String(),
		PublishedYear:   2021,
		Genre:           "Software",
		AvailableCopies: copies,
		Active:          true,
		CreatedAt:       FixedClock,
		UpdatedAt:       FixedClock,
	}
}

// FixtureUser returns an active user with the given role and a unique email.
func FixtureUser(t testing.TB, role recordstore.Role) recordstore.User {
	id := GivenUniqueID(t)

	return recordstore.User{
		ID:           id,
		Name:         "Jane Reader",
		Email:        id.String() + "@library.test",
		PasswordHash: []byte("$2a$10$not-a-real-hash"),
		Role:         role,
		Active:       true,
		CreatedAt:    FixedClock,
		UpdatedAt:    FixedClock,
	}
}

// FixtureOpenLoan returns an open loan of book by user, borrowed at borrowedAt.
func FixtureOpenLoan(t testing.TB, userID, bookID uuid.UUID, borrowedAt time.Time) recordstore.Loan {
	return recordstore.Loan{
		ID:         GivenUniqueID(t),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowedAt,
	}
}

func GivenBookWasAdded(t testing.TB, ctx context.Context, store recordstore.Store, copies int) recordstore.Book {
	book := FixtureBook(t, copies)
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		return tx.InsertBook(ctx, book)
	})
	assert.NoError(t, err, "error in arranging test data")

	return book
}

func GivenUserWasRegistered(t testing.TB, ctx context.Context, store recordstore.Store, role recordstore.Role) recordstore.User {
	user := FixtureUser(t, role)
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		return tx.InsertUser(ctx, user)
	})
	assert.NoError(t, err, "error in arranging test data")

	return user
}

// GivenBookWasLent inserts an open loan and takes one copy of the book, the way a checkout does.
func GivenBookWasLent(
	t testing.TB,
	ctx context.Context,
	store recordstore.Store,
	userID, bookID uuid.UUID,
	borrowedAt time.Time,
) recordstore.Loan {
	loan := FixtureOpenLoan(t, userID, bookID, borrowedAt)
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		if err := tx.DecrementAvailableCopies(ctx, bookID); err != nil {
			return err
		}

		return tx.InsertLoan(ctx, loan)
	})
	assert.NoError(t, err, "error in arranging test data")

	return loan
}

// GivenBookWasDeactivated flips the active flag of an existing book.
func GivenBookWasDeactivated(t testing.TB, ctx context.Context, store recordstore.Store, bookID uuid.UUID) {
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		book, err := tx.BookByID(ctx, bookID)
		if err != nil {
			return err
		}
		deactivated := book
		deactivated.Active = false

		return tx.UpdateBook(ctx, book, deactivated)
	})
	assert.NoError(t, err, "error in arranging test data")
}

// GivenUserWasDeactivated flips the active flag of an existing user.
func GivenUserWasDeactivated(t testing.TB, ctx context.Context, store recordstore.Store, userID uuid.UUID) {
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		user.Active = false

		return tx.UpdateUser(ctx, user)
	})
	assert.NoError(t, err, "error in arranging test data")
}

// BookFromStore reads a book in its own transaction.
func BookFromStore(t testing.TB, ctx context.Context, store recordstore.Store, bookID uuid.UUID) recordstore.Book {
	var book recordstore.Book
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		var err error
		book, err = tx.BookByID(ctx, bookID)

		return err
	})
	assert.NoError(t, err, "error reading book from store")

	return book
}

// LoanFromStore reads a loan in its own transaction.
func LoanFromStore(t testing.TB, ctx context.Context, store recordstore.Store, loanID uuid.UUID) recordstore.Loan {
	var loan recordstore.Loan
	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		var err error
		loan, err = tx.LoanByID(ctx, loanID)

		return err
	})
	assert.NoError(t, err, "error reading loan from store")

	return loan
}
