package updatebook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonBookNotFound         = "book not found"
	rejectionReasonNegativeCopies       = "available copies must not be negative"
	rejectionReasonInvalidPublishedYear = "published year must be positive"
	rejectionReasonISBNTaken            = "isbn already exists"
)

// State is what Decide needs to know. Book is nil when it does not exist,
// ISBNOwner is the book currently holding the requested ISBN, if any.
type State struct {
	Book      *recordstore.Book
	ISBNOwner *recordstore.Book
}

// Decide implements the business rules for editing a book. It is a pure function.
//
// Business Rules:
//
//	REJECT (not found): book does not exist or is inactive
//	REJECT (invalid): negative number of copies
//	REJECT (invalid): published year not positive
//	REJECT (conflict): the new ISBN belongs to another book
//	IDEMPOTENCY: the changes do not alter the book (no changes needed)
//	SUCCESS: store the edited book
func Decide(s State, command Command) core.DecisionResult {
	if s.Book == nil || !s.Book.Active {
		return core.RejectedDecision(core.NotFound(rejectionReasonBookNotFound))
	}

	changes := command.Changes

	if changes.AvailableCopies != nil && *changes.AvailableCopies < 0 {
		return core.RejectedDecision(core.Invalid(rejectionReasonNegativeCopies))
	}

	if changes.PublishedYear != nil && *changes.PublishedYear <= 0 {
		return core.RejectedDecision(core.Invalid(rejectionReasonInvalidPublishedYear))
	}

	if s.ISBNOwner != nil && s.ISBNOwner.ID != s.Book.ID {
		return core.RejectedDecision(core.Conflict(rejectionReasonISBNTaken))
	}

	if Apply(*s.Book, changes) == *s.Book {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision()
}

// Apply returns book with the changes applied. Timestamps are left untouched.
func Apply(book recordstore.Book, changes Changes) recordstore.Book {
	if changes.Title != nil {
		book.Title = *changes.Title
	}

	if changes.Author != nil {
		book.Author = *changes.Author
	}

	if changes.ISBN != nil {
		book.ISBN = *changes.ISBN
	}

	if changes.PublishedYear != nil {
		book.PublishedYear = *changes.PublishedYear
	}

	if changes.Genre != nil {
		book.Genre = *changes.Genre
	}

	if changes.AvailableCopies != nil {
		book.AvailableCopies = *changes.AvailableCopies
	}

	return book
}

func loadState(ctx context.Context, tx recordstore.Reader, command Command) (State, error) {
	book, err := shell.OptionalRecord(tx.BookByID(ctx, command.BookID))
	if err != nil || book == nil {
		return State{}, err
	}

	if command.Changes.ISBN == nil || *command.Changes.ISBN == book.ISBN {
		return State{Book: book}, nil
	}

	owner, err := shell.OptionalRecord(tx.BookByISBN(ctx, *command.Changes.ISBN))
	if err != nil {
		return State{}, err
	}

	return State{Book: book, ISBNOwner: owner}, nil
}
