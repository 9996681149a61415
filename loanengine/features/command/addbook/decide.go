package addbook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonNegativeCopies       = "available copies must not be negative"
	rejectionReasonInvalidPublishedYear = "published year must be positive"
	rejectionReasonISBNTaken            = "isbn already exists"
)

// State is what Decide needs to know.
type State struct {
	ISBNTaken bool
}

// Decide implements the business rules for adding a book. It is a pure function.
//
// Business Rules:
//
//	REJECT (invalid): negative number of copies
//	REJECT (invalid): published year not positive
//	REJECT (conflict): another book, active or not, has the ISBN
//	SUCCESS: insert the book
func Decide(s State, command Command) core.DecisionResult {
	if command.Copies < 0 {
		return core.RejectedDecision(core.Invalid(rejectionReasonNegativeCopies))
	}

	if command.PublishedYear <= 0 {
		return core.RejectedDecision(core.Invalid(rejectionReasonInvalidPublishedYear))
	}

	if s.ISBNTaken {
		return core.RejectedDecision(core.Conflict(rejectionReasonISBNTaken))
	}

	return core.SuccessDecision()
}

func loadState(ctx context.Context, tx recordstore.Reader, command Command) (State, error) {
	owner, err := shell.OptionalRecord(tx.BookByISBN(ctx, command.ISBN))
	if err != nil {
		return State{}, err
	}

	return State{ISBNTaken: owner != nil}, nil
}
