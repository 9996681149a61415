package createloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonBookNotFound      = "book not found"
	rejectionReasonNoCopiesAvailable = "no copies available"
	rejectionReasonDuplicateOpenLoan = "duplicate open loan"
	rejectionReasonUserNotFound      = "user not found"
)

// State is what Decide needs to know, loaded inside the command's transaction.
// Book and User are nil when they do not exist.
type State struct {
	Book           *recordstore.Book
	User           *recordstore.User
	OpenLoanExists bool
}

// Decide implements the business rules for lending a copy. It is a pure function.
//
// Business Rules, checked in this order:
//
//	REJECT (not found): book does not exist or is inactive
//	REJECT (conflict): the book has no available copies
//	REJECT (conflict): the user already has an open loan for this book
//	REJECT (not found): user does not exist or is inactive
//	SUCCESS: decrement the available copies and insert an open loan
func Decide(s State, _ Command) core.DecisionResult {
	if s.Book == nil || !s.Book.Active {
		return core.RejectedDecision(core.NotFound(rejectionReasonBookNotFound))
	}

	if s.Book.AvailableCopies <= 0 {
		return core.RejectedDecision(core.Conflict(rejectionReasonNoCopiesAvailable))
	}

	if s.OpenLoanExists {
		return core.RejectedDecision(core.Conflict(rejectionReasonDuplicateOpenLoan))
	}

	if s.User == nil || !s.User.Active {
		return core.RejectedDecision(core.NotFound(rejectionReasonUserNotFound))
	}

	return core.SuccessDecision()
}

// loadState reads everything Decide needs from the transaction.
func loadState(ctx context.Context, tx recordstore.Reader, command Command) (State, error) {
	book, err := shell.OptionalRecord(tx.BookByID(ctx, command.BookID))
	if err != nil {
		return State{}, err
	}

	user, err := shell.OptionalRecord(tx.UserByID(ctx, command.UserID))
	if err != nil {
		return State{}, err
	}

	openLoanExists, err := tx.OpenLoanExists(ctx, command.UserID, command.BookID)
	if err != nil {
		return State{}, err
	}

	return State{Book: book, User: user, OpenLoanExists: openLoanExists}, nil
}
