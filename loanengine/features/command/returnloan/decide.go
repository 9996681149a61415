package returnloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonLoanNotFound        = "loan not found"
	rejectionReasonNotLoanOwner        = "loan belongs to another user"
	rejectionReasonLoanAlreadyReturned = "loan already returned"
)

// State is what Decide needs to know. Loan is nil when it does not exist,
// Book is nil when the loan does not exist or its book is gone.
type State struct {
	Loan *recordstore.Loan
	Book *recordstore.Book
}

// Decide implements the business rules for returning a loan. It is a pure function.
//
// Business Rules, checked in this order:
//
//	REJECT (not found): the loan does not exist
//	REJECT (unauthorized): the caller is neither the borrower nor an admin
//	REJECT (conflict): the loan was already returned
//	SUCCESS: close the loan and restock the copy
//	SUCCESS with notice: close the loan, the book is inactive so the copy is not restocked
func Decide(s State, command Command) core.DecisionResult {
	if s.Loan == nil {
		return core.RejectedDecision(core.NotFound(rejectionReasonLoanNotFound))
	}

	if !command.Caller.Owns(s.Loan.UserID) && !command.Caller.IsAdmin() {
		return core.RejectedDecision(core.Unauthorized(rejectionReasonNotLoanOwner))
	}

	if !s.Loan.IsOpen() {
		return core.RejectedDecision(core.Conflict(rejectionReasonLoanAlreadyReturned))
	}

	if !restocks(s) {
		return core.SuccessDecisionWithNotice(core.NoticeBookInactiveNotRestocked)
	}

	return core.SuccessDecision()
}

func restocks(s State) bool {
	return s.Book != nil && s.Book.Active
}

func loadState(ctx context.Context, tx recordstore.Reader, command Command) (State, error) {
	loan, err := shell.OptionalRecord(tx.LoanByID(ctx, command.LoanID))
	if err != nil || loan == nil {
		return State{}, err
	}

	book, err := shell.OptionalRecord(tx.BookByID(ctx, loan.BookID))
	if err != nil {
		return State{}, err
	}

	return State{Loan: loan, Book: book}, nil
}
