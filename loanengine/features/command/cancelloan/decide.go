package cancelloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// State is what Decide needs to know. Loan is nil when it does not exist.
type State struct {
	Loan       *recordstore.Loan
	BookExists bool
}

// Decide implements the business rules for cancelling a loan. It is a pure function.
//
// Business Rules:
//
//	IDEMPOTENCY: the loan does not exist (no changes needed)
//	SUCCESS: delete the loan, restocking the copy first if the loan is open
func Decide(s State, _ Command) core.DecisionResult {
	if s.Loan == nil {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision()
}

// restocks reports whether deleting the loan gives a copy back.
// Books are never removed, a missing book only happens with foreign-key-less stores.
func restocks(s State) bool {
	return s.Loan != nil && s.Loan.IsOpen() && s.BookExists
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

	return State{Loan: loan, BookExists: book != nil}, nil
}
