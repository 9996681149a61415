package loanbyid

import (
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonLoanNotFound = "loan not found"
)

// Project decides what the caller gets to see. It is a pure function.
//
// Query Logic:
//
//	GIVEN: the loans matching the ID under the caller's visibility
//	THEN: the loan, if the caller is an admin or the borrower
//	OTHERWISE: a not found rejection
func Project(views []recordstore.LoanView, query Query) LoanResult {
	for _, view := range views {
		if view.ID != query.LoanID {
			continue
		}

		if query.Caller.IsAdmin() || query.Caller.Owns(view.UserID) {
			return LoanResult{Loan: view}
		}
	}

	rejection := core.NotFound(rejectionReasonLoanNotFound)

	return LoanResult{Rejection: &rejection}
}

// BuildFilter creates the record filter for the query, applying the caller's visibility.
func BuildFilter(query Query) recordstore.LoanFilter {
	return recordstore.LoanFilter{
		LoanID:     query.LoanID,
		Visibility: recordstore.VisibilityFor(query.Caller.Role),
	}
}
