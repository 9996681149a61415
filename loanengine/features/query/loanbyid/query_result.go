package loanbyid

import (
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// LoanResult represents the query result. Loan is only set when Rejection is nil.
type LoanResult struct {
	Loan      recordstore.LoanView
	Rejection *core.Rejection
}

func (r LoanResult) IsRejected() bool {
	return r.Rejection != nil
}
