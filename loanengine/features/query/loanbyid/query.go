package loanbyid

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	queryType = "LoanByID"
)

// Query represents the intent of a caller to look at one loan.
type Query struct {
	LoanID uuid.UUID
	Caller core.Caller
}

// BuildQuery creates a new Query with the provided loan ID and caller.
func BuildQuery(loanID uuid.UUID, caller core.Caller) Query {
	return Query{LoanID: loanID, Caller: caller}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
