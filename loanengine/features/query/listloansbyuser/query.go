package listloansbyuser

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	queryType = "ListLoansByUser"
)

// Query represents the intent to list the loans of one user.
type Query struct {
	UserID     uuid.UUID
	Visibility recordstore.Visibility
	OnlyOpen   bool
}

// BuildQuery creates a new Query with the provided user ID and visibility.
func BuildQuery(userID uuid.UUID, visibility recordstore.Visibility, onlyOpen bool) Query {
	return Query{UserID: userID, Visibility: visibility, OnlyOpen: onlyOpen}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
