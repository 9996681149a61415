package listloans

import (
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	queryType = "ListLoans"
)

// Query represents the intent to list all loans.
type Query struct {
	Visibility recordstore.Visibility
	OnlyOpen   bool
}

// BuildQuery creates a new Query with the provided visibility.
func BuildQuery(visibility recordstore.Visibility, onlyOpen bool) Query {
	return Query{Visibility: visibility, OnlyOpen: onlyOpen}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
