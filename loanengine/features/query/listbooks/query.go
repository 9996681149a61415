package listbooks

import (
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	queryType = "ListBooks"
)

// Query represents the intent to list the catalog. MemberView lists active books only.
type Query struct {
	Visibility recordstore.Visibility
}

// BuildQuery creates a new Query with the provided visibility.
func BuildQuery(visibility recordstore.Visibility) Query {
	return Query{Visibility: visibility}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
