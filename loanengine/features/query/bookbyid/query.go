package bookbyid

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	queryType = "BookByID"
)

// Query represents the intent to look at one catalog entry.
type Query struct {
	BookID     uuid.UUID
	Visibility recordstore.Visibility
}

// BuildQuery creates a new Query with the provided book ID and visibility.
func BuildQuery(bookID uuid.UUID, visibility recordstore.Visibility) Query {
	return Query{BookID: bookID, Visibility: visibility}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
