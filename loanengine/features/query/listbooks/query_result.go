package listbooks

import (
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Books represents the query result, ordered by title, then ID.
type Books struct {
	Books []recordstore.Book
	Count int
}
