package listbooks

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// QueryHandler reads the catalog from the record store.
type QueryHandler struct {
	store recordstore.Store
}

func NewQueryHandler(store recordstore.Store) (QueryHandler, error) {
	if store == nil {
		return QueryHandler{}, shell.ErrNilRecordStore
	}

	return QueryHandler{store: store}, nil
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Books, error) {
	var books []recordstore.Book

	err := shell.ReadInTx(ctx, h.store, func(tx recordstore.Reader) error {
		var err error
		books, err = tx.Books(ctx, recordstore.BookFilter{Visibility: query.Visibility})

		return err
	})
	if err != nil {
		return Books{}, err
	}

	return Books{Books: books, Count: len(books)}, nil
}
