package bookbyid

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// QueryHandler reads one book and delegates the visibility decision to Project.
type QueryHandler struct {
	store recordstore.Store
}

func NewQueryHandler(store recordstore.Store) (QueryHandler, error) {
	if store == nil {
		return QueryHandler{}, shell.ErrNilRecordStore
	}

	return QueryHandler{store: store}, nil
}

// Handle executes the query: Read -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BookResult, error) {
	var book *recordstore.Book

	err := shell.ReadInTx(ctx, h.store, func(tx recordstore.Reader) error {
		var err error
		book, err = shell.OptionalRecord(tx.BookByID(ctx, query.BookID))

		return err
	})
	if err != nil {
		return BookResult{}, err
	}

	return Project(book, query), nil
}
