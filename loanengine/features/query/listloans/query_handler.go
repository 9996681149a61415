package listloans

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// QueryHandler reads the loans from the record store. External wrappers handle all observability concerns.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (Loans, error) {
	var views []recordstore.LoanView

	err := shell.ReadInTx(ctx, h.store, func(tx recordstore.Reader) error {
		var err error
		views, err = tx.Loans(ctx, BuildFilter(query))

		return err
	})
	if err != nil {
		return Loans{}, err
	}

	return Loans{Loans: views, Count: len(views)}, nil
}

// BuildFilter creates the record filter for the query.
func BuildFilter(query Query) recordstore.LoanFilter {
	return recordstore.LoanFilter{OnlyOpen: query.OnlyOpen, Visibility: query.Visibility}
}
