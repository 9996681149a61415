package loanbyid

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// QueryHandler reads one loan and delegates the access decision to Project.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (LoanResult, error) {
	var views []recordstore.LoanView

	err := shell.ReadInTx(ctx, h.store, func(tx recordstore.Reader) error {
		var err error
		views, err = tx.Loans(ctx, BuildFilter(query))

		return err
	})
	if err != nil {
		return LoanResult{}, err
	}

	return Project(views, query), nil
}
