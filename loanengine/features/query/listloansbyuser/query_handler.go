package listloansbyuser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// QueryHandler reads the loans of one user from the record store.
type QueryHandler struct {
	store recordstore.Store
}

func NewQueryHandler(store recordstore.Store) (QueryHandler, error) {
	if store == nil {
		return QueryHandler{}, shell.ErrNilRecordStore
	}

	return QueryHandler{store: store}, nil
}

// Handle executes the query. An unknown user has no loans.
func (h QueryHandler) Handle(ctx context.Context, query Query) (LoansOfUser, error) {
	var views []recordstore.LoanView

	err := shell.ReadInTx(ctx, h.store, func(tx recordstore.Reader) error {
		var err error
		views, err = tx.Loans(ctx, recordstore.LoanFilter{
			UserID:     query.UserID,
			OnlyOpen:   query.OnlyOpen,
			Visibility: query.Visibility,
		})

		return err
	})
	if err != nil {
		return LoansOfUser{}, err
	}

	return LoansOfUser{UserID: query.UserID, Loans: views, Count: len(views)}, nil
}
