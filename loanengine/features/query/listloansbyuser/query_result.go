package listloansbyuser

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// LoansOfUser represents the query result, ordered by borrow date, then ID.
type LoansOfUser struct {
	UserID uuid.UUID
	Loans  []recordstore.LoanView
	Count  int
}
