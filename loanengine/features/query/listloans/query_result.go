package listloans

import (
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Loans represents the query result, ordered by borrow date, then ID.
type Loans struct {
	Loans []recordstore.LoanView
	Count int
}
