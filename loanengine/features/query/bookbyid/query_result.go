package bookbyid

import (
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// BookResult represents the query result. Book is only set when Rejection is nil.
type BookResult struct {
	Book      recordstore.Book
	Rejection *core.Rejection
}

func (r BookResult) IsRejected() bool {
	return r.Rejection != nil
}
