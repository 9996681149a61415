package bookbyid

import (
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonBookNotFound = "book not found"
)

// Project applies the visibility to the looked up book. It is a pure function.
func Project(book *recordstore.Book, query Query) BookResult {
	if book == nil || (query.Visibility == recordstore.MemberView && !book.Active) {
		rejection := core.NotFound(rejectionReasonBookNotFound)

		return BookResult{Rejection: &rejection}
	}

	return BookResult{Book: *book}
}
