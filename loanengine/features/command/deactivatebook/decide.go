package deactivatebook

import (
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Decide implements the business rules for deactivating a book. It is a pure function.
//
// Business Rules:
//
//	IDEMPOTENCY: the book does not exist or is already inactive (no changes needed)
//	SUCCESS: clear the active flag
func Decide(book *recordstore.Book, _ Command) core.DecisionResult {
	if book == nil || !book.Active {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision()
}
