package deactivateuser

import (
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Decide implements the business rules for deactivating a user. It is a pure function.
//
// Business Rules:
//
//	IDEMPOTENCY: the user does not exist or is already inactive (no changes needed)
//	SUCCESS: clear the active flag
func Decide(user *recordstore.User, _ Command) core.DecisionResult {
	if user == nil || !user.Active {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision()
}
