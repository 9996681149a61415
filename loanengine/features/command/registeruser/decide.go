package registeruser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	rejectionReasonEmailTaken   = "email already registered"
	rejectionReasonUnknownRole  = "unknown role"
	rejectionReasonMissingEmail = "email must not be empty"
)

// State is what Decide needs to know.
type State struct {
	EmailTaken bool
}

// Decide implements the business rules for registering a user. It is a pure function.
//
// Business Rules:
//
//	REJECT (invalid): empty email or a role that does not exist
//	REJECT (conflict): the email belongs to another user, active or not
//	SUCCESS: insert the active user
func Decide(s State, command Command) core.DecisionResult {
	if command.Email == "" {
		return core.RejectedDecision(core.Invalid(rejectionReasonMissingEmail))
	}

	if _, err := recordstore.ParseRole(string(command.Role)); err != nil {
		return core.RejectedDecision(core.Invalid(rejectionReasonUnknownRole))
	}

	if s.EmailTaken {
		return core.RejectedDecision(core.Conflict(rejectionReasonEmailTaken))
	}

	return core.SuccessDecision()
}

func loadState(ctx context.Context, tx recordstore.Reader, command Command) (State, error) {
	owner, err := shell.OptionalRecord(tx.UserByEmail(ctx, command.Email))
	if err != nil {
		return State{}, err
	}

	return State{EmailTaken: owner != nil}, nil
}
