package returnloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	commandType = "ReturnLoan"
)

// Command represents the intent of a caller to give back a borrowed copy.
type Command struct {
	LoanID     uuid.UUID
	Caller     core.Caller
	ReturnedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, caller core.Caller, returnedAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		Caller:     caller,
		ReturnedAt: core.ToTimestamp(returnedAt),
	}
}
