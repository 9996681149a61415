package deactivateuser

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	commandType = "DeactivateUser"
)

// Command represents the intent to disable a user account.
type Command struct {
	UserID        uuid.UUID
	DeactivatedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(userID uuid.UUID, deactivatedAt time.Time) Command {
	return Command{UserID: userID, DeactivatedAt: core.ToTimestamp(deactivatedAt)}
}
