package deactivatebook

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	commandType = "DeactivateBook"
)

// Command represents the intent to take a book out of circulation.
type Command struct {
	BookID        uuid.UUID
	DeactivatedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, deactivatedAt time.Time) Command {
	return Command{BookID: bookID, DeactivatedAt: core.ToTimestamp(deactivatedAt)}
}
