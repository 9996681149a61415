package registeruser

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	commandType = "RegisterUser"
)

// Command represents the intent to create a user account.
type Command struct {
	UserID       uuid.UUID
	Name         string
	Email        string
	PasswordHash []byte
	Role         recordstore.Role
	RegisteredAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// An empty role registers a member.
func BuildCommand(
	userID uuid.UUID,
	name string,
	email string,
	passwordHash []byte,
	role recordstore.Role,
	registeredAt time.Time,
) Command {
	if role == "" {
		role = recordstore.RoleMember
	}

	return Command{
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         role,
		RegisteredAt: core.ToTimestamp(registeredAt),
	}
}
