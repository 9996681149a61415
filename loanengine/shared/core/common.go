package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Caller is the authenticated principal an operation runs for.
type Caller struct {
	ID   uuid.UUID
	Role recordstore.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role.IsAdmin()
}

// Owns reports whether the caller is the given user.
func (c Caller) Owns(userID uuid.UUID) bool {
	return c.ID == userID
}

// ToTimestamp converts a time to the precision the record stores keep: UTC, microseconds.
func ToTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
