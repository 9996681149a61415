package updatebook

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	commandType = "UpdateBook"
)

// Changes holds the fields to edit. Nil fields are left as they are.
type Changes struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublishedYear   *int
	Genre           *string
	AvailableCopies *int
}

// Command represents the intent to edit a book.
type Command struct {
	BookID    uuid.UUID
	Changes   Changes
	UpdatedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters. Text changes are trimmed.
func BuildCommand(bookID uuid.UUID, changes Changes, updatedAt time.Time) Command {
	return Command{
		BookID: bookID,
		Changes: Changes{
			Title:           trimmed(changes.Title),
			Author:          trimmed(changes.Author),
			ISBN:            trimmed(changes.ISBN),
			PublishedYear:   changes.PublishedYear,
			Genre:           trimmed(changes.Genre),
			AvailableCopies: changes.AvailableCopies,
		},
		UpdatedAt: core.ToTimestamp(updatedAt),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	t := strings.TrimSpace(*s)

	return &t
}
