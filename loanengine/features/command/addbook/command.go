package addbook

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to add a new, active book with a number of copies on the shelf.
type Command struct {
	BookID        uuid.UUID
	Title         string
	Author        string
	ISBN          string
	PublishedYear int
	Genre         string
	Copies        int
	AddedAt       time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters. Text fields are trimmed.
func BuildCommand(
	bookID uuid.UUID,
	title string,
	author string,
	isbn string,
	publishedYear int,
	genre string,
	copies int,
	addedAt time.Time,
) Command {
	return Command{
		BookID:        bookID,
		Title:         strings.TrimSpace(title),
		Author:        strings.TrimSpace(author),
		ISBN:          strings.TrimSpace(isbn),
		PublishedYear: publishedYear,
		Genre:         strings.TrimSpace(genre),
		Copies:        copies,
		AddedAt:       core.ToTimestamp(addedAt),
	}
}
