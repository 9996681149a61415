package createloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
)

const (
	commandType = "CreateLoan"
)

// Command represents the intent to lend one copy of a book to a user.
// LoanID is chosen when the command is built, so every retry inserts the same loan.
type Command struct {
	LoanID     uuid.UUID
	UserID     uuid.UUID
	BookID     uuid.UUID
	BorrowDate time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, userID uuid.UUID, bookID uuid.UUID, borrowDate time.Time) Command {
	return Command{
		LoanID:     loanID,
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: core.ToTimestamp(borrowDate),
	}
}
