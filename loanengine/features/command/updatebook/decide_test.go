package updatebook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/updatebook"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
)

func Test_Decide(t *testing.T) {
	book := FixtureBook(t, 3)
	inactiveBook := FixtureBook(t, 3)
	inactiveBook.Active = false
	otherBook := FixtureBook(t, 1)

	negative := -1
	zero := 0
	sameTitle := book.Title
	newTitle := "Domain-Driven Design Distilled"

	testCases := []struct {
		name     string
		state    updatebook.State
		changes  updatebook.Changes
		expected core.DecisionResult
	}{
		{
			name:     "book does not exist",
			state:    updatebook.State{},
			changes:  updatebook.Changes{Title: &newTitle},
			expected: core.RejectedDecision(core.NotFound("book not found")),
		},
		{
			name:     "book is inactive",
			state:    updatebook.State{Book: &inactiveBook},
			changes:  updatebook.Changes{Title: &newTitle},
			expected: core.RejectedDecision(core.NotFound("book not found")),
		},
		{
			name:     "negative copies",
			state:    updatebook.State{Book: &book},
			changes:  updatebook.Changes{AvailableCopies: &negative},
			expected: core.RejectedDecision(core.Invalid("available copies must not be negative")),
		},
		{
			name:     "zero published year",
			state:    updatebook.State{Book: &book},
			changes:  updatebook.Changes{PublishedYear: &zero},
			expected: core.RejectedDecision(core.Invalid("published year must be positive")),
		},
		{
			name:     "isbn of another book",
			state:    updatebook.State{Book: &book, ISBNOwner: &otherBook},
			changes:  updatebook.Changes{ISBN: &otherBook.ISBN},
			expected: core.RejectedDecision(core.Conflict("isbn already exists")),
		},
		{
			name:     "nothing changes",
			state:    updatebook.State{Book: &book},
			changes:  updatebook.Changes{Title: &sameTitle},
			expected: core.IdempotentDecision(),
		},
		{
			name:     "zero copies are allowed",
			state:    updatebook.State{Book: &book},
			changes:  updatebook.Changes{AvailableCopies: &zero},
			expected: core.SuccessDecision(),
		},
		{
			name:     "title changes",
			state:    updatebook.State{Book: &book},
			changes:  updatebook.Changes{Title: &newTitle},
			expected: core.SuccessDecision(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			decision := updatebook.Decide(tc.state, updatebook.BuildCommand(book.ID, tc.changes, FixedClock))

			// assert
			assert.Equal(t, tc.expected, decision)
		})
	}
}

func Test_Apply_OnlyTouchesGivenFields(t *testing.T) {
	// arrange
	book := FixtureBook(t, 3)
	genre := "Architecture"

	// act
	updated := updatebook.Apply(book, updatebook.Changes{Genre: &genre})

	// assert
	assert.Equal(t, genre, updated.Genre)
	updated.Genre = book.Genre
	assert.Equal(t, book, updated)
}
