package addbook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/addbook"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_CommandHandler_Handle_AddsActiveBook(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		handler := createHandler(t, store)
		command := givenAddBookCommand(t, "978-"+GivenUniqueID(t).String(), 5, 1949)

		// act
		result, err := handler.Handle(ctx, command)

		// assert
		require.NoError(t, err)
		assert.False(t, result.IsRejected())

		stored := BookFromStore(t, ctx, store, command.BookID)
		assert.Equal(t, "1984", stored.Title, "Text fields are trimmed")
		assert.Equal(t, command.ISBN, stored.ISBN)
		assert.Equal(t, 5, stored.AvailableCopies)
		assert.True(t, stored.Active)
		assert.True(t, FixedClock.Equal(stored.CreatedAt))
	})
}

func Test_CommandHandler_Handle_RejectsTakenISBN(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		existing := GivenBookWasAdded(t, ctx, store, 1)
		GivenBookWasDeactivated(t, ctx, store, existing.ID)
		handler := createHandler(t, store)

		// act
		result, err := handler.Handle(ctx, givenAddBookCommand(t, existing.ISBN, 1, 1949))

		// assert
		require.NoError(t, err)
		require.True(t, result.IsRejected())
		assert.Equal(t, core.Conflict("isbn already exists"), *result.Rejection)
	})
}

func Test_CommandHandler_Handle_RejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name          string
		copies        int
		publishedYear int
		expected      core.Rejection
	}{
		{name: "negative copies", copies: -1, publishedYear: 1949, expected: core.Invalid("available copies must not be negative")},
		{name: "zero year", copies: 1, publishedYear: 0, expected: core.Invalid("published year must be positive")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			handler := createHandler(t, storewrapper.CreateMemoryWrapper(t).Store())

			// act
			result, err := handler.Handle(ctx, givenAddBookCommand(t, GivenUniqueID(t).String(), tc.copies, tc.publishedYear))

			// assert
			require.NoError(t, err)
			require.True(t, result.IsRejected())
			assert.Equal(t, tc.expected, *result.Rejection)
		})
	}
}

func createHandler(t *testing.T, store recordstore.Store) addbook.CommandHandler {
	t.Helper()

	handler, err := addbook.NewCommandHandler(store)
	require.NoError(t, err, "error creating the AddBook handler")

	return handler
}

func givenAddBookCommand(t *testing.T, isbn string, copies int, publishedYear int) addbook.Command {
	t.Helper()

	return addbook.BuildCommand(GivenUniqueID(t), " 1984 ", "George Orwell", isbn, publishedYear, "Dystopia", copies, FixedClock)
}
