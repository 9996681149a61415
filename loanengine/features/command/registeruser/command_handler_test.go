package registeruser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/registeruser"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_CommandHandler_Handle_RegistersMemberByDefault(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		handler := createHandler(t, store)
		email := GivenUniqueID(t).String() + "@library.test"
		command := registeruser.BuildCommand(GivenUniqueID(t), "John Doe", " "+email+" ", []byte("hash"), "", FixedClock)

		// act
		result, err := handler.Handle(ctx, command)

		// assert
		require.NoError(t, err)
		assert.False(t, result.IsRejected())
		assert.Equal(t, recordstore.RoleMember, result.User.Role)

		err = recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			stored, err := tx.UserByEmail(ctx, email)
			require.NoError(t, err)
			assert.Equal(t, command.UserID, stored.ID)
			assert.True(t, stored.Active)
			assert.Equal(t, []byte("hash"), stored.PasswordHash)

			return nil
		})
		require.NoError(t, err)
	})
}

func Test_CommandHandler_Handle_Rejections(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		existing := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		GivenUserWasDeactivated(t, ctx, store, existing.ID)
		handler := createHandler(t, store)

		// act
		taken, err := handler.Handle(ctx, registeruser.BuildCommand(GivenUniqueID(t), "Jane", existing.Email, []byte("hash"), "", FixedClock))
		require.NoError(t, err)
		badRole, err := handler.Handle(ctx, registeruser.BuildCommand(GivenUniqueID(t), "Jane", "x@library.test", []byte("hash"), "librarian", FixedClock))
		require.NoError(t, err)
		noEmail, err := handler.Handle(ctx, registeruser.BuildCommand(GivenUniqueID(t), "Jane", "  ", []byte("hash"), "", FixedClock))
		require.NoError(t, err)

		// assert
		require.True(t, taken.IsRejected())
		assert.Equal(t, core.Conflict("email already registered"), *taken.Rejection)
		require.True(t, badRole.IsRejected())
		assert.Equal(t, core.Invalid("unknown role"), *badRole.Rejection)
		require.True(t, noEmail.IsRejected())
		assert.Equal(t, core.Invalid("email must not be empty"), *noEmail.Rejection)
	})
}

func createHandler(t *testing.T, store recordstore.Store) registeruser.CommandHandler {
	t.Helper()

	handler, err := registeruser.NewCommandHandler(store)
	require.NoError(t, err, "error creating the RegisterUser handler")

	return handler
}
