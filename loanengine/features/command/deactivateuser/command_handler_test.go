package deactivateuser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/deactivateuser"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_CommandHandler_Handle_DeactivatesOnce(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		handler := createHandler(t, store)

		// act
		first, err := handler.Handle(ctx, deactivateuser.BuildCommand(user.ID, FixedClock))
		require.NoError(t, err)
		second, err := handler.Handle(ctx, deactivateuser.BuildCommand(user.ID, FixedClock))
		require.NoError(t, err)
		missing, err := handler.Handle(ctx, deactivateuser.BuildCommand(GivenUniqueID(t), FixedClock))
		require.NoError(t, err)

		// assert
		assert.True(t, first.Deactivated)
		assert.False(t, second.Deactivated)
		assert.False(t, missing.Deactivated)

		err = recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			stored, err := tx.UserByID(ctx, user.ID)
			assert.False(t, stored.Active)

			return err
		})
		require.NoError(t, err)
	})
}

func createHandler(t *testing.T, store recordstore.Store) deactivateuser.CommandHandler {
	t.Helper()

	handler, err := deactivateuser.NewCommandHandler(store)
	require.NoError(t, err, "error creating the DeactivateUser handler")

	return handler
}
