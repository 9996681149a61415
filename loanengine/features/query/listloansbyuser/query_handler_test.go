package listloansbyuser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/listloansbyuser"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_QueryHandler_Handle_OnlyLoansOfTheUser(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 3)
		retired := GivenBookWasAdded(t, ctx, store, 3)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		other := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		own := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)
		GivenBookWasLent(t, ctx, store, user.ID, retired.ID, FixedClock)
		GivenBookWasLent(t, ctx, store, other.ID, book.ID, FixedClock)
		GivenBookWasDeactivated(t, ctx, store, retired.ID)

		handler, err := listloansbyuser.NewQueryHandler(store)
		require.NoError(t, err)

		// act
		memberView, err := handler.Handle(ctx, listloansbyuser.BuildQuery(user.ID, recordstore.MemberView, true))
		require.NoError(t, err)
		adminView, err := handler.Handle(ctx, listloansbyuser.BuildQuery(user.ID, recordstore.AdminView, true))
		require.NoError(t, err)

		// assert
		assert.Equal(t, user.ID, memberView.UserID)
		require.Equal(t, 1, memberView.Count)
		assert.Equal(t, own.ID, memberView.Loans[0].ID)
		assert.Equal(t, 2, adminView.Count)
	})
}
