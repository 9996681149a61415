package listloans_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/listloans"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_QueryHandler_Handle_VisibilityAndOrder(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 5)
		hiddenBook := GivenBookWasAdded(t, ctx, store, 5)
		member := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		leaver := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)

		later := GivenBookWasLent(t, ctx, store, member.ID, book.ID, FixedClock.Add(time.Hour))
		earlier := GivenBookWasLent(t, ctx, store, leaver.ID, book.ID, FixedClock)
		ofHiddenBook := GivenBookWasLent(t, ctx, store, member.ID, hiddenBook.ID, FixedClock.Add(2*time.Hour))
		GivenBookWasDeactivated(t, ctx, store, hiddenBook.ID)
		GivenUserWasDeactivated(t, ctx, store, leaver.ID)

		handler, err := listloans.NewQueryHandler(store)
		require.NoError(t, err)

		// act
		adminView, err := handler.Handle(ctx, listloans.BuildQuery(recordstore.AdminView, false))
		require.NoError(t, err)
		memberView, err := handler.Handle(ctx, listloans.BuildQuery(recordstore.MemberView, false))
		require.NoError(t, err)

		// assert
		require.Equal(t, 3, adminView.Count)
		assert.Equal(t, earlier.ID, adminView.Loans[0].ID)
		assert.Equal(t, later.ID, adminView.Loans[1].ID)
		assert.Equal(t, ofHiddenBook.ID, adminView.Loans[2].ID)
		assert.False(t, adminView.Loans[0].UserActive)
		assert.False(t, adminView.Loans[2].BookActive)
		assert.Equal(t, book.Title, adminView.Loans[1].BookTitle)
		assert.Equal(t, member.Email, adminView.Loans[1].UserEmail)

		require.Equal(t, 1, memberView.Count)
		assert.Equal(t, later.ID, memberView.Loans[0].ID)
	})
}

func Test_QueryHandler_Handle_EmptyStore(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		handler, err := listloans.NewQueryHandler(wrapper.Store())
		require.NoError(t, err)

		result, err := handler.Handle(context.Background(), listloans.BuildQuery(recordstore.AdminView, true))

		require.NoError(t, err)
		assert.Equal(t, 0, result.Count)
	})
}
