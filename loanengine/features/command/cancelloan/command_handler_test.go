package cancelloan_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/cancelloan"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_CommandHandler_Handle_OpenLoanRestocksAndDeletes(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 1)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)
		handler := createHandler(t, store)

		// act
		result, err := handler.Handle(ctx, cancelloan.BuildCommand(loan.ID))

		// assert
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.False(t, result.Idempotent)
		assertLoanIsGone(t, ctx, store, loan)
		assert.Equal(t, 1, BookFromStore(t, ctx, store, book.ID).AvailableCopies)
	})
}

func Test_CommandHandler_Handle_InactiveBookIsRestockedToo(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 1)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)
		GivenBookWasDeactivated(t, ctx, store, book.ID)
		handler := createHandler(t, store)

		// act
		result, err := handler.Handle(ctx, cancelloan.BuildCommand(loan.ID))

		// assert
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.Equal(t, 1, BookFromStore(t, ctx, store, book.ID).AvailableCopies)
	})
}

func Test_CommandHandler_Handle_ReturnedLoanIsDeletedWithoutRestock(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 1)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)
		givenLoanWasReturned(t, ctx, store, loan)
		handler := createHandler(t, store)

		// act
		result, err := handler.Handle(ctx, cancelloan.BuildCommand(loan.ID))

		// assert
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assertLoanIsGone(t, ctx, store, loan)
		assert.Equal(t, 1, BookFromStore(t, ctx, store, book.ID).AvailableCopies)
	})
}

func Test_CommandHandler_Handle_LoanReturnedAfterItWasReadIsNotRestockedTwice(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		book := GivenBookWasAdded(t, ctx, wrapper.Store(), 1)
		user := GivenUserWasRegistered(t, ctx, wrapper.Store(), recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, wrapper.Store(), user.ID, book.ID, FixedClock)
		store := &staleLoanStore{Store: wrapper.Store(), stale: loan, staleReads: 1}
		givenLoanWasReturned(t, ctx, wrapper.Store(), loan)
		handler := createHandler(t, store, shell.WithBaseDelay(0))

		// act
		result, err := handler.Handle(ctx, cancelloan.BuildCommand(loan.ID))

		// assert
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.Equal(t, 2, result.RetryAttempts, "The guarded delete must conflict once, then delete the returned loan")
		assert.Equal(t, 2, store.begun)
		assertLoanIsGone(t, ctx, wrapper.Store(), loan)
		assert.Equal(t, 1, BookFromStore(t, ctx, wrapper.Store(), book.ID).AvailableCopies, "Copies must not change")
	})
}

func Test_CommandHandler_Handle_MissingLoanIsIdempotent(t *testing.T) {
	storewrapper.ForEachEngine(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// arrange
		ctx := context.Background()
		handler := createHandler(t, wrapper.Store())

		// act
		result, err := handler.Handle(ctx, cancelloan.BuildCommand(GivenUniqueID(t)))

		// assert
		require.NoError(t, err)
		assert.False(t, result.Deleted)
		assert.True(t, result.Idempotent)
		assert.Equal(t, shell.StatusIdempotent, result.BusinessOutcome())
	})
}

func Test_CommandHandler_Handle_FailedDeleteKeepsLoanAndCopies(t *testing.T) {
	// arrange
	ctx := context.Background()
	wrapper := storewrapper.CreateMemoryWrapper(t)
	book := GivenBookWasAdded(t, ctx, wrapper.Store(), 1)
	user := GivenUserWasRegistered(t, ctx, wrapper.Store(), recordstore.RoleMember)
	loan := GivenBookWasLent(t, ctx, wrapper.Store(), user.ID, book.ID, FixedClock)
	store := &FailingWritesStore{Store: wrapper.Store(), Err: recordstore.ErrConcurrencyConflict}
	handler := createHandler(t, store, shell.WithMaxAttempts(2), shell.WithBaseDelay(0))

	// act
	result, err := handler.Handle(ctx, cancelloan.BuildCommand(loan.ID))

	// assert
	assert.ErrorIs(t, err, recordstore.ErrTransactionFailed)
	assert.False(t, result.Deleted)
	assert.False(t, LoanFromStore(t, ctx, wrapper.Store(), loan.ID).Returned)
	assert.Equal(t, 0, BookFromStore(t, ctx, wrapper.Store(), book.ID).AvailableCopies)
}

func createHandler(t *testing.T, store recordstore.Store, retryOptions ...shell.RetryOption) cancelloan.CommandHandler {
	t.Helper()

	handler, err := cancelloan.NewCommandHandler(store, retryOptions...)
	require.NoError(t, err, "error creating the CancelLoan handler")

	return handler
}

func givenLoanWasReturned(t *testing.T, ctx context.Context, store recordstore.Store, loan recordstore.Loan) {
	t.Helper()

	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		if err := tx.CloseLoan(ctx, loan.ID, FixedClock); err != nil {
			return err
		}

		return tx.IncrementAvailableCopies(ctx, loan.BookID, true)
	})
	require.NoError(t, err, "error in arranging test data")
}

func assertLoanIsGone(t *testing.T, ctx context.Context, store recordstore.Store, loan recordstore.Loan) {
	t.Helper()

	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
		_, err := tx.LoanByID(ctx, loan.ID)
		return err
	})
	assert.ErrorIs(t, err, recordstore.ErrRecordNotFound)
}

// staleLoanStore serves the stale loan for its first reads, like a transaction that read
// the loan just before a concurrent return committed.
type staleLoanStore struct {
	recordstore.Store
	stale      recordstore.Loan
	staleReads int
	begun      int
}

func (s *staleLoanStore) Begin(ctx context.Context) (recordstore.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	s.begun++

	return staleLoanTx{Tx: tx, store: s}, nil
}

type staleLoanTx struct {
	recordstore.Tx
	store *staleLoanStore
}

func (t staleLoanTx) LoanByID(ctx context.Context, id uuid.UUID) (recordstore.Loan, error) {
	if id == t.store.stale.ID && t.store.staleReads > 0 {
		t.store.staleReads--
		return t.store.stale, nil
	}

	return t.Tx.LoanByID(ctx, id)
}
