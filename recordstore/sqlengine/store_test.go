package sqlengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
	"github.com/AntonStoeckl/library-loans-go/recordstore/sqlengine"
	. "github.com/AntonStoeckl/library-loans-go/testutil/helper"
	"github.com/AntonStoeckl/library-loans-go/testutil/storewrapper"
)

func Test_RecordStore_WritesAndReadsRecords(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 2)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleAdmin)

		// act
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock.Add(time.Hour))

		// assert
		var readBook recordstore.Book
		var readUser, userByEmail recordstore.User
		var readLoan recordstore.Loan
		var bookByISBN recordstore.Book

		err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			var txErr error
			if readBook, txErr = tx.BookByID(ctx, book.ID); txErr != nil {
				return txErr
			}
			if bookByISBN, txErr = tx.BookByISBN(ctx, book.ISBN); txErr != nil {
				return txErr
			}
			if readUser, txErr = tx.UserByID(ctx, user.ID); txErr != nil {
				return txErr
			}
			if userByEmail, txErr = tx.UserByEmail(ctx, user.Email); txErr != nil {
				return txErr
			}
			readLoan, txErr = tx.LoanByID(ctx, loan.ID)

			return txErr
		})
		require.NoError(t, err)

		assert.Equal(t, book.ID, readBook.ID)
		assert.Equal(t, book.Title, readBook.Title)
		assert.Equal(t, book.ISBN, readBook.ISBN)
		assert.Equal(t, book.PublishedYear, readBook.PublishedYear)
		assert.Equal(t, 1, readBook.AvailableCopies)
		assert.True(t, readBook.Active)
		assert.True(t, book.CreatedAt.Equal(readBook.CreatedAt))
		assert.Equal(t, book.ID, bookByISBN.ID)

		assert.Equal(t, user.Email, readUser.Email)
		assert.Equal(t, user.PasswordHash, readUser.PasswordHash)
		assert.Equal(t, recordstore.RoleAdmin, readUser.Role)
		assert.Equal(t, user.ID, userByEmail.ID)

		assert.Equal(t, loan.ID, readLoan.ID)
		assert.Equal(t, user.ID, readLoan.UserID)
		assert.Equal(t, book.ID, readLoan.BookID)
		assert.True(t, loan.BorrowDate.Equal(readLoan.BorrowDate))
		assert.Nil(t, readLoan.ReturnDate)
		assert.False(t, readLoan.Returned)
	})
}

func Test_RecordStore_ReadsReturnNotFound(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		ctx := context.Background()
		missingID := GivenUniqueID(t)

		err := recordstore.RunInTx(ctx, wrapper.Store(), func(tx recordstore.Tx) error {
			_, bookErr := tx.BookByID(ctx, missingID)
			assert.ErrorIs(t, bookErr, recordstore.ErrRecordNotFound)

			_, userErr := tx.UserByEmail(ctx, "nobody@library.test")
			assert.ErrorIs(t, userErr, recordstore.ErrRecordNotFound)

			_, loanErr := tx.LoanByID(ctx, missingID)
			assert.ErrorIs(t, loanErr, recordstore.ErrRecordNotFound)

			missingBook := FixtureBook(t, 1)
			updateErr := tx.UpdateBook(ctx, missingBook, missingBook)
			assert.ErrorIs(t, updateErr, recordstore.ErrConcurrencyConflict)

			return nil
		})
		require.NoError(t, err)
	})
}

func Test_RecordStore_DecrementAvailableCopies_Guards(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		lastCopy := GivenBookWasAdded(t, ctx, store, 1)
		inactive := GivenBookWasAdded(t, ctx, store, 5)
		GivenBookWasDeactivated(t, ctx, store, inactive.ID)

		decrement := func(bookID uuid.UUID) error {
			return recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
				return tx.DecrementAvailableCopies(ctx, bookID)
			})
		}

		// act
		firstErr := decrement(lastCopy.ID)
		secondErr := decrement(lastCopy.ID)
		inactiveErr := decrement(inactive.ID)

		// assert
		assert.NoError(t, firstErr)
		assert.ErrorIs(t, secondErr, recordstore.ErrConcurrencyConflict)
		assert.ErrorIs(t, inactiveErr, recordstore.ErrConcurrencyConflict)
		assert.Equal(t, 0, BookFromStore(t, ctx, store, lastCopy.ID).AvailableCopies)
		assert.Equal(t, 5, BookFromStore(t, ctx, store, inactive.ID).AvailableCopies)
	})
}

func Test_RecordStore_IncrementAvailableCopies_OnlyIfActive(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 0)
		GivenBookWasDeactivated(t, ctx, store, book.ID)

		increment := func(onlyIfActive bool) error {
			return recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
				return tx.IncrementAvailableCopies(ctx, book.ID, onlyIfActive)
			})
		}

		// act
		guardedErr := increment(true)
		unguardedErr := increment(false)

		// assert
		assert.ErrorIs(t, guardedErr, recordstore.ErrConcurrencyConflict)
		assert.NoError(t, unguardedErr)
		assert.Equal(t, 1, BookFromStore(t, ctx, store, book.ID).AvailableCopies)
	})
}

func Test_RecordStore_InsertLoan_RejectsSecondOpenLoanForSameUserAndBook(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 3)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)

		// act
		err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			return tx.InsertLoan(ctx, FixtureOpenLoan(t, user.ID, book.ID, FixedClock.Add(time.Minute)))
		})

		// assert
		assert.ErrorIs(t, err, recordstore.ErrUniqueViolation)
		assert.ErrorIs(t, err, sqlengine.ErrExecutingStatementFailed)
	})
}

func Test_RecordStore_InsertBook_RejectsDuplicateISBN(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		existing := GivenBookWasAdded(t, ctx, store, 1)
		duplicate := FixtureBook(t, 1)
		duplicate.ISBN = existing.ISBN

		// act
		err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			return tx.InsertBook(ctx, duplicate)
		})

		// assert
		assert.ErrorIs(t, err, recordstore.ErrUniqueViolation)
	})
}

func Test_RecordStore_CloseLoan_OnlyOnce(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 1)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)
		returnedAt := FixedClock.Add(48 * time.Hour)

		closeLoan := func() error {
			return recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
				return tx.CloseLoan(ctx, loan.ID, returnedAt)
			})
		}

		// act
		firstErr := closeLoan()
		secondErr := closeLoan()

		// assert
		assert.NoError(t, firstErr)
		assert.ErrorIs(t, secondErr, recordstore.ErrConcurrencyConflict)

		closed := LoanFromStore(t, ctx, store, loan.ID)
		assert.True(t, closed.Returned)
		require.NotNil(t, closed.ReturnDate)
		assert.True(t, returnedAt.Equal(*closed.ReturnDate))
	})
}

func Test_RecordStore_DeleteLoan(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 1)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)

		deleteLoan := func() error {
			return recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
				return tx.DeleteLoan(ctx, loan.ID, true)
			})
		}

		// act
		firstErr := deleteLoan()
		secondErr := deleteLoan()

		// assert
		assert.NoError(t, firstErr)
		assert.ErrorIs(t, secondErr, recordstore.ErrConcurrencyConflict)
	})
}

func Test_RecordStore_DeleteLoan_OnlyIfOpenRejectsReturnedLoan(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 1)
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		loan := GivenBookWasLent(t, ctx, store, user.ID, book.ID, FixedClock)
		require.NoError(t, recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			return tx.CloseLoan(ctx, loan.ID, FixedClock)
		}))

		deleteLoan := func(onlyIfOpen bool) error {
			return recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
				return tx.DeleteLoan(ctx, loan.ID, onlyIfOpen)
			})
		}

		// act
		guardedErr := deleteLoan(true)
		unguardedErr := deleteLoan(false)

		// assert
		assert.ErrorIs(t, guardedErr, recordstore.ErrConcurrencyConflict)
		assert.NoError(t, unguardedErr)
	})
}

func Test_RecordStore_Loans_FiltersByVisibilityAndOrdersByBorrowDate(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		user := GivenUserWasRegistered(t, ctx, store, recordstore.RoleMember)
		activeBook := GivenBookWasAdded(t, ctx, store, 2)
		retiredBook := GivenBookWasAdded(t, ctx, store, 2)
		later := GivenBookWasLent(t, ctx, store, user.ID, activeBook.ID, FixedClock.Add(2*time.Hour))
		earlier := GivenBookWasLent(t, ctx, store, user.ID, retiredBook.ID, FixedClock.Add(time.Hour))
		GivenBookWasDeactivated(t, ctx, store, retiredBook.ID)

		var memberView, adminView []recordstore.LoanView

		// act
		err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
			var txErr error
			memberView, txErr = tx.Loans(ctx, recordstore.LoanFilter{UserID: user.ID, Visibility: recordstore.MemberView})
			if txErr != nil {
				return txErr
			}
			adminView, txErr = tx.Loans(ctx, recordstore.LoanFilter{UserID: user.ID, Visibility: recordstore.AdminView})

			return txErr
		})

		// assert
		require.NoError(t, err)
		require.Len(t, memberView, 1)
		assert.Equal(t, later.ID, memberView[0].ID)
		assert.Equal(t, activeBook.Title, memberView[0].BookTitle)
		assert.Equal(t, user.Email, memberView[0].UserEmail)
		assert.True(t, memberView[0].BookActive)

		require.Len(t, adminView, 2)
		assert.Equal(t, earlier.ID, adminView[0].ID)
		assert.False(t, adminView[0].BookActive)
		assert.Equal(t, later.ID, adminView[1].ID)
	})
}

func Test_RecordStore_EventualConsistency_IsReadOnly(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := recordstore.WithEventualConsistency(context.Background())

		// act
		err := recordstore.RunInTx(ctx, wrapper.Store(), func(tx recordstore.Tx) error {
			if _, readErr := tx.Books(ctx, recordstore.BookFilter{}); readErr != nil {
				return readErr
			}

			return tx.InsertBook(ctx, FixtureBook(t, 1))
		})

		// assert
		assert.ErrorIs(t, err, recordstore.ErrReadOnlyTransaction)
	})
}

func Test_RecordStore_Commit_TwiceFails(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		tx, err := wrapper.Store().Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		// act
		secondCommitErr := tx.Commit(ctx)
		rollbackErr := tx.Rollback(ctx)

		// assert
		assert.ErrorIs(t, secondCommitErr, recordstore.ErrTransactionAlreadyFinished)
		assert.ErrorIs(t, rollbackErr, recordstore.ErrTransactionAlreadyFinished)
	})
}

func Test_RecordStore_ConcurrentDecrements_NeverOversell(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		// arrange
		ctx := context.Background()
		store := wrapper.Store()
		book := GivenBookWasAdded(t, ctx, store, 3)
		const workers = 10

		var mu sync.Mutex
		successes := 0
		var failures []error

		// act
		wg := sync.WaitGroup{}
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
					return tx.DecrementAvailableCopies(ctx, book.ID)
				})

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
					return
				}
				failures = append(failures, err)
			}()
		}
		wg.Wait()

		// assert
		assert.Equal(t, 3, successes)
		for _, err := range failures {
			assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
		}
		assert.Equal(t, 0, BookFromStore(t, ctx, store, book.ID).AvailableCopies)
	})
}

func Test_RecordStore_MigrateAndPing(t *testing.T) {
	storewrapper.ForEachSQLEngine(t, func(t *testing.T, wrapper *storewrapper.SQLWrapper) {
		ctx := context.Background()

		assert.NoError(t, wrapper.RecordStore().Migrate(ctx), "migrating twice must be a no-op")
		assert.NoError(t, wrapper.RecordStore().Ping(ctx))
	})
}

func Test_NewRecordStore_RejectsNilConnections(t *testing.T) {
	_, pgxErr := sqlengine.NewRecordStoreFromPGXPool(nil)
	_, sqlErr := sqlengine.NewRecordStoreFromSQLDB(nil)
	_, sqlxErr := sqlengine.NewRecordStoreFromSQLX(nil)
	_, sqliteErr := sqlengine.NewRecordStoreFromSQLite(nil)
	_, replicaErr := sqlengine.NewRecordStoreFromPGXPoolAndReplica(nil, nil)

	assert.ErrorIs(t, pgxErr, recordstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, recordstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, recordstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqliteErr, recordstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, replicaErr, recordstore.ErrNilDatabaseConnection)
}
