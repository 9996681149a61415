package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
	"github.com/AntonStoeckl/library-loans-go/recordstore/sqlengine/internal/adapters"
)

// sqlTx implements recordstore.Tx on top of a database transaction.
type sqlTx struct {
	store          *RecordStore
	tx             adapters.DBTx
	readOnly       bool
	started        time.Time
	statementCount int
	tracing        *transactionTracingObserver
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.finish(ctx, operationCommit, outcomeCommitted, ErrCommitTransactionFailed, logMsgCommitFailed, t.tx.Commit)
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	return t.finish(ctx, operationRollback, outcomeRolledBack, ErrRollbackTransactionFailed, logMsgRollbackFailed, t.tx.Rollback)
}

func (t *sqlTx) finish(
	ctx context.Context,
	operation, outcome string,
	sentinel error,
	failureMsg string,
	fn func(context.Context) error,
) error {
	rs := t.store
	err := fn(ctx)
	duration := time.Since(t.started)

	if err != nil {
		if errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, sql.ErrTxDone) {
			return errors.Join(recordstore.ErrTransactionAlreadyFinished, err)
		}

		err = wrapDBError(sentinel, err)
		rs.logError(ctx, failureMsg, err)
		rs.recordErrorMetrics(ctx, operation, errorTypeOf(err))
		rs.recordDurationMetrics(ctx, metricTransactionDuration, duration, operation, statusError)
		t.tracing.finishError(errorTypeOf(err), duration)

		return err
	}

	rs.logOperation(ctx, logMsgTransactionFinished,
		logAttrOutcome, outcome,
		logAttrReadOnly, t.readOnly,
		logAttrDurationMS, rs.toMilliseconds(duration))
	rs.recordDurationMetrics(ctx, metricTransactionDuration, duration, operation, statusSuccess)
	t.tracing.finishSuccess(outcome, t.statementCount, duration)

	return nil
}

// query runs a SELECT inside the transaction and hands every row to scan.
func (t *sqlTx) query(
	ctx context.Context,
	operation string,
	sqlQuery sqlQueryString,
	scan func(rows adapters.DBRows) error,
) (int, error) {
	rs := t.store
	t.statementCount++

	start := time.Now()
	rows, err := t.tx.Query(ctx, sqlQuery)
	duration := time.Since(start)
	rs.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if err != nil {
		err = wrapDBError(ErrQueryingRecordsFailed, err)
		t.reportStatementError(ctx, logMsgDBQueryFailed, operation, sqlQuery, duration, err)

		return 0, err
	}
	defer rs.closeRows(ctx, rows)

	count := 0
	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, scanErr, logAttrOperation, operation)
			rs.recordErrorMetrics(ctx, operation, errorTypeScan)

			return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
		}
		count++
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		err = wrapDBError(ErrQueryingRecordsFailed, rowsErr)
		t.reportStatementError(ctx, logMsgDBQueryFailed, operation, sqlQuery, duration, err)

		return 0, err
	}

	rs.recordDurationMetrics(ctx, metricStatementDuration, duration, operation, statusSuccess)
	rs.recordValueMetrics(ctx, metricRecordsRead, float64(count), operation)

	return count, nil
}

// exec runs a write statement inside the transaction and returns the number of affected rows.
func (t *sqlTx) exec(ctx context.Context, operation string, sqlQuery sqlQueryString) (int64, error) {
	rs := t.store
	t.statementCount++

	if t.readOnly {
		return 0, recordstore.ErrReadOnlyTransaction
	}

	start := time.Now()
	result, err := t.tx.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	rs.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if err != nil {
		err = wrapDBError(ErrExecutingStatementFailed, err)
		t.reportStatementError(ctx, logMsgDBExecFailed, operation, sqlQuery, duration, err)

		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		rs.logError(ctx, logMsgRowsAffectedFailed, err, logAttrOperation, operation)
		rs.recordErrorMetrics(ctx, operation, errorTypeDatabase)

		return 0, errors.Join(ErrGettingRowsAffectedFailed, err)
	}

	rs.recordDurationMetrics(ctx, metricStatementDuration, duration, operation, statusSuccess)

	return rowsAffected, nil
}

// execGuarded runs a guarded write and turns zero affected rows into recordstore.ErrConcurrencyConflict.
func (t *sqlTx) execGuarded(ctx context.Context, operation string, sqlQuery sqlQueryString) error {
	rowsAffected, err := t.exec(ctx, operation, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		t.store.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrOperation, operation,
			logAttrRowsAffected, rowsAffected)
		t.store.recordConflictMetrics(ctx, operation, errorTypeConcurrencyConflict)

		return recordstore.ErrConcurrencyConflict
	}

	return nil
}

// reportStatementError logs and records a failed statement. Unique violations and conflicts are
// expected under contention, so they are logged at info level.
func (t *sqlTx) reportStatementError(
	ctx context.Context,
	message, operation string,
	sqlQuery sqlQueryString,
	duration time.Duration,
	err error,
) {
	rs := t.store
	errorType := errorTypeOf(err)
	rs.recordDurationMetrics(ctx, metricStatementDuration, duration, operation, statusError)

	switch errorType {
	case errorTypeUniqueViolation:
		rs.logOperation(ctx, logMsgUniqueViolation, logAttrOperation, operation)
		rs.recordConflictMetrics(ctx, operation, errorType)
	case errorTypeConcurrencyConflict:
		rs.logOperation(ctx, logMsgConcurrencyConflict, logAttrOperation, operation)
		rs.recordConflictMetrics(ctx, operation, errorType)
	default:
		rs.logError(ctx, message, err, logAttrOperation, operation, logAttrQuery, sqlQuery)
		rs.recordErrorMetrics(ctx, operation, errorType)
	}
}

// closeRows safely closes database rows and logs any errors.
func (rs *RecordStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		rs.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

func (t *sqlTx) buildFailed(ctx context.Context, operation string, err error) error {
	t.store.logError(ctx, logMsgBuildQueryFailed, err, logAttrOperation, operation)
	t.store.recordErrorMetrics(ctx, operation, errorTypeBuildQuery)

	return err
}

func (t *sqlTx) BookByID(ctx context.Context, id uuid.UUID) (recordstore.Book, error) {
	books, err := t.selectBooks(ctx, goqu.C(colID).Eq(id.String()))
	if err != nil {
		return recordstore.Book{}, err
	}

	if len(books) == 0 {
		return recordstore.Book{}, recordstore.ErrRecordNotFound
	}

	return books[0], nil
}

func (t *sqlTx) BookByISBN(ctx context.Context, isbn string) (recordstore.Book, error) {
	books, err := t.selectBooks(ctx, goqu.C(colISBN).Eq(isbn))
	if err != nil {
		return recordstore.Book{}, err
	}

	if len(books) == 0 {
		return recordstore.Book{}, recordstore.ErrRecordNotFound
	}

	return books[0], nil
}

func (t *sqlTx) Books(ctx context.Context, filter recordstore.BookFilter) ([]recordstore.Book, error) {
	if filter.Visibility == recordstore.MemberView {
		return t.selectBooks(ctx, goqu.C(colActive).IsTrue())
	}

	return t.selectBooks(ctx)
}

func (t *sqlTx) selectBooks(ctx context.Context, where ...exp.Expression) ([]recordstore.Book, error) {
	sqlQuery, err := t.store.buildSelectBooks(where...)
	if err != nil {
		return nil, t.buildFailed(ctx, operationSelectBooks, err)
	}

	books := make([]recordstore.Book, 0)
	_, err = t.query(ctx, operationSelectBooks, sqlQuery, func(rows adapters.DBRows) error {
		var book recordstore.Book
		var createdAt, updatedAt dbTime

		if scanErr := rows.Scan(
			&book.ID, &book.Title, &book.Author, &book.ISBN, &book.PublishedYear, &book.Genre,
			&book.AvailableCopies, &book.Active, &createdAt, &updatedAt,
		); scanErr != nil {
			return scanErr
		}

		book.CreatedAt, book.UpdatedAt = createdAt.Time, updatedAt.Time
		books = append(books, book)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

func (t *sqlTx) UserByID(ctx context.Context, id uuid.UUID) (recordstore.User, error) {
	return t.selectUser(ctx, goqu.C(colID).Eq(id.String()))
}

func (t *sqlTx) UserByEmail(ctx context.Context, email string) (recordstore.User, error) {
	return t.selectUser(ctx, goqu.C(colEmail).Eq(email))
}

func (t *sqlTx) selectUser(ctx context.Context, where exp.Expression) (recordstore.User, error) {
	sqlQuery, err := t.store.buildSelectUsers(where)
	if err != nil {
		return recordstore.User{}, t.buildFailed(ctx, operationSelectUsers, err)
	}

	var user recordstore.User
	count, err := t.query(ctx, operationSelectUsers, sqlQuery, func(rows adapters.DBRows) error {
		var passwordHash, role string
		var createdAt, updatedAt dbTime

		if scanErr := rows.Scan(
			&user.ID, &user.Name, &user.Email, &passwordHash, &role, &user.Active, &createdAt, &updatedAt,
		); scanErr != nil {
			return scanErr
		}

		parsedRole, roleErr := recordstore.ParseRole(role)
		if roleErr != nil {
			return roleErr
		}

		user.PasswordHash = []byte(passwordHash)
		user.Role = parsedRole
		user.CreatedAt, user.UpdatedAt = createdAt.Time, updatedAt.Time

		return nil
	})
	if err != nil {
		return recordstore.User{}, err
	}

	if count == 0 {
		return recordstore.User{}, recordstore.ErrRecordNotFound
	}

	return user, nil
}

func (t *sqlTx) LoanByID(ctx context.Context, id uuid.UUID) (recordstore.Loan, error) {
	sqlQuery, err := t.store.buildSelectLoan(id)
	if err != nil {
		return recordstore.Loan{}, t.buildFailed(ctx, operationSelectLoans, err)
	}

	var loan recordstore.Loan
	count, err := t.query(ctx, operationSelectLoans, sqlQuery, func(rows adapters.DBRows) error {
		var borrowDate, returnDate dbTime

		if scanErr := rows.Scan(
			&loan.ID, &loan.UserID, &loan.BookID, &borrowDate, &returnDate, &loan.Returned,
		); scanErr != nil {
			return scanErr
		}

		loan.BorrowDate, loan.ReturnDate = borrowDate.Time, returnDate.ptr()

		return nil
	})
	if err != nil {
		return recordstore.Loan{}, err
	}

	if count == 0 {
		return recordstore.Loan{}, recordstore.ErrRecordNotFound
	}

	return loan, nil
}

func (t *sqlTx) OpenLoanExists(ctx context.Context, userID uuid.UUID, bookID uuid.UUID) (bool, error) {
	sqlQuery, err := t.store.buildCountOpenLoans(userID, bookID)
	if err != nil {
		return false, t.buildFailed(ctx, operationCountOpenLoans, err)
	}

	var openLoans int64
	_, err = t.query(ctx, operationCountOpenLoans, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&openLoans)
	})
	if err != nil {
		return false, err
	}

	return openLoans > 0, nil
}

func (t *sqlTx) Loans(ctx context.Context, filter recordstore.LoanFilter) ([]recordstore.LoanView, error) {
	sqlQuery, err := t.store.buildSelectLoanViews(filter)
	if err != nil {
		return nil, t.buildFailed(ctx, operationSelectLoanViews, err)
	}

	views := make([]recordstore.LoanView, 0)
	_, err = t.query(ctx, operationSelectLoanViews, sqlQuery, func(rows adapters.DBRows) error {
		var view recordstore.LoanView
		var borrowDate, returnDate dbTime

		if scanErr := rows.Scan(
			&view.ID, &view.UserID, &view.BookID, &borrowDate, &returnDate, &view.Returned,
			&view.BookTitle, &view.BookAuthor, &view.BookActive,
			&view.UserName, &view.UserEmail, &view.UserActive,
		); scanErr != nil {
			return scanErr
		}

		view.BorrowDate, view.ReturnDate = borrowDate.Time, returnDate.ptr()
		views = append(views, view)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}

func (t *sqlTx) InsertBook(ctx context.Context, book recordstore.Book) error {
	sqlQuery, err := t.store.buildInsertBook(book)
	if err != nil {
		return t.buildFailed(ctx, operationInsertBook, err)
	}

	_, err = t.exec(ctx, operationInsertBook, sqlQuery)

	return err
}

func (t *sqlTx) UpdateBook(ctx context.Context, previous recordstore.Book, book recordstore.Book) error {
	sqlQuery, err := t.store.buildUpdateBook(previous, book)
	if err != nil {
		return t.buildFailed(ctx, operationUpdateBook, err)
	}

	return t.execGuarded(ctx, operationUpdateBook, sqlQuery)
}

func (t *sqlTx) InsertUser(ctx context.Context, user recordstore.User) error {
	sqlQuery, err := t.store.buildInsertUser(user)
	if err != nil {
		return t.buildFailed(ctx, operationInsertUser, err)
	}

	_, err = t.exec(ctx, operationInsertUser, sqlQuery)

	return err
}

func (t *sqlTx) UpdateUser(ctx context.Context, user recordstore.User) error {
	sqlQuery, err := t.store.buildUpdateUser(user)
	if err != nil {
		return t.buildFailed(ctx, operationUpdateUser, err)
	}

	rowsAffected, err := t.exec(ctx, operationUpdateUser, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return recordstore.ErrRecordNotFound
	}

	return nil
}

func (t *sqlTx) InsertLoan(ctx context.Context, loan recordstore.Loan) error {
	sqlQuery, err := t.store.buildInsertLoan(loan)
	if err != nil {
		return t.buildFailed(ctx, operationInsertLoan, err)
	}

	_, err = t.exec(ctx, operationInsertLoan, sqlQuery)

	return err
}

func (t *sqlTx) CloseLoan(ctx context.Context, loanID uuid.UUID, returnedAt time.Time) error {
	sqlQuery, err := t.store.buildCloseLoan(loanID, returnedAt)
	if err != nil {
		return t.buildFailed(ctx, operationCloseLoan, err)
	}

	return t.execGuarded(ctx, operationCloseLoan, sqlQuery)
}

func (t *sqlTx) DeleteLoan(ctx context.Context, loanID uuid.UUID, onlyIfOpen bool) error {
	sqlQuery, err := t.store.buildDeleteLoan(loanID, onlyIfOpen)
	if err != nil {
		return t.buildFailed(ctx, operationDeleteLoan, err)
	}

	return t.execGuarded(ctx, operationDeleteLoan, sqlQuery)
}

func (t *sqlTx) DecrementAvailableCopies(ctx context.Context, bookID uuid.UUID) error {
	sqlQuery, err := t.store.buildDecrementAvailableCopies(bookID)
	if err != nil {
		return t.buildFailed(ctx, operationDecrementCopies, err)
	}

	return t.execGuarded(ctx, operationDecrementCopies, sqlQuery)
}

func (t *sqlTx) IncrementAvailableCopies(ctx context.Context, bookID uuid.UUID, onlyIfActive bool) error {
	sqlQuery, err := t.store.buildIncrementAvailableCopies(bookID, onlyIfActive)
	if err != nil {
		return t.buildFailed(ctx, operationIncrementCopies, err)
	}

	return t.execGuarded(ctx, operationIncrementCopies, sqlQuery)
}
