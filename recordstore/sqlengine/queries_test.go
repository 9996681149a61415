package sqlengine

import (
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

var (
	fixedBookID = uuid.MustParse("0198c3a2-1111-7000-8000-000000000001")
	fixedUserID = uuid.MustParse("0198c3a2-2222-7000-8000-000000000002")
	fixedLoanID = uuid.MustParse("0198c3a2-3333-7000-8000-000000000003")
	fixedTime   = time.Date(2025, time.March, 14, 9, 30, 0, 123456000, time.UTC)
)

func givenStoreWithDialect(t *testing.T, dialect string) *RecordStore {
	rs, err := newRecordStore(nil, dialect)
	require.NoError(t, err)

	return rs
}

func Test_BuildDecrementAvailableCopies_GuardsOnActiveBookWithCopiesLeft(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectPostgres)

	// act
	sqlQuery, err := rs.buildDecrementAvailableCopies(fixedBookID)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "books" SET "available_copies"="available_copies" - 1`)
	assert.Contains(t, sqlQuery, `("id" = '0198c3a2-1111-7000-8000-000000000001')`)
	assert.Contains(t, sqlQuery, `("active" IS TRUE)`)
	assert.Contains(t, sqlQuery, `("available_copies" > 0)`)
}

func Test_BuildIncrementAvailableCopies_GuardsOnActiveOnlyWhenAsked(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectPostgres)

	// act
	onlyIfActive, err1 := rs.buildIncrementAvailableCopies(fixedBookID, true)
	always, err2 := rs.buildIncrementAvailableCopies(fixedBookID, false)

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Contains(t, onlyIfActive, `"available_copies"="available_copies" + 1`)
	assert.Contains(t, onlyIfActive, `("active" IS TRUE)`)
	assert.NotContains(t, always, `"active"`)
}

func Test_BuildCloseLoan_OnlyMatchesOpenLoan(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectPostgres)

	// act
	sqlQuery, err := rs.buildCloseLoan(fixedLoanID, fixedTime)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"return_date"='2025-03-14T09:30:00.123456Z'`)
	assert.Contains(t, sqlQuery, `"returned"=TRUE`)
	assert.Contains(t, sqlQuery, `("returned" IS FALSE)`)
}

func Test_BuildDeleteLoan_GuardsOnOpenLoanOnlyWhenAsked(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectPostgres)

	// act
	onlyIfOpen, err1 := rs.buildDeleteLoan(fixedLoanID, true)
	always, err2 := rs.buildDeleteLoan(fixedLoanID, false)

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Contains(t, onlyIfOpen, `DELETE FROM "loans"`)
	assert.Contains(t, onlyIfOpen, `("id" = '0198c3a2-3333-7000-8000-000000000003')`)
	assert.Contains(t, onlyIfOpen, `("returned" IS FALSE)`)
	assert.NotContains(t, always, `"returned"`)
}

func Test_BuildSelectLoanViews_AppliesFilterAndVisibility(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectPostgres)
	filter := recordstore.LoanFilter{UserID: fixedUserID, OnlyOpen: true, Visibility: recordstore.MemberView}

	// act
	sqlQuery, err := rs.buildSelectLoanViews(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "loans" AS "l"`)
	assert.Contains(t, sqlQuery, `INNER JOIN "books" AS "b" ON ("b"."id" = "l"."book_id")`)
	assert.Contains(t, sqlQuery, `INNER JOIN "users" AS "u" ON ("u"."id" = "l"."user_id")`)
	assert.Contains(t, sqlQuery, `("l"."user_id" = '0198c3a2-2222-7000-8000-000000000002')`)
	assert.Contains(t, sqlQuery, `("l"."returned" IS FALSE)`)
	assert.Contains(t, sqlQuery, `("b"."active" IS TRUE)`)
	assert.Contains(t, sqlQuery, `("u"."active" IS TRUE)`)
	assert.Contains(t, sqlQuery, `ORDER BY "l"."borrow_date" ASC, "l"."id" ASC`)
}

func Test_BuildSelectLoanViews_AdminViewSeesInactiveRecords(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectPostgres)

	// act
	sqlQuery, err := rs.buildSelectLoanViews(recordstore.LoanFilter{Visibility: recordstore.AdminView})

	// assert
	require.NoError(t, err)
	assert.NotContains(t, sqlQuery, "WHERE")
}

func Test_BuildInsertLoan_SQLiteDialect(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectSQLite)
	loan := recordstore.Loan{ID: fixedLoanID, UserID: fixedUserID, BookID: fixedBookID, BorrowDate: fixedTime}

	// act
	sqlQuery, err := rs.buildInsertLoan(loan)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "INSERT INTO `loans`")
	assert.Contains(t, sqlQuery, "'2025-03-14T09:30:00.123456Z'")
	assert.Contains(t, sqlQuery, "NULL")
	assert.NotContains(t, sqlQuery, "FALSE")
}

func Test_BuildSelectBooks_SQLiteDialectRendersBooleansAsIntegers(t *testing.T) {
	// arrange
	rs := givenStoreWithDialect(t, dialectSQLite)

	// act
	sqlQuery, err := rs.buildSelectBooks(goqu.C(colActive).IsTrue())

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "(`active` IS 1)")
	assert.Contains(t, sqlQuery, "ORDER BY `title` ASC, `id` ASC")
}

func Test_BuildQueries_UseCustomTableNames(t *testing.T) {
	// arrange
	rs, err := newRecordStore(nil, dialectPostgres, WithTableNames("lib_books", "lib_users", "lib_loans"))
	require.NoError(t, err)

	// act
	sqlQuery, buildErr := rs.buildSelectLoanViews(recordstore.LoanFilter{})

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `FROM "lib_loans" AS "l"`)
	assert.Contains(t, sqlQuery, `"lib_books" AS "b"`)
	assert.Contains(t, sqlQuery, `"lib_users" AS "u"`)
	assert.Contains(t, rs.Schema(), "CREATE TABLE IF NOT EXISTS lib_loans")
}

func Test_WithTableNames_RejectsEmptyNames(t *testing.T) {
	_, err := newRecordStore(nil, dialectPostgres, WithTableNames("books", "", "loans"))

	assert.ErrorIs(t, err, ErrEmptyTableNameSupplied)
}
