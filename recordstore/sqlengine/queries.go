package sqlengine

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

const (
	colID              = "id"
	colTitle           = "title"
	colAuthor          = "author"
	colISBN            = "isbn"
	colPublishedYear   = "published_year"
	colGenre           = "genre"
	colAvailableCopies = "available_copies"
	colActive          = "active"
	colCreatedAt       = "created_at"
	colUpdatedAt       = "updated_at"
	colName            = "name"
	colEmail           = "email"
	colPasswordHash    = "password_hash"
	colRole            = "role"
	colUserID          = "user_id"
	colBookID          = "book_id"
	colBorrowDate      = "borrow_date"
	colReturnDate      = "return_date"
	colReturned        = "returned"
	aliasLoans         = "l"
	aliasBooks         = "b"
	aliasUsers         = "u"
	decrementByOne     = "? - 1"
	incrementByOne     = "? + 1"
)

type sqlQueryString = string

func (rs *RecordStore) builder() goqu.DialectWrapper {
	return goqu.Dialect(rs.dialect)
}

func (rs *RecordStore) toSQL(ds interface {
	ToSQL() (string, []any, error)
}) (sqlQueryString, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (rs *RecordStore) buildSelectBooks(where ...exp.Expression) (sqlQueryString, error) {
	stmt := rs.builder().
		From(rs.booksTable).
		Select(colID, colTitle, colAuthor, colISBN, colPublishedYear, colGenre,
			colAvailableCopies, colActive, colCreatedAt, colUpdatedAt).
		Where(where...).
		Order(goqu.C(colTitle).Asc(), goqu.C(colID).Asc())

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildSelectUsers(where ...exp.Expression) (sqlQueryString, error) {
	stmt := rs.builder().
		From(rs.usersTable).
		Select(colID, colName, colEmail, colPasswordHash, colRole, colActive, colCreatedAt, colUpdatedAt).
		Where(where...).
		Limit(1)

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildSelectLoan(loanID uuid.UUID) (sqlQueryString, error) {
	stmt := rs.builder().
		From(rs.loansTable).
		Select(colID, colUserID, colBookID, colBorrowDate, colReturnDate, colReturned).
		Where(goqu.C(colID).Eq(loanID.String()))

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildCountOpenLoans(userID, bookID uuid.UUID) (sqlQueryString, error) {
	stmt := rs.builder().
		From(rs.loansTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colUserID).Eq(userID.String()),
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.C(colReturned).IsFalse(),
		)

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildSelectLoanViews(filter recordstore.LoanFilter) (sqlQueryString, error) {
	loanCol := func(col string) exp.IdentifierExpression { return goqu.T(aliasLoans).Col(col) }
	bookCol := func(col string) exp.IdentifierExpression { return goqu.T(aliasBooks).Col(col) }
	userCol := func(col string) exp.IdentifierExpression { return goqu.T(aliasUsers).Col(col) }

	where := make([]exp.Expression, 0, 6)

	if filter.LoanID != uuid.Nil {
		where = append(where, loanCol(colID).Eq(filter.LoanID.String()))
	}

	if filter.UserID != uuid.Nil {
		where = append(where, loanCol(colUserID).Eq(filter.UserID.String()))
	}

	if filter.BookID != uuid.Nil {
		where = append(where, loanCol(colBookID).Eq(filter.BookID.String()))
	}

	if filter.OnlyOpen {
		where = append(where, loanCol(colReturned).IsFalse())
	}

	if filter.Visibility == recordstore.MemberView {
		where = append(where, bookCol(colActive).IsTrue(), userCol(colActive).IsTrue())
	}

	stmt := rs.builder().
		From(goqu.T(rs.loansTable).As(aliasLoans)).
		Join(goqu.T(rs.booksTable).As(aliasBooks), goqu.On(bookCol(colID).Eq(loanCol(colBookID)))).
		Join(goqu.T(rs.usersTable).As(aliasUsers), goqu.On(userCol(colID).Eq(loanCol(colUserID)))).
		Select(
			loanCol(colID), loanCol(colUserID), loanCol(colBookID),
			loanCol(colBorrowDate), loanCol(colReturnDate), loanCol(colReturned),
			bookCol(colTitle), bookCol(colAuthor), bookCol(colActive),
			userCol(colName), userCol(colEmail), userCol(colActive),
		).
		Where(where...).
		Order(loanCol(colBorrowDate).Asc(), loanCol(colID).Asc())

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildInsertBook(book recordstore.Book) (sqlQueryString, error) {
	stmt := rs.builder().
		Insert(rs.booksTable).
		Rows(goqu.Record{
			colID:              book.ID.String(),
			colTitle:           book.Title,
			colAuthor:          book.Author,
			colISBN:            book.ISBN,
			colPublishedYear:   book.PublishedYear,
			colGenre:           book.Genre,
			colAvailableCopies: book.AvailableCopies,
			colActive:          book.Active,
			colCreatedAt:       formatTimestamp(book.CreatedAt),
			colUpdatedAt:       formatTimestamp(book.UpdatedAt),
		})

	return rs.toSQL(stmt)
}

// buildUpdateBook guards on the copies and active flag read before, like the inventory updates.
func (rs *RecordStore) buildUpdateBook(previous, book recordstore.Book) (sqlQueryString, error) {
	stmt := rs.builder().
		Update(rs.booksTable).
		Set(goqu.Record{
			colTitle:           book.Title,
			colAuthor:          book.Author,
			colISBN:            book.ISBN,
			colPublishedYear:   book.PublishedYear,
			colGenre:           book.Genre,
			colAvailableCopies: book.AvailableCopies,
			colActive:          book.Active,
			colUpdatedAt:       formatTimestamp(book.UpdatedAt),
		}).
		Where(
			goqu.C(colID).Eq(previous.ID.String()),
			goqu.C(colAvailableCopies).Eq(previous.AvailableCopies),
			goqu.C(colActive).Eq(previous.Active),
		)

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildInsertUser(user recordstore.User) (sqlQueryString, error) {
	stmt := rs.builder().
		Insert(rs.usersTable).
		Rows(goqu.Record{
			colID:           user.ID.String(),
			colName:         user.Name,
			colEmail:        user.Email,
			colPasswordHash: string(user.PasswordHash),
			colRole:         string(user.Role),
			colActive:       user.Active,
			colCreatedAt:    formatTimestamp(user.CreatedAt),
			colUpdatedAt:    formatTimestamp(user.UpdatedAt),
		})

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildUpdateUser(user recordstore.User) (sqlQueryString, error) {
	stmt := rs.builder().
		Update(rs.usersTable).
		Set(goqu.Record{
			colName:         user.Name,
			colEmail:        user.Email,
			colPasswordHash: string(user.PasswordHash),
			colRole:         string(user.Role),
			colActive:       user.Active,
			colUpdatedAt:    formatTimestamp(user.UpdatedAt),
		}).
		Where(goqu.C(colID).Eq(user.ID.String()))

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildInsertLoan(loan recordstore.Loan) (sqlQueryString, error) {
	stmt := rs.builder().
		Insert(rs.loansTable).
		Rows(goqu.Record{
			colID:         loan.ID.String(),
			colUserID:     loan.UserID.String(),
			colBookID:     loan.BookID.String(),
			colBorrowDate: formatTimestamp(loan.BorrowDate),
			colReturnDate: formatNullableTimestamp(loan.ReturnDate),
			colReturned:   loan.Returned,
		})

	return rs.toSQL(stmt)
}

// buildCloseLoan only matches an open loan, so a concurrent return affects zero rows.
func (rs *RecordStore) buildCloseLoan(loanID uuid.UUID, returnedAt time.Time) (sqlQueryString, error) {
	stmt := rs.builder().
		Update(rs.loansTable).
		Set(goqu.Record{
			colReturned:   true,
			colReturnDate: formatTimestamp(returnedAt),
		}).
		Where(
			goqu.C(colID).Eq(loanID.String()),
			goqu.C(colReturned).IsFalse(),
		)

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildDeleteLoan(loanID uuid.UUID, onlyIfOpen bool) (sqlQueryString, error) {
	conditions := []exp.Expression{goqu.C(colID).Eq(loanID.String())}
	if onlyIfOpen {
		conditions = append(conditions, goqu.C(colReturned).IsFalse())
	}

	stmt := rs.builder().
		Delete(rs.loansTable).
		Where(conditions...)

	return rs.toSQL(stmt)
}

// buildDecrementAvailableCopies guards on an active book with a copy left,
// so the read-decrement-write race cannot oversell.
func (rs *RecordStore) buildDecrementAvailableCopies(bookID uuid.UUID) (sqlQueryString, error) {
	stmt := rs.builder().
		Update(rs.booksTable).
		Set(goqu.Record{colAvailableCopies: goqu.L(decrementByOne, goqu.C(colAvailableCopies))}).
		Where(
			goqu.C(colID).Eq(bookID.String()),
			goqu.C(colActive).IsTrue(),
			goqu.C(colAvailableCopies).Gt(0),
		)

	return rs.toSQL(stmt)
}

func (rs *RecordStore) buildIncrementAvailableCopies(bookID uuid.UUID, onlyIfActive bool) (sqlQueryString, error) {
	where := []exp.Expression{goqu.C(colID).Eq(bookID.String())}
	if onlyIfActive {
		where = append(where, goqu.C(colActive).IsTrue())
	}

	stmt := rs.builder().
		Update(rs.booksTable).
		Set(goqu.Record{colAvailableCopies: goqu.L(incrementByOne, goqu.C(colAvailableCopies))}).
		Where(where...)

	return rs.toSQL(stmt)
}
