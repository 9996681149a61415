package sqlengine

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

var (
	ErrEmptyTableNameSupplied     = errors.New("empty table name supplied")
	ErrBuildingQueryFailed        = errors.New("building query failed")
	ErrQueryingRecordsFailed      = errors.New("querying records failed")
	ErrScanningDBRowFailed        = errors.New("scanning db row failed")
	ErrExecutingStatementFailed   = errors.New("executing statement failed")
	ErrGettingRowsAffectedFailed  = errors.New("getting rows affected failed")
	ErrBeginTransactionFailed     = errors.New("beginning transaction failed")
	ErrCommitTransactionFailed    = errors.New("committing transaction failed")
	ErrRollbackTransactionFailed  = errors.New("rolling back transaction failed")
	ErrMigrationFailed            = errors.New("schema migration failed")
	ErrUnsupportedTimestampFormat = errors.New("unsupported timestamp format")
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	errorTypeUniqueViolation     = "unique_violation"
	errorTypeConcurrencyConflict = "concurrency_conflict"
	errorTypeCanceled            = "context_canceled"
	errorTypeDeadlineExceeded    = "context_deadline_exceeded"
	errorTypeDatabase            = "database_error"
	errorTypeBuildQuery          = "build_query"
	errorTypeScan                = "row_scan"
)

// classifyDBError maps driver errors from PostgreSQL (pgx and lib/pq) and SQLite
// to recordstore.ErrUniqueViolation or recordstore.ErrConcurrencyConflict.
// It returns nil for errors without a record store meaning.
func classifyDBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgresCode(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgresCode(string(pqErr.Code))
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return recordstore.ErrUniqueViolation
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			return recordstore.ErrConcurrencyConflict
		}
	}

	return nil
}

func classifyPostgresCode(code string) error {
	switch code {
	case pgUniqueViolation:
		return recordstore.ErrUniqueViolation
	case pgSerializationFailure, pgDeadlockDetected:
		return recordstore.ErrConcurrencyConflict
	default:
		return nil
	}
}

// wrapDBError joins the operation's sentinel, the classified store error (if any), and the driver error.
func wrapDBError(sentinel error, err error) error {
	return errors.Join(sentinel, classifyDBError(err), err)
}

func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, recordstore.ErrUniqueViolation):
		return errorTypeUniqueViolation
	case errors.Is(err, recordstore.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeDeadlineExceeded
	default:
		return errorTypeDatabase
	}
}
