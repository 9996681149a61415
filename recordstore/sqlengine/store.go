package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
	"github.com/AntonStoeckl/library-loans-go/recordstore/sqlengine/internal/adapters"
)

const (
	defaultBooksTableName = "books"
	defaultUsersTableName = "users"
	defaultLoansTableName = "loans"
	dialectPostgres       = "postgres"
	dialectSQLite         = "sqlite3"

	logMsgBeginFailed         = "failed to begin transaction"
	logMsgCommitFailed        = "failed to commit transaction"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgUniqueViolation     = "unique constraint violated"
	logMsgTransactionFinished = "transaction finished"
	logMsgSchemaMigrated      = "schema migrated"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "recordstore operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrOperation          = "operation"
	logAttrOutcome            = "outcome"
	logAttrReadOnly           = "read_only"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	logAttrDialect            = "dialect"
	outcomeCommitted          = "committed"
	outcomeRolledBack         = "rolled_back"
	operationBegin            = "begin"
	operationCommit           = "commit"
	operationRollback         = "rollback"
	operationSelectBooks      = "select_books"
	operationSelectUsers      = "select_users"
	operationSelectLoans      = "select_loans"
	operationSelectLoanViews  = "select_loan_views"
	operationCountOpenLoans   = "count_open_loans"
	operationInsertBook       = "insert_book"
	operationUpdateBook       = "update_book"
	operationInsertUser       = "insert_user"
	operationUpdateUser       = "update_user"
	operationInsertLoan       = "insert_loan"
	operationCloseLoan        = "close_loan"
	operationDeleteLoan       = "delete_loan"
	operationDecrementCopies  = "decrement_available_copies"
	operationIncrementCopies  = "increment_available_copies"
	operationMigrate          = "migrate"
	operationPing             = "ping"
)

// RecordStore is a recordstore.Store backed by PostgreSQL or SQLite.
// Statements are built with goqu and sent fully interpolated through one of the database adapters.
type RecordStore struct {
	db               adapters.DBAdapter
	dialect          string
	booksTable       string
	usersTable       string
	loansTable       string
	logger           recordstore.Logger
	contextualLogger recordstore.ContextualLogger
	metricsCollector recordstore.MetricsCollector
	tracingCollector recordstore.TracingCollector
}

// NewRecordStoreFromPGXPool creates a new PostgreSQL RecordStore using a pgx Pool with optional configuration.
func NewRecordStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, recordstore.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapter(db), dialectPostgres, options...)
}

// NewRecordStoreFromPGXPoolAndReplica creates a new PostgreSQL RecordStore that runs read-only
// transactions (see recordstore.WithEventualConsistency) on the replica pool.
func NewRecordStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*RecordStore, error) {
	if primary == nil || replica == nil {
		return nil, recordstore.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapterWithReplica(primary, replica), dialectPostgres, options...)
}

// NewRecordStoreFromSQLDB creates a new PostgreSQL RecordStore using a sql.DB (lib/pq) with optional configuration.
func NewRecordStoreFromSQLDB(db *sql.DB, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, recordstore.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLAdapter(db), dialectPostgres, options...)
}

// NewRecordStoreFromSQLX creates a new PostgreSQL RecordStore using a sqlx.DB with optional configuration.
func NewRecordStoreFromSQLX(db *sqlx.DB, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, recordstore.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLXAdapter(db), dialectPostgres, options...)
}

// NewRecordStoreFromSQLite creates a new SQLite RecordStore using a sql.DB opened with the "sqlite3" driver.
// The DSN should enable immediate transactions, see config.SQLiteDSN.
func NewRecordStoreFromSQLite(db *sql.DB, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, recordstore.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLAdapter(db), dialectSQLite, options...)
}

func newRecordStore(db adapters.DBAdapter, dialect string, options ...Option) (*RecordStore, error) {
	rs := &RecordStore{
		db:         db,
		dialect:    dialect,
		booksTable: defaultBooksTableName,
		usersTable: defaultUsersTableName,
		loansTable: defaultLoansTableName,
	}

	for _, option := range options {
		if err := option(rs); err != nil {
			return nil, err
		}
	}

	return rs, nil
}

// Begin starts a transaction on the primary database. With recordstore.EventualConsistency
// in the context the transaction is read-only and may run on a replica.
func (rs *RecordStore) Begin(ctx context.Context) (recordstore.Tx, error) {
	readOnly := recordstore.GetConsistencyLevel(ctx) == recordstore.EventualConsistency
	tracing := rs.startTransactionTracing(ctx, readOnly)
	start := time.Now()

	dbTx, err := rs.db.BeginTx(ctx, readOnly)
	if err != nil {
		err = wrapDBError(ErrBeginTransactionFailed, err)
		rs.logError(ctx, logMsgBeginFailed, err)
		rs.recordErrorMetrics(ctx, operationBegin, errorTypeOf(err))
		tracing.finishError(errorTypeOf(err), time.Since(start))

		return nil, err
	}

	return &sqlTx{
		store:    rs,
		tx:       dbTx,
		readOnly: readOnly,
		started:  start,
		tracing:  tracing,
	}, nil
}

// Ping checks that the database answers queries.
func (rs *RecordStore) Ping(ctx context.Context) error {
	start := time.Now()
	rows, err := rs.db.Query(ctx, "SELECT 1")
	rs.logQueryWithDuration(ctx, "SELECT 1", operationPing, time.Since(start))

	if err != nil {
		return errors.Join(ErrQueryingRecordsFailed, err)
	}

	rs.closeRows(ctx, rows)

	return nil
}
