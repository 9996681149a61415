package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id               UUID PRIMARY KEY,
    title            TEXT        NOT NULL,
    author           TEXT        NOT NULL,
    isbn             TEXT        NOT NULL UNIQUE,
    published_year   INTEGER     NOT NULL,
    genre            TEXT        NOT NULL DEFAULT '',
    available_copies INTEGER     NOT NULL CHECK (available_copies >= 0),
    active           BOOLEAN     NOT NULL DEFAULT TRUE,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS %[2]s (
    id            UUID PRIMARY KEY,
    name          TEXT        NOT NULL,
    email         TEXT        NOT NULL UNIQUE,
    password_hash TEXT        NOT NULL,
    role          TEXT        NOT NULL CHECK (role IN ('member', 'admin')),
    active        BOOLEAN     NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS %[3]s (
    id          UUID PRIMARY KEY,
    user_id     UUID        NOT NULL REFERENCES %[2]s (id),
    book_id     UUID        NOT NULL REFERENCES %[1]s (id),
    borrow_date TIMESTAMPTZ NOT NULL,
    return_date TIMESTAMPTZ,
    returned    BOOLEAN     NOT NULL DEFAULT FALSE,
    CHECK (returned = (return_date IS NOT NULL))
);

CREATE UNIQUE INDEX IF NOT EXISTS %[3]s_one_open_loan_idx ON %[3]s (user_id, book_id) WHERE NOT returned;
CREATE INDEX IF NOT EXISTS %[3]s_user_idx ON %[3]s (user_id, borrow_date);
`

// Timestamps are TEXT in SQLite, written in timestampLayout.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id               TEXT PRIMARY KEY,
    title            TEXT    NOT NULL,
    author           TEXT    NOT NULL,
    isbn             TEXT    NOT NULL UNIQUE,
    published_year   INTEGER NOT NULL,
    genre            TEXT    NOT NULL DEFAULT '',
    available_copies INTEGER NOT NULL CHECK (available_copies >= 0),
    active           BOOLEAN NOT NULL DEFAULT 1,
    created_at       TEXT    NOT NULL,
    updated_at       TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS %[2]s (
    id            TEXT PRIMARY KEY,
    name          TEXT    NOT NULL,
    email         TEXT    NOT NULL UNIQUE,
    password_hash TEXT    NOT NULL,
    role          TEXT    NOT NULL CHECK (role IN ('member', 'admin')),
    active        BOOLEAN NOT NULL DEFAULT 1,
    created_at    TEXT    NOT NULL,
    updated_at    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS %[3]s (
    id          TEXT PRIMARY KEY,
    user_id     TEXT    NOT NULL REFERENCES %[2]s (id),
    book_id     TEXT    NOT NULL REFERENCES %[1]s (id),
    borrow_date TEXT    NOT NULL,
    return_date TEXT,
    returned    BOOLEAN NOT NULL DEFAULT 0,
    CHECK (returned = (return_date IS NOT NULL))
);

CREATE UNIQUE INDEX IF NOT EXISTS %[3]s_one_open_loan_idx ON %[3]s (user_id, book_id) WHERE returned = 0;
CREATE INDEX IF NOT EXISTS %[3]s_user_idx ON %[3]s (user_id, borrow_date);
`

// Schema returns the DDL for the configured dialect and table names.
func (rs *RecordStore) Schema() string {
	template := postgresSchema
	if rs.dialect == dialectSQLite {
		template = sqliteSchema
	}

	return fmt.Sprintf(template, rs.booksTable, rs.usersTable, rs.loansTable)
}

// Migrate creates the tables and indexes if they do not exist yet. It is safe to run repeatedly.
func (rs *RecordStore) Migrate(ctx context.Context) error {
	start := time.Now()

	dbTx, err := rs.db.BeginTx(ctx, false)
	if err != nil {
		err = errors.Join(ErrMigrationFailed, wrapDBError(ErrBeginTransactionFailed, err))
		rs.logError(ctx, logMsgBeginFailed, err, logAttrOperation, operationMigrate)

		return err
	}

	for _, statement := range splitStatements(rs.Schema()) {
		if _, execErr := dbTx.Exec(ctx, statement); execErr != nil {
			rs.logError(ctx, logMsgDBExecFailed, execErr, logAttrOperation, operationMigrate, logAttrQuery, statement)
			rs.recordErrorMetrics(ctx, operationMigrate, errorTypeOf(execErr))

			if rollbackErr := dbTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
				rs.logWarn(ctx, logMsgRollbackFailed, rollbackErr)
			}

			return errors.Join(ErrMigrationFailed, execErr)
		}
	}

	if err = dbTx.Commit(ctx); err != nil {
		rs.logError(ctx, logMsgCommitFailed, err, logAttrOperation, operationMigrate)

		return errors.Join(ErrMigrationFailed, wrapDBError(ErrCommitTransactionFailed, err))
	}

	rs.logOperation(ctx, logMsgSchemaMigrated,
		logAttrDialect, rs.dialect,
		logAttrDurationMS, rs.toMilliseconds(time.Since(start)))

	return nil
}

// splitStatements splits DDL on semicolons. The schema contains no string literals with semicolons.
func splitStatements(ddl string) []string {
	statements := make([]string, 0, 8)

	for _, part := range strings.Split(ddl, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}

	return statements
}
