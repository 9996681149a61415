package config

import (
	"context"
	"database/sql"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const sqliteBusyTimeoutMS = "5000"

// SQLiteDSN builds a go-sqlite3 DSN for the database file at path.
// Transactions start with BEGIN IMMEDIATE, so a writer takes the lock up front
// and a competing writer waits up to the busy timeout instead of failing on upgrade.
func SQLiteDSN(path string) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", sqliteBusyTimeoutMS)
	params.Set("_foreign_keys", "on")

	return "file:" + path + "?" + params.Encode()
}

// OpenSQLite opens the database file at path and pings it once.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", SQLiteDSN(path))
	if err != nil {
		return nil, err
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}
