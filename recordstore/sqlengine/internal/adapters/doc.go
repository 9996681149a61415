// Package adapters provides database adapter implementations for the SQL record store.
//
// The adapters hide the differences between pgxpool.Pool, sql.DB and sqlx.DB behind the
// DBAdapter interface, so the record store can run its statements and transactions on any
// of them. The sql.DB adapter also serves SQLite through github.com/mattn/go-sqlite3.
package adapters
