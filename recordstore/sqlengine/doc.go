// Package sqlengine implements recordstore.Store on PostgreSQL and SQLite.
//
// Statements are built with goqu for the store's dialect and run through one of the adapters in
// internal/adapters: pgx.Pool, database/sql or sqlx for PostgreSQL, and database/sql with mattn/go-sqlite3 for SQLite.
//
// Concurrent checkouts and returns are made safe by guarded writes. DecrementAvailableCopies only matches an
// active book with a copy left, CloseLoan only matches an open loan, and a partial unique index allows one open
// loan per user and book. A guarded write that matches no row returns recordstore.ErrConcurrencyConflict, and
// a violated unique constraint returns recordstore.ErrUniqueViolation. Serialization failures and deadlocks
// (PostgreSQL) as well as busy or locked databases (SQLite) are reported as recordstore.ErrConcurrencyConflict.
//
// Observability is optional and configured with WithLogger, WithContextualLogger, WithMetrics and WithTracing.
package sqlengine
