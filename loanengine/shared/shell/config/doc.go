// Package config provides connection factories for the record store backends and the OpenTelemetry setup.
//
// PostgreSQL can be reached through pgx.Pool, database/sql with lib/pq, or sqlx.
// SQLite uses mattn/go-sqlite3 with immediate transactions so concurrent writers serialize instead of deadlocking.
package config
