// Package storewrapper creates record stores for tests on every engine: in memory, SQLite in a temp dir,
// and PostgreSQL when LOANS_TEST_POSTGRES_DSN is set.
package storewrapper
