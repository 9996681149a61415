package config

import (
	"os"
	"strings"
)

const (
	envPostgresDSN = "LOANS_TEST_POSTGRES_DSN"
	envAdapterType = "ADAPTER_TYPE"
)

// PostgresTestDSN returns the DSN of the PostgreSQL test database, or "" if none is configured.
func PostgresTestDSN() string {
	return os.Getenv(envPostgresDSN)
}

// AdapterType returns the PostgreSQL adapter the tests should use: "pgx.pool" (default), "sql.db" or "sqlx.db".
func AdapterType() string {
	return strings.ToLower(os.Getenv(envAdapterType))
}
