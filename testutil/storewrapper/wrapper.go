package storewrapper

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell/config"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	"github.com/AntonStoeckl/library-loans-go/recordstore/memoryengine"
	"github.com/AntonStoeckl/library-loans-go/recordstore/sqlengine"
	testconfig "github.com/AntonStoeckl/library-loans-go/testutil/config"
)

// Engine names used as subtest names.
const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper abstracts over the different record store engines.
type Wrapper interface {
	Store() recordstore.Store
	Close()
}

// MemoryWrapper wraps the in-memory engine.
type MemoryWrapper struct {
	store *memoryengine.Store
}

func (w *MemoryWrapper) Store() recordstore.Store { return w.store }

func (w *MemoryWrapper) Close() {}

// SQLWrapper wraps the SQL engine together with the connection it owns.
type SQLWrapper struct {
	store   *sqlengine.RecordStore
	closeFn func()
}

func (w *SQLWrapper) Store() recordstore.Store { return w.store }

// RecordStore exposes the concrete store, e.g. for Ping or Schema.
func (w *SQLWrapper) RecordStore() *sqlengine.RecordStore { return w.store }

func (w *SQLWrapper) Close() { w.closeFn() }

// CreateMemoryWrapper creates an empty in-memory store.
func CreateMemoryWrapper(_ testing.TB) Wrapper {
	return &MemoryWrapper{store: memoryengine.NewStore()}
}

// CreateSQLiteWrapper creates a migrated SQLite store in a fresh temp dir.
func CreateSQLiteWrapper(t testing.TB, options ...sqlengine.Option) *SQLWrapper {
	ctx := context.Background()

	db, err := config.OpenSQLite(ctx, filepath.Join(t.TempDir(), "loans.db"))
	require.NoError(t, err, "error opening sqlite database in test setup")

	rs, err := sqlengine.NewRecordStoreFromSQLite(db, options...)
	require.NoError(t, err, "error creating record store")
	require.NoError(t, rs.Migrate(ctx), "error migrating sqlite schema")

	return &SQLWrapper{store: rs, closeFn: func() { _ = db.Close() }}
}

// CreatePostgresWrapper creates a migrated PostgreSQL store with empty tables.
// The adapter is chosen by ADAPTER_TYPE. The test is skipped if no test database is configured.
func CreatePostgresWrapper(t testing.TB, options ...sqlengine.Option) *SQLWrapper {
	dsn := testconfig.PostgresTestDSN()
	if dsn == "" {
		t.Skip("LOANS_TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	settings := config.DefaultPoolSettings()

	var wrapper *SQLWrapper

	switch adapterType := testconfig.AdapterType(); adapterType {
	case typePGXPool, "":
		pool, err := config.OpenPostgresPGXPool(ctx, dsn, settings)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		rs, err := sqlengine.NewRecordStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating record store")

		wrapper = &SQLWrapper{store: rs, closeFn: pool.Close}

	case typeSQLDB:
		db, err := config.OpenPostgresSQLDB(ctx, dsn, settings)
		require.NoError(t, err, "error connecting to DB in test setup")

		rs, err := sqlengine.NewRecordStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating record store")

		wrapper = &SQLWrapper{store: rs, closeFn: func() { _ = db.Close() }}

	case typeSQLXDB:
		db, err := config.OpenPostgresSQLX(ctx, dsn, settings)
		require.NoError(t, err, "error connecting to DB in test setup")

		rs, err := sqlengine.NewRecordStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating record store")

		wrapper = &SQLWrapper{store: rs, closeFn: func() { _ = db.Close() }}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.store.Migrate(ctx), "error migrating postgres schema")
	truncateAll(t, dsn)

	return wrapper
}

// ForEachEngine runs fn as a subtest against every engine. PostgreSQL subtests skip without a test database.
func ForEachEngine(t *testing.T, fn func(t *testing.T, wrapper Wrapper)) {
	engines := []struct {
		name   string
		create func(t testing.TB) Wrapper
	}{
		{name: EngineMemory, create: CreateMemoryWrapper},
		{name: EngineSQLite, create: func(t testing.TB) Wrapper { return CreateSQLiteWrapper(t) }},
		{name: EnginePostgres, create: func(t testing.TB) Wrapper { return CreatePostgresWrapper(t) }},
	}

	for _, engine := range engines {
		t.Run(engine.name, func(t *testing.T) {
			wrapper := engine.create(t)
			defer wrapper.Close()

			fn(t, wrapper)
		})
	}
}

// truncateAll empties the default tables through a short-lived database/sql connection.
func truncateAll(t testing.TB, dsn string) {
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "error connecting for cleanup")
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(context.Background(), "TRUNCATE TABLE loans, books, users")
	require.NoError(t, err, "error cleaning up the tables")
}

// ForEachSQLEngine runs fn as a subtest against SQLite and PostgreSQL.
func ForEachSQLEngine(t *testing.T, fn func(t *testing.T, wrapper *SQLWrapper), options ...sqlengine.Option) {
	engines := []struct {
		name   string
		create func(t testing.TB, options ...sqlengine.Option) *SQLWrapper
	}{
		{name: EngineSQLite, create: CreateSQLiteWrapper},
		{name: EnginePostgres, create: CreatePostgresWrapper},
	}

	for _, engine := range engines {
		t.Run(engine.name, func(t *testing.T) {
			wrapper := engine.create(t, options...)
			defer wrapper.Close()

			fn(t, wrapper)
		})
	}
}
