package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-loans-go/loanengine"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

func Test_Seed_WritesDemoDataOnce(t *testing.T) {
	for _, cfg := range givenStoreConfigs(t) {
		t.Run(cfg.Kind, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			engine := givenEngine(t, cfg)
			now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

			// act
			require.NoError(t, seed(ctx, engine, discardLogger(), now))
			require.NoError(t, seed(ctx, engine, discardLogger(), now), "seeding twice is a no-op")

			// assert
			books, err := engine.ListBooks(ctx, recordstore.AdminView)
			require.NoError(t, err)
			assert.Equal(t, len(seedBooks), books.Count)

			catalog, err := engine.ListBooks(ctx, recordstore.MemberView)
			require.NoError(t, err)
			assert.Equal(t, len(seedBooks)-1, catalog.Count, "the withdrawn book is hidden from members")

			for _, book := range books.Books {
				switch book.Title {
				case "Libro descatalogado":
					assert.False(t, book.Active)
					assert.Equal(t, 0, book.AvailableCopies)
				case "El Quijote":
					assert.Equal(t, 4, book.AvailableCopies)
				case "Cien años de soledad":
					assert.Equal(t, 3, book.AvailableCopies, "the returned copy is back on the shelf")
				}
			}

			loans, err := engine.ListLoans(ctx, recordstore.AdminView)
			require.NoError(t, err)
			assert.Equal(t, 3, loans.Count)

			openLoans, err := engine.ListOpenLoans(ctx, recordstore.AdminView)
			require.NoError(t, err)
			assert.Equal(t, 2, openLoans.Count)
		})
	}
}

func Test_OpenStore_MigratesSQLite(t *testing.T) {
	// arrange
	ctx := context.Background()
	cfg := storeConfig{Kind: storeSQLite, SQLitePath: filepath.Join(t.TempDir(), "loans.db")}

	// act
	opened, err := openStore(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer opened.close()

	// assert
	require.NotNil(t, opened.sql)
	require.NoError(t, opened.migrate(ctx))
	require.NoError(t, opened.migrate(ctx), "migrations are idempotent")
}

func Test_RootCommand_MigrateAndSeed(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "loans.db")

	// act
	migrateErr := executeRootCommand(t, "migrate", "--sqlite-path", path, "--log-level", "error")
	seedErr := executeRootCommand(t, "seed", "--sqlite-path", path, "--log-level", "error")

	// assert
	require.NoError(t, migrateErr)
	require.NoError(t, seedErr)

	engine := givenEngine(t, storeConfig{Kind: storeSQLite, SQLitePath: path})
	books, err := engine.ListBooks(context.Background(), recordstore.AdminView)
	require.NoError(t, err)
	assert.Equal(t, len(seedBooks), books.Count)
}

func Test_RootCommand_RejectsUnknownStore(t *testing.T) {
	err := executeRootCommand(t, "migrate", "--store", "etcd")

	assert.ErrorIs(t, err, errUnknownStore)
}

func Test_RootCommand_CreateAdminNeedsNameAndEmail(t *testing.T) {
	err := executeRootCommand(t, "create-admin", "--store", "memory", "--name", "Root")

	assert.ErrorIs(t, err, errMissingAdminFlags)
}

func executeRootCommand(t *testing.T, args ...string) error {
	t.Helper()

	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	return cmd.ExecuteContext(context.Background())
}

func givenStoreConfigs(t *testing.T) []storeConfig {
	t.Helper()

	return []storeConfig{
		{Kind: storeMemory},
		{Kind: storeSQLite, SQLitePath: filepath.Join(t.TempDir(), "loans.db")},
	}
}

func givenEngine(t *testing.T, cfg storeConfig) *loanengine.Engine {
	t.Helper()

	ctx := context.Background()

	opened, err := openStore(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(opened.close)
	require.NoError(t, opened.migrate(ctx))

	engine, err := loanengine.New(opened.store)
	require.NoError(t, err)

	return engine
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
