package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell/config"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	"github.com/AntonStoeckl/library-loans-go/recordstore/memoryengine"
	"github.com/AntonStoeckl/library-loans-go/recordstore/sqlengine"
)

// openedStore is a record store together with what is needed to migrate and close it.
// sql is nil for the memory store.
type openedStore struct {
	store recordstore.Store
	sql   *sqlengine.RecordStore
	close func()
}

func (s openedStore) migrate(ctx context.Context) error {
	if s.sql == nil {
		return nil
	}

	return s.sql.Migrate(ctx)
}

func openStore(ctx context.Context, cfg storeConfig, logger *slog.Logger, options ...sqlengine.Option) (openedStore, error) {
	options = append([]sqlengine.Option{sqlengine.WithLogger(logger)}, options...)

	switch cfg.Kind {
	case storeMemory:
		logger.Warn("using the memory store, all data is lost on exit")

		return openedStore{store: memoryengine.NewStore(), close: func() {}}, nil

	case storeSQLite:
		db, err := config.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return openedStore{}, err
		}

		rs, err := sqlengine.NewRecordStoreFromSQLite(db, options...)
		if err != nil {
			_ = db.Close()
			return openedStore{}, err
		}

		return openedStore{store: rs, sql: rs, close: func() { _ = db.Close() }}, nil

	default:
		return openPostgresStore(ctx, cfg, options...)
	}
}

func openPostgresStore(ctx context.Context, cfg storeConfig, options ...sqlengine.Option) (openedStore, error) {
	settings := config.DefaultPoolSettings()

	switch cfg.Adapter {
	case adapterSQLDB:
		db, err := config.OpenPostgresSQLDB(ctx, cfg.DSN, settings)
		if err != nil {
			return openedStore{}, err
		}

		rs, err := sqlengine.NewRecordStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return openedStore{}, err
		}

		return openedStore{store: rs, sql: rs, close: func() { _ = db.Close() }}, nil

	case adapterSQLXDB:
		db, err := config.OpenPostgresSQLX(ctx, cfg.DSN, settings)
		if err != nil {
			return openedStore{}, err
		}

		rs, err := sqlengine.NewRecordStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return openedStore{}, err
		}

		return openedStore{store: rs, sql: rs, close: func() { _ = db.Close() }}, nil

	default:
		primary, err := config.OpenPostgresPGXPool(ctx, cfg.DSN, settings)
		if err != nil {
			return openedStore{}, err
		}

		if cfg.ReplicaDSN == "" {
			rs, rsErr := sqlengine.NewRecordStoreFromPGXPool(primary, options...)
			if rsErr != nil {
				primary.Close()
				return openedStore{}, rsErr
			}

			return openedStore{store: rs, sql: rs, close: primary.Close}, nil
		}

		replica, err := config.OpenPostgresPGXPool(ctx, cfg.ReplicaDSN, settings)
		if err != nil {
			primary.Close()
			return openedStore{}, err
		}

		rs, err := sqlengine.NewRecordStoreFromPGXPoolAndReplica(primary, replica, options...)
		if err != nil {
			closePools(primary, replica)
			return openedStore{}, err
		}

		return openedStore{store: rs, sql: rs, close: func() { closePools(primary, replica) }}, nil
	}
}

func closePools(pools ...*pgxpool.Pool) {
	for _, pool := range pools {
		pool.Close()
	}
}
