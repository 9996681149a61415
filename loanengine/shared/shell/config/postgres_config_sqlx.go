package config

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// OpenPostgresSQLX opens a *sqlx.DB on the lib/pq driver, applies settings and pings it once.
func OpenPostgresSQLX(ctx context.Context, dsn string, settings PoolSettings) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	applyPoolSettings(db.DB, settings)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}
