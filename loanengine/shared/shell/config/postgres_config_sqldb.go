package config

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq" // postgres driver
)

// OpenPostgresSQLDB opens a *sql.DB on the lib/pq driver, applies settings and pings it once.
func OpenPostgresSQLDB(ctx context.Context, dsn string, settings PoolSettings) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	applyPoolSettings(db, settings)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

func applyPoolSettings(db *sql.DB, settings PoolSettings) {
	db.SetMaxOpenConns(int(settings.MaxConns))
	db.SetMaxIdleConns(int(settings.MinConns))
	db.SetConnMaxLifetime(settings.MaxConnLifetime)
	db.SetConnMaxIdleTime(settings.MaxConnIdleTime)
}
