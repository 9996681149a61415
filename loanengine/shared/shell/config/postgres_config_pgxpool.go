package config

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolSettings tunes the connection pools of all PostgreSQL adapters.
type PoolSettings struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// DefaultPoolSettings are sized for a single service instance in front of one database.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxConns:          50,
		MinConns:          2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    5 * time.Second,
	}
}

// PostgresPGXPoolConfig parses dsn and applies settings.
func PostgresPGXPoolConfig(dsn string, settings PoolSettings) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = settings.MaxConns
	dbConfig.MinConns = settings.MinConns
	dbConfig.MaxConnLifetime = settings.MaxConnLifetime
	dbConfig.MaxConnIdleTime = settings.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = settings.HealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = settings.ConnectTimeout

	return dbConfig, nil
}

// OpenPostgresPGXPool creates a pool and pings it once.
func OpenPostgresPGXPool(ctx context.Context, dsn string, settings PoolSettings) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn, settings)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pingErr
	}

	return pool, nil
}
