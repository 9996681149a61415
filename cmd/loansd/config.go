package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/internal/httpapi"
)

const envPrefix = "LOANS"

const (
	keyConfig          = "config"
	keyStore           = "store"
	keyAdapter         = "adapter"
	keyDSN             = "dsn"
	keyReplicaDSN      = "replica-dsn"
	keySQLitePath      = "sqlite-path"
	keyLogLevel        = "log-level"
	keyLogFormat       = "log-format"
	keyListen          = "listen"
	keyTokenSecret     = "token-secret"
	keyTokenTTL        = "token-ttl"
	keyRateLimit       = "rate-limit"
	keyRateBurst       = "rate-burst"
	keyMetricsListen   = "metrics-listen"
	keyOTLPEndpoint    = "otlp-endpoint"
	keyShutdownTimeout = "shutdown-timeout"
)

const (
	storeMemory   = "memory"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"

	adapterPGXPool = "pgx.pool"
	adapterSQLDB   = "sql.db"
	adapterSQLXDB  = "sqlx.db"
)

var (
	errUnknownStore     = errors.New("unknown store")
	errUnknownAdapter   = errors.New("unknown postgres adapter")
	errMissingDSN       = errors.New("postgres store needs a dsn")
	errMissingSecret    = errors.New("token secret must be set")
	errUnknownLogFormat = errors.New("unknown log format")
)

// storeConfig selects and locates the record store. All commands share it.
type storeConfig struct {
	Kind       string
	Adapter    string
	DSN        string
	ReplicaDSN string
	SQLitePath string
}

// serveConfig holds the settings only serve needs.
type serveConfig struct {
	Listen          string
	TokenSecret     string
	TokenTTL        time.Duration
	RateLimit       rate.Limit
	RateBurst       int
	MetricsListen   string
	OTLPEndpoint    string
	ShutdownTimeout time.Duration
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP(keyConfig, "c", "", "path to a YAML, TOML or JSON config file")
	flags.String(keyStore, storeSQLite, "record store (memory, sqlite, postgres)")
	flags.String(keyAdapter, adapterPGXPool, "postgres adapter (pgx.pool, sql.db, sqlx.db)")
	flags.String(keyDSN, "", "postgres connection string")
	flags.String(keyReplicaDSN, "", "optional postgres read replica, used for queries by the pgx.pool adapter")
	flags.String(keySQLitePath, "loans.db", "sqlite database file")
	flags.String(keyLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(keyLogFormat, "text", "log format (text, json)")
}

func addServeFlags(flags *pflag.FlagSet) {
	flags.String(keyListen, ":8080", "API listen address")
	flags.String(keyTokenSecret, "", "secret that signs bearer tokens")
	flags.Duration(keyTokenTTL, accessgate.DefaultTokenTTL, "lifetime of issued bearer tokens")
	flags.Float64(keyRateLimit, float64(httpapi.DefaultRateLimit), "requests per second per client IP")
	flags.Int(keyRateBurst, httpapi.DefaultRateBurst, "request burst per client IP")
	flags.String(keyMetricsListen, "", "Prometheus scrape listen address (empty disables)")
	flags.String(keyOTLPEndpoint, "", "OTLP gRPC endpoint for traces and metrics (empty disables)")
	flags.Duration(keyShutdownTimeout, httpapi.DefaultShutdownTimeout, "time allowed for in-flight requests on shutdown")
}

// newViper binds the parsed flags, the LOANS_ environment and the optional config file, in that order of precedence.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if path := strings.TrimSpace(v.GetString(keyConfig)); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	return v, nil
}

func bindStoreConfig(v *viper.Viper) (storeConfig, error) {
	cfg := storeConfig{
		Kind:       strings.ToLower(strings.TrimSpace(v.GetString(keyStore))),
		Adapter:    strings.ToLower(strings.TrimSpace(v.GetString(keyAdapter))),
		DSN:        strings.TrimSpace(v.GetString(keyDSN)),
		ReplicaDSN: strings.TrimSpace(v.GetString(keyReplicaDSN)),
		SQLitePath: strings.TrimSpace(v.GetString(keySQLitePath)),
	}

	switch cfg.Kind {
	case storeMemory, storeSQLite:
	case storePostgres:
		if cfg.DSN == "" {
			return storeConfig{}, errMissingDSN
		}

		switch cfg.Adapter {
		case adapterPGXPool, adapterSQLDB, adapterSQLXDB:
		default:
			return storeConfig{}, errors.Join(errUnknownAdapter, errors.New(cfg.Adapter))
		}
	default:
		return storeConfig{}, errors.Join(errUnknownStore, errors.New(cfg.Kind))
	}

	return cfg, nil
}

func bindServeConfig(v *viper.Viper) (serveConfig, error) {
	cfg := serveConfig{
		Listen:          strings.TrimSpace(v.GetString(keyListen)),
		TokenSecret:     v.GetString(keyTokenSecret),
		TokenTTL:        v.GetDuration(keyTokenTTL),
		RateLimit:       rate.Limit(v.GetFloat64(keyRateLimit)),
		RateBurst:       v.GetInt(keyRateBurst),
		MetricsListen:   strings.TrimSpace(v.GetString(keyMetricsListen)),
		OTLPEndpoint:    strings.TrimSpace(v.GetString(keyOTLPEndpoint)),
		ShutdownTimeout: v.GetDuration(keyShutdownTimeout),
	}

	if cfg.TokenSecret == "" {
		return serveConfig{}, errMissingSecret
	}

	return cfg, nil
}

func newLogger(v *viper.Viper) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: level}

	switch format := strings.ToLower(v.GetString(keyLogFormat)); format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, options)), nil
	default:
		return nil, errors.Join(errUnknownLogFormat, errors.New(format))
	}
}
