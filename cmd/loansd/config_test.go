package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func Test_BindStoreConfig(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectedErr error
		expected    storeConfig
	}{
		{
			name:     "defaults to sqlite",
			expected: storeConfig{Kind: storeSQLite, Adapter: adapterPGXPool, SQLitePath: "loans.db"},
		},
		{
			name: "postgres with sqlx adapter",
			args: []string{"--store", "Postgres", "--adapter", "sqlx.db", "--dsn", " postgres://loans@localhost/loans "},
			expected: storeConfig{
				Kind: storePostgres, Adapter: adapterSQLXDB, DSN: "postgres://loans@localhost/loans", SQLitePath: "loans.db",
			},
		},
		{
			name:        "postgres needs a dsn",
			args:        []string{"--store", "postgres"},
			expectedErr: errMissingDSN,
		},
		{
			name:        "unknown adapter",
			args:        []string{"--store", "postgres", "--dsn", "postgres://x", "--adapter", "gorm"},
			expectedErr: errUnknownAdapter,
		},
		{
			name:        "unknown store",
			args:        []string{"--store", "redis"},
			expectedErr: errUnknownStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			flags := givenGlobalFlags(t, tc.args...)

			v, err := newViper(flags)
			require.NoError(t, err)

			// act
			cfg, err := bindStoreConfig(v)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func Test_NewViper_PrecedenceOfFlagsEnvironmentAndFile(t *testing.T) {
	// arrange
	configFile := filepath.Join(t.TempDir(), "loansd.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("store: postgres\ndsn: postgres://from-file\nlog-level: debug\n"), 0o600))

	t.Setenv("LOANS_DSN", "postgres://from-env")
	t.Setenv("LOANS_SQLITE_PATH", "/var/lib/loans/env.db")

	flags := givenGlobalFlags(t, "--config", configFile, "--sqlite-path", "flag.db")

	// act
	v, err := newViper(flags)
	require.NoError(t, err)
	cfg, err := bindStoreConfig(v)

	// assert
	require.NoError(t, err)
	assert.Equal(t, storePostgres, cfg.Kind, "file beats flag default")
	assert.Equal(t, "postgres://from-env", cfg.DSN, "environment beats file")
	assert.Equal(t, "flag.db", cfg.SQLitePath, "explicit flag beats environment")
	assert.Equal(t, "debug", v.GetString(keyLogLevel))
}

func Test_NewViper_FailsOnMissingConfigFile(t *testing.T) {
	flags := givenGlobalFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := newViper(flags)

	assert.Error(t, err)
}

func Test_BindServeConfig(t *testing.T) {
	t.Run("requires a token secret", func(t *testing.T) {
		// arrange
		v, err := newViper(givenServeFlags(t))
		require.NoError(t, err)

		// act
		_, err = bindServeConfig(v)

		// assert
		assert.ErrorIs(t, err, errMissingSecret)
	})

	t.Run("reads durations and rate limits", func(t *testing.T) {
		// arrange
		t.Setenv("LOANS_TOKEN_SECRET", "s3cret")
		flags := givenServeFlags(t, "--token-ttl", "2h", "--rate-limit", "2.5", "--rate-burst", "7", "--listen", "127.0.0.1:9000")

		v, err := newViper(flags)
		require.NoError(t, err)

		// act
		cfg, err := bindServeConfig(v)

		// assert
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.TokenSecret)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
		assert.Equal(t, rate.Limit(2.5), cfg.RateLimit)
		assert.Equal(t, 7, cfg.RateBurst)
		assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
		assert.Empty(t, cfg.MetricsListen)
	})
}

func Test_NewLogger(t *testing.T) {
	t.Run("json at warn level", func(t *testing.T) {
		v, err := newViper(givenGlobalFlags(t, "--log-format", "JSON", "--log-level", "warn"))
		require.NoError(t, err)

		logger, err := newLogger(v)

		require.NoError(t, err)
		assert.False(t, logger.Enabled(context.Background(), -4))
		assert.True(t, logger.Enabled(context.Background(), 4))
	})

	t.Run("unknown format", func(t *testing.T) {
		v, err := newViper(givenGlobalFlags(t, "--log-format", "xml"))
		require.NoError(t, err)

		_, err = newLogger(v)

		assert.ErrorIs(t, err, errUnknownLogFormat)
	})

	t.Run("unknown level", func(t *testing.T) {
		v, err := newViper(givenGlobalFlags(t, "--log-level", "loud"))
		require.NoError(t, err)

		_, err = newLogger(v)

		assert.Error(t, err)
	})
}

func Test_ReadPasswordLine(t *testing.T) {
	testCases := map[string]string{
		"hunter2\n":       "hunter2",
		"hunter2\r\n":     "hunter2",
		"no newline":      "no newline",
		"first\nsecond\n": "first",
		"":                "",
	}

	for input, expected := range testCases {
		password, err := readPasswordLine(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, expected, password)
	}
}

func givenGlobalFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("loansd", pflag.ContinueOnError)
	addGlobalFlags(flags)
	require.NoError(t, flags.Parse(args))

	return flags
}

func givenServeFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	addGlobalFlags(flags)
	addServeFlags(flags)
	require.NoError(t, flags.Parse(args))

	return flags
}
