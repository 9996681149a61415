package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// commandEnv is what every subcommand starts from.
type commandEnv struct {
	viper  *viper.Viper
	logger *slog.Logger
	store  storeConfig
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loansd",
		Short:         "loansd runs the library loans service",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,
	}

	addGlobalFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newCreateAdminCommand(),
	)

	return cmd
}

func prepareCommand(cmd *cobra.Command) (commandEnv, error) {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return commandEnv{}, err
	}

	logger, err := newLogger(v)
	if err != nil {
		return commandEnv{}, err
	}

	store, err := bindStoreConfig(v)
	if err != nil {
		return commandEnv{}, err
	}

	logger = logger.With("app", "loansd", "command", cmd.Name())
	if path := v.ConfigFileUsed(); path != "" {
		logger.Info("loaded config file", "path", path)
	}

	return commandEnv{viper: v, logger: logger, store: store}, nil
}
