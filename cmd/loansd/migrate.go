package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes of the SQL record store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := prepareCommand(cmd)
			if err != nil {
				return err
			}

			opened, err := openStore(cmd.Context(), env.store, env.logger)
			if err != nil {
				return err
			}
			defer opened.close()

			if err = opened.migrate(cmd.Context()); err != nil {
				return err
			}

			env.logger.Info("schema is up to date", "store", env.store.Kind)

			return nil
		},
	}
}
