package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundbridge/donate/internal/infrastructure/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			applied, err := database.Migrate(cmd.Context(), a.db.Db, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
			return nil
		},
	}
}
