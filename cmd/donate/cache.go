package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the reference-data cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached key under the configured prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.cache.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			if deleted == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No keys found to delete")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d keys\n", deleted)
			return nil
		},
	})
	return cmd
}
