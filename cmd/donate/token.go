package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect the payment API access token",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Force a refresh of the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := a.tokens().ForceRefresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed, expires %s\n", token.Expiry.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	})
	return cmd
}
