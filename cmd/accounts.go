package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Show pool account states and quarantine flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svc.logger.Sync() }()

			statuses := svc.pool.Status(cmd.Context())

			if asJSON {
				return writeJSON(cmd, statuses)
			}

			rendered, err := app.statusRenderer(statuses)
			if err != nil {
				return fmt.Errorf("render account statuses: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
