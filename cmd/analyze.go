package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvasern/roost/internal/application"
)

func newAnalyzeCmd(app *app) *cobra.Command {
	var username string
	var forceUpdate bool
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <token-address>",
		Short: "Produce a bilingual analysis report for a crypto token",
		Long:  "analyze searches recent posts mentioning the token address, optionally pulls the linked account's profile and timeline, enriches with market data, and asks the configured LLM for an English and Chinese assessment.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svc.logger.Sync() }()

			address := args[0]

			var result application.AnalysisResult
			run := func(ctx context.Context) error {
				search, err := svc.fetch.SearchByQuery(ctx, application.SearchQuery{
					Query:       address,
					ForceUpdate: forceUpdate,
					Preferred:   preferredRef(account),
				})
				if err != nil {
					return err
				}

				analyzeCmd := application.AnalyzeCommand{
					Address:       address,
					Username:      username,
					ForceUpdate:   forceUpdate,
					SearchResults: search.Items,
				}

				if username != "" {
					userData, err := svc.fetch.FetchUserData(ctx, application.UserQuery{
						Username:    username,
						ForceUpdate: forceUpdate,
						Preferred:   preferredRef(account),
					})
					if err != nil {
						return err
					}
					if !userData.UserNotFound {
						analyzeCmd.Profile = userData.UserInfo
						analyzeCmd.UserTweets = userData.Tweets
					}
				}

				result, err = svc.analysis.Analyze(ctx, analyzeCmd)
				return err
			}

			if err := runWithSpinner(cmd, asJSON, "Analyzing token...", run); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if result.FromCache {
				fmt.Fprintln(out, "(cached report)")
			}
			if result.Report.Model != "" {
				fmt.Fprintf(out, "model: %s\n\n", result.Report.Model)
			}
			fmt.Fprintln(out, result.Report.Summary)
			if result.Report.SummaryZH != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, result.Report.SummaryZH)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Linked platform account to include in the analysis")
	cmd.Flags().BoolVar(&forceUpdate, "force", false, "Bypass cached data and regenerate the report")
	cmd.Flags().StringVar(&account, "account", "", "Prefer a specific pool account by name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
