package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kvasern/roost/internal/application"
	"github.com/kvasern/roost/internal/domain"
)

func newSearchCmd(app *app) *cobra.Command {
	var forceUpdate bool
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recent posts matching a keyword query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svc.logger.Sync() }()

			query := application.SearchQuery{
				Query:       args[0],
				ForceUpdate: forceUpdate,
				Preferred:   preferredRef(account),
			}

			var result application.SearchResult
			run := func(ctx context.Context) error {
				var err error
				result, err = svc.fetch.SearchByQuery(ctx, query)
				return err
			}

			if err := runWithSpinner(cmd, asJSON, "Searching posts...", run); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "query %q: %d posts", result.Query, len(result.Items))
			if result.FromCache {
				fmt.Fprint(out, " (cached)")
			}
			fmt.Fprintln(out)
			for _, tweet := range result.Items {
				fmt.Fprintln(out, formatTweetLine(tweet))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&forceUpdate, "force", false, "Bypass the cache and fetch live")
	cmd.Flags().StringVar(&account, "account", "", "Prefer a specific pool account by name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func preferredRef(account string) domain.IdentityRef {
	if account == "" {
		return domain.IdentityRef{}
	}
	return domain.RefByName(domain.IdentityName(account))
}

func runWithSpinner(cmd *cobra.Command, asJSON bool, label string, run func(context.Context) error) error {
	if asJSON {
		return run(cmd.Context())
	}
	return runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, run)
}

func writeJSON(cmd *cobra.Command, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}

func formatTweetLine(tweet domain.Tweet) string {
	text := strings.Join(strings.Fields(tweet.Text), " ")
	if len(text) > 120 {
		text = text[:117] + "..."
	}

	return fmt.Sprintf("- @%s [%d likes, %d reposts]: %s", tweet.Username, tweet.Likes, tweet.Retweets, text)
}
