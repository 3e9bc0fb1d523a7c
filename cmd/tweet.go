package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvasern/roost/internal/application"
)

func newTweetCmd(app *app) *cobra.Command {
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tweet <id>",
		Short: "Fetch a single post and its author's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svc.logger.Sync() }()

			query := application.TweetQuery{
				ID:        args[0],
				Preferred: preferredRef(account),
			}

			var result application.TweetFetchResult
			run := func(ctx context.Context) error {
				var err error
				result, err = svc.fetch.FetchSingleTweet(ctx, query)
				return err
			}

			if err := runWithSpinner(cmd, asJSON, "Fetching post...", run); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if result.NotFound {
				fmt.Fprintf(out, "post %q not found\n", args[0])
				return nil
			}

			for _, tweet := range result.Items {
				fmt.Fprintln(out, formatTweetLine(tweet))
			}
			if a := result.Author; a != nil {
				fmt.Fprintf(out, "author: @%s (%s), followers: %d\n", a.Username, a.Name, a.FollowersCount)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Prefer a specific pool account by name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
