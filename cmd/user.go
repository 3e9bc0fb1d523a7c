package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvasern/roost/internal/application"
)

func newUserCmd(app *app) *cobra.Command {
	var forceUpdate bool
	var skipTweets bool
	var account string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Fetch a user's profile and recent timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svc.logger.Sync() }()

			query := application.UserQuery{
				Username:    args[0],
				ForceUpdate: forceUpdate,
				SkipTweets:  skipTweets,
				Preferred:   preferredRef(account),
			}

			var result application.UserDataResult
			run := func(ctx context.Context) error {
				var err error
				result, err = svc.fetch.FetchUserData(ctx, query)
				return err
			}

			if err := runWithSpinner(cmd, asJSON, "Fetching user data...", run); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if result.UserNotFound {
				fmt.Fprintf(out, "user %q not found\n", args[0])
				return nil
			}

			if p := result.UserInfo; p != nil {
				fmt.Fprintf(out, "@%s (%s)\n", p.Username, p.Name)
				fmt.Fprintf(out, "followers: %d, following: %d, posts: %d, verified: %t\n",
					p.FollowersCount, p.FollowingCount, p.TweetsCount, p.Verified)
				if p.Biography != "" {
					fmt.Fprintf(out, "bio: %s\n", p.Biography)
				}
			}

			if len(result.Tweets) > 0 {
				fmt.Fprintf(out, "recent posts (%d):\n", len(result.Tweets))
				for _, tweet := range result.Tweets {
					fmt.Fprintln(out, formatTweetLine(tweet))
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&forceUpdate, "force", false, "Bypass the cache and fetch live")
	cmd.Flags().BoolVar(&skipTweets, "skip-tweets", false, "Fetch the profile only")
	cmd.Flags().StringVar(&account, "account", "", "Prefer a specific pool account by name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
