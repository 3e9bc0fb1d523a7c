package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "roost",
		Short:         "roost: pooled social-platform fetching and token analysis",
		Long:          "roost coordinates a pool of platform accounts to run keyword searches, user lookups, and single-post fetches behind a Redis cache, and produces bilingual LLM analysis reports for crypto tokens.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSearchCmd(app),
		newUserCmd(app),
		newTweetCmd(app),
		newAnalyzeCmd(app),
		newAccountsCmd(app),
	)

	return rootCmd
}
