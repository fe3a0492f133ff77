package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sceneauthd",
	Short: "sceneauthd issues and rotates scene session cookies",
	Long: `A reference HTTP daemon for sceneauth. Each scene gets its own
{scene}_token cookie backed by a Redis refresh record.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
