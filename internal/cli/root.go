package cli

import (
	"github.com/spf13/cobra"

	"github.com/joonhok/cafeloop/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "cafeloop",
	Short:   "Resumable comment runner for cafe communities",
	Long:    `Cafeloop posts a queued list of comments against cafe articles, pacing writes under a configured rate ceiling and resuming cleanly after interruption without double-posting.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
