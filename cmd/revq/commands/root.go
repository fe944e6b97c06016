package commands

import (
	"github.com/spf13/cobra"
)

var (
	// configPath is the config file path, empty for the default
	// location.
	configPath string

	// dbPathFlag overrides the database path from the config.
	dbPathFlag string

	// logLevel overrides the log level from the config.
	logLevel string

	// outputFormat controls output format (text, json).
	outputFormat string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "revq",
	Short: "Automated pull request review",
	Long: `revq reviews pull requests with an LLM, extracts structured
findings from the model's prose, and posts them back to the hosting
platform as line comments, summaries, and approval actions.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"Path to config file (default: revq.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPathFlag, "db", "",
		"Path to SQLite database (overrides config)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "loglevel", "",
		"Log level: trace, debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "text",
		"Output format: text, json",
	)

	// Add subcommands.
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(versionCmd)
}
