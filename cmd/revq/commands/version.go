package commands

import (
	"fmt"

	"github.com/roasbeef/revq/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the version and commit hash for revq.`,
	Run:   runVersion,
}

// runVersion prints the version and build information.
func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("revq version %s", build.Version())

	if build.Commit != "" {
		fmt.Printf(" commit=%s", build.Commit)
	}

	fmt.Println()
}
