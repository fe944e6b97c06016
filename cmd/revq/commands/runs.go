package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runsLimit bounds the number of runs listed.
var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent review runs",
	Long:  `List the most recent review runs, newest first.`,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(
		&runsLimit, "limit", 20, "Maximum number of runs to list",
	)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logMgr, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer logMgr.Close()

	st, sqlDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	runs, err := st.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return outputJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Print(formatRun(run))
	}

	return nil
}
