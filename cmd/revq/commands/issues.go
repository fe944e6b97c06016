package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var issuesCmd = &cobra.Command{
	Use:   "issues <run-id>",
	Short: "Show a run's findings",
	Long: `Show the structured findings recorded for a review run, in
the order they were extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssues,
}

func runIssues(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	runID := args[0]

	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	issues, err := st.GetIssues(ctx, runID)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return outputJSON(issues)
	}

	fmt.Printf("Run %s (%s#%d)\n", run.ID, run.Repo, run.PRNumber)
	if run.Summary != "" {
		fmt.Println(run.Summary)
	}
	fmt.Println()

	if len(issues) == 0 {
		fmt.Println("No findings recorded.")
		return nil
	}
	for _, issue := range issues {
		fmt.Print(formatIssue(issue))
	}

	return nil
}
