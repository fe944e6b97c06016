package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	// multiAgent enables the sequencer-driven agent loop.
	multiAgent bool

	// reviewOwner and reviewRepo override the configured repository.
	reviewOwner string
	reviewRepo  string

	// specialists overrides the configured specialist fan-out.
	specialists bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <pr-number>",
	Short: "Review a pull request",
	Long: `Review the given pull request, post the findings back to the
hosting platform, and record the run in the local database.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(
		&multiAgent, "multi-agent", false,
		"Run the reviewer, summarizer, approver agent loop",
	)
	reviewCmd.Flags().BoolVar(
		&specialists, "specialists", false,
		"Fan out into concurrent security, performance, and "+
			"quality passes",
	)
	reviewCmd.Flags().StringVar(
		&reviewOwner, "owner", "", "Repository owner (overrides "+
			"config)",
	)
	reviewCmd.Flags().StringVar(
		&reviewRepo, "repo", "", "Repository name (overrides "+
			"config)",
	)
}

func runReview(cmd *cobra.Command, args []string) error {
	prNumber, err := strconv.Atoi(args[0])
	if err != nil || prNumber < 1 {
		return fmt.Errorf("invalid PR number %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reviewOwner != "" {
		cfg.GitHub.Owner = reviewOwner
	}
	if reviewRepo != "" {
		cfg.GitHub.Repo = reviewRepo
	}
	if cmd.Flags().Changed("specialists") {
		cfg.Review.Specialists = specialists
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

	p, err := newPipeline(cfg, st)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	run := p.Run
	if multiAgent {
		run = p.RunMultiAgent
	}

	outcome, err := run(ctx, prNumber)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return outputJSON(outcome)
	}
	fmt.Print(formatOutcome(outcome))

	return nil
}
