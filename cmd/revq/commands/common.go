package commands

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/build"
	"github.com/roasbeef/revq/internal/config"
	"github.com/roasbeef/revq/internal/db"
	"github.com/roasbeef/revq/internal/githubapi"
	"github.com/roasbeef/revq/internal/llm"
	"github.com/roasbeef/revq/internal/pipeline"
	"github.com/roasbeef/revq/internal/review"
	"github.com/roasbeef/revq/internal/sequencer"
	"github.com/roasbeef/revq/internal/store"
)

// loadConfig loads the config file and applies the global flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	return cfg, nil
}

// setupLogging builds the log manager and hands a subsystem logger to
// every package. The returned manager must be closed.
func setupLogging(cfg *config.Config) (*build.LogManager, error) {
	logCfg := &build.LogConfig{Level: cfg.Log.Level}
	if cfg.Log.Dir != "" {
		rotator := build.DefaultLogRotatorConfig()
		rotator.LogDir = cfg.Log.Dir
		logCfg.Rotator = rotator
	}

	mgr, err := build.NewLogManager(logCfg)
	if err != nil {
		return nil, err
	}

	review.UseLogger(mgr.Subsystem(review.Subsystem))
	llm.UseLogger(mgr.Subsystem(llm.Subsystem))
	githubapi.UseLogger(mgr.Subsystem(githubapi.Subsystem))
	actions.UseLogger(mgr.Subsystem(actions.Subsystem))
	sequencer.UseLogger(mgr.Subsystem(sequencer.Subsystem))
	db.UseLogger(mgr.Subsystem(db.Subsystem))
	store.UseLogger(mgr.Subsystem(store.Subsystem))
	pipeline.UseLogger(mgr.Subsystem(pipeline.Subsystem))

	return mgr, nil
}

// openStore opens the database, applies any pending migrations, and
// returns the store. The caller closes the returned handle.
func openStore(cfg *config.Config) (*store.SQLStore, *sql.DB, error) {
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open database: %w",
			err)
	}

	return store.NewSQLStore(sqlDB), sqlDB, nil
}

// newPipeline wires the model client, hosting client, and store into a
// pipeline per the config.
func newPipeline(cfg *config.Config,
	st store.Storage) (*pipeline.Pipeline, error) {

	client, err := llm.NewAnthropicClient(llm.AnthropicConfig{
		APIKey:  cfg.LLM.ResolveAPIKey(),
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	api, err := githubapi.NewClient(githubapi.Config{
		Owner: cfg.GitHub.Owner,
		Repo:  cfg.GitHub.Repo,
		Token: cfg.GitHub.ResolveToken(),
	})
	if err != nil {
		return nil, err
	}

	threshold, err := review.ParseApprovalThreshold(
		cfg.Review.ApprovalThreshold,
	)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Config{
		LLM:          client,
		API:          api,
		Store:        st,
		Repo:         cfg.GitHub.Owner + "/" + cfg.GitHub.Repo,
		Language:     cfg.Review.Language,
		Threshold:    threshold,
		StrategyName: cfg.Review.Strategy,
		MaxTurns:     cfg.Review.MaxTurns,
		Specialists:  cfg.Review.Specialists,
	})
}

// formatRun formats one run for text output.
func formatRun(run store.ReviewRun) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s  %s#%d", run.ID, run.Repo,
		run.PRNumber))
	if run.CompletedAt.IsZero() {
		sb.WriteString("  (in flight)")
	} else {
		sb.WriteString("  " + run.CompletedAt.Format(
			"2006-01-02 15:04:05"))
	}
	sb.WriteString("\n")

	if run.Summary != "" {
		sb.WriteString("  " + firstLine(run.Summary) + "\n")
	}

	return sb.String()
}

// formatIssue formats one finding for text output.
func formatIssue(issue review.Issue) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n",
		strings.ToUpper(string(issue.Severity)), issue.Title))

	if !issue.Unlocated() {
		if issue.StartLine == issue.EndLine {
			sb.WriteString(fmt.Sprintf("  %s:%d\n",
				issue.FilePath, issue.StartLine))
		} else {
			sb.WriteString(fmt.Sprintf("  %s:%d-%d\n",
				issue.FilePath, issue.StartLine,
				issue.EndLine))
		}
	}

	if issue.Description != "" {
		sb.WriteString("  " + firstLine(issue.Description) + "\n")
	}

	return sb.String()
}

// formatOutcome formats a run outcome for text output.
func formatOutcome(outcome *pipeline.Outcome) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run %s\n", outcome.RunID))
	sb.WriteString(strings.Repeat("-", 40) + "\n")

	for _, issue := range outcome.Issues {
		sb.WriteString(formatIssue(issue))
	}

	sb.WriteString(fmt.Sprintf("\nActions posted: %d\n",
		outcome.Result.TotalActionsPosted()))
	if !outcome.Result.Success {
		sb.WriteString(fmt.Sprintf("Posting error: %s\n",
			outcome.Result.Error))
	}

	outcome.Decision.WhenSome(func(d review.ApprovalDecision) {
		verdict := "request changes"
		if d.ShouldApprove {
			verdict = "approve"
		}
		sb.WriteString(fmt.Sprintf("Decision: %s\n", verdict))
	})

	return sb.String()
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}

	return s
}

// outputJSON outputs data as indented JSON.
func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	return nil
}
