// Package pipeline orchestrates one PR-processing run: fetch the pull
// request, obtain review text from the model, extract structured issues,
// stage actions in a buffer, and execute the buffer against the hosting
// platform.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"

	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/githubapi"
	"github.com/roasbeef/revq/internal/llm"
	"github.com/roasbeef/revq/internal/review"
	"github.com/roasbeef/revq/internal/sequencer"
	"github.com/roasbeef/revq/internal/store"
)

// reviewMaxTokens caps a single reviewer pass reply.
const reviewMaxTokens = 8192

// Config assembles the pipeline's collaborators and tuning.
type Config struct {
	// LLM is the model endpoint.
	LLM llm.Client

	// API is the hosting platform.
	API githubapi.HostingAPI

	// Store persists the audit trail.
	Store store.Storage

	// Repo is the "owner/name" slug recorded with each run.
	Repo string

	// Language is the natural language for synthesized comments.
	Language string

	// Threshold gates auto-approval.
	Threshold review.ApprovalThreshold

	// StrategyName selects the sequencer strategy for multi-agent
	// runs.
	StrategyName string

	// MaxTurns bounds a multi-agent run.
	MaxTurns int

	// Specialists fans a run out into the three specialist passes.
	Specialists bool
}

// Pipeline drives review runs end to end.
type Pipeline struct {
	cfg Config

	extractor   *review.Extractor
	synthesizer *review.Synthesizer
	executor    *actions.Executor
}

// New creates a pipeline from the given collaborators.
func New(cfg Config) (*Pipeline, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("an LLM client is required")
	}
	if cfg.API == nil {
		return nil, fmt.Errorf("a hosting API is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("a storage backend is required")
	}
	if cfg.MaxTurns < 1 {
		cfg.MaxTurns = 9
	}

	return &Pipeline{
		cfg:         cfg,
		extractor:   review.NewExtractor(),
		synthesizer: review.NewSynthesizer(cfg.LLM),
		executor:    actions.NewExecutor(cfg.API),
	}, nil
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	// RunID identifies the persisted run.
	RunID string

	// Summary is the document-level review summary.
	Summary string

	// Issues are the structured findings, in extraction order.
	Issues []review.Issue

	// Decision is the approval agent's verdict, present only for
	// multi-agent runs.
	Decision fn.Option[review.ApprovalDecision]

	// Result is the buffer execution outcome.
	Result actions.Result
}

// Run performs a single-shot review of the pull request: one model pass
// (or the three concurrent specialist passes), extraction, synthesis,
// and execution. No approval action is staged; that is the multi-agent
// loop's job.
func (p *Pipeline) Run(ctx context.Context, prNumber int) (*Outcome,
	error) {

	runID, pr, diff, err := p.beginRun(ctx, prNumber)
	if err != nil {
		return nil, err
	}

	var reviewTexts []string
	if p.cfg.Specialists {
		reviewTexts, err = p.runSpecialistPasses(ctx, pr, diff)
	} else {
		var text string
		text, err = p.runReviewPass(
			ctx, review.DefaultReviewerConfig(), pr, diff,
		)
		reviewTexts = []string{text}
	}
	if err != nil {
		return nil, err
	}

	var (
		issues    []review.Issue
		summaries []string
	)
	for _, text := range reviewTexts {
		report := p.extractor.ExtractReport(text)
		issues = append(issues, report.Issues...)
		if report.Summary != "" {
			summaries = append(summaries, report.Summary)
		}
	}
	summary := strings.Join(summaries, "\n\n")

	return p.finishRun(ctx, runID, prNumber, summary, issues,
		fn.None[review.ApprovalDecision]())
}

// RunMultiAgent performs a sequencer-driven reviewer, summarizer,
// approver loop. The approval verdict is parsed from the approver's
// message and gated by the severity threshold before any approval action
// is staged.
func (p *Pipeline) RunMultiAgent(ctx context.Context,
	prNumber int) (*Outcome, error) {

	runID, pr, diff, err := p.beginRun(ctx, prNumber)
	if err != nil {
		return nil, err
	}

	strategy, err := sequencer.NewStrategy(p.cfg.StrategyName)
	if err != nil {
		return nil, err
	}

	agents := []sequencer.Agent{
		{Name: "reviewer", Role: sequencer.RoleReviewer},
		{Name: "summarizer", Role: sequencer.RoleSummarizer},
		{Name: "approver", Role: sequencer.RoleApprover},
	}

	var (
		history  []sequencer.Message
		issues   []review.Issue
		summary  string
		decision fn.Option[review.ApprovalDecision]
	)

	// The sequencer itself never halts, so the loop bounds the run:
	// MaxTurns is the hard stop and a rendered verdict ends the run
	// early.
	for turn := 0; turn < p.cfg.MaxTurns; turn++ {
		agent, err := strategy.SelectNext(agents, history)
		if err != nil {
			return nil, err
		}

		log.DebugS(ctx, "Agent turn",
			"turn", turn, "agent", agent.Name)

		var content string
		switch agent.Role {
		case sequencer.RoleReviewer:
			content, err = p.runReviewPass(
				ctx, review.DefaultReviewerConfig(), pr,
				diff,
			)
			if err != nil {
				return nil, err
			}

			report := p.extractor.ExtractReport(content)
			issues = append(issues, report.Issues...)
			if summary == "" {
				summary = report.Summary
			}

		case sequencer.RoleSummarizer:
			resp, err := p.cfg.LLM.Complete(
				ctx, llm.CompletionRequest{
					UserPrompt: review.BuildSummaryPrompt(
						ctx, issues,
					),
				},
			)
			if err != nil {
				return nil, fmt.Errorf("summarizer turn "+
					"failed: %w", err)
			}
			content = resp.Content
			summary = content

		case sequencer.RoleApprover:
			blocking := blockingIssues(
				p.cfg.Threshold, issues,
			)

			resp, err := p.cfg.LLM.Complete(
				ctx, llm.CompletionRequest{
					UserPrompt: review.BuildApprovalPrompt(
						ctx, summary, blocking,
					),
				},
			)
			if err != nil {
				return nil, fmt.Errorf("approver turn "+
					"failed: %w", err)
			}
			content = resp.Content

			parsed := review.ParseApprovalDecision(content)
			decision = fn.Some(parsed)
		}

		history = append(history, sequencer.Message{
			Agent:   agent.Name,
			Content: content,
		})

		// A rendered verdict completes the cycle.
		if decision.IsSome() {
			break
		}
	}

	return p.finishRun(ctx, runID, prNumber, summary, issues,
		decision)
}

// beginRun persists the run record and fetches the PR and its diff.
func (p *Pipeline) beginRun(ctx context.Context,
	prNumber int) (string, *githubapi.PullRequest, string, error) {

	runID := uuid.NewString()
	err := p.cfg.Store.CreateRun(ctx, store.CreateRunParams{
		ID:       runID,
		Repo:     p.cfg.Repo,
		PRNumber: prNumber,
		Strategy: p.cfg.StrategyName,
	})
	if err != nil {
		return "", nil, "", err
	}

	pr, err := p.cfg.API.GetPullRequest(ctx, prNumber)
	if err != nil {
		return "", nil, "", err
	}

	diff, err := p.cfg.API.GetPullRequestDiff(ctx, prNumber)
	if err != nil {
		return "", nil, "", err
	}

	log.InfoS(ctx, "Review run started",
		"run_id", runID, "pr", prNumber, "title", pr.Title)

	return runID, pr, diff, nil
}

// runReviewPass sends one reviewer prompt to the model.
func (p *Pipeline) runReviewPass(ctx context.Context,
	cfg *review.ReviewerConfig, pr *githubapi.PullRequest,
	diff string) (string, error) {

	resp, err := p.cfg.LLM.Complete(ctx, llm.CompletionRequest{
		UserPrompt: cfg.BuildReviewPrompt(
			ctx, pr.Title, pr.Body, diff,
		),
		MaxTokens: reviewMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s pass failed: %w", cfg.Name, err)
	}

	return resp.Content, nil
}

// runSpecialistPasses fans the review out into the three specialist
// personas. Every branch always runs to completion; the first failure is
// propagated only after all of them have been joined, so one bad pass
// never masks or starves its siblings.
func (p *Pipeline) runSpecialistPasses(ctx context.Context,
	pr *githubapi.PullRequest, diff string) ([]string, error) {

	cfgs := review.SpecializedReviewers()
	texts := make([]string, len(cfgs))

	var g errgroup.Group
	for i, cfg := range cfgs {
		g.Go(func() error {
			text, err := p.runReviewPass(ctx, cfg, pr, diff)
			if err != nil {
				return err
			}
			texts[i] = text

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return texts, nil
}

// finishRun persists the findings, stages and executes the buffer, and
// completes the run record.
func (p *Pipeline) finishRun(ctx context.Context, runID string,
	prNumber int, summary string, issues []review.Issue,
	decision fn.Option[review.ApprovalDecision]) (*Outcome, error) {

	if err := p.cfg.Store.SaveIssues(ctx, runID, issues); err != nil {
		return nil, err
	}

	buf := actions.NewBuffer()

	for _, issue := range issues {
		comment := p.synthesizer.Synthesize(
			ctx, issue, p.cfg.Language,
		)

		// Findings without a real location cannot anchor to a
		// line; they post as review-level comments instead.
		if issue.Unlocated() {
			buf.AddReviewComment(comment.Body)
			continue
		}

		buf.AddLineComment(actions.LineComment{
			FilePath: issue.FilePath,
			Line:     issue.StartLine,
			Body:     comment.Body,
		})
	}

	if summary != "" {
		buf.AddSummary(summary)
	}

	decision.WhenSome(func(d review.ApprovalDecision) {
		blocked := p.cfg.Threshold.AnyBlocks(issues)

		switch {
		case d.ShouldApprove && !blocked:
			buf.MarkForApproval(d.Comment)

		case d.ShouldApprove && blocked:
			// The agent approved past open blocking findings;
			// the threshold policy overrules it.
			log.WarnS(ctx, "Approval blocked by severity "+
				"threshold", nil, "run_id", runID,
				"threshold", p.cfg.Threshold)

			buf.MarkForChangesRequested(fn.Some(d.Reasoning))

		default:
			buf.MarkForChangesRequested(fn.Some(d.Reasoning))
		}
	})

	result := p.executor.Execute(ctx, prNumber, buf)

	if err := p.cfg.Store.SaveResult(ctx, runID, result); err != nil {
		return nil, err
	}
	if err := p.cfg.Store.CompleteRun(ctx, runID, summary); err != nil {
		return nil, err
	}

	log.InfoS(ctx, "Review run finished",
		"run_id", runID,
		"issues", len(issues),
		"actions_posted", result.TotalActionsPosted(),
		"success", result.Success)

	return &Outcome{
		RunID:    runID,
		Summary:  summary,
		Issues:   issues,
		Decision: decision,
		Result:   result,
	}, nil
}

// blockingIssues filters the findings that trip the approval threshold.
func blockingIssues(threshold review.ApprovalThreshold,
	issues []review.Issue) []review.Issue {

	var blocking []review.Issue
	for _, issue := range issues {
		if threshold.Blocks(issue.Severity) {
			blocking = append(blocking, issue)
		}
	}

	return blocking
}
