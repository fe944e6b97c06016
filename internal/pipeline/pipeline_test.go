package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roasbeef/revq/internal/githubapi"
	"github.com/roasbeef/revq/internal/llm"
	"github.com/roasbeef/revq/internal/review"
	"github.com/roasbeef/revq/internal/store"
)

// reviewReply is a well-formed single-pass review with one anchored
// finding, one finding without a location, and a leading summary.
const reviewReply = `The handler change is sound, but error handling in
the storage layer needs work.

## [CRITICAL] Unchecked row scan

**File:** ` + "`internal/db/rows.go`" + ` (lines 40-42)

**Problem:** The scan error is discarded, so a short row silently
truncates the result.

` + "```suggestion\nif err := rows.Scan(&id); err != nil {\n\treturn err\n}\n```" + `

## [MINOR] Inconsistent naming

**Problem:** The receiver name differs from the rest of the file.
`

// minorOnlyReply is a review whose findings never trip a major
// threshold.
const minorOnlyReply = `Small cleanups only.

## [MINOR] Stray debug print

**File:** ` + "`internal/db/rows.go`" + ` (line 7)

**Problem:** Leftover from debugging.
`

const approveReply = "DECISION: APPROVE\n" +
	"REASONING: No blocking findings remain.\n" +
	"APPROVAL_COMMENT: LGTM, nice cleanup."

func newTestPipeline(t *testing.T, cfg Config) (*Pipeline,
	*githubapi.FakeAPI, *store.MockStore) {

	t.Helper()

	api := &githubapi.FakeAPI{
		PR: githubapi.PullRequest{
			Title:   "Fix row scanning",
			Body:    "Tightens the storage layer.",
			HeadSHA: "abc123",
		},
		Diff: "diff --git a/internal/db/rows.go b/internal/db/rows.go",
	}
	st := store.NewMockStore()

	cfg.API = api
	cfg.Store = st
	cfg.Repo = "roasbeef/revq"
	if cfg.Threshold == "" {
		cfg.Threshold = review.ThresholdMajor
	}

	p, err := New(cfg)
	require.NoError(t, err)

	return p, api, st
}

// TestRunSingleShot walks the whole single-pass flow: one review call,
// extraction, synthesis per finding, buffer execution, and persistence.
func TestRunSingleShot(t *testing.T) {
	t.Parallel()

	client := llm.NewFakeClient(reviewReply, "Model-written comment.")
	p, api, st := newTestPipeline(t, Config{LLM: client})

	outcome, err := p.Run(context.Background(), 42)
	require.NoError(t, err)
	require.True(t, outcome.Result.Success)
	require.True(t, outcome.Decision.IsNone())
	require.Len(t, outcome.Issues, 2)
	require.Contains(t, outcome.Summary, "storage layer")

	// The anchored finding posts as a line comment batch, the
	// unlocated one as a review-level comment.
	require.Len(t, api.LineComments, 1)
	require.Len(t, api.LineComments[0], 1)
	require.Equal(t, "internal/db/rows.go",
		api.LineComments[0][0].Path)
	require.Equal(t, 40, api.LineComments[0][0].Line)
	require.Equal(t, "Model-written comment.",
		api.LineComments[0][0].Body)

	require.Len(t, api.ReviewComments, 1)

	// The document summary posts under the summary heading, and no
	// approval action runs in single-shot mode.
	require.Len(t, api.IssueComments, 1)
	require.Contains(t, api.IssueComments[0], "## PR Summary")
	require.Empty(t, api.Approvals)

	// The audit trail has the run, its findings, and one execution
	// outcome.
	run, err := st.GetRun(context.Background(), outcome.RunID)
	require.NoError(t, err)
	require.Equal(t, 42, run.PRNumber)
	require.False(t, run.CompletedAt.IsZero())

	saved, err := st.GetIssues(context.Background(), outcome.RunID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	require.Equal(t, "Unchecked row scan", saved[0].Title)

	results, err := st.GetResults(context.Background(), outcome.RunID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Result.Success)
}

// TestRunSpecialistFanOut checks that the specialist mode issues one
// review request per persona and merges every pass's findings.
func TestRunSpecialistFanOut(t *testing.T) {
	t.Parallel()

	client := llm.NewFakeClient(reviewReply)
	p, _, _ := newTestPipeline(t, Config{
		LLM:         client,
		Specialists: true,
	})

	outcome, err := p.Run(context.Background(), 7)
	require.NoError(t, err)

	// Three passes, two findings each.
	require.Len(t, outcome.Issues, 6)

	// Each persona got its own prompt.
	markers := []string{
		"security reviewer",
		"performance reviewer",
		"nil handling",
	}
	personas := make(map[string]bool)
	for _, req := range client.Requests() {
		if req.MaxTokens != reviewMaxTokens {
			continue
		}
		for _, marker := range markers {
			if containsFold(req.UserPrompt, marker) {
				personas[marker] = true
			}
		}
	}
	require.Len(t, personas, 3)
}

// TestRunSpecialistFailure checks that a failing pass surfaces as the
// run's error and nothing is posted.
func TestRunSpecialistFailure(t *testing.T) {
	t.Parallel()

	client := &llm.FakeClient{Err: errors.New("model offline")}
	p, api, _ := newTestPipeline(t, Config{
		LLM:         client,
		Specialists: true,
	})

	_, err := p.Run(context.Background(), 7)
	require.ErrorContains(t, err, "model offline")

	require.Empty(t, api.LineComments)
	require.Empty(t, api.IssueComments)
	require.Empty(t, api.Approvals)
}

// TestRunMultiAgentApproves drives the full reviewer, summarizer,
// approver cycle with no blocking findings and checks that the approval
// lands with the agent's comment.
func TestRunMultiAgentApproves(t *testing.T) {
	t.Parallel()

	client := llm.NewFakeClient(
		minorOnlyReply,
		"## Summary\n\nOnly a stray debug print remains.",
		approveReply,
		"Drop the debug print.",
	)
	p, api, _ := newTestPipeline(t, Config{
		LLM:          client,
		StrategyName: "workflow",
		MaxTurns:     9,
	})

	outcome, err := p.RunMultiAgent(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, outcome.Result.Success)
	require.True(t, outcome.Result.ApprovalActionPerformed)

	require.True(t, outcome.Decision.IsSome())
	decision := outcome.Decision.UnwrapOr(review.ApprovalDecision{})
	require.True(t, decision.ShouldApprove)

	require.Equal(t, []string{"LGTM, nice cleanup."}, api.Approvals)
	require.Contains(t, outcome.Summary, "debug print")
}

// TestRunMultiAgentThresholdOverrules checks that an APPROVE verdict is
// downgraded to changes requested while a blocking finding is open.
func TestRunMultiAgentThresholdOverrules(t *testing.T) {
	t.Parallel()

	client := llm.NewFakeClient(
		reviewReply,
		"## Summary\n\nA critical scan bug is still open.",
		approveReply,
		"Check the scan error.",
	)
	p, api, _ := newTestPipeline(t, Config{
		LLM:          client,
		StrategyName: "workflow",
		MaxTurns:     9,
	})

	outcome, err := p.RunMultiAgent(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, outcome.Result.ApprovalActionPerformed)

	require.Empty(t, api.Approvals)

	var sawChangesRequested bool
	for _, body := range api.IssueComments {
		if containsFold(body, "## Changes Requested") {
			sawChangesRequested = true
		}
	}
	require.True(t, sawChangesRequested)
}

// TestRunMultiAgentTurnBudget checks that the loop stops at MaxTurns and
// skips the approval action when the approver never got a turn.
func TestRunMultiAgentTurnBudget(t *testing.T) {
	t.Parallel()

	client := llm.NewFakeClient(
		minorOnlyReply,
		"## Summary\n\nMinor cleanups.",
	)
	p, api, _ := newTestPipeline(t, Config{
		LLM:          client,
		StrategyName: "workflow",
		MaxTurns:     2,
	})

	outcome, err := p.RunMultiAgent(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, outcome.Decision.IsNone())
	require.False(t, outcome.Result.ApprovalActionPerformed)
	require.Empty(t, api.Approvals)
}

// TestNewRequiresCollaborators checks constructor validation.
func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{LLM: llm.NewFakeClient()})
	require.Error(t, err)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(
		strings.ToLower(haystack), strings.ToLower(needle),
	)
}
