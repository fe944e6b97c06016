package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/revq/internal/githubapi"
	"github.com/stretchr/testify/require"
)

// populatedBuffer stages one action of every category.
func populatedBuffer() *Buffer {
	buf := NewBuffer()
	buf.AddReviewComment("overall note")
	buf.AddLineComment(LineComment{
		FilePath: "a.go", Line: 3, Body: "rename this",
	})
	buf.AddLineComment(LineComment{
		FilePath:   "b.go",
		Line:       9,
		Body:       "off by one",
		Suggestion: "i < len(xs)",
	})
	buf.AddSummary("first part")
	buf.AddSummary("second part")
	buf.SetGeneralComment("thanks for the patch")
	buf.MarkForApproval(fn.Some("LGTM"))

	return buf
}

// TestExecuteFullBuffer checks the fixed posting order and the total
// action count across every category.
func TestExecuteFullBuffer(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{}
	result := NewExecutor(api).Execute(
		context.Background(), 42, populatedBuffer(),
	)

	require.True(t, result.Success)
	require.Empty(t, result.Error)
	require.Equal(t, 1, result.ReviewCommentsPosted)
	require.Equal(t, 2, result.LineCommentsPosted)
	require.Equal(t, 2, result.SummariesPosted)
	require.True(t, result.GeneralCommentPosted)
	require.True(t, result.ApprovalActionPerformed)
	require.Equal(t, 7, result.TotalActionsPosted())

	// Line comments went out as a single batch, suggestion rendered
	// as a suggestion block.
	require.Len(t, api.LineComments, 1)
	require.Len(t, api.LineComments[0], 2)
	require.Contains(t, api.LineComments[0][1].Body,
		"```suggestion\ni < len(xs)\n```")

	// The summary is one headed comment with both fragments.
	require.Len(t, api.IssueComments, 2)
	require.Contains(t, api.IssueComments[0], "## PR Summary")
	require.Contains(t, api.IssueComments[0],
		"first part\n\nsecond part")
	require.Equal(t, "thanks for the patch", api.IssueComments[1])

	require.Equal(t, []string{"LGTM"}, api.Approvals)
	require.NotEmpty(t, result.SummaryURL)
	require.NotEmpty(t, result.ApprovalURL)
}

// TestExecutePartialFailureIsolation checks that a failing summary post
// does not block the approval, and that the result records the partial
// progress with success=false.
func TestExecutePartialFailureIsolation(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{
		IssueCommentErr: errors.New("summary endpoint down"),
	}

	buf := NewBuffer()
	buf.AddSummary("doomed summary")
	buf.AddReviewComment("fine comment")
	buf.MarkForApproval(fn.None[string]())

	result := NewExecutor(api).Execute(context.Background(), 42, buf)

	require.False(t, result.Success)
	require.Contains(t, result.Error, "summary endpoint down")

	// Earlier and later categories still posted.
	require.Equal(t, 1, result.ReviewCommentsPosted)
	require.Equal(t, 0, result.SummariesPosted)
	require.True(t, result.ApprovalActionPerformed)
	require.Equal(t, 2, result.TotalActionsPosted())
}

// TestExecuteBatchedLineCommentFailure checks that a failed batch fails
// the whole line comment category.
func TestExecuteBatchedLineCommentFailure(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{
		LineCommentsErr: errors.New("batch rejected"),
	}

	buf := NewBuffer()
	buf.AddLineComment(LineComment{FilePath: "a.go", Line: 1})
	buf.AddLineComment(LineComment{FilePath: "b.go", Line: 2})
	buf.AddReviewComment("still fine")

	result := NewExecutor(api).Execute(context.Background(), 42, buf)

	require.False(t, result.Success)
	require.Equal(t, 0, result.LineCommentsPosted)
	require.Equal(t, 1, result.ReviewCommentsPosted)
}

// TestExecuteLastErrorWins checks that when several categories fail, the
// recorded error is the last failure.
func TestExecuteLastErrorWins(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{
		ReviewCommentErr: errors.New("first failure"),
		ApproveErr:       errors.New("last failure"),
	}

	buf := NewBuffer()
	buf.AddReviewComment("doomed")
	buf.MarkForApproval(fn.None[string]())

	result := NewExecutor(api).Execute(context.Background(), 42, buf)

	require.False(t, result.Success)
	require.Equal(t, "last failure", result.Error)
	require.Equal(t, 0, result.TotalActionsPosted())
}

// TestExecuteChangesRequestedDegrades checks that the changes-requested
// verdict posts a labeled comment and still counts as the approval
// action.
func TestExecuteChangesRequestedDegrades(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{}

	buf := NewBuffer()
	buf.MarkForChangesRequested(fn.Some("please fix the lock order"))

	result := NewExecutor(api).Execute(context.Background(), 42, buf)

	require.True(t, result.Success)
	require.True(t, result.ApprovalActionPerformed)
	require.Equal(t, 1, result.TotalActionsPosted())
	require.Empty(t, api.Approvals)
	require.Len(t, api.IssueComments, 1)
	require.Contains(t, api.IssueComments[0], "## Changes Requested")
	require.Contains(t, api.IssueComments[0],
		"please fix the lock order")
}

// TestExecuteEmptyBuffer checks that an empty buffer is a successful
// no-op.
func TestExecuteEmptyBuffer(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{}
	result := NewExecutor(api).Execute(
		context.Background(), 42, NewBuffer(),
	)

	require.True(t, result.Success)
	require.Equal(t, 0, result.TotalActionsPosted())
	require.Empty(t, api.IssueComments)
	require.Empty(t, api.Approvals)
}

// TestExecuteResetsBuffer checks that execution drains the buffer so a
// second execution posts nothing.
func TestExecuteResetsBuffer(t *testing.T) {
	t.Parallel()

	api := &githubapi.FakeAPI{}
	buf := populatedBuffer()
	exec := NewExecutor(api)

	first := exec.Execute(context.Background(), 42, buf)
	require.Equal(t, 7, first.TotalActionsPosted())

	second := exec.Execute(context.Background(), 42, buf)
	require.Equal(t, 0, second.TotalActionsPosted())
	require.Equal(t, BufferState{ApprovalState: ApprovalNone},
		buf.GetState())
}

// TestExecuteCancelledContext checks that a cancelled run yields a
// partial result rather than a panic, with the context error recorded.
func TestExecuteCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &githubapi.FakeAPI{
		IssueCommentErr: ctx.Err(),
		ApproveErr:      ctx.Err(),
	}

	buf := NewBuffer()
	buf.AddSummary("never lands")
	buf.MarkForApproval(fn.None[string]())

	result := NewExecutor(api).Execute(ctx, 42, buf)

	require.False(t, result.Success)
	require.Equal(t, 0, result.TotalActionsPosted())
	require.Contains(t, result.Error, "context canceled")
}
