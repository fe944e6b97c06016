package review

import (
	"context"
	"errors"
	"testing"

	"github.com/roasbeef/revq/internal/llm"
	"github.com/stretchr/testify/require"
)

var testIssue = Issue{
	Title:       "SQL Injection",
	Severity:    SeverityCritical,
	FilePath:    "src/Auth.cs",
	StartLine:   10,
	EndLine:     12,
	Description: "User input is concatenated into the query.",
	Suggestion:  "use parameterized query",
}

// TestSynthesizeUsesModelReply checks that a successful model call wins
// over the deterministic fallback and the comment is range-anchored.
func TestSynthesizeUsesModelReply(t *testing.T) {
	t.Parallel()

	fake := llm.NewFakeClient("This concatenation is exploitable; " +
		"switch to a parameterized query.")
	s := NewSynthesizer(fake)

	comment := s.Synthesize(context.Background(), testIssue, "English")
	require.Equal(t, "src/Auth.cs", comment.FilePath)
	require.Contains(t, comment.Body, "parameterized")
	require.True(t, comment.Range.IsSome())
	require.True(t, comment.Position.IsNone())
	require.NoError(t, comment.Validate())

	// The prompt should carry the finding, not just a bare ask.
	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	require.Contains(t, reqs[0].UserPrompt, "src/Auth.cs")
	require.Contains(t, reqs[0].UserPrompt, "English")
}

// TestSynthesizeFallsBackOnError checks the deterministic fallback body
// on model failure.
func TestSynthesizeFallsBackOnError(t *testing.T) {
	t.Parallel()

	fake := &llm.FakeClient{Err: errors.New("endpoint down")}
	s := NewSynthesizer(fake)

	comment := s.Synthesize(context.Background(), testIssue, "English")
	require.Equal(t,
		"critical: User input is concatenated into the query."+
			"\n\nuse parameterized query",
		comment.Body)
}

// TestSynthesizeFallsBackOnEmptyReply checks that a blank model reply is
// treated like a failure.
func TestSynthesizeFallsBackOnEmptyReply(t *testing.T) {
	t.Parallel()

	s := NewSynthesizer(llm.NewFakeClient("   \n"))

	comment := s.Synthesize(context.Background(), testIssue, "English")
	require.Contains(t, comment.Body, "critical:")
}

// TestSynthesizeSingleLineAnchor checks that one-line issues produce a
// position-anchored comment.
func TestSynthesizeSingleLineAnchor(t *testing.T) {
	t.Parallel()

	issue := testIssue
	issue.StartLine = 7
	issue.EndLine = 7

	comment := NewSynthesizer(llm.NewFakeClient("fine")).Synthesize(
		context.Background(), issue, "English",
	)
	require.Equal(t, 7, comment.Position.UnwrapOr(0))
	require.True(t, comment.Range.IsNone())
}

// TestFallbackBodyWithoutSuggestion checks that the fallback omits the
// suggestion block when none exists.
func TestFallbackBodyWithoutSuggestion(t *testing.T) {
	t.Parallel()

	issue := testIssue
	issue.Suggestion = ""

	require.Equal(t,
		"critical: User input is concatenated into the query.",
		FallbackBody(issue))
}
