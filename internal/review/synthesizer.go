package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/roasbeef/revq/internal/llm"
)

// synthesisMaxTokens caps the model reply for a single comment. Comments
// are a few sentences, so a small cap keeps latency and cost down.
const synthesisMaxTokens = 1024

// Synthesizer turns structured issues into publishable draft comments.
// The model writes the comment body; when the model call fails for any
// reason the synthesizer degrades to a deterministic template so a review
// run never stalls on comment wording.
type Synthesizer struct {
	client llm.Client
}

// NewSynthesizer creates a synthesizer backed by the given model client.
func NewSynthesizer(client llm.Client) *Synthesizer {
	return &Synthesizer{
		client: client,
	}
}

// Synthesize produces a draft comment for the issue, written in the given
// natural language. The comment is anchored to a single line when the
// issue spans one line, and to a range otherwise. Synthesize never fails:
// model errors and empty replies fall back to FallbackBody.
func (s *Synthesizer) Synthesize(ctx context.Context, issue Issue,
	language string) DraftComment {

	body := s.modelBody(ctx, issue, language)
	if body == "" {
		body = FallbackBody(issue)
	}

	if issue.StartLine == issue.EndLine {
		return NewLineComment(issue.FilePath, body, issue.StartLine)
	}

	return NewRangeComment(
		issue.FilePath, body, issue.StartLine, issue.EndLine,
	)
}

// modelBody asks the model to word the comment, returning empty on any
// failure so the caller can fall back.
func (s *Synthesizer) modelBody(ctx context.Context, issue Issue,
	language string) string {

	if s.client == nil {
		return ""
	}

	prompt := renderSynthesisPrompt(ctx, synthesisPromptData{
		Severity:    string(issue.Severity),
		Title:       issue.Title,
		FilePath:    issue.FilePath,
		StartLine:   issue.StartLine,
		EndLine:     issue.EndLine,
		Description: issue.Description,
		Suggestion:  issue.Suggestion,
		Language:    language,
	})

	resp, err := s.client.Complete(ctx, llm.CompletionRequest{
		UserPrompt: prompt,
		MaxTokens:  synthesisMaxTokens,
	})
	if err != nil {
		log.WarnS(ctx, "Comment synthesis fell back to template",
			err, "file", issue.FilePath)

		return ""
	}

	return strings.TrimSpace(resp.Content)
}

// FallbackBody renders the deterministic comment body used when the model
// is unavailable: the severity and description, followed by the
// suggestion when one exists.
func FallbackBody(issue Issue) string {
	body := fmt.Sprintf("%s: %s", issue.Severity, issue.Description)
	if issue.Suggestion != "" {
		body += "\n\n" + issue.Suggestion
	}

	return body
}
