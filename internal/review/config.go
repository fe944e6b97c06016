package review

import (
	"context"
)

// ReviewerConfig defines a specialized reviewer persona used when a run
// fans out into parallel passes. The persona selects the prompt guidance
// block, and the focus areas are appended to it.
type ReviewerConfig struct {
	// Name is the reviewer's display name.
	Name string

	// Persona selects the prompt guidance block. One of "security",
	// "performance", or "quality".
	Persona string

	// FocusAreas defines what the reviewer should look for.
	FocusAreas []string
}

// DefaultReviewerConfig returns the single general-purpose reviewer used
// when specialist passes are disabled.
func DefaultReviewerConfig() *ReviewerConfig {
	return &ReviewerConfig{
		Name:    "CodeReviewer",
		Persona: "quality",
		FocusAreas: []string{
			"logic errors and incorrect results",
			"missing error handling at failure points",
			"edge cases and boundary conditions",
		},
	}
}

// SpecializedReviewers returns the three specialist personas used for the
// concurrent review mode: one pass each for security, performance, and
// general code quality.
func SpecializedReviewers() []*ReviewerConfig {
	return []*ReviewerConfig{
		{
			Name:    "SecurityReviewer",
			Persona: "security",
			FocusAreas: []string{
				"injection vectors in queries and commands",
				"authorization checks on protected operations",
				"sensitive data in logs or error messages",
			},
		},
		{
			Name:    "PerformanceReviewer",
			Persona: "performance",
			FocusAreas: []string{
				"quadratic passes over potentially large inputs",
				"N+1 query patterns",
				"allocations and blocking calls in hot paths",
			},
		},
		{
			Name:    "QualityReviewer",
			Persona: "quality",
			FocusAreas: []string{
				"logic errors and incorrect results",
				"missing error handling",
				"nil handling and zero-value assumptions",
			},
		},
	}
}

// BuildReviewPrompt renders the reviewer pass prompt for this persona
// over the given pull request title, body, and diff.
func (c *ReviewerConfig) BuildReviewPrompt(ctx context.Context, title,
	body, diff string) string {

	return renderReviewPrompt(ctx, reviewPromptData{
		Persona:    c.Persona,
		FocusAreas: c.FocusAreas,
		Title:      title,
		Body:       body,
		Diff:       diff,
	})
}
