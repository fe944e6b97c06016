package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestParseApprovalDecision exercises the labeled-line scanner across the
// verdict spellings an agent actually produces.
func TestParseApprovalDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		message   string
		approve   bool
		reasoning string
		comment   string
		noComment bool
	}{
		{
			name: "full approval",
			message: "Looks good overall.\n" +
				"DECISION: APPROVE\n" +
				"REASONING: All findings addressed.\n" +
				"APPROVAL_COMMENT: Ship it.\n",
			approve:   true,
			reasoning: "All findings addressed.",
			comment:   "Ship it.",
		},
		{
			name: "explicit rejection",
			message: "DECISION: REJECT\n" +
				"REASONING: Critical issue remains open.\n",
			approve:   false,
			reasoning: "Critical issue remains open.",
			noComment: true,
		},
		{
			name:      "missing decision line fails closed",
			message:   "I think this is probably fine to merge.",
			approve:   false,
			noComment: true,
		},
		{
			name:      "garbled verdict fails closed",
			message:   "DECISION: APPROVED",
			approve:   false,
			noComment: true,
		},
		{
			name:      "lowercase verdict approves",
			message:   "decision: approve",
			approve:   true,
			noComment: true,
		},
		{
			name: "sentinel comment is absent",
			message: "DECISION: APPROVE\n" +
				"APPROVAL_COMMENT: N/A\n",
			approve:   true,
			noComment: true,
		},
		{
			name: "lowercase sentinel is absent",
			message: "DECISION: APPROVE\n" +
				"APPROVAL_COMMENT: n/a\n",
			approve:   true,
			noComment: true,
		},
		{
			name: "last decision wins",
			message: "DECISION: APPROVE\n" +
				"Wait, on second thought:\n" +
				"DECISION: REJECT\n",
			approve:   false,
			noComment: true,
		},
		{
			name:      "indented label still matches",
			message:   "  DECISION: APPROVE  ",
			approve:   true,
			noComment: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := ParseApprovalDecision(tc.message)

			require.Equal(t, tc.approve,
				decision.ShouldApprove)
			require.Equal(t, tc.reasoning, decision.Reasoning)

			if tc.noComment {
				require.True(t, decision.Comment.IsNone())
			} else {
				require.Equal(t, tc.comment,
					decision.Comment.UnwrapOr(""))
			}
		})
	}
}

// TestParseApprovalDecisionFailClosed checks that arbitrary input without
// an exact APPROVE verdict never approves.
func TestParseApprovalDecisionFailClosed(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		message := rapid.String().Draw(t, "message")

		decision := ParseApprovalDecision(message)
		if !decision.ShouldApprove {
			return
		}

		// An approval must be backed by an APPROVE verdict
		// somewhere in the message.
		require.Contains(t,
			strings.ToUpper(message), "APPROVE")
	})
}
