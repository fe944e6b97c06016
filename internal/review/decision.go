package review

import (
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// decisionLabel introduces the approve/reject verdict line in an
	// approval agent's final message.
	decisionLabel = "DECISION:"

	// reasoningLabel introduces the reasoning line.
	reasoningLabel = "REASONING:"

	// approvalCommentLabel introduces the optional approval comment
	// line.
	approvalCommentLabel = "APPROVAL_COMMENT:"

	// approveVerdict is the only DECISION value that approves.
	approveVerdict = "APPROVE"

	// approvalCommentAbsent is the sentinel an agent emits when it has
	// no approval comment to post.
	approvalCommentAbsent = "N/A"
)

// labelValue returns the value following the label if the trimmed line
// starts with it, matched case-insensitively.
func labelValue(line, label string) (string, bool) {
	if len(line) < len(label) {
		return "", false
	}
	if !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}

	return strings.TrimSpace(line[len(label):]), true
}

// ParseApprovalDecision scans an approval agent's final message for the
// labeled DECISION, REASONING, and APPROVAL_COMMENT lines, matching
// labels case-insensitively. The verdict fails closed: only a DECISION
// value of APPROVE (any case) approves, and a missing or garbled DECISION
// line rejects. When a label appears more than once the last occurrence
// wins, matching how agents correct themselves late in a message.
func ParseApprovalDecision(message string) ApprovalDecision {
	var decision ApprovalDecision

	for _, line := range strings.Split(message, "\n") {
		trimmed := strings.TrimSpace(line)

		if verdict, ok := labelValue(
			trimmed, decisionLabel,
		); ok {
			decision.ShouldApprove = strings.EqualFold(
				verdict, approveVerdict,
			)

			continue
		}

		if reasoning, ok := labelValue(
			trimmed, reasoningLabel,
		); ok {
			decision.Reasoning = reasoning

			continue
		}

		if comment, ok := labelValue(
			trimmed, approvalCommentLabel,
		); ok {
			if comment == "" || strings.EqualFold(
				comment, approvalCommentAbsent,
			) {

				decision.Comment = fn.None[string]()
			} else {
				decision.Comment = fn.Some(comment)
			}
		}
	}

	return decision
}
