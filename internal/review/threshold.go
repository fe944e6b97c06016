package review

import (
	"fmt"
	"strings"
)

// ApprovalThreshold names the least severe finding class that still
// blocks auto-approval. ThresholdNone disables the gate entirely.
type ApprovalThreshold string

const (
	// ThresholdCritical blocks approval only on critical findings.
	ThresholdCritical ApprovalThreshold = "critical"

	// ThresholdMajor blocks approval on major or critical findings.
	ThresholdMajor ApprovalThreshold = "major"

	// ThresholdMinor blocks approval on any negative finding.
	ThresholdMinor ApprovalThreshold = "minor"

	// ThresholdNone never blocks approval.
	ThresholdNone ApprovalThreshold = "none"
)

// severityRank orders severities by impact. Positive findings never
// block, so they rank below every threshold.
var severityRank = map[Severity]int{
	SeverityPositive: 0,
	SeverityMinor:    1,
	SeverityMajor:    2,
	SeverityCritical: 3,
}

// thresholdRank is the minimum severity rank that trips each threshold.
var thresholdRank = map[ApprovalThreshold]int{
	ThresholdCritical: 3,
	ThresholdMajor:    2,
	ThresholdMinor:    1,
}

// ParseApprovalThreshold converts a config string into a threshold,
// case-insensitively. Empty input defaults to ThresholdMajor.
func ParseApprovalThreshold(s string) (ApprovalThreshold, error) {
	switch ApprovalThreshold(strings.ToLower(strings.TrimSpace(s))) {
	case ThresholdCritical:
		return ThresholdCritical, nil
	case ThresholdMajor, "":
		return ThresholdMajor, nil
	case ThresholdMinor:
		return ThresholdMinor, nil
	case ThresholdNone:
		return ThresholdNone, nil
	default:
		return "", fmt.Errorf("unknown approval threshold %q", s)
	}
}

// Blocks reports whether a finding of the given severity prevents
// auto-approval under this threshold.
func (t ApprovalThreshold) Blocks(sev Severity) bool {
	min, ok := thresholdRank[t]
	if !ok {
		// ThresholdNone and unknown values never block.
		return false
	}

	return severityRank[sev] >= min
}

// AnyBlocks reports whether any of the given issues prevents
// auto-approval under this threshold.
func (t ApprovalThreshold) AnyBlocks(issues []Issue) bool {
	for _, issue := range issues {
		if t.Blocks(issue.Severity) {
			return true
		}
	}

	return false
}
