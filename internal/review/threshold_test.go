package review

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestThresholdBlocks walks the full severity/threshold grid.
func TestThresholdBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		threshold ApprovalThreshold
		severity  Severity
		blocks    bool
	}{
		{ThresholdCritical, SeverityCritical, true},
		{ThresholdCritical, SeverityMajor, false},
		{ThresholdMajor, SeverityCritical, true},
		{ThresholdMajor, SeverityMajor, true},
		{ThresholdMajor, SeverityMinor, false},
		{ThresholdMinor, SeverityMinor, true},
		{ThresholdMinor, SeverityPositive, false},
		{ThresholdNone, SeverityCritical, false},
	}

	for _, tc := range tests {
		require.Equal(t, tc.blocks, tc.threshold.Blocks(tc.severity),
			"threshold %s severity %s", tc.threshold,
			tc.severity)
	}
}

// TestThresholdAnyBlocks checks the aggregate form over issue lists.
func TestThresholdAnyBlocks(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Severity: SeverityPositive},
		{Severity: SeverityMinor},
	}
	require.False(t, ThresholdMajor.AnyBlocks(issues))

	issues = append(issues, Issue{Severity: SeverityCritical})
	require.True(t, ThresholdMajor.AnyBlocks(issues))
	require.False(t, ThresholdNone.AnyBlocks(issues))
}

// TestParseApprovalThreshold checks config string parsing, including the
// empty-input default.
func TestParseApprovalThreshold(t *testing.T) {
	t.Parallel()

	parsed, err := ParseApprovalThreshold("Critical")
	require.NoError(t, err)
	require.Equal(t, ThresholdCritical, parsed)

	parsed, err = ParseApprovalThreshold("")
	require.NoError(t, err)
	require.Equal(t, ThresholdMajor, parsed)

	_, err = ParseApprovalThreshold("whatever")
	require.Error(t, err)
}

// TestParseSeverityTagDefaults checks the fail-open severity default.
func TestParseSeverityTagDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, SeverityCritical, ParseSeverityTag("CRITICAL"))
	require.Equal(t, SeverityPositive, ParseSeverityTag("POSITIVE"))
	require.Equal(t, SeverityMajor, ParseSeverityTag("NOT_A_TAG"))
	require.Equal(t, SeverityMajor, ParseSeverityTag(""))
}
