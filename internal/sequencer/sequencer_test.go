package sequencer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testAgents = []Agent{
	{Name: "rev", Role: RoleReviewer},
	{Name: "sum", Role: RoleSummarizer},
	{Name: "app", Role: RoleApprover},
}

// selectNames drives the strategy n turns and collects agent names.
func selectNames(t *testing.T, s Strategy, agents []Agent,
	n int) []string {

	t.Helper()

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		agent, err := s.SelectNext(agents, nil)
		require.NoError(t, err)
		names = append(names, agent.Name)
	}

	return names
}

// TestWorkflowStrategyCycle checks the fixed turn table and that the
// cycle repeats without halting.
func TestWorkflowStrategyCycle(t *testing.T) {
	t.Parallel()

	s := NewWorkflowStrategy()

	names := selectNames(t, s, testAgents, 7)
	require.Equal(t, []string{
		"rev", "sum", "app",
		"rev", "sum", "app",
		"rev",
	}, names)
}

// TestWorkflowStrategyCompleteDetection checks that the caller can see
// the Complete state between cycles.
func TestWorkflowStrategyCompleteDetection(t *testing.T) {
	t.Parallel()

	s := NewWorkflowStrategy()
	for i := 0; i < 3; i++ {
		_, err := s.SelectNext(testAgents, nil)
		require.NoError(t, err)
	}

	require.IsType(t, Complete{}, s.State())

	// The next selection cycles through Complete back to the
	// reviewer rather than halting.
	agent, err := s.SelectNext(testAgents, nil)
	require.NoError(t, err)
	require.Equal(t, "rev", agent.Name)
}

// TestWorkflowStrategyMissingRole checks that a missing role is a loud
// error, not a silent skip.
func TestWorkflowStrategyMissingRole(t *testing.T) {
	t.Parallel()

	s := NewWorkflowStrategy()
	_, err := s.SelectNext([]Agent{
		{Name: "sum", Role: RoleSummarizer},
	}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reviewer")
}

// TestContentStrategyRouting checks marker-based jumps and the workflow
// fallback when no marker matches.
func TestContentStrategyRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		last    string
		expects string
	}{
		{
			name:    "decision closes the cycle",
			last:    "REASONING: fine\nDECISION: APPROVE",
			expects: "rev",
		},
		{
			name:    "summary hands off to approver",
			last:    "## Summary\n\nAll good.",
			expects: "app",
		},
		{
			name:    "critical finding hands off to summarizer",
			last:    "## [CRITICAL] Injection",
			expects: "sum",
		},
		{
			name:    "no marker falls back to the table",
			last:    "just some chatter",
			expects: "rev",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewContentStrategy()
			agent, err := s.SelectNext(testAgents, []Message{
				{Agent: "someone", Content: tc.last},
			})
			require.NoError(t, err)
			require.Equal(t, tc.expects, agent.Name)
		})
	}
}

// TestContentStrategyFallbackStaysInStep checks that a content jump
// repositions the fallback table, so a later marker-less turn continues
// from the jumped-to point.
func TestContentStrategyFallbackStaysInStep(t *testing.T) {
	t.Parallel()

	s := NewContentStrategy()

	// Jump to the summarizer on a critical finding.
	agent, err := s.SelectNext(testAgents, []Message{
		{Agent: "rev", Content: "## [CRITICAL] Bad lock order"},
	})
	require.NoError(t, err)
	require.Equal(t, "sum", agent.Name)

	// No marker in the next message: the table continues from the
	// approval turn.
	agent, err = s.SelectNext(testAgents, []Message{
		{Agent: "sum", Content: "plain text"},
	})
	require.NoError(t, err)
	require.Equal(t, "app", agent.Name)
}

// TestContentStrategyEmptyHistory checks that the first turn goes to the
// reviewer.
func TestContentStrategyEmptyHistory(t *testing.T) {
	t.Parallel()

	agent, err := NewContentStrategy().SelectNext(testAgents, nil)
	require.NoError(t, err)
	require.Equal(t, "rev", agent.Name)
}

// TestRoundRobinStrategy checks list-order cycling with wraparound.
func TestRoundRobinStrategy(t *testing.T) {
	t.Parallel()

	names := selectNames(t, NewRoundRobinStrategy(), testAgents, 5)
	require.Equal(t,
		[]string{"rev", "sum", "app", "rev", "sum"}, names)
}

// TestSequentialStrategy checks a single front-to-back walk that sticks
// on the last agent.
func TestSequentialStrategy(t *testing.T) {
	t.Parallel()

	names := selectNames(t, NewSequentialStrategy(), testAgents, 5)
	require.Equal(t,
		[]string{"rev", "sum", "app", "app", "app"}, names)
}

// TestStrategySelectionDeterminism checks that two identically driven
// strategies agree turn for turn.
func TestStrategySelectionDeterminism(t *testing.T) {
	t.Parallel()

	history := []Message{
		{Agent: "rev", Content: "## [CRITICAL] Something"},
	}

	a := NewContentStrategy()
	b := NewContentStrategy()
	for i := 0; i < 9; i++ {
		agentA, errA := a.SelectNext(testAgents, history)
		agentB, errB := b.SelectNext(testAgents, history)
		require.NoError(t, errA)
		require.NoError(t, errB)
		require.Equal(t, agentA, agentB)
	}
}

// TestNewStrategy checks config-name construction, including the
// unknown-name failure.
func TestNewStrategy(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]any{
		"workflow":    (*WorkflowStrategy)(nil),
		"":            (*WorkflowStrategy)(nil),
		"content":     (*ContentStrategy)(nil),
		"round-robin": (*RoundRobinStrategy)(nil),
		"sequential":  (*SequentialStrategy)(nil),
	} {
		s, err := NewStrategy(name)
		require.NoError(t, err)
		require.IsType(t, want, s)
	}

	_, err := NewStrategy("bogus")
	require.Error(t, err)
}

// TestEmptyAgentLists checks that every strategy rejects an empty agent
// list.
func TestEmptyAgentLists(t *testing.T) {
	t.Parallel()

	for _, s := range []Strategy{
		NewWorkflowStrategy(),
		NewContentStrategy(),
		NewRoundRobinStrategy(),
		NewSequentialStrategy(),
	} {
		_, err := s.SelectNext(nil, nil)
		require.Error(t, err)
	}
}
