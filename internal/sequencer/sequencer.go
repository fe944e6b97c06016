// Package sequencer decides which cooperating agent speaks next in a
// multi-agent review run. Strategies are interchangeable implementations
// of one selection contract; all of them are pure functions of the agent
// list, the conversation history, and their own internal counters, and
// perform no I/O.
package sequencer

import (
	"fmt"
	"strings"
)

// Role classifies what an agent contributes to a review run.
type Role string

const (
	// RoleReviewer produces findings from the diff.
	RoleReviewer Role = "reviewer"

	// RoleSummarizer condenses findings into a summary.
	RoleSummarizer Role = "summarizer"

	// RoleApprover renders the final approval verdict.
	RoleApprover Role = "approver"
)

// Agent is one participant in a multi-agent run.
type Agent struct {
	// Name identifies the agent in history and logs.
	Name string

	// Role is the agent's contribution type.
	Role Role
}

// Message is one conversation history entry.
type Message struct {
	// Agent is the name of the agent that produced the message.
	Agent string

	// Content is the message text.
	Content string
}

// Strategy selects the next agent to take a turn. Implementations must
// be deterministic given identical inputs and internal state, and must
// never perform I/O.
type Strategy interface {
	// SelectNext returns the agent that speaks next, given the
	// available agents and the conversation so far.
	SelectNext(agents []Agent, history []Message) (Agent, error)
}

// agentForRole returns the first agent carrying the given role.
func agentForRole(agents []Agent, role Role) (Agent, error) {
	for _, agent := range agents {
		if agent.Role == role {
			return agent, nil
		}
	}

	return Agent{}, fmt.Errorf("no agent with role %q among %d "+
		"agents", role, len(agents))
}

// WorkflowStrategy walks the fixed turn table ReviewTurn -> SummaryTurn
// -> ApprovalTurn -> Complete -> ReviewTurn. Complete is transient: the
// strategy cycles through it without halting, so the surrounding loop
// bounds the run with a turn counter.
type WorkflowStrategy struct {
	state TurnState
}

// A compile-time check that WorkflowStrategy satisfies Strategy.
var _ Strategy = (*WorkflowStrategy)(nil)

// NewWorkflowStrategy creates a workflow strategy positioned at the
// review turn.
func NewWorkflowStrategy() *WorkflowStrategy {
	return &WorkflowStrategy{
		state: ReviewTurn{},
	}
}

// State returns the turn the strategy will select for next. Callers use
// it to detect a completed cycle.
func (w *WorkflowStrategy) State() TurnState {
	return w.state
}

// SelectNext returns the agent for the current turn and advances the
// table, cycling through Complete without stopping.
func (w *WorkflowStrategy) SelectNext(agents []Agent,
	_ []Message) (Agent, error) {

	state := w.state
	if _, done := state.(Complete); done {
		state = state.Next()
	}

	agent, err := agentForRole(agents, state.Role())
	if err != nil {
		return Agent{}, err
	}

	w.state = state.Next()

	log.Tracef("Workflow turn %s -> agent %s", state, agent.Name)

	return agent, nil
}

// Content markers the heuristic strategy looks for in the last message.
const (
	markerDecision = "DECISION:"
	markerSummary  = "## Summary"
	markerCritical = "[CRITICAL]"
)

// ContentStrategy routes on markers in the last message instead of
// strictly following the turn table: a decision line closes the cycle, a
// summary heading hands off to the approver, and a critical finding hands
// off to the summarizer. This is a heuristic, not a guarantee; malformed
// model output may mis-route a turn, which is acceptable because the
// fixed table remains the deterministic fallback whenever no marker
// matches.
type ContentStrategy struct {
	fallback *WorkflowStrategy
}

// A compile-time check that ContentStrategy satisfies Strategy.
var _ Strategy = (*ContentStrategy)(nil)

// NewContentStrategy creates a content-routing strategy.
func NewContentStrategy() *ContentStrategy {
	return &ContentStrategy{
		fallback: NewWorkflowStrategy(),
	}
}

// SelectNext inspects the last message for routing markers, falling back
// to the workflow table when none match.
func (c *ContentStrategy) SelectNext(agents []Agent,
	history []Message) (Agent, error) {

	if len(history) > 0 {
		last := history[len(history)-1].Content

		var jumpTo TurnState
		switch {
		case strings.Contains(last, markerDecision):
			// Verdict rendered: open the next cycle.
			jumpTo = ReviewTurn{}

		case strings.Contains(last, markerSummary):
			jumpTo = ApprovalTurn{}

		case strings.Contains(last, markerCritical):
			jumpTo = SummaryTurn{}
		}

		if jumpTo != nil {
			agent, err := agentForRole(agents, jumpTo.Role())
			if err != nil {
				return Agent{}, err
			}

			// Keep the fallback table in step with the jump.
			c.fallback.state = jumpTo.Next()

			log.Tracef("Content routing jumped to %s -> "+
				"agent %s", jumpTo, agent.Name)

			return agent, nil
		}
	}

	return c.fallback.SelectNext(agents, history)
}

// RoundRobinStrategy cycles through the agent list in order, wrapping
// around indefinitely. Roles are ignored.
type RoundRobinStrategy struct {
	next int
}

// A compile-time check that RoundRobinStrategy satisfies Strategy.
var _ Strategy = (*RoundRobinStrategy)(nil)

// NewRoundRobinStrategy creates a round-robin strategy starting at the
// first agent.
func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{}
}

// SelectNext returns the next agent in list order, wrapping around.
func (r *RoundRobinStrategy) SelectNext(agents []Agent,
	_ []Message) (Agent, error) {

	if len(agents) == 0 {
		return Agent{}, fmt.Errorf("no agents to select from")
	}

	agent := agents[r.next%len(agents)]
	r.next++

	return agent, nil
}

// SequentialStrategy walks the agent list once, front to back, then
// stays on the final agent. Roles are ignored.
type SequentialStrategy struct {
	next int
}

// A compile-time check that SequentialStrategy satisfies Strategy.
var _ Strategy = (*SequentialStrategy)(nil)

// NewSequentialStrategy creates a sequential strategy starting at the
// first agent.
func NewSequentialStrategy() *SequentialStrategy {
	return &SequentialStrategy{}
}

// SelectNext returns the next unvisited agent, sticking on the last one
// once the list is exhausted.
func (s *SequentialStrategy) SelectNext(agents []Agent,
	_ []Message) (Agent, error) {

	if len(agents) == 0 {
		return Agent{}, fmt.Errorf("no agents to select from")
	}

	idx := s.next
	if idx >= len(agents) {
		idx = len(agents) - 1
	} else {
		s.next++
	}

	return agents[idx], nil
}

// NewStrategy builds a strategy by config name. Unknown names are an
// error so a typo in config fails loudly at startup.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "workflow", "":
		return NewWorkflowStrategy(), nil
	case "content":
		return NewContentStrategy(), nil
	case "round-robin":
		return NewRoundRobinStrategy(), nil
	case "sequential":
		return NewSequentialStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown sequencer strategy %q",
			name)
	}
}
