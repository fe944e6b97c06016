package sequencer

// TurnState is the sealed interface over the workflow turn states. Each
// state names the agent role that should speak and knows its successor;
// the cycle never terminates on its own, so a surrounding loop bounds it
// with a turn counter.
type TurnState interface {
	// Role is the agent role that takes this turn.
	Role() Role

	// Next returns the successor state in the fixed workflow table.
	Next() TurnState

	// String returns a human-readable name for the state.
	String() string

	// isTurnState seals the interface.
	isTurnState()
}

// Compile-time verification that all concrete states implement
// TurnState.
var (
	_ TurnState = (*ReviewTurn)(nil)
	_ TurnState = (*SummaryTurn)(nil)
	_ TurnState = (*ApprovalTurn)(nil)
	_ TurnState = (*Complete)(nil)
)

// ReviewTurn is the state in which a reviewer agent speaks.
type ReviewTurn struct{}

// Role returns the reviewer role.
func (ReviewTurn) Role() Role { return RoleReviewer }

// Next advances to the summary turn.
func (ReviewTurn) Next() TurnState { return SummaryTurn{} }

// String returns the state name.
func (ReviewTurn) String() string { return "ReviewTurn" }

func (ReviewTurn) isTurnState() {}

// SummaryTurn is the state in which the summarizer agent speaks.
type SummaryTurn struct{}

// Role returns the summarizer role.
func (SummaryTurn) Role() Role { return RoleSummarizer }

// Next advances to the approval turn.
func (SummaryTurn) Next() TurnState { return ApprovalTurn{} }

// String returns the state name.
func (SummaryTurn) String() string { return "SummaryTurn" }

func (SummaryTurn) isTurnState() {}

// ApprovalTurn is the state in which the approver agent speaks.
type ApprovalTurn struct{}

// Role returns the approver role.
func (ApprovalTurn) Role() Role { return RoleApprover }

// Next advances to Complete.
func (ApprovalTurn) Next() TurnState { return Complete{} }

// String returns the state name.
func (ApprovalTurn) String() string { return "ApprovalTurn" }

func (ApprovalTurn) isTurnState() {}

// Complete marks the end of one full workflow cycle. It is transient:
// the workflow strategy immediately cycles back to ReviewTurn, so
// callers that want to stop must watch for it at the call site.
type Complete struct{}

// Role returns the reviewer role, the role that opens the next cycle.
func (Complete) Role() Role { return RoleReviewer }

// Next cycles back to the review turn.
func (Complete) Next() TurnState { return ReviewTurn{} }

// String returns the state name.
func (Complete) String() string { return "Complete" }

func (Complete) isTurnState() {}
