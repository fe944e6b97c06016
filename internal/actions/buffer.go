// Package actions accumulates pending review actions for one
// PR-processing run and executes them against the hosting platform. The
// buffer is the staging area agent tool calls mutate; the executor drains
// it in one shot with per-category fault isolation.
package actions

import (
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ApprovalState is the single-valued approval verdict held by a buffer.
type ApprovalState string

const (
	// ApprovalNone means no approval action has been requested.
	ApprovalNone ApprovalState = "none"

	// ApprovalApproved requests an approving review on execution.
	ApprovalApproved ApprovalState = "approved"

	// ApprovalChangesRequested requests a changes-requested action on
	// execution.
	ApprovalChangesRequested ApprovalState = "changes_requested"
)

// LineComment is one buffered line-anchored comment.
type LineComment struct {
	// FilePath is the file the comment anchors to.
	FilePath string `json:"file"`

	// Line is the line in the new version of the file.
	Line int `json:"line"`

	// Body is the comment text.
	Body string `json:"body"`

	// Suggestion is an optional suggested replacement, rendered into
	// the posted body as a suggestion block.
	Suggestion string `json:"suggestion,omitempty"`
}

// BufferState is the counts-only snapshot returned by GetState. It
// carries no payloads: it exists for telemetry and for agents checking
// what they have staged so far.
type BufferState struct {
	// LineComments is the number of buffered line comments.
	LineComments int `json:"line_comments"`

	// ReviewComments is the number of buffered review-level comments.
	ReviewComments int `json:"review_comments"`

	// Summaries is the number of buffered summary fragments.
	Summaries int `json:"summaries"`

	// HasGeneralComment reports whether the single general comment
	// slot is occupied.
	HasGeneralComment bool `json:"has_general_comment"`

	// ApprovalState is the current approval verdict.
	ApprovalState ApprovalState `json:"approval_state"`
}

// Buffer accumulates pending actions for one PR-processing run. Lists are
// append-only until Clear resets everything atomically; the general
// comment slot and the approval state are last-writer-wins. Mutators
// never validate: they store whatever the caller supplies, because buffer
// mutation must stay unconditionally available to the agent loop.
// Validation belongs at the tool boundary.
type Buffer struct {
	mu sync.Mutex

	lineComments    []LineComment
	reviewComments  []string
	summaries       []string
	generalComment  fn.Option[string]
	approvalState   ApprovalState
	approvalComment fn.Option[string]
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		approvalState: ApprovalNone,
	}
}

// AddLineComment appends a line-anchored comment.
func (b *Buffer) AddLineComment(c LineComment) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lineComments = append(b.lineComments, c)
}

// AddReviewComment appends a review-level comment.
func (b *Buffer) AddReviewComment(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reviewComments = append(b.reviewComments, body)
}

// AddSummary appends a summary fragment. Fragments are concatenated into
// one posted summary on execution.
func (b *Buffer) AddSummary(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.summaries = append(b.summaries, body)
}

// SetGeneralComment fills the single general comment slot, replacing any
// previous value.
func (b *Buffer) SetGeneralComment(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generalComment = fn.Some(body)
}

// MarkForApproval sets the approval verdict to Approved, overwriting any
// earlier verdict. The comment is posted with the approving review.
func (b *Buffer) MarkForApproval(comment fn.Option[string]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.approvalState = ApprovalApproved
	b.approvalComment = comment
}

// MarkForChangesRequested sets the approval verdict to ChangesRequested,
// overwriting any earlier verdict.
func (b *Buffer) MarkForChangesRequested(comment fn.Option[string]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.approvalState = ApprovalChangesRequested
	b.approvalComment = comment
}

// GetState returns the counts-only snapshot.
func (b *Buffer) GetState() BufferState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BufferState{
		LineComments:      len(b.lineComments),
		ReviewComments:    len(b.reviewComments),
		Summaries:         len(b.summaries),
		HasGeneralComment: b.generalComment.IsSome(),
		ApprovalState:     b.approvalState,
	}
}

// Clear resets every field to its zero value in one step.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reset()
}

// reset clears all fields. Callers must hold mu.
func (b *Buffer) reset() {
	b.lineComments = nil
	b.reviewComments = nil
	b.summaries = nil
	b.generalComment = fn.None[string]()
	b.approvalState = ApprovalNone
	b.approvalComment = fn.None[string]()
}

// bufferContents is the full payload snapshot the executor drains.
type bufferContents struct {
	lineComments    []LineComment
	reviewComments  []string
	summaries       []string
	generalComment  fn.Option[string]
	approvalState   ApprovalState
	approvalComment fn.Option[string]
}

// drain atomically takes the full contents and resets the buffer, so a
// second execution of the same buffer posts nothing twice.
func (b *Buffer) drain() bufferContents {
	b.mu.Lock()
	defer b.mu.Unlock()

	contents := bufferContents{
		lineComments:    b.lineComments,
		reviewComments:  b.reviewComments,
		summaries:       b.summaries,
		generalComment:  b.generalComment,
		approvalState:   b.approvalState,
		approvalComment: b.approvalComment,
	}
	b.reset()

	return contents
}
