package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/roasbeef/revq/internal/githubapi"
)

// summaryHeading heads the posted summary comment.
const summaryHeading = "## PR Summary"

// changesRequestedHeading labels the degraded changes-requested comment
// posted when the hosting platform call is modeled as a plain comment.
const changesRequestedHeading = "## Changes Requested"

// Result is the outcome of executing a buffer once: per-category counts
// of what was actually posted, URLs of the created artifacts, and the
// aggregated error state. Callers inspect Result rather than catching
// errors; execution never propagates a posting failure past this
// boundary.
type Result struct {
	// ReviewCommentsPosted counts successfully posted review-level
	// comments.
	ReviewCommentsPosted int `json:"review_comments_posted"`

	// LineCommentsPosted counts line comments posted by the batched
	// call. The batch succeeds or fails as a unit.
	LineCommentsPosted int `json:"line_comments_posted"`

	// SummariesPosted counts the summary fragments included in the
	// posted summary comment.
	SummariesPosted int `json:"summaries_posted"`

	// GeneralCommentPosted reports whether the general comment went
	// out.
	GeneralCommentPosted bool `json:"general_comment_posted"`

	// ApprovalActionPerformed reports whether an approval or
	// changes-requested action was carried out.
	ApprovalActionPerformed bool `json:"approval_action_performed"`

	// SummaryURL, GeneralCommentURL, and ApprovalURL locate the
	// created artifacts when the corresponding call succeeded, empty
	// otherwise.
	SummaryURL        string `json:"summary_url,omitempty"`
	GeneralCommentURL string `json:"general_comment_url,omitempty"`
	ApprovalURL       string `json:"approval_url,omitempty"`

	// Success is false when any category call failed.
	Success bool `json:"success"`

	// Error describes the last failure when Success is false.
	Error string `json:"error,omitempty"`
}

// TotalActionsPosted sums the per-category successful counts, plus one
// for a performed approval or changes-requested action.
func (r Result) TotalActionsPosted() int {
	total := r.ReviewCommentsPosted + r.LineCommentsPosted +
		r.SummariesPosted

	if r.GeneralCommentPosted {
		total++
	}
	if r.ApprovalActionPerformed {
		total++
	}

	return total
}

// Executor drains a buffer against the hosting platform. Categories post
// in a fixed order and fail independently: a failed summary never blocks
// the approval step. The buffer is reset as part of execution, so a
// cancelled or failed run leaves it empty rather than half-drained.
type Executor struct {
	api githubapi.HostingAPI
}

// NewExecutor creates an executor posting through the given hosting API.
func NewExecutor(api githubapi.HostingAPI) *Executor {
	return &Executor{
		api: api,
	}
}

// Execute drains the buffer and posts its contents to the given pull
// request in the fixed category order: review comments, batched line
// comments, the concatenated summary, the general comment, then the
// approval action. Each category failure is recorded (last error wins)
// without stopping later categories. The returned result carries counts
// of whatever succeeded.
func (e *Executor) Execute(ctx context.Context, prNumber int,
	buf *Buffer) Result {

	contents := buf.drain()

	result := Result{Success: true}
	fail := func(err error) {
		result.Success = false
		result.Error = err.Error()

		log.ErrorS(ctx, "Action category failed", err,
			"pr", prNumber)
	}

	// Review-level comments, one call each so a single bad comment
	// does not take down its siblings.
	for _, body := range contents.reviewComments {
		_, err := e.api.CreateReviewComment(ctx, prNumber, body)
		if err != nil {
			fail(err)
			continue
		}
		result.ReviewCommentsPosted++
	}

	// Line comments go out as one batched review call, so the whole
	// category succeeds or fails together.
	if len(contents.lineComments) > 0 {
		reqs := make(
			[]githubapi.LineCommentRequest, 0,
			len(contents.lineComments),
		)
		for _, c := range contents.lineComments {
			reqs = append(reqs, githubapi.LineCommentRequest{
				Path: c.FilePath,
				Line: c.Line,
				Body: renderLineCommentBody(c),
			})
		}

		_, err := e.api.CreateMultipleLineComments(
			ctx, prNumber, reqs,
		)
		if err != nil {
			fail(err)
		} else {
			result.LineCommentsPosted = len(
				contents.lineComments,
			)
		}
	}

	// Summaries concatenate into a single headed comment.
	if len(contents.summaries) > 0 {
		body := summaryHeading + "\n\n" + strings.Join(
			contents.summaries, "\n\n",
		)

		url, err := e.api.CreateIssueComment(ctx, prNumber, body)
		if err != nil {
			fail(err)
		} else {
			result.SummariesPosted = len(contents.summaries)
			result.SummaryURL = url
		}
	}

	// General comment posts verbatim.
	contents.generalComment.WhenSome(func(body string) {
		url, err := e.api.CreateIssueComment(ctx, prNumber, body)
		if err != nil {
			fail(err)
			return
		}
		result.GeneralCommentPosted = true
		result.GeneralCommentURL = url
	})

	// Approval action last, so every staged comment lands before the
	// verdict.
	switch contents.approvalState {
	case ApprovalApproved:
		url, err := e.api.ApprovePullRequest(
			ctx, prNumber,
			contents.approvalComment.UnwrapOr(""),
		)
		if err != nil {
			fail(err)
		} else {
			result.ApprovalActionPerformed = true
			result.ApprovalURL = url
		}

	case ApprovalChangesRequested:
		// Degrade to a labeled comment rather than a first-class
		// changes-requested review, so the verdict is still
		// visible on platforms without the primitive.
		body := changesRequestedHeading
		contents.approvalComment.WhenSome(func(comment string) {
			body += "\n\n" + comment
		})

		url, err := e.api.CreateIssueComment(ctx, prNumber, body)
		if err != nil {
			fail(err)
		} else {
			result.ApprovalActionPerformed = true
			result.ApprovalURL = url
		}
	}

	log.InfoS(ctx, "Executed buffered actions",
		"pr", prNumber,
		"total_posted", result.TotalActionsPosted(),
		"success", result.Success)

	return result
}

// renderLineCommentBody appends the buffered suggestion as a suggestion
// block when one exists.
func renderLineCommentBody(c LineComment) string {
	if c.Suggestion == "" {
		return c.Body
	}

	return fmt.Sprintf("%s\n\n```suggestion\n%s\n```",
		c.Body, c.Suggestion)
}
