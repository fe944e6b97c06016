// Package githubapi talks to the code hosting platform. The HostingAPI
// interface is the seam the rest of the pipeline depends on; the REST
// client below is its production implementation and FakeAPI its test
// double.
package githubapi

import (
	"context"
)

// PullRequest is the metadata for one pull request.
type PullRequest struct {
	// Number is the PR number within the repository.
	Number int `json:"number"`

	// Title and Body are the author-supplied description.
	Title string `json:"title"`
	Body  string `json:"body"`

	// HeadSHA is the tip commit of the PR branch, required when
	// anchoring review comments.
	HeadSHA string `json:"head_sha"`

	// HTMLURL is the web URL of the pull request.
	HTMLURL string `json:"html_url"`
}

// PullRequestFile is one changed file within a pull request.
type PullRequestFile struct {
	// Filename is the path after the change.
	Filename string `json:"filename"`

	// Status is added, modified, removed, or renamed.
	Status string `json:"status"`

	// Additions and Deletions are the changed line counts.
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`

	// Patch is the per-file unified diff hunk, possibly empty for
	// binary files.
	Patch string `json:"patch,omitempty"`
}

// LineCommentRequest is one line-anchored comment within a batched
// review call.
type LineCommentRequest struct {
	// Path is the file the comment anchors to.
	Path string `json:"path"`

	// Line is the line in the new version of the file.
	Line int `json:"line"`

	// Body is the comment text.
	Body string `json:"body"`
}

// HostingAPI is the hosting platform seam consumed by the action
// executor and the pipeline. Every call may fail with a transport or API
// error; callers treat each failure as scoped to that one call.
type HostingAPI interface {
	// GetPullRequest fetches PR metadata.
	GetPullRequest(ctx context.Context,
		number int) (*PullRequest, error)

	// GetPullRequestFiles lists the changed files.
	GetPullRequestFiles(ctx context.Context,
		number int) ([]PullRequestFile, error)

	// GetPullRequestDiff fetches the full unified diff.
	GetPullRequestDiff(ctx context.Context, number int) (string, error)

	// CreateReviewComment posts one review-level comment (a review
	// with a body and no line anchors), returning its URL.
	CreateReviewComment(ctx context.Context, number int,
		body string) (string, error)

	// CreateMultipleLineComments posts all line comments as one
	// batched review call. The batch succeeds or fails as a unit.
	CreateMultipleLineComments(ctx context.Context, number int,
		comments []LineCommentRequest) (string, error)

	// CreateIssueComment posts a PR-level conversation comment,
	// returning its URL.
	CreateIssueComment(ctx context.Context, number int,
		body string) (string, error)

	// ApprovePullRequest submits an approving review with the given
	// comment, returning the review URL.
	ApprovePullRequest(ctx context.Context, number int,
		comment string) (string, error)
}
