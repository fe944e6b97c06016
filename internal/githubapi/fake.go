package githubapi

import (
	"context"
	"fmt"
	"sync"
)

// FakeAPI is an in-memory HostingAPI for tests. Posted content is
// recorded for assertions, and per-method error hooks simulate transport
// failures.
type FakeAPI struct {
	mu sync.Mutex

	// PR is the metadata returned by GetPullRequest.
	PR PullRequest

	// Files is returned by GetPullRequestFiles.
	Files []PullRequestFile

	// Diff is returned by GetPullRequestDiff.
	Diff string

	// Recorded content, appended in call order.
	ReviewComments []string
	LineComments   [][]LineCommentRequest
	IssueComments  []string
	Approvals      []string

	// Error hooks. A set hook makes the corresponding method fail.
	ReviewCommentErr error
	LineCommentsErr  error
	IssueCommentErr  error
	ApproveErr       error
}

// A compile-time check that FakeAPI satisfies HostingAPI.
var _ HostingAPI = (*FakeAPI)(nil)

// GetPullRequest returns the configured metadata.
func (f *FakeAPI) GetPullRequest(_ context.Context,
	number int) (*PullRequest, error) {

	pr := f.PR
	pr.Number = number

	return &pr, nil
}

// GetPullRequestFiles returns the configured file list.
func (f *FakeAPI) GetPullRequestFiles(_ context.Context,
	_ int) ([]PullRequestFile, error) {

	return f.Files, nil
}

// GetPullRequestDiff returns the configured diff.
func (f *FakeAPI) GetPullRequestDiff(_ context.Context,
	_ int) (string, error) {

	return f.Diff, nil
}

// CreateReviewComment records the comment or fails via the hook.
func (f *FakeAPI) CreateReviewComment(_ context.Context, number int,
	body string) (string, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReviewCommentErr != nil {
		return "", f.ReviewCommentErr
	}
	f.ReviewComments = append(f.ReviewComments, body)

	return fmt.Sprintf("https://example.test/pr/%d/review/%d",
		number, len(f.ReviewComments)), nil
}

// CreateMultipleLineComments records the batch or fails via the hook.
func (f *FakeAPI) CreateMultipleLineComments(_ context.Context,
	number int, comments []LineCommentRequest) (string, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.LineCommentsErr != nil {
		return "", f.LineCommentsErr
	}
	f.LineComments = append(f.LineComments, comments)

	return fmt.Sprintf("https://example.test/pr/%d/review/batch",
		number), nil
}

// CreateIssueComment records the comment or fails via the hook.
func (f *FakeAPI) CreateIssueComment(_ context.Context, number int,
	body string) (string, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.IssueCommentErr != nil {
		return "", f.IssueCommentErr
	}
	f.IssueComments = append(f.IssueComments, body)

	return fmt.Sprintf("https://example.test/pr/%d/comment/%d",
		number, len(f.IssueComments)), nil
}

// ApprovePullRequest records the approval or fails via the hook.
func (f *FakeAPI) ApprovePullRequest(_ context.Context, number int,
	comment string) (string, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ApproveErr != nil {
		return "", f.ApproveErr
	}
	f.Approvals = append(f.Approvals, comment)

	return fmt.Sprintf("https://example.test/pr/%d/approval",
		number), nil
}
