package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// defaultBaseURL is the GitHub REST v3 endpoint.
	defaultBaseURL = "https://api.github.com"

	// defaultHTTPTimeout bounds a single API call.
	defaultHTTPTimeout = 30 * time.Second

	// acceptJSON is the standard REST v3 media type.
	acceptJSON = "application/vnd.github+json"

	// acceptDiff asks the PR endpoint for the raw unified diff.
	acceptDiff = "application/vnd.github.diff"

	// reviewEventComment submits a review without an approval verdict.
	reviewEventComment = "COMMENT"

	// reviewEventApprove submits an approving review.
	reviewEventApprove = "APPROVE"
)

// Config configures a REST Client.
type Config struct {
	// Owner and Repo name the repository.
	Owner string
	Repo  string

	// Token is the bearer credential. Required.
	Token string

	// BaseURL overrides the API endpoint, used by tests. Empty means
	// the production endpoint.
	BaseURL string
}

// Client is the REST v3 implementation of HostingAPI.
type Client struct {
	cfg     Config
	baseURL string
	client  *http.Client
}

// A compile-time check that Client satisfies HostingAPI.
var _ HostingAPI = (*Client)(nil)

// NewClient creates a REST client for the configured repository.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("repository owner and name are " +
			"required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("API token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}, nil
}

// do issues one API call, decoding a JSON response into out when out is
// non-nil. The accept header selects the response representation.
func (c *Client) do(ctx context.Context, method, path, accept string,
	payload, out any) error {

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("unable to marshal request: %w",
				err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, body,
	)
	if err != nil {
		return fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("unable to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API error (status %d) on %s %s: %s",
			resp.StatusCode, method, path, string(respBody))
	}

	if out == nil {
		return nil
	}

	switch v := out.(type) {
	case *string:
		*v = string(respBody)
	default:
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unable to parse response: %w",
				err)
		}
	}

	return nil
}

// prPath builds a pulls endpoint path for this repository.
func (c *Client) prPath(number int, suffix string) string {
	return fmt.Sprintf("/repos/%s/%s/pulls/%d%s",
		c.cfg.Owner, c.cfg.Repo, number, suffix)
}

// pullRequestResponse is the subset of the pulls endpoint payload the
// pipeline needs.
type pullRequestResponse struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Head    struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

// GetPullRequest fetches PR metadata.
func (c *Client) GetPullRequest(ctx context.Context,
	number int) (*PullRequest, error) {

	var resp pullRequestResponse
	err := c.do(
		ctx, http.MethodGet, c.prPath(number, ""), acceptJSON,
		nil, &resp,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch PR #%d: %w",
			number, err)
	}

	return &PullRequest{
		Number:  resp.Number,
		Title:   resp.Title,
		Body:    resp.Body,
		HeadSHA: resp.Head.SHA,
		HTMLURL: resp.HTMLURL,
	}, nil
}

// GetPullRequestFiles lists the changed files.
func (c *Client) GetPullRequestFiles(ctx context.Context,
	number int) ([]PullRequestFile, error) {

	var files []PullRequestFile
	err := c.do(
		ctx, http.MethodGet, c.prPath(number, "/files"),
		acceptJSON, nil, &files,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch PR #%d files: %w",
			number, err)
	}

	return files, nil
}

// GetPullRequestDiff fetches the full unified diff.
func (c *Client) GetPullRequestDiff(ctx context.Context,
	number int) (string, error) {

	var diff string
	err := c.do(
		ctx, http.MethodGet, c.prPath(number, ""), acceptDiff,
		nil, &diff,
	)
	if err != nil {
		return "", fmt.Errorf("unable to fetch PR #%d diff: %w",
			number, err)
	}

	return diff, nil
}

// createReviewRequest is the reviews endpoint payload.
type createReviewRequest struct {
	Body     string               `json:"body,omitempty"`
	Event    string               `json:"event"`
	Comments []LineCommentRequest `json:"comments,omitempty"`
}

// createReviewResponse is the subset of the reviews payload we use.
type createReviewResponse struct {
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url"`
}

// CreateReviewComment posts one review-level comment.
func (c *Client) CreateReviewComment(ctx context.Context, number int,
	body string) (string, error) {

	var resp createReviewResponse
	err := c.do(
		ctx, http.MethodPost, c.prPath(number, "/reviews"),
		acceptJSON, createReviewRequest{
			Body:  body,
			Event: reviewEventComment,
		}, &resp,
	)
	if err != nil {
		return "", fmt.Errorf("unable to post review comment on "+
			"PR #%d: %w", number, err)
	}

	log.DebugS(ctx, "Posted review comment",
		"pr", number, "url", resp.HTMLURL)

	return resp.HTMLURL, nil
}

// CreateMultipleLineComments posts all line comments as one batched
// review.
func (c *Client) CreateMultipleLineComments(ctx context.Context,
	number int, comments []LineCommentRequest) (string, error) {

	if len(comments) == 0 {
		return "", nil
	}

	var resp createReviewResponse
	err := c.do(
		ctx, http.MethodPost, c.prPath(number, "/reviews"),
		acceptJSON, createReviewRequest{
			Event:    reviewEventComment,
			Comments: comments,
		}, &resp,
	)
	if err != nil {
		return "", fmt.Errorf("unable to post %d line comments on "+
			"PR #%d: %w", len(comments), number, err)
	}

	log.DebugS(ctx, "Posted batched line comments",
		"pr", number, "count", len(comments))

	return resp.HTMLURL, nil
}

// issueCommentResponse is the subset of the issue comment payload we
// use.
type issueCommentResponse struct {
	HTMLURL string `json:"html_url"`
}

// CreateIssueComment posts a PR-level conversation comment.
func (c *Client) CreateIssueComment(ctx context.Context, number int,
	body string) (string, error) {

	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments",
		c.cfg.Owner, c.cfg.Repo, number)

	var resp issueCommentResponse
	err := c.do(
		ctx, http.MethodPost, path, acceptJSON,
		map[string]string{"body": body}, &resp,
	)
	if err != nil {
		return "", fmt.Errorf("unable to post comment on PR "+
			"#%d: %w", number, err)
	}

	return resp.HTMLURL, nil
}

// ApprovePullRequest submits an approving review.
func (c *Client) ApprovePullRequest(ctx context.Context, number int,
	comment string) (string, error) {

	var resp createReviewResponse
	err := c.do(
		ctx, http.MethodPost, c.prPath(number, "/reviews"),
		acceptJSON, createReviewRequest{
			Body:  comment,
			Event: reviewEventApprove,
		}, &resp,
	)
	if err != nil {
		return "", fmt.Errorf("unable to approve PR #%d: %w",
			number, err)
	}

	log.InfoS(ctx, "Approved pull request",
		"pr", number, "url", resp.HTMLURL)

	return resp.HTMLURL, nil
}
