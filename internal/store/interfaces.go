// Package store persists review runs, extracted issues, and executed
// action results: the audit trail behind every posted review action.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/review"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("review run not found")

// ReviewRun is one persisted pipeline execution.
type ReviewRun struct {
	// ID is the run's UUID.
	ID string

	// Repo is the "owner/name" repository slug.
	Repo string

	// PRNumber is the pull request reviewed.
	PRNumber int

	// Strategy is the sequencer strategy used.
	Strategy string

	// Summary is the document-level review summary.
	Summary string

	// CreatedAt is when the run started.
	CreatedAt time.Time

	// CompletedAt is when the run finished, zero while in flight.
	CompletedAt time.Time
}

// ExecutedResult is one persisted buffer execution.
type ExecutedResult struct {
	// RunID is the owning run.
	RunID string

	// Result is the execution outcome.
	Result actions.Result

	// ExecutedAt is when the buffer was executed.
	ExecutedAt time.Time
}

// CreateRunParams carries the fields for a new run row.
type CreateRunParams struct {
	ID       string
	Repo     string
	PRNumber int
	Strategy string
}

// RunStore handles review run persistence.
type RunStore interface {
	// CreateRun inserts a new in-flight run.
	CreateRun(ctx context.Context, params CreateRunParams) error

	// CompleteRun records the summary and completion time of a run.
	CompleteRun(ctx context.Context, runID, summary string) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (ReviewRun, error)

	// ListRuns retrieves the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]ReviewRun, error)
}

// IssueStore handles extracted issue persistence.
type IssueStore interface {
	// SaveIssues records a run's findings in document order,
	// replacing any previously saved set for the run.
	SaveIssues(ctx context.Context, runID string,
		issues []review.Issue) error

	// GetIssues retrieves a run's findings in document order.
	GetIssues(ctx context.Context,
		runID string) ([]review.Issue, error)
}

// ResultStore handles executed action result persistence.
type ResultStore interface {
	// SaveResult appends one buffer execution outcome to the run's
	// audit trail.
	SaveResult(ctx context.Context, runID string,
		result actions.Result) error

	// GetResults retrieves a run's execution outcomes in order.
	GetResults(ctx context.Context,
		runID string) ([]ExecutedResult, error)
}

// Storage is the combined persistence interface the pipeline and CLI
// depend on.
type Storage interface {
	RunStore
	IssueStore
	ResultStore
}
