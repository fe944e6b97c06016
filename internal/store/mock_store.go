package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/review"
)

// MockStore provides an in-memory implementation of the Storage
// interface for testing purposes. All data is stored in maps and
// protected by a mutex.
type MockStore struct {
	mu sync.RWMutex

	runs    map[string]ReviewRun
	issues  map[string][]review.Issue
	results map[string][]ExecutedResult
}

// A compile-time check that MockStore satisfies Storage.
var _ Storage = (*MockStore)(nil)

// NewMockStore creates a new in-memory mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		runs:    make(map[string]ReviewRun),
		issues:  make(map[string][]review.Issue),
		results: make(map[string][]ExecutedResult),
	}
}

// CreateRun inserts a new in-flight run.
func (m *MockStore) CreateRun(_ context.Context,
	params CreateRunParams) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[params.ID] = ReviewRun{
		ID:        params.ID,
		Repo:      params.Repo,
		PRNumber:  params.PRNumber,
		Strategy:  params.Strategy,
		CreatedAt: time.Now().UTC(),
	}

	return nil
}

// CompleteRun records the summary and completion time of a run.
func (m *MockStore) CompleteRun(_ context.Context, runID,
	summary string) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return ErrRunNotFound
	}

	run.Summary = summary
	run.CompletedAt = time.Now().UTC()
	m.runs[runID] = run

	return nil
}

// GetRun retrieves a run by ID.
func (m *MockStore) GetRun(_ context.Context,
	runID string) (ReviewRun, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return ReviewRun{}, ErrRunNotFound
	}

	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (m *MockStore) ListRuns(_ context.Context,
	limit int) ([]ReviewRun, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]ReviewRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// SaveIssues records a run's findings in document order, replacing any
// previously saved set.
func (m *MockStore) SaveIssues(_ context.Context, runID string,
	issues []review.Issue) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.issues[runID] = append([]review.Issue(nil), issues...)

	return nil
}

// GetIssues retrieves a run's findings in document order.
func (m *MockStore) GetIssues(_ context.Context,
	runID string) ([]review.Issue, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]review.Issue(nil), m.issues[runID]...), nil
}

// SaveResult appends one buffer execution outcome.
func (m *MockStore) SaveResult(_ context.Context, runID string,
	result actions.Result) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[runID] = append(m.results[runID], ExecutedResult{
		RunID:      runID,
		Result:     result,
		ExecutedAt: time.Now().UTC(),
	})

	return nil
}

// GetResults retrieves a run's execution outcomes in order.
func (m *MockStore) GetResults(_ context.Context,
	runID string) ([]ExecutedResult, error) {

	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]ExecutedResult(nil), m.results[runID]...), nil
}
