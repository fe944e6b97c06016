package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/review"
)

// SQLStore is the SQLite-backed Storage implementation.
type SQLStore struct {
	db *sql.DB
}

// A compile-time check that SQLStore satisfies Storage.
var _ Storage = (*SQLStore)(nil)

// NewSQLStore creates a store over an already-opened database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db: db,
	}
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *SQLStore) withTx(ctx context.Context,
	fn func(*sql.Tx) error) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("Unable to roll back tx: %v", rbErr)
		}

		return err
	}

	return tx.Commit()
}

// CreateRun inserts a new in-flight run.
func (s *SQLStore) CreateRun(ctx context.Context,
	params CreateRunParams) error {

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_runs (
			id, repo, pr_number, strategy, created_at
		) VALUES (?, ?, ?, ?, ?)`,
		params.ID, params.Repo, params.PRNumber, params.Strategy,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to create run %s: %w",
			params.ID, err)
	}

	return nil
}

// CompleteRun records the summary and completion time of a run.
func (s *SQLStore) CompleteRun(ctx context.Context, runID,
	summary string) error {

	res, err := s.db.ExecContext(ctx, `
		UPDATE review_runs
		SET summary = ?, completed_at = ?
		WHERE id = ?`,
		summary, time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("unable to complete run %s: %w",
			runID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRunNotFound
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLStore) GetRun(ctx context.Context,
	runID string) (ReviewRun, error) {

	var (
		run         ReviewRun
		completedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, repo, pr_number, strategy, summary,
			created_at, completed_at
		FROM review_runs WHERE id = ?`, runID,
	).Scan(
		&run.ID, &run.Repo, &run.PRNumber, &run.Strategy,
		&run.Summary, &run.CreatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewRun{}, ErrRunNotFound
	}
	if err != nil {
		return ReviewRun{}, fmt.Errorf("unable to get run %s: %w",
			runID, err)
	}

	if completedAt.Valid {
		run.CompletedAt = completedAt.Time
	}

	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *SQLStore) ListRuns(ctx context.Context,
	limit int) ([]ReviewRun, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo, pr_number, strategy, summary,
			created_at, completed_at
		FROM review_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to list runs: %w", err)
	}
	defer rows.Close()

	var runs []ReviewRun
	for rows.Next() {
		var (
			run         ReviewRun
			completedAt sql.NullTime
		)
		err := rows.Scan(
			&run.ID, &run.Repo, &run.PRNumber, &run.Strategy,
			&run.Summary, &run.CreatedAt, &completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan run: %w",
				err)
		}
		if completedAt.Valid {
			run.CompletedAt = completedAt.Time
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SaveIssues records a run's findings in document order, replacing any
// previously saved set for the run.
func (s *SQLStore) SaveIssues(ctx context.Context, runID string,
	issues []review.Issue) error {

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM issues WHERE run_id = ?`, runID,
		)
		if err != nil {
			return fmt.Errorf("unable to clear issues for "+
				"run %s: %w", runID, err)
		}

		for i, issue := range issues {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO issues (
					run_id, position, title, severity,
					file_path, start_line, end_line,
					description, suggestion
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, i, issue.Title,
				string(issue.Severity), issue.FilePath,
				issue.StartLine, issue.EndLine,
				issue.Description, issue.Suggestion,
			)
			if err != nil {
				return fmt.Errorf("unable to save issue "+
					"%d for run %s: %w", i, runID, err)
			}
		}

		return nil
	})
}

// GetIssues retrieves a run's findings in document order.
func (s *SQLStore) GetIssues(ctx context.Context,
	runID string) ([]review.Issue, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, severity, file_path, start_line, end_line,
			description, suggestion
		FROM issues
		WHERE run_id = ?
		ORDER BY position ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to get issues for run "+
			"%s: %w", runID, err)
	}
	defer rows.Close()

	var issues []review.Issue
	for rows.Next() {
		var (
			issue    review.Issue
			severity string
		)
		err := rows.Scan(
			&issue.Title, &severity, &issue.FilePath,
			&issue.StartLine, &issue.EndLine,
			&issue.Description, &issue.Suggestion,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan issue: %w",
				err)
		}
		issue.Severity = review.Severity(severity)

		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

// SaveResult appends one buffer execution outcome to the run's audit
// trail.
func (s *SQLStore) SaveResult(ctx context.Context, runID string,
	result actions.Result) error {

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_results (
			run_id, review_comments_posted,
			line_comments_posted, summaries_posted,
			general_comment_posted, approval_performed,
			success, error, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.ReviewCommentsPosted,
		result.LineCommentsPosted, result.SummariesPosted,
		result.GeneralCommentPosted, result.ApprovalActionPerformed,
		result.Success, result.Error, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to save result for run %s: %w",
			runID, err)
	}

	return nil
}

// GetResults retrieves a run's execution outcomes in order.
func (s *SQLStore) GetResults(ctx context.Context,
	runID string) ([]ExecutedResult, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT review_comments_posted, line_comments_posted,
			summaries_posted, general_comment_posted,
			approval_performed, success, error, executed_at
		FROM action_results
		WHERE run_id = ?
		ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to get results for run "+
			"%s: %w", runID, err)
	}
	defer rows.Close()

	var results []ExecutedResult
	for rows.Next() {
		executed := ExecutedResult{RunID: runID}
		err := rows.Scan(
			&executed.Result.ReviewCommentsPosted,
			&executed.Result.LineCommentsPosted,
			&executed.Result.SummariesPosted,
			&executed.Result.GeneralCommentPosted,
			&executed.Result.ApprovalActionPerformed,
			&executed.Result.Success,
			&executed.Result.Error,
			&executed.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan result: %w",
				err)
		}

		results = append(results, executed)
	}

	return results, rows.Err()
}
