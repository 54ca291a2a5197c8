package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/attendance-sheet/internal/models"
	"go.uber.org/zap"
)

// RunRepository handles run log database operations
type RunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a run in RUNNING state
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (
			id, source_file, template_file, status, started_at
		) VALUES (?, ?, ?, ?, ?)
	`

	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.SourceFile,
		run.TemplateFile,
		run.Status,
		run.StartedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create run", zap.String("run_id", run.ID), zap.Error(err))
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// Finish stores the outcome of a run together with its failures and skips
func (r *RunRepository) Finish(ctx context.Context, run *models.Run) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE runs
		SET output_file = ?, period_start = ?, period_end = ?,
			processed = ?, skipped = ?, failed = ?,
			status = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`
	res, err := tx.ExecContext(ctx, query,
		run.OutputFile,
		run.PeriodStart,
		run.PeriodEnd,
		run.Processed,
		run.Skipped,
		run.Failed,
		run.Status,
		run.ErrorMessage,
		*run.FinishedAt,
		run.ID,
	)
	if err != nil {
		r.logger.Error("Failed to finish run", zap.String("run_id", run.ID), zap.Error(err))
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}

	for _, f := range run.Failures {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_failures (run_id, employee, message) VALUES (?, ?, ?)",
			run.ID, f.Employee, f.Message,
		); err != nil {
			return fmt.Errorf("failed to record failure: %w", err)
		}
	}

	for _, s := range run.SkippedNames {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO run_skipped (run_id, employee, reason) VALUES (?, ?, ?)",
			run.ID, s.Employee, s.Reason,
		); err != nil {
			return fmt.Errorf("failed to record skipped employee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetByID retrieves a run with its failures and skipped employees.
// Returns nil, nil when the run does not exist.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, source_file, template_file, output_file, period_start, period_end,
			processed, skipped, failed, status, error_message, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get run", zap.String("run_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.Failures, err = r.failures(ctx, id); err != nil {
		return nil, err
	}
	if run.SkippedNames, err = r.skipped(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, source_file, template_file, output_file, period_start, period_end,
			processed, skipped, failed, status, error_message, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepository) failures(ctx context.Context, runID string) ([]models.RunFailure, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT employee, message FROM run_failures WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run failures: %w", err)
	}
	defer rows.Close()

	var out []models.RunFailure
	for rows.Next() {
		var f models.RunFailure
		if err := rows.Scan(&f.Employee, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *RunRepository) skipped(ctx context.Context, runID string) ([]models.RunSkipped, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT employee, reason FROM run_skipped WHERE run_id = ? ORDER BY employee", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skipped employees: %w", err)
	}
	defer rows.Close()

	var out []models.RunSkipped
	for rows.Next() {
		var s models.RunSkipped
		if err := rows.Scan(&s.Employee, &s.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan skipped employee: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var finishedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.SourceFile,
		&run.TemplateFile,
		&run.OutputFile,
		&run.PeriodStart,
		&run.PeriodEnd,
		&run.Processed,
		&run.Skipped,
		&run.Failed,
		&run.Status,
		&run.ErrorMessage,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}
