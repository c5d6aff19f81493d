package store

import (
	"context"
	"database/sql"

	"github.com/sourcefix/autofix/internal/domain"
)

// SQLiteStore is the durable RunStore implementation.
type SQLiteStore struct {
	DB *sql.DB
}

// NewSQLiteStore opens (or creates) the runs database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreInit.Code, domain.ErrStoreInit.Message, err)
	}
	return &SQLiteStore{DB: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

// Save upserts a run record.
func (s *SQLiteStore) Save(ctx context.Context, run domain.TaskRun) error {
	const q = `INSERT INTO task_runs (run_id, project_path, started_at, outcome, results_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
	project_path = excluded.project_path,
	started_at   = excluded.started_at,
	outcome      = excluded.outcome,
	results_json = excluded.results_json`
	_, err := s.DB.ExecContext(ctx, q,
		run.ID,
		run.ProjectPath,
		run.StartedAt,
		string(run.Outcome),
		run.ResultsJSON,
	)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "save run", err)
	}
	return nil
}

// Load retrieves a run by its id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*domain.TaskRun, error) {
	const q = `SELECT run_id, project_path, started_at, outcome, results_json
FROM task_runs WHERE run_id = ?`

	row := s.DB.QueryRowContext(ctx, q, id)

	var r domain.TaskRun
	var outcome string
	err := row.Scan(&r.ID, &r.ProjectPath, &r.StartedAt, &outcome, &r.ResultsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRunNotFound
		}
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "load run", err)
	}
	r.Outcome = domain.RunOutcome(outcome)
	return &r, nil
}

// ListByProject returns runs for a project path, most recent first.
func (s *SQLiteStore) ListByProject(ctx context.Context, projectPath string) ([]domain.TaskRun, error) {
	const q = `SELECT run_id, project_path, started_at, outcome, results_json
FROM task_runs WHERE project_path = ? ORDER BY started_at DESC`
	return s.queryRuns(ctx, q, projectPath)
}

// ListRecent returns up to limit runs, most recent first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.TaskRun, error) {
	const q = `SELECT run_id, project_path, started_at, outcome, results_json
FROM task_runs ORDER BY started_at DESC LIMIT ?`
	return s.queryRuns(ctx, q, limit)
}

// ListByOutcome returns runs with the given outcome, most recent first.
func (s *SQLiteStore) ListByOutcome(ctx context.Context, outcome domain.RunOutcome) ([]domain.TaskRun, error) {
	const q = `SELECT run_id, project_path, started_at, outcome, results_json
FROM task_runs WHERE outcome = ? ORDER BY started_at DESC`
	return s.queryRuns(ctx, q, string(outcome))
}

// Delete removes a run and its audit trail.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM audit_events WHERE run_id = ?`, id); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "delete run audit", err)
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM task_runs WHERE run_id = ?`, id)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "delete run", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "check rows affected", err)
	}
	if n == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// DeleteOlderThan removes runs started before the given unix time and
// returns how many were deleted.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, unix int64) (int, error) {
	const qa = `DELETE FROM audit_events WHERE run_id IN (SELECT run_id FROM task_runs WHERE started_at < ?)`
	if _, err := s.DB.ExecContext(ctx, qa, unix); err != nil {
		return 0, domain.WrapEngineError(domain.ErrStoreWrite.Code, "purge run audit", err)
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM task_runs WHERE started_at < ?`, unix)
	if err != nil {
		return 0, domain.WrapEngineError(domain.ErrStoreWrite.Code, "purge runs", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapEngineError(domain.ErrStoreWrite.Code, "check rows affected", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) queryRuns(ctx context.Context, q string, args ...any) ([]domain.TaskRun, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list runs", err)
	}
	defer rows.Close()

	var runs []domain.TaskRun
	for rows.Next() {
		var r domain.TaskRun
		var outcome string
		if err := rows.Scan(&r.ID, &r.ProjectPath, &r.StartedAt, &outcome, &r.ResultsJSON); err != nil {
			return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "scan run", err)
		}
		r.Outcome = domain.RunOutcome(outcome)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
