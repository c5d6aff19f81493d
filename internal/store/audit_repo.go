package store

import (
	"context"

	"github.com/sourcefix/autofix/internal/domain"
)

// AppendAudit inserts an audit event.
func (s *SQLiteStore) AppendAudit(ctx context.Context, ev domain.AuditEvent) error {
	const q = `INSERT INTO audit_events (id, run_id, task_id, action, detail_json, severity, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, q,
		ev.ID,
		ev.RunID,
		ev.TaskID,
		ev.Action,
		ev.DetailJSON,
		ev.Severity,
		ev.CreatedAt,
	)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "append audit event", err)
	}
	return nil
}

// ListAudit returns all audit events for a run, ordered by creation time.
func (s *SQLiteStore) ListAudit(ctx context.Context, runID string) ([]domain.AuditEvent, error) {
	const q = `SELECT id, run_id, task_id, action, detail_json, severity, created_at
FROM audit_events
WHERE run_id = ?
ORDER BY created_at ASC, id ASC`

	rows, err := s.DB.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list audit events", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var ev domain.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.TaskID, &ev.Action,
			&ev.DetailJSON, &ev.Severity, &ev.CreatedAt); err != nil {
			return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "scan audit event", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
