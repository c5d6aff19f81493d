// Package store provides persistence for task runs and their audit trails.
package store

import (
	"context"

	"github.com/sourcefix/autofix/internal/domain"
)

// RunStore persists task runs. Save is an upsert: a load always reflects
// the latest completed save for a given id. Implementations must keep
// concurrent operations on different run ids from corrupting each other.
type RunStore interface {
	Save(ctx context.Context, run domain.TaskRun) error
	Load(ctx context.Context, id string) (*domain.TaskRun, error)
	ListByProject(ctx context.Context, projectPath string) ([]domain.TaskRun, error)
	ListRecent(ctx context.Context, limit int) ([]domain.TaskRun, error)
	ListByOutcome(ctx context.Context, outcome domain.RunOutcome) ([]domain.TaskRun, error)
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, unix int64) (int, error)

	AppendAudit(ctx context.Context, ev domain.AuditEvent) error
	ListAudit(ctx context.Context, runID string) ([]domain.AuditEvent, error)
}
