package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcefix/autofix/internal/domain"
)

// MemoryStore is an in-memory RunStore with the same query semantics as the
// SQLite implementation. Intended for tests and callers that opt out of
// durable persistence.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]domain.TaskRun
	audit map[string][]domain.AuditEvent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]domain.TaskRun),
		audit: make(map[string][]domain.AuditEvent),
	}
}

// Save upserts a run record.
func (s *MemoryStore) Save(_ context.Context, run domain.TaskRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// Load retrieves a run by its id.
func (s *MemoryStore) Load(_ context.Context, id string) (*domain.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return &r, nil
}

// ListByProject returns runs for a project path, most recent first.
func (s *MemoryStore) ListByProject(_ context.Context, projectPath string) ([]domain.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r domain.TaskRun) bool { return r.ProjectPath == projectPath }, 0), nil
}

// ListRecent returns up to limit runs, most recent first.
func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]domain.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(domain.TaskRun) bool { return true }, limit), nil
}

// ListByOutcome returns runs with the given outcome, most recent first.
func (s *MemoryStore) ListByOutcome(_ context.Context, outcome domain.RunOutcome) ([]domain.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r domain.TaskRun) bool { return r.Outcome == outcome }, 0), nil
}

// Delete removes a run and its audit trail.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return domain.ErrRunNotFound
	}
	delete(s.runs, id)
	delete(s.audit, id)
	return nil
}

// DeleteOlderThan removes runs started before the given unix time.
func (s *MemoryStore) DeleteOlderThan(_ context.Context, unix int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, r := range s.runs {
		if r.StartedAt < unix {
			delete(s.runs, id)
			delete(s.audit, id)
			n++
		}
	}
	return n, nil
}

// AppendAudit records an audit event.
func (s *MemoryStore) AppendAudit(_ context.Context, ev domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit[ev.RunID] = append(s.audit[ev.RunID], ev)
	return nil
}

// ListAudit returns all audit events for a run in append order.
func (s *MemoryStore) ListAudit(_ context.Context, runID string) ([]domain.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]domain.AuditEvent, len(s.audit[runID]))
	copy(events, s.audit[runID])
	return events, nil
}

// collect filters and sorts runs by recency under the caller's lock.
func (s *MemoryStore) collect(keep func(domain.TaskRun) bool, limit int) []domain.TaskRun {
	var runs []domain.TaskRun
	for _, r := range s.runs {
		if keep(r) {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt > runs[j].StartedAt })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs
}
