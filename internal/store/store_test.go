package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sourcefix/autofix/internal/domain"
)

// withStores runs fn against each RunStore implementation so both stay in
// lockstep on query semantics.
func withStores(t *testing.T, fn func(t *testing.T, s RunStore)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func run(id, project string, startedAt int64, outcome domain.RunOutcome) domain.TaskRun {
	return domain.TaskRun{
		ID:          id,
		ProjectPath: project,
		StartedAt:   startedAt,
		Outcome:     outcome,
		ResultsJSON: `[{"taskId":"` + id + `-t1"}]`,
	}
}

func TestSaveAndLoad(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		want := run("r1", "/proj/app", 100, domain.OutcomeSuccess)
		if err := s.Save(ctx, want); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := s.Load(ctx, "r1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if *got != want {
			t.Errorf("Load = %+v, want %+v", *got, want)
		}
	})
}

func TestLoad_NotFound(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, domain.ErrRunNotFound) {
			t.Errorf("err = %v, want ErrRunNotFound", err)
		}
	})
}

func TestSave_UpsertLatestWins(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		if err := s.Save(ctx, run("r1", "/proj/app", 100, domain.OutcomePartial)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := s.Save(ctx, run("r1", "/proj/app", 100, domain.OutcomeSuccess)); err != nil {
			t.Fatalf("re-Save: %v", err)
		}

		got, err := s.Load(ctx, "r1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Outcome != domain.OutcomeSuccess {
			t.Errorf("Outcome = %s, want success after upsert", got.Outcome)
		}

		recent, err := s.ListRecent(ctx, 10)
		if err != nil {
			t.Fatalf("ListRecent: %v", err)
		}
		if len(recent) != 1 {
			t.Errorf("upsert duplicated the row: %d runs", len(recent))
		}
	})
}

func TestListByProject_MostRecentFirst(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		for _, r := range []domain.TaskRun{
			run("r1", "/proj/app", 100, domain.OutcomeSuccess),
			run("r2", "/proj/app", 300, domain.OutcomeFailed),
			run("r3", "/proj/other", 200, domain.OutcomeSuccess),
		} {
			if err := s.Save(ctx, r); err != nil {
				t.Fatalf("Save(%s): %v", r.ID, err)
			}
		}

		runs, err := s.ListByProject(ctx, "/proj/app")
		if err != nil {
			t.Fatalf("ListByProject: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != "r2" || runs[1].ID != "r1" {
			t.Errorf("runs = %v", ids(runs))
		}
	})
}

func TestListRecent_Limit(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		for i := 1; i <= 5; i++ {
			r := run(fmt.Sprintf("r%d", i), "/proj/app", int64(i*100), domain.OutcomeSuccess)
			if err := s.Save(ctx, r); err != nil {
				t.Fatalf("Save: %v", err)
			}
		}

		runs, err := s.ListRecent(ctx, 3)
		if err != nil {
			t.Fatalf("ListRecent: %v", err)
		}
		if len(runs) != 3 || runs[0].ID != "r5" || runs[1].ID != "r4" || runs[2].ID != "r3" {
			t.Errorf("runs = %v", ids(runs))
		}
	})
}

func TestListByOutcome(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		for _, r := range []domain.TaskRun{
			run("r1", "/proj/app", 100, domain.OutcomeFailed),
			run("r2", "/proj/app", 200, domain.OutcomeSuccess),
			run("r3", "/proj/app", 300, domain.OutcomeFailed),
		} {
			if err := s.Save(ctx, r); err != nil {
				t.Fatalf("Save(%s): %v", r.ID, err)
			}
		}

		runs, err := s.ListByOutcome(ctx, domain.OutcomeFailed)
		if err != nil {
			t.Fatalf("ListByOutcome: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != "r3" || runs[1].ID != "r1" {
			t.Errorf("runs = %v", ids(runs))
		}
	})
}

func TestDelete(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		if err := s.Save(ctx, run("r1", "/proj/app", 100, domain.OutcomeSuccess)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := s.AppendAudit(ctx, audit("a1", "r1", 100)); err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}

		if err := s.Delete(ctx, "r1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Load(ctx, "r1"); !errors.Is(err, domain.ErrRunNotFound) {
			t.Errorf("Load after delete err = %v, want ErrRunNotFound", err)
		}
		events, err := s.ListAudit(ctx, "r1")
		if err != nil {
			t.Fatalf("ListAudit: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("audit trail survived delete: %d events", len(events))
		}

		if err := s.Delete(ctx, "r1"); !errors.Is(err, domain.ErrRunNotFound) {
			t.Errorf("second Delete err = %v, want ErrRunNotFound", err)
		}
	})
}

func TestDeleteOlderThan(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		for _, r := range []domain.TaskRun{
			run("r1", "/proj/app", 100, domain.OutcomeSuccess),
			run("r2", "/proj/app", 200, domain.OutcomeSuccess),
			run("r3", "/proj/app", 300, domain.OutcomeSuccess),
		} {
			if err := s.Save(ctx, r); err != nil {
				t.Fatalf("Save(%s): %v", r.ID, err)
			}
		}

		n, err := s.DeleteOlderThan(ctx, 250)
		if err != nil {
			t.Fatalf("DeleteOlderThan: %v", err)
		}
		if n != 2 {
			t.Errorf("deleted = %d, want 2", n)
		}

		runs, err := s.ListRecent(ctx, 10)
		if err != nil {
			t.Fatalf("ListRecent: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "r3" {
			t.Errorf("survivors = %v", ids(runs))
		}
	})
}

func TestAudit_AppendOrder(t *testing.T) {
	withStores(t, func(t *testing.T, s RunStore) {
		ctx := context.Background()
		if err := s.Save(ctx, run("r1", "/proj/app", 100, domain.OutcomeSuccess)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		for i := 1; i <= 3; i++ {
			if err := s.AppendAudit(ctx, audit(fmt.Sprintf("a%d", i), "r1", int64(100+i))); err != nil {
				t.Fatalf("AppendAudit: %v", err)
			}
		}

		events, err := s.ListAudit(ctx, "r1")
		if err != nil {
			t.Fatalf("ListAudit: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("%d events, want 3", len(events))
		}
		for i, ev := range events {
			if want := fmt.Sprintf("a%d", i+1); ev.ID != want {
				t.Errorf("event %d = %s, want %s", i, ev.ID, want)
			}
		}

		other, err := s.ListAudit(ctx, "r-other")
		if err != nil {
			t.Fatalf("ListAudit(other): %v", err)
		}
		if len(other) != 0 {
			t.Errorf("audit leaked across runs: %d events", len(other))
		}
	})
}

func audit(id, runID string, createdAt int64) domain.AuditEvent {
	return domain.AuditEvent{
		ID:         id,
		RunID:      runID,
		TaskID:     runID + "-t1",
		Action:     "task_decided",
		DetailJSON: `{"decision":"approved"}`,
		Severity:   "info",
		CreatedAt:  createdAt,
	}
}

func ids(runs []domain.TaskRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}
