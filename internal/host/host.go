// Package host wires finding production, task generation, approval, and
// transform execution into one auditable run.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sourcefix/autofix/internal/domain"
	"github.com/sourcefix/autofix/internal/generate"
	"github.com/sourcefix/autofix/internal/policy"
	"github.com/sourcefix/autofix/internal/store"
	"github.com/sourcefix/autofix/internal/transform"
)

// FindingProducer is the contract external analyzers implement.
type FindingProducer interface {
	Analyze(ctx context.Context, filePath, content string) ([]domain.Finding, error)
}

// Approver decides one task. Decisions are requested in generation order,
// exactly once per task.
type Approver interface {
	Decide(ctx context.Context, task *domain.AgentTask) (domain.TaskApprovalResult, error)
}

// ApproverFunc adapts a callback to the Approver interface.
type ApproverFunc func(ctx context.Context, task *domain.AgentTask) (domain.TaskApprovalResult, error)

// Decide implements Approver.
func (f ApproverFunc) Decide(ctx context.Context, task *domain.AgentTask) (domain.TaskApprovalResult, error) {
	return f(ctx, task)
}

// PolicyApprover evaluates tasks against a declarative policy.
type PolicyApprover struct {
	Policy *policy.Policy
}

// Decide implements Approver. Policy evaluation is total and never fails.
func (a *PolicyApprover) Decide(_ context.Context, task *domain.AgentTask) (domain.TaskApprovalResult, error) {
	return a.Policy.Evaluate(task), nil
}

// SourceUnit is one file's path and content, supplied by the caller. The
// host never reads or writes files itself.
type SourceUnit struct {
	Path    string
	Content string
}

// Host coordinates a full run for one project. All collaborators are
// injected at construction.
type Host struct {
	Producers []FindingProducer
	Generator *generate.Generator
	Approver  Approver
	Pipeline  *transform.Pipeline
	Store     store.RunStore // optional; nil disables persistence
	Config    domain.TaskGenerationConfig
}

// NewHost creates a Host with the given collaborators.
func NewHost(producers []FindingProducer, approver Approver, pipeline *transform.Pipeline, st store.RunStore, cfg domain.TaskGenerationConfig) *Host {
	return &Host{
		Producers: producers,
		Generator: generate.NewGenerator(),
		Approver:  approver,
		Pipeline:  pipeline,
		Store:     st,
		Config:    cfg,
	}
}

// Run executes one generate-approve-execute cycle over the given sources.
// Tasks are processed strictly in generation order; two tasks targeting the
// same file see each other's output because execution feeds the updated
// buffer forward.
func (h *Host) Run(ctx context.Context, projectPath string, sources []SourceUnit) (*domain.HostRunResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now().Unix()

	buffers := make(map[string]string, len(sources))
	for _, s := range sources {
		buffers[s.Path] = s.Content
	}

	var findings []domain.Finding
	for _, s := range sources {
		for _, p := range h.Producers {
			fs, err := p.Analyze(ctx, s.Path, s.Content)
			if err != nil {
				return nil, fmt.Errorf("analyze %s: %w", s.Path, err)
			}
			findings = append(findings, fs...)
		}
	}

	tasks := h.Generator.Generate(findings, h.Config)

	result := &domain.HostRunResult{
		Findings:      findings,
		Tasks:         tasks,
		TasksProposed: len(tasks),
		Decisions:     make(map[string]domain.TaskApprovalResult, len(tasks)),
		Results:       make(map[string]*domain.TransformResult),
	}

	auditSeq := 0
	audit := func(taskID, action, detail, severity string) {
		if h.Store == nil {
			return
		}
		auditSeq++
		_ = h.Store.AppendAudit(ctx, domain.AuditEvent{
			ID:         fmt.Sprintf("aud-%s-%04d", runID, auditSeq),
			RunID:      runID,
			TaskID:     taskID,
			Action:     action,
			DetailJSON: detail,
			Severity:   severity,
			CreatedAt:  time.Now().Unix(),
		})
	}

	var succeeded, execFailed int
	for _, task := range tasks {
		decision, err := h.Approver.Decide(ctx, task)
		if err != nil {
			return nil, fmt.Errorf("decide task %s: %w", task.ID, err)
		}
		result.Decisions[task.ID] = decision
		result.TasksProcessed++
		audit(task.ID, "task_decided",
			fmt.Sprintf(`{"decision":%q,"reason":%q}`, decision.Decision, decision.Reason), "info")

		switch {
		case decision.IsApproved():
			if err := stepStatus(task, domain.StatusApproved); err != nil {
				return nil, err
			}
		case decision.Decision == domain.DecisionRejected:
			if err := stepStatus(task, domain.StatusRejected); err != nil {
				return nil, err
			}
			continue
		default:
			// Deferred tasks stay proposed, awaiting a human.
			continue
		}

		file := executionTarget(task.Intent)
		content, ok := buffers[file]
		if !ok {
			execFailed++
			_ = stepStatus(task, domain.StatusExecutedFailure)
			result.Results[task.ID] = &domain.TransformResult{
				Warnings: []string{fmt.Sprintf("no source supplied for %s", file)},
			}
			audit(task.ID, "task_executed", fmt.Sprintf(`{"error":"no source for %s"}`, file), "warning")
			continue
		}

		pr := h.Pipeline.Run(content, []transform.Step{{
			Intent:  task.Intent,
			Context: domain.TransformContext{FilePath: file},
		}})

		if !pr.Success {
			execFailed++
			_ = stepStatus(task, domain.StatusExecutedFailure)
			result.Results[task.ID] = &domain.TransformResult{
				OriginalSource:    content,
				TransformedSource: content,
				Warnings:          []string{pr.Failed.Err.Error()},
			}
			audit(task.ID, "task_executed", fmt.Sprintf(`{"error":%q}`, pr.Failed.Err.Error()), "warning")
			continue
		}

		succeeded++
		buffers[file] = pr.FinalSource
		tr := pr.Applied[len(pr.Applied)-1].Result
		result.Results[task.ID] = tr
		if err := stepStatus(task, domain.StatusExecutedSuccess); err != nil {
			return nil, err
		}
		audit(task.ID, "task_executed",
			fmt.Sprintf(`{"lines_changed":%d,"has_changes":%t}`, tr.LinesChanged, tr.HasChanges()), "info")
	}

	result.TasksSucceeded = succeeded

	if h.Store != nil {
		run := domain.TaskRun{
			ID:          runID,
			ProjectPath: projectPath,
			StartedAt:   startedAt,
			Outcome:     outcome(len(tasks), succeeded, execFailed),
			ResultsJSON: marshalResults(result),
		}
		if err := h.Store.Save(ctx, run); err != nil {
			return result, fmt.Errorf("persist run: %w", err)
		}
	}

	return result, nil
}

// stepStatus advances a task's status through the transition table. The
// host is the only component that mutates task status.
func stepStatus(task *domain.AgentTask, to domain.TaskStatus) error {
	if !domain.IsValidStatusTransition(task.Status, to) {
		return domain.NewEngineError(
			domain.ErrInvalidStatusChange.Code,
			fmt.Sprintf("%s: %s -> %s", domain.ErrInvalidStatusChange.Message, task.Status, to),
		)
	}
	task.Status = to
	return nil
}

// executionTarget is the buffer a task's transform runs against.
func executionTarget(i domain.TaskIntent) string {
	if i.File != "" {
		return i.File
	}
	return i.Path
}

func outcome(proposed, succeeded, failed int) domain.RunOutcome {
	switch {
	case proposed == 0:
		return domain.OutcomeNoTasks
	case failed == 0:
		return domain.OutcomeSuccess
	case succeeded > 0:
		return domain.OutcomePartial
	default:
		return domain.OutcomeFailed
	}
}

// serializedResult is the persisted per-task execution summary.
type serializedResult struct {
	TaskID       string   `json:"task_id"`
	Status       string   `json:"status"`
	Decision     string   `json:"decision"`
	Reason       string   `json:"reason,omitempty"`
	LinesChanged int      `json:"lines_changed,omitempty"`
	Diff         string   `json:"diff,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func marshalResults(r *domain.HostRunResult) string {
	out := make([]serializedResult, 0, len(r.Tasks))
	for _, task := range r.Tasks {
		sr := serializedResult{
			TaskID: task.ID,
			Status: string(task.Status),
		}
		if d, ok := r.Decisions[task.ID]; ok {
			sr.Decision = string(d.Decision)
			sr.Reason = d.Reason
		}
		if tr, ok := r.Results[task.ID]; ok {
			sr.LinesChanged = tr.LinesChanged
			sr.Diff = tr.Diff
			sr.Warnings = tr.Warnings
		}
		out = append(out, sr)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(data)
}
