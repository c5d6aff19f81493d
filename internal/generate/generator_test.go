package generate

import (
	"fmt"
	"testing"

	"github.com/sourcefix/autofix/internal/domain"
)

func stateObjectFinding(id string) domain.Finding {
	return domain.Finding{
		ID:       id,
		Type:     domain.FindingMissingStateObject,
		File:     "Views/ProfileView.swift",
		Line:     12,
		Severity: domain.SeverityError,
		Context: map[string]string{
			domain.CtxProperty: "viewModel",
			domain.CtxType:     "ProfileViewModel",
		},
		Message: "view model should be owned via @StateObject",
	}
}

func TestGenerate_MapsStateObjectFinding(t *testing.T) {
	g := NewGenerator()
	tasks := g.Generate([]domain.Finding{stateObjectFinding("f1")}, domain.TaskGenerationConfig{
		MinimumConfidence: 0.5,
		MaxTasksPerRun:    10,
	})

	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.Intent.Kind != domain.IntentAddStateObject {
		t.Errorf("Kind = %s, want %s", task.Intent.Kind, domain.IntentAddStateObject)
	}
	if task.Intent.Property != "viewModel" || task.Intent.TypeName != "ProfileViewModel" {
		t.Errorf("intent params = %q/%q", task.Intent.Property, task.Intent.TypeName)
	}
	if task.Status != domain.StatusProposed {
		t.Errorf("Status = %s, want proposed", task.Status)
	}
	if !task.RequiresApproval {
		t.Error("RequiresApproval should be true")
	}
	if len(task.SourceFindings) != 1 || task.SourceFindings[0] != "f1" {
		t.Errorf("SourceFindings = %v", task.SourceFindings)
	}
	if len(task.Steps) == 0 {
		t.Error("expected a human-readable plan")
	}
	if task.ID == "" {
		t.Error("task needs an id")
	}
}

func TestGenerate_ComplexityMetricTable(t *testing.T) {
	cases := []struct {
		metric string
		want   domain.IntentKind
	}{
		{domain.MetricFunctionLines, domain.IntentExtractFunction},
		{domain.MetricCyclomaticComplexity, domain.IntentExtractFunction},
		{domain.MetricNestingDepth, domain.IntentReduceNesting},
		{domain.MetricParameterCount, domain.IntentReduceParameters},
		{domain.MetricFileLines, domain.IntentSplitFile},
	}

	g := NewGenerator()
	for _, c := range cases {
		f := domain.Finding{
			ID:       "f-" + c.metric,
			Type:     domain.FindingHighComplexity,
			File:     "Sources/Big.swift",
			Line:     40,
			Severity: domain.SeverityWarning,
			Context: map[string]string{
				domain.CtxMetric:    c.metric,
				domain.CtxValue:     "90",
				domain.CtxThreshold: "50",
				domain.CtxFunction:  "loadEverything",
			},
		}
		tasks := g.Generate([]domain.Finding{f}, domain.TaskGenerationConfig{})
		if len(tasks) != 1 {
			t.Fatalf("metric %s: expected 1 task, got %d", c.metric, len(tasks))
		}
		if tasks[0].Intent.Kind != c.want {
			t.Errorf("metric %s: Kind = %s, want %s", c.metric, tasks[0].Intent.Kind, c.want)
		}
	}
}

func TestGenerate_UnmappedFindingsProduceNoTask(t *testing.T) {
	g := NewGenerator()
	findings := []domain.Finding{
		{ID: "f1", Type: domain.FindingDeadCode, Severity: domain.SeverityCritical},
		{ID: "f2", Type: domain.FindingNamingViolation, Severity: domain.SeverityCritical},
		{ID: "f3", Type: domain.FindingHighComplexity, Severity: domain.SeverityCritical,
			Context: map[string]string{domain.CtxMetric: "unknownMetric"}},
	}
	if tasks := g.Generate(findings, domain.TaskGenerationConfig{}); len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}

func TestGenerate_ConfidenceFloorFiltersEverything(t *testing.T) {
	g := NewGenerator()
	tasks := g.Generate([]domain.Finding{stateObjectFinding("f1")}, domain.TaskGenerationConfig{
		MinimumConfidence: 0.99,
	})
	if len(tasks) != 0 {
		t.Errorf("expected empty list above every confidence, got %d tasks", len(tasks))
	}
}

func TestGenerate_CategoryFilter(t *testing.T) {
	g := NewGenerator()
	tasks := g.Generate([]domain.Finding{stateObjectFinding("f1")}, domain.TaskGenerationConfig{
		EnabledCategories: []domain.IntentCategory{domain.CategoryQuality},
	})
	if len(tasks) != 0 {
		t.Errorf("dataFlow task should be dropped when only quality is enabled, got %d", len(tasks))
	}
}

func TestGenerate_BoundedOutput(t *testing.T) {
	g := NewGenerator()
	var findings []domain.Finding
	for i := 0; i < 20; i++ {
		findings = append(findings, stateObjectFinding(fmt.Sprintf("f%d", i)))
	}

	tasks := g.Generate(findings, domain.TaskGenerationConfig{MaxTasksPerRun: 5})
	if len(tasks) != 5 {
		t.Fatalf("expected exactly 5 tasks, got %d", len(tasks))
	}
	// Stable truncation: the first 5 findings survive, in input order.
	for i, task := range tasks {
		want := fmt.Sprintf("f%d", i)
		if task.SourceFindings[0] != want {
			t.Errorf("task %d traces to %s, want %s", i, task.SourceFindings[0], want)
		}
	}
}

func TestConfidence_SeverityAndContext(t *testing.T) {
	bare := domain.Finding{Type: domain.FindingMissingStateObject, Severity: domain.SeverityWarning}
	if got := Confidence(bare); got != 0.6 {
		t.Errorf("bare warning confidence = %v, want 0.6", got)
	}

	full := stateObjectFinding("f1") // error severity, property + type populated
	if got := Confidence(full); got < 0.89 || got > 0.91 {
		t.Errorf("populated error confidence = %v, want 0.9", got)
	}
}

func TestConfidence_Clamped(t *testing.T) {
	f := domain.Finding{
		Type:     domain.FindingHighComplexity,
		Severity: domain.SeverityCritical,
		Context: map[string]string{
			domain.CtxMetric:    domain.MetricFileLines,
			domain.CtxValue:     "900",
			domain.CtxThreshold: "400",
		},
	}
	if got := Confidence(f); got != 1.0 {
		t.Errorf("confidence = %v, want clamp to 1.0", got)
	}
}
