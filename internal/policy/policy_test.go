package policy

import (
	"errors"
	"testing"

	"github.com/sourcefix/autofix/internal/domain"
)

func task(kind domain.IntentKind, scope domain.TaskScope, confidence float64) *domain.AgentTask {
	return &domain.AgentTask{
		ID:         "task-1",
		Intent:     domain.TaskIntent{Kind: kind, Property: "viewModel", File: "Views/ProfileView.swift"},
		Scope:      scope,
		Status:     domain.StatusProposed,
		Confidence: confidence,
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Resolve("yolo")
	if !errors.Is(err, domain.ErrUnknownPolicy) {
		t.Errorf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestResolve_Builtins(t *testing.T) {
	for _, name := range []string{"conservative", "moderate", "permissive", "strict"} {
		p, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", name, err)
		}
		if p.Name != name {
			t.Errorf("Name = %q, want %q", p.Name, name)
		}
	}
}

func TestEvaluate_StructuralUnderConservativeAndModerate(t *testing.T) {
	// A structural task at confidence 0.85, single-file scope.
	tsk := task(domain.IntentSplitFile, domain.ScopeSingleFile, 0.85)
	tsk.Intent = domain.TaskIntent{Kind: domain.IntentSplitFile, Path: "Sources/Big.swift"}

	conservative, _ := Resolve("conservative")
	if d := conservative.Evaluate(tsk); d.Decision != domain.DecisionDeferred {
		t.Errorf("conservative decision = %s, want deferred", d.Decision)
	}

	moderate, _ := Resolve("moderate")
	if d := moderate.Evaluate(tsk); d.Decision != domain.DecisionApproved {
		t.Errorf("moderate decision = %s, want approved", d.Decision)
	}
}

func TestEvaluate_ConservativeApprovesHighConfidenceDataFlow(t *testing.T) {
	conservative, _ := Resolve("conservative")

	if d := conservative.Evaluate(task(domain.IntentAddStateObject, domain.ScopeSingleFile, 0.95)); !d.IsApproved() {
		t.Errorf("high-confidence dataFlow should auto-approve, got %s", d.Decision)
	}
	if d := conservative.Evaluate(task(domain.IntentAddStateObject, domain.ScopeSingleFile, 0.85)); d.Decision != domain.DecisionDeferred {
		t.Errorf("0.85 dataFlow under conservative = %s, want deferred", d.Decision)
	}
}

func TestEvaluate_StrictNeverApproves(t *testing.T) {
	strict, _ := Resolve("strict")

	multi := task(domain.IntentSplitFile, domain.ScopeMultiFile, 0.99)
	multi.Intent = domain.TaskIntent{Kind: domain.IntentSplitFile, Path: "Sources/Big.swift"}
	if d := strict.Evaluate(multi); d.Decision != domain.DecisionRejected {
		t.Errorf("strict multi-file = %s, want rejected", d.Decision)
	}

	if d := strict.Evaluate(task(domain.IntentAddStateObject, domain.ScopeSingleFile, 0.99)); d.Decision != domain.DecisionDeferred {
		t.Errorf("strict single dataFlow = %s, want deferred", d.Decision)
	}
}

func TestEvaluate_FallbackIsDeferred(t *testing.T) {
	// An empty rule table must never approve by omission.
	p := &Policy{Name: "empty"}
	if d := p.Evaluate(task(domain.IntentAddImport, domain.ScopeSingleFile, 1.0)); d.Decision != domain.DecisionDeferred {
		t.Errorf("fallback decision = %s, want deferred", d.Decision)
	}
}

func TestEvaluate_Totality(t *testing.T) {
	kinds := []domain.IntentKind{
		domain.IntentAddStateObject, domain.IntentAddBinding, domain.IntentAddImport,
		domain.IntentExtractFunction, domain.IntentReduceNesting,
		domain.IntentReduceParameters, domain.IntentSplitFile,
	}
	scopes := []domain.TaskScope{domain.ScopeSingleFile, domain.ScopeMultiFile}
	confidences := []float64{0, 0.3, 0.6, 0.85, 1}

	seen := map[domain.Decision]bool{
		domain.DecisionApproved: true,
		domain.DecisionRejected: true,
		domain.DecisionModified: true,
		domain.DecisionDeferred: true,
	}

	for name, p := range Builtins() {
		for _, k := range kinds {
			for _, s := range scopes {
				for _, c := range confidences {
					d := p.Evaluate(task(k, s, c))
					if !seen[d.Decision] {
						t.Errorf("%s(%s,%s,%v): unknown decision %q", name, k, s, c, d.Decision)
					}
				}
			}
		}
	}
}

func TestEvaluate_ProtectedPathRejected(t *testing.T) {
	moderate, _ := Resolve("moderate")

	tsk := task(domain.IntentAddStateObject, domain.ScopeSingleFile, 0.95)
	tsk.Intent.File = "config/.env"
	d := moderate.Evaluate(tsk)
	if d.Decision != domain.DecisionRejected {
		t.Fatalf("decision = %s, want rejected for protected path", d.Decision)
	}
	if d.Reason == "" {
		t.Error("rejection should name the protected pattern")
	}
}

func TestEvaluate_CustomProtectedOverride(t *testing.T) {
	p := &Policy{
		Name:      "locked",
		Rules:     []Rule{{MinConfidence: 0, Scope: ScopeAny, Outcome: OutcomeApprove}},
		Protected: []string{"Generated/*"},
	}

	tsk := task(domain.IntentAddBinding, domain.ScopeSingleFile, 0.9)
	tsk.Intent.File = "Generated/API.swift"
	if d := p.Evaluate(tsk); d.Decision != domain.DecisionRejected {
		t.Errorf("decision = %s, want rejected by custom pattern", d.Decision)
	}

	tsk.Intent.File = "Views/ProfileView.swift"
	if d := p.Evaluate(tsk); !d.IsApproved() {
		t.Errorf("decision = %s, want approved outside protected set", d.Decision)
	}
}
