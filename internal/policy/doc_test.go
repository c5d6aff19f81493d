package policy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sourcefix/autofix/internal/domain"
)

func TestExportImport_RoundTrip(t *testing.T) {
	for name, p := range Builtins() {
		data, err := ExportJSON(p)
		if err != nil {
			t.Fatalf("ExportJSON(%s): %v", name, err)
		}

		restored, err := ImportJSON(data)
		if err != nil {
			t.Fatalf("ImportJSON(%s): %v", name, err)
		}
		if restored.Name != p.Name {
			t.Errorf("%s: Name = %q, want %q", name, restored.Name, p.Name)
		}
		if len(restored.Rules) != len(p.Rules) {
			t.Fatalf("%s: %d rules, want %d", name, len(restored.Rules), len(p.Rules))
		}
		for i, r := range restored.Rules {
			want := p.Rules[i]
			// Import normalizes an empty scope to "any".
			if want.Scope == "" {
				want.Scope = ScopeAny
			}
			if !reflect.DeepEqual(r, want) {
				t.Errorf("%s rule %d = %+v, want %+v", name, i, r, want)
			}
		}
	}
}

func TestImport_Invalid(t *testing.T) {
	cases := []struct {
		name string
		doc  Doc
	}{
		{"no name", Doc{Rules: []DocRule{{Outcome: "approve"}}}},
		{"no rules", Doc{Name: "p"}},
		{"bad category", Doc{Name: "p", Rules: []DocRule{{Category: "vibes", Outcome: "approve"}}}},
		{"bad scope", Doc{Name: "p", Rules: []DocRule{{Scope: "everywhere", Outcome: "approve"}}}},
		{"bad outcome", Doc{Name: "p", Rules: []DocRule{{Outcome: "maybe"}}}},
		{"confidence above 1", Doc{Name: "p", Rules: []DocRule{{MinConfidence: 1.5, Outcome: "approve"}}}},
		{"confidence below 0", Doc{Name: "p", Rules: []DocRule{{MinConfidence: -0.1, Outcome: "approve"}}}},
	}

	for _, c := range cases {
		if _, err := Import(c.doc); !errors.Is(err, domain.ErrPolicyDocInvalid) {
			t.Errorf("%s: expected ErrPolicyDocInvalid, got %v", c.name, err)
		}
	}
}

func TestLoadFile_YAML(t *testing.T) {
	doc := `
name: team-night-shift
protected:
  - "Generated/*"
rules:
  - category: dataFlow
    min_confidence: 0.8
    scope: single
    outcome: approve
  - category: structural
    outcome: defer
`
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Name != "team-night-shift" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(p.Rules) != 2 {
		t.Fatalf("%d rules, want 2", len(p.Rules))
	}
	if p.Rules[0].Category != domain.CategoryDataFlow || p.Rules[0].Outcome != OutcomeApprove {
		t.Errorf("rule 0 = %+v", p.Rules[0])
	}
	if p.Rules[1].Scope != ScopeAny {
		t.Errorf("empty scope should normalize to any, got %q", p.Rules[1].Scope)
	}
	if len(p.Protected) != 1 {
		t.Errorf("Protected = %v", p.Protected)
	}
}

func TestLoadFile_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("rules: {not: [valid"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(path); !errors.Is(err, domain.ErrPolicyDocInvalid) {
		t.Errorf("expected ErrPolicyDocInvalid, got %v", err)
	}
}
