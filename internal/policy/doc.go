package policy

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sourcefix/autofix/internal/domain"
)

// Doc is the declarative interchange form of a policy. It round-trips
// through JSON for export/import and loads from YAML for admin-authored
// custom policies (YAML being a superset, JSON documents load too).
type Doc struct {
	Name      string    `json:"name" yaml:"name"`
	Rules     []DocRule `json:"rules" yaml:"rules"`
	Protected []string  `json:"protected,omitempty" yaml:"protected,omitempty"`
}

// DocRule is one rule row in a policy document.
type DocRule struct {
	Category      string  `json:"category,omitempty" yaml:"category,omitempty"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
	Scope         string  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Outcome       string  `json:"outcome" yaml:"outcome"`
}

var validCategories = map[string]bool{
	string(domain.CategoryDocumentation): true,
	string(domain.CategoryQuality):       true,
	string(domain.CategoryDataFlow):      true,
	string(domain.CategoryStructural):    true,
	string(domain.CategoryArchitecture):  true,
}

var validScopes = map[string]bool{
	"":                  true,
	string(ScopeSingle): true,
	string(ScopeMulti):  true,
	string(ScopeAny):    true,
}

var validOutcomes = map[string]bool{
	string(OutcomeApprove): true,
	string(OutcomeDeny):    true,
	string(OutcomeDefer):   true,
}

// Export converts a policy to its interchange document.
func Export(p *Policy) Doc {
	doc := Doc{Name: p.Name, Protected: p.Protected}
	for _, r := range p.Rules {
		doc.Rules = append(doc.Rules, DocRule{
			Category:      string(r.Category),
			MinConfidence: r.MinConfidence,
			Scope:         string(r.Scope),
			Outcome:       string(r.Outcome),
		})
	}
	return doc
}

// ExportJSON marshals a policy document as indented JSON.
func ExportJSON(p *Policy) ([]byte, error) {
	return json.MarshalIndent(Export(p), "", "  ")
}

// Import validates a document and builds a policy from it.
func Import(doc Doc) (*Policy, error) {
	var problems []string

	if doc.Name == "" {
		problems = append(problems, "name is required")
	}
	if len(doc.Rules) == 0 {
		problems = append(problems, "at least one rule is required")
	}
	for i, r := range doc.Rules {
		if r.Category != "" && !validCategories[r.Category] {
			problems = append(problems, fmt.Sprintf("rule %d: unknown category %q", i, r.Category))
		}
		if !validScopes[r.Scope] {
			problems = append(problems, fmt.Sprintf("rule %d: unknown scope %q", i, r.Scope))
		}
		if !validOutcomes[r.Outcome] {
			problems = append(problems, fmt.Sprintf("rule %d: unknown outcome %q", i, r.Outcome))
		}
		if r.MinConfidence < 0 || r.MinConfidence > 1 {
			problems = append(problems, fmt.Sprintf("rule %d: min_confidence %v outside [0,1]", i, r.MinConfidence))
		}
	}

	if len(problems) > 0 {
		return nil, domain.NewEngineError(
			domain.ErrPolicyDocInvalid.Code,
			fmt.Sprintf("%s: %v", domain.ErrPolicyDocInvalid.Message, problems),
		)
	}

	p := &Policy{Name: doc.Name, Protected: doc.Protected}
	for _, r := range doc.Rules {
		scope := Scope(r.Scope)
		if scope == "" {
			scope = ScopeAny
		}
		p.Rules = append(p.Rules, Rule{
			Category:      domain.IntentCategory(r.Category),
			MinConfidence: r.MinConfidence,
			Scope:         scope,
			Outcome:       Outcome(r.Outcome),
		})
	}
	return p, nil
}

// ImportJSON parses and validates a JSON policy document.
func ImportJSON(data []byte) (*Policy, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapEngineError(domain.ErrPolicyDocInvalid.Code, "parse policy JSON", err)
	}
	return Import(doc)
}

// LoadFile reads a custom policy document from a YAML (or JSON) file.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapEngineError(domain.ErrPolicyDocInvalid.Code, "parse policy YAML", err)
	}
	return Import(doc)
}
