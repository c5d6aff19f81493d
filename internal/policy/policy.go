// Package policy evaluates agent tasks against declarative approval rules.
package policy

import (
	"fmt"
	"path/filepath"

	"github.com/sourcefix/autofix/internal/domain"
)

// Outcome is what a matched rule does with a task.
type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeDeny    Outcome = "deny"
	OutcomeDefer   Outcome = "defer"
)

// Scope restricts a rule to tasks of a given file breadth.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeMulti  Scope = "multi"
	ScopeAny    Scope = "any"
)

// Rule maps task attributes to an outcome. An empty Category matches every
// category. Rules are evaluated in order; the first match wins.
type Rule struct {
	Category      domain.IntentCategory
	MinConfidence float64
	Scope         Scope
	Outcome       Outcome
}

// Policy is a named, ordered rule table. Any task that matches no rule is
// deferred; approval never happens by omission. Tasks touching a protected
// path are rejected before rules are consulted.
type Policy struct {
	Name      string
	Rules     []Rule
	Protected []string
}

// defaultProtectedPatterns are file patterns no policy auto-approves edits to.
var defaultProtectedPatterns = []string{".env", "*.key", ".git/*"}

// Evaluate is a total decision function: it returns exactly one decision for
// any well-formed task and never fails.
func (p *Policy) Evaluate(task *domain.AgentTask) domain.TaskApprovalResult {
	if target := intentTarget(task.Intent); target != "" {
		for _, pattern := range p.protectedPatterns() {
			if matchPattern(pattern, target) {
				return domain.TaskApprovalResult{
					Task:     task,
					Decision: domain.DecisionRejected,
					Reason:   fmt.Sprintf("target %s matches protected pattern %q", target, pattern),
				}
			}
		}
	}

	for _, rule := range p.Rules {
		if !rule.matches(task) {
			continue
		}
		switch rule.Outcome {
		case OutcomeApprove:
			return domain.TaskApprovalResult{
				Task:     task,
				Decision: domain.DecisionApproved,
				Reason:   fmt.Sprintf("policy %s: %s at confidence %.2f", p.Name, task.Intent.Category(), task.Confidence),
			}
		case OutcomeDeny:
			return domain.TaskApprovalResult{
				Task:     task,
				Decision: domain.DecisionRejected,
				Reason:   fmt.Sprintf("policy %s denies %s tasks of this shape", p.Name, task.Intent.Category()),
			}
		default:
			return domain.TaskApprovalResult{
				Task:     task,
				Decision: domain.DecisionDeferred,
				Reason:   fmt.Sprintf("policy %s defers %s tasks to a human", p.Name, task.Intent.Category()),
			}
		}
	}

	return domain.TaskApprovalResult{
		Task:     task,
		Decision: domain.DecisionDeferred,
		Reason:   fmt.Sprintf("policy %s: no rule matched", p.Name),
	}
}

func (p *Policy) protectedPatterns() []string {
	if len(p.Protected) > 0 {
		return p.Protected
	}
	return defaultProtectedPatterns
}

func (r Rule) matches(task *domain.AgentTask) bool {
	if r.Category != "" && r.Category != task.Intent.Category() {
		return false
	}
	if task.Confidence < r.MinConfidence {
		return false
	}
	switch r.Scope {
	case ScopeSingle:
		return task.Scope == domain.ScopeSingleFile
	case ScopeMulti:
		return task.Scope == domain.ScopeMultiFile
	default:
		return true
	}
}

// intentTarget returns the file a task intends to touch, if any.
func intentTarget(i domain.TaskIntent) string {
	if i.File != "" {
		return i.File
	}
	return i.Path
}

// matchPattern checks if a path matches a protected pattern. Supports exact
// match, base name match, and glob match on both the full path and the base.
func matchPattern(pattern, path string) bool {
	if path == pattern {
		return true
	}
	base := filepath.Base(path)
	if base == pattern {
		return true
	}
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	matched, err := filepath.Match(pattern, base)
	return err == nil && matched
}

// Builtins returns the four built-in profiles, freshly constructed so
// callers can modify their copy without affecting others.
func Builtins() map[string]*Policy {
	return map[string]*Policy{
		"conservative": {
			Name: "conservative",
			Rules: []Rule{
				{Category: domain.CategoryDataFlow, MinConfidence: 0.9, Scope: ScopeSingle, Outcome: OutcomeApprove},
			},
		},
		"moderate": {
			Name: "moderate",
			Rules: []Rule{
				{Category: domain.CategoryDataFlow, MinConfidence: 0.7, Scope: ScopeSingle, Outcome: OutcomeApprove},
				{Category: domain.CategoryQuality, MinConfidence: 0.75, Scope: ScopeSingle, Outcome: OutcomeApprove},
				{Category: domain.CategoryStructural, MinConfidence: 0.8, Scope: ScopeSingle, Outcome: OutcomeApprove},
			},
		},
		"permissive": {
			Name: "permissive",
			Rules: []Rule{
				{MinConfidence: 0.6, Scope: ScopeAny, Outcome: OutcomeApprove},
			},
		},
		"strict": {
			Name: "strict",
			Rules: []Rule{
				{Scope: ScopeMulti, Outcome: OutcomeDeny},
				{Category: domain.CategoryArchitecture, Scope: ScopeAny, Outcome: OutcomeDeny},
				{Category: domain.CategoryStructural, Scope: ScopeAny, Outcome: OutcomeDeny},
			},
		},
	}
}

// Resolve returns the named built-in policy.
func Resolve(name string) (*Policy, error) {
	p, ok := Builtins()[name]
	if !ok {
		return nil, domain.NewEngineError(
			domain.ErrUnknownPolicy.Code,
			fmt.Sprintf("%s: %q", domain.ErrUnknownPolicy.Message, name),
		)
	}
	return p, nil
}
