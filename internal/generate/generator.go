// Package generate converts findings into bounded, confidence-scored tasks.
package generate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sourcefix/autofix/internal/domain"
)

// severityBase maps finding severity to a base confidence weight.
var severityBase = map[domain.Severity]float64{
	domain.SeverityCritical: 0.9,
	domain.SeverityError:    0.8,
	domain.SeverityWarning:  0.6,
	domain.SeverityInfo:     0.4,
}

// contextBonus is added per populated expected context field.
const contextBonus = 0.05

// expectedContext lists the context fields that raise confidence when
// populated, per finding type.
var expectedContext = map[domain.FindingType][]string{
	domain.FindingMissingStateObject: {domain.CtxProperty, domain.CtxType},
	domain.FindingMissingBinding:     {domain.CtxProperty},
	domain.FindingMissingImport:      {domain.CtxModule},
	domain.FindingHighComplexity:     {domain.CtxMetric, domain.CtxValue, domain.CtxThreshold},
}

// Generator turns findings into agent tasks. It is a pure function of its
// inputs and holds no state.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate maps findings to tasks, filters by confidence and category, and
// truncates to cfg.MaxTasksPerRun. Truncation preserves input order; tasks
// are not re-sorted by confidence, so producer order (which follows source
// order) is what survives under load.
func (g *Generator) Generate(findings []domain.Finding, cfg domain.TaskGenerationConfig) []*domain.AgentTask {
	var tasks []*domain.AgentTask

	for _, f := range findings {
		intent, ok := mapIntent(f)
		if !ok {
			continue
		}

		confidence := Confidence(f)
		if confidence < cfg.MinimumConfidence {
			continue
		}
		if !cfg.CategoryEnabled(intent.Category()) {
			continue
		}

		if cfg.MaxTasksPerRun > 0 && len(tasks) >= cfg.MaxTasksPerRun {
			break
		}

		tasks = append(tasks, &domain.AgentTask{
			ID:               uuid.NewString(),
			Title:            title(intent),
			Intent:           intent,
			Scope:            scope(intent),
			Status:           domain.StatusProposed,
			Confidence:       confidence,
			SourceFindings:   []string{f.ID},
			Steps:            steps(intent),
			RequiresApproval: true,
		})
	}

	return tasks
}

// Confidence computes a finding's confidence score: severity base weight
// plus a bonus per populated expected context field, clamped to [0,1].
func Confidence(f domain.Finding) float64 {
	c := severityBase[f.Severity]
	for _, key := range expectedContext[f.Type] {
		if f.Context[key] != "" {
			c += contextBonus
		}
	}
	return clamp(c)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// mapIntent resolves a finding to its intent via the fixed lookup table.
// Unmapped findings produce no task.
func mapIntent(f domain.Finding) (domain.TaskIntent, bool) {
	switch f.Type {
	case domain.FindingMissingStateObject:
		return domain.TaskIntent{
			Kind:     domain.IntentAddStateObject,
			Property: f.Context[domain.CtxProperty],
			TypeName: f.Context[domain.CtxType],
			File:     f.File,
		}, true
	case domain.FindingMissingBinding:
		return domain.TaskIntent{
			Kind:     domain.IntentAddBinding,
			Property: f.Context[domain.CtxProperty],
			File:     f.File,
		}, true
	case domain.FindingMissingImport:
		return domain.TaskIntent{
			Kind:   domain.IntentAddImport,
			Module: f.Context[domain.CtxModule],
			File:   f.File,
		}, true
	case domain.FindingHighComplexity:
		switch f.Context[domain.CtxMetric] {
		case domain.MetricFunctionLines, domain.MetricCyclomaticComplexity:
			return domain.TaskIntent{
				Kind:     domain.IntentExtractFunction,
				Function: f.Context[domain.CtxFunction],
				File:     f.File,
			}, true
		case domain.MetricNestingDepth:
			return domain.TaskIntent{
				Kind: domain.IntentReduceNesting,
				File: f.File,
				Line: f.Line,
			}, true
		case domain.MetricParameterCount:
			return domain.TaskIntent{
				Kind:     domain.IntentReduceParameters,
				Function: f.Context[domain.CtxFunction],
				File:     f.File,
			}, true
		case domain.MetricFileLines:
			return domain.TaskIntent{
				Kind: domain.IntentSplitFile,
				Path: f.File,
			}, true
		}
	}
	return domain.TaskIntent{}, false
}

func scope(i domain.TaskIntent) domain.TaskScope {
	// Splitting a file creates siblings; everything else edits in place.
	if i.Kind == domain.IntentSplitFile {
		return domain.ScopeMultiFile
	}
	return domain.ScopeSingleFile
}

func title(i domain.TaskIntent) string {
	switch i.Kind {
	case domain.IntentAddStateObject:
		return fmt.Sprintf("Add @StateObject to %s", i.Property)
	case domain.IntentAddBinding:
		return fmt.Sprintf("Add @Binding to %s", i.Property)
	case domain.IntentAddImport:
		return fmt.Sprintf("Import %s", i.Module)
	case domain.IntentExtractFunction:
		return fmt.Sprintf("Extract helpers from %s", i.Function)
	case domain.IntentReduceNesting:
		return fmt.Sprintf("Reduce nesting in %s:%d", i.File, i.Line)
	case domain.IntentReduceParameters:
		return fmt.Sprintf("Reduce parameters of %s", i.Function)
	case domain.IntentSplitFile:
		return fmt.Sprintf("Split %s", i.Path)
	}
	return string(i.Kind)
}

func steps(i domain.TaskIntent) []string {
	switch i.Kind {
	case domain.IntentAddStateObject:
		return []string{
			fmt.Sprintf("Locate the declaration of %q in %s", i.Property, i.File),
			"Verify it carries no property wrapper",
			fmt.Sprintf("Prefix the declaration with @StateObject (type %s)", i.TypeName),
		}
	case domain.IntentAddBinding:
		return []string{
			fmt.Sprintf("Locate the declaration of %q in %s", i.Property, i.File),
			"Verify it carries no property wrapper",
			"Prefix the declaration with @Binding and make it mutable",
		}
	case domain.IntentAddImport:
		return []string{
			fmt.Sprintf("Check whether %s imports %s", i.File, i.Module),
			"Insert the import after the last leading import if missing",
		}
	case domain.IntentExtractFunction:
		return []string{
			fmt.Sprintf("Review %s in %s", i.Function, i.File),
			"Extract cohesive blocks into named helpers",
		}
	case domain.IntentReduceNesting:
		return []string{
			fmt.Sprintf("Review the block at %s:%d", i.File, i.Line),
			"Flatten with early returns or guard clauses",
		}
	case domain.IntentReduceParameters:
		return []string{
			fmt.Sprintf("Review the signature of %s in %s", i.Function, i.File),
			"Group related parameters into a value type",
		}
	case domain.IntentSplitFile:
		return []string{
			fmt.Sprintf("Partition %s by responsibility", i.Path),
			"Move each partition into its own file",
		}
	}
	return nil
}
