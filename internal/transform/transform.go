// Package transform applies deterministic source mutations for task intents.
package transform

import (
	"fmt"

	"github.com/sourcefix/autofix/internal/domain"
)

// Transform is a pure source mutation. No filesystem or network access;
// every effect is returned in the result for the caller to apply.
type Transform interface {
	Apply(source string, intent domain.TaskIntent, ctx domain.TransformContext) (*domain.TransformResult, error)
}

// Strategy selects how transforms locate and mutate declarations.
type Strategy string

const (
	// StrategyText scans line-by-line with anchored pattern matching.
	StrategyText Strategy = "text"
	// StrategyTree parses, mutates the located node, and re-renders.
	StrategyTree Strategy = "tree"
)

// wrapperSpec describes one wrapper-style attribute mutation.
type wrapperSpec struct {
	attribute   string
	makeMutable bool
}

// wrapperByKind maps each wrapper intent to the attribute it adds.
// Both @StateObject and @Binding require a mutable declaration.
var wrapperByKind = map[domain.IntentKind]wrapperSpec{
	domain.IntentAddStateObject: {attribute: "@StateObject", makeMutable: true},
	domain.IntentAddBinding:     {attribute: "@Binding", makeMutable: true},
}

// exclusiveWrappers are the mutually-exclusive prior annotations that block
// re-application of any wrapper transform.
var exclusiveWrappers = []string{
	"@State",
	"@StateObject",
	"@Binding",
	"@ObservedObject",
	"@EnvironmentObject",
	"@Environment",
}

// hasExclusiveWrapper reports whether any attribute token is one of the
// mutually-exclusive wrapper annotations. Tokens may carry arguments, e.g.
// "@Environment(\.dismiss)".
func hasExclusiveWrapper(attrs []string) bool {
	for _, a := range attrs {
		name := a
		if i := indexByte(name, '('); i >= 0 {
			name = name[:i]
		}
		for _, w := range exclusiveWrappers {
			if name == w {
				return true
			}
		}
	}
	return false
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// Registry maps each intent kind to exactly one transform. It is built once
// and passed by reference; there is no process-wide registry.
type Registry struct {
	transforms map[domain.IntentKind]Transform
}

// NewRegistry builds a registry using the given strategy for every
// registered transform. Structural and architecture intents have no
// deterministic transform and stay unregistered.
func NewRegistry(strategy Strategy) *Registry {
	r := &Registry{transforms: make(map[domain.IntentKind]Transform)}
	for kind, spec := range wrapperByKind {
		if strategy == StrategyTree {
			r.Register(kind, &treeWrapperTransform{spec: spec})
		} else {
			r.Register(kind, &textWrapperTransform{spec: spec})
		}
	}
	if strategy == StrategyTree {
		r.Register(domain.IntentAddImport, &treeImportTransform{})
	} else {
		r.Register(domain.IntentAddImport, &textImportTransform{})
	}
	return r
}

// Register sets the transform for an intent kind.
func (r *Registry) Register(kind domain.IntentKind, t Transform) {
	r.transforms[kind] = t
}

// Resolve returns the transform for an intent kind.
func (r *Registry) Resolve(kind domain.IntentKind) (Transform, error) {
	t, ok := r.transforms[kind]
	if !ok {
		return nil, domain.NewEngineError(
			domain.ErrUnsupportedIntent.Code,
			fmt.Sprintf("%s: %s", domain.ErrUnsupportedIntent.Message, kind),
		)
	}
	return t, nil
}

// failed builds the result for an unapplied transform: the transformed
// source always equals the original so no partial mutation leaks.
func failed(source string, err error) (*domain.TransformResult, error) {
	return &domain.TransformResult{
		OriginalSource:    source,
		TransformedSource: source,
		Success:           false,
	}, err
}

// applied builds a successful result with its diff.
func applied(path, source, transformed string, warnings []string) *domain.TransformResult {
	diff, changed := Diff(path, source, transformed)
	return &domain.TransformResult{
		OriginalSource:    source,
		TransformedSource: transformed,
		Diff:              diff,
		LinesChanged:      changed,
		Warnings:          warnings,
		Success:           true,
	}
}

// targetProperty resolves the target identifier from intent or context.
func targetProperty(intent domain.TaskIntent, ctx domain.TransformContext) string {
	if intent.Property != "" {
		return intent.Property
	}
	return ctx.PropertyName
}

// targetType resolves the declared-type constraint, if any.
func targetType(intent domain.TaskIntent, ctx domain.TransformContext) string {
	if intent.TypeName != "" {
		return intent.TypeName
	}
	return ctx.TypeName
}

// targetFile resolves the file path used in diffs.
func targetFile(intent domain.TaskIntent, ctx domain.TransformContext) string {
	if ctx.FilePath != "" {
		return ctx.FilePath
	}
	if intent.File != "" {
		return intent.File
	}
	return intent.Path
}
