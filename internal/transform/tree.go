package transform

import (
	"fmt"

	"github.com/sourcefix/autofix/internal/domain"
	"github.com/sourcefix/autofix/internal/syntax"
)

// treeWrapperTransform adds a wrapper attribute by parsing the source,
// mutating the located declaration node, and re-rendering. Everything
// outside the touched node is preserved byte-for-byte.
type treeWrapperTransform struct {
	spec wrapperSpec
}

func (t *treeWrapperTransform) Apply(source string, intent domain.TaskIntent, ctx domain.TransformContext) (*domain.TransformResult, error) {
	prop := targetProperty(intent, ctx)
	if prop == "" {
		return failed(source, domain.NewEngineError(domain.ErrPropertyNotFound.Code, "no target property supplied"))
	}

	tree := syntax.Parse(source)
	refs := tree.Locate(prop, targetType(intent, ctx))

	switch len(refs) {
	case 0:
		return failed(source, domain.NewEngineError(
			domain.ErrPropertyNotFound.Code,
			fmt.Sprintf("%s: %q", domain.ErrPropertyNotFound.Message, prop),
		))
	case 1:
	default:
		return failed(source, domain.NewMultipleMatchesError(prop, len(refs)))
	}

	ref := refs[0]
	decl := tree.Decl(ref)
	if hasExclusiveWrapper(decl.Attributes) {
		return failed(source, domain.NewEngineError(
			domain.ErrAlreadyHasWrapper.Code,
			fmt.Sprintf("%s: %q", domain.ErrAlreadyHasWrapper.Message, prop),
		))
	}

	var warnings []string
	if t.spec.makeMutable && decl.Keyword == "let" {
		warnings = append(warnings, fmt.Sprintf("let declaration %q normalized to var", prop))
	}

	tree.MutateAttributes(ref, []string{t.spec.attribute}, t.spec.makeMutable)
	transformed := tree.Render()

	return applied(targetFile(intent, ctx), source, transformed, warnings), nil
}

// treeImportTransform inserts a module import through the syntax capability.
type treeImportTransform struct{}

func (t *treeImportTransform) Apply(source string, intent domain.TaskIntent, ctx domain.TransformContext) (*domain.TransformResult, error) {
	module := intent.Module
	if module == "" {
		module = ctx.Module
	}
	if module == "" {
		return failed(source, domain.NewEngineError(domain.ErrPropertyNotFound.Code, "no module supplied for import"))
	}

	tree := syntax.Parse(source)
	for _, existing := range tree.Imports() {
		if existing == module {
			return &domain.TransformResult{
				OriginalSource:    source,
				TransformedSource: source,
				Warnings:          []string{fmt.Sprintf("import %s already present", module)},
				Success:           true,
			}, nil
		}
	}

	tree.InsertImport(module)
	transformed := tree.Render()

	return applied(targetFile(intent, ctx), source, transformed, nil), nil
}
