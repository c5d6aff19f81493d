package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sourcefix/autofix/internal/domain"
)

// declAnchor matches a property declaration line: indentation, optional
// attributes, optional modifiers, the binding keyword, and the identifier.
// The tail (type annotation, initializer, trailing comment) is kept verbatim.
var declAnchor = regexp.MustCompile(`^([ \t]*)((?:@[A-Za-z_][A-Za-z0-9_]*(?:\([^)]*\))?[ \t]+)*)((?:(?:public|private|internal|fileprivate|open|static|weak|lazy|final)[ \t]+)*)(let|var)[ \t]+([A-Za-z_][A-Za-z0-9_]*)(.*)$`)

// typeClause extracts the declared type from a declaration tail.
var typeClause = regexp.MustCompile(`^[ \t]*:[ \t]*([^={/]+)`)

// declMatch is one matched declaration line.
type declMatch struct {
	lineIdx int
	indent  string
	attrs   string
	mods    string
	keyword string
	name    string
	tail    string
}

func (m declMatch) declaredType() string {
	tm := typeClause.FindStringSubmatch(m.tail)
	if tm == nil {
		return ""
	}
	return strings.TrimRight(tm[1], " \t")
}

// findDecls scans source line-by-line for declarations of the identifier,
// optionally constrained to an exact declared type.
func findDecls(lines []string, name, typeName string) []declMatch {
	var matches []declMatch
	for i, l := range lines {
		m := declAnchor.FindStringSubmatch(l)
		if m == nil || m[5] != name {
			continue
		}
		dm := declMatch{
			lineIdx: i,
			indent:  m[1],
			attrs:   m[2],
			mods:    m[3],
			keyword: m[4],
			name:    m[5],
			tail:    m[6],
		}
		if typeName != "" && dm.declaredType() != typeName {
			continue
		}
		matches = append(matches, dm)
	}
	return matches
}

// textWrapperTransform adds a wrapper attribute using line scanning. It
// never touches lines other than the single matched declaration.
type textWrapperTransform struct {
	spec wrapperSpec
}

func (t *textWrapperTransform) Apply(source string, intent domain.TaskIntent, ctx domain.TransformContext) (*domain.TransformResult, error) {
	prop := targetProperty(intent, ctx)
	if prop == "" {
		return failed(source, domain.NewEngineError(domain.ErrPropertyNotFound.Code, "no target property supplied"))
	}

	lines := strings.Split(source, "\n")
	matches := findDecls(lines, prop, targetType(intent, ctx))

	switch len(matches) {
	case 0:
		return failed(source, domain.NewEngineError(
			domain.ErrPropertyNotFound.Code,
			fmt.Sprintf("%s: %q", domain.ErrPropertyNotFound.Message, prop),
		))
	case 1:
	default:
		return failed(source, domain.NewMultipleMatchesError(prop, len(matches)))
	}

	m := matches[0]
	if hasExclusiveWrapper(strings.Fields(m.attrs)) {
		return failed(source, domain.NewEngineError(
			domain.ErrAlreadyHasWrapper.Code,
			fmt.Sprintf("%s: %q", domain.ErrAlreadyHasWrapper.Message, prop),
		))
	}

	keyword := m.keyword
	if t.spec.makeMutable {
		keyword = "var"
	}

	var warnings []string
	if keyword != m.keyword {
		warnings = append(warnings, fmt.Sprintf("%s declaration %q normalized to var", m.keyword, prop))
	}

	lines[m.lineIdx] = m.indent + t.spec.attribute + " " + m.attrs + m.mods + keyword + " " + m.name + m.tail
	transformed := strings.Join(lines, "\n")

	return applied(targetFile(intent, ctx), source, transformed, warnings), nil
}

// textImportTransform inserts a module import using line scanning.
type textImportTransform struct{}

func (t *textImportTransform) Apply(source string, intent domain.TaskIntent, ctx domain.TransformContext) (*domain.TransformResult, error) {
	module := intent.Module
	if module == "" {
		module = ctx.Module
	}
	if module == "" {
		return failed(source, domain.NewEngineError(domain.ErrPropertyNotFound.Code, "no module supplied for import"))
	}

	lines := strings.Split(source, "\n")

	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) == 2 && fields[0] == "import" && fields[1] == module {
			return &domain.TransformResult{
				OriginalSource:    source,
				TransformedSource: source,
				Warnings:          []string{fmt.Sprintf("import %s already present", module)},
				Success:           true,
			}, nil
		}
	}

	at := importInsertLine(lines)
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, "import "+module)
	out = append(out, lines[at:]...)
	transformed := strings.Join(out, "\n")

	return applied(targetFile(intent, ctx), source, transformed, nil), nil
}

// importInsertLine returns the index after the last import in the leading
// run of imports, blank lines, and comments; 0 when there are none.
func importInsertLine(lines []string) int {
	last := -1
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "import ") {
			last = i
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		break
	}
	return last + 1
}
