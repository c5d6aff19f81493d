// Package syntax implements the parse/locate/mutate/render capability over
// the target declaration grammar: attribute-decorated let/var property
// declarations and leading import lines. Everything else is opaque trivia
// that renders byte-for-byte.
package syntax

import (
	"strings"
)

// Tree is a line-preserving parse of one source buffer.
type Tree struct {
	lines []line
}

// line holds the raw text plus, when recognized, its structured form.
// Raw text is authoritative until the line is mutated.
type line struct {
	raw     string
	decl    *Decl
	imp     string // module name for import lines
	mutated bool
}

// Decl is a parsed property declaration.
type Decl struct {
	Indent     string
	Attributes []string
	Modifiers  string
	Keyword    string // "let" or "var"
	Name       string
	TypeName   string
	Rest       string // initializer, trailing comment, etc.
}

// NodeRef identifies a located declaration within a tree.
type NodeRef struct {
	index int
}

// Parse builds a tree from source text. Parsing is total: unrecognized
// lines become trivia, so any input parses.
func Parse(source string) *Tree {
	raw := strings.Split(source, "\n")
	t := &Tree{lines: make([]line, len(raw))}
	for i, l := range raw {
		t.lines[i] = line{raw: l}
		if mod, ok := parseImport(l); ok {
			t.lines[i].imp = mod
			continue
		}
		if d, ok := parseDecl(l); ok {
			t.lines[i].decl = d
		}
	}
	return t
}

// Locate returns every declaration node whose identifier matches name and,
// when typeName is non-empty, whose declared type matches exactly.
func (t *Tree) Locate(name, typeName string) []NodeRef {
	var refs []NodeRef
	for i, l := range t.lines {
		if l.decl == nil || l.decl.Name != name {
			continue
		}
		if typeName != "" && l.decl.TypeName != typeName {
			continue
		}
		refs = append(refs, NodeRef{index: i})
	}
	return refs
}

// Decl returns the parsed declaration behind a node reference.
func (t *Tree) Decl(ref NodeRef) *Decl {
	return t.lines[ref.index].decl
}

// Line returns the 1-based line number of a node.
func (t *Tree) Line(ref NodeRef) int {
	return ref.index + 1
}

// MutateAttributes prepends the given attributes to the declaration and,
// when makeMutable is set, normalizes a let declaration to var. The node's
// initializer and trailing content stay attached.
func (t *Tree) MutateAttributes(ref NodeRef, attrs []string, makeMutable bool) {
	l := &t.lines[ref.index]
	d := l.decl
	d.Attributes = append(append([]string{}, attrs...), d.Attributes...)
	if makeMutable && d.Keyword == "let" {
		d.Keyword = "var"
	}
	l.mutated = true
}

// Imports returns the modules imported by leading import lines.
func (t *Tree) Imports() []string {
	var mods []string
	for _, l := range t.lines {
		if l.imp != "" {
			mods = append(mods, l.imp)
		}
	}
	return mods
}

// InsertImport adds an import for module after the last contiguous leading
// import, or at the top of the buffer if there are none. Returns the
// 1-based line number of the inserted line.
func (t *Tree) InsertImport(module string) int {
	at := t.importInsertIndex()
	ins := line{raw: "import " + module, imp: module, mutated: true}
	t.lines = append(t.lines[:at], append([]line{ins}, t.lines[at:]...)...)
	return at + 1
}

// importInsertIndex finds the position after the last import in the leading
// run of imports, blank lines, and comments.
func (t *Tree) importInsertIndex() int {
	last := -1
	for i, l := range t.lines {
		if l.imp != "" {
			last = i
			continue
		}
		trimmed := strings.TrimSpace(l.raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		break
	}
	return last + 1
}

// Render reconstructs source text. Untouched lines are emitted from their
// raw form, so everything outside mutated nodes is byte-identical.
func (t *Tree) Render() string {
	out := make([]string, len(t.lines))
	for i, l := range t.lines {
		if l.mutated && l.decl != nil {
			out[i] = l.decl.render()
		} else {
			out[i] = l.raw
		}
	}
	return strings.Join(out, "\n")
}

func (d *Decl) render() string {
	var b strings.Builder
	b.WriteString(d.Indent)
	for _, a := range d.Attributes {
		b.WriteString(a)
		b.WriteString(" ")
	}
	b.WriteString(d.Modifiers)
	b.WriteString(d.Keyword)
	b.WriteString(" ")
	b.WriteString(d.Name)
	if d.TypeName != "" {
		b.WriteString(": ")
		b.WriteString(d.TypeName)
	}
	b.WriteString(d.Rest)
	return b.String()
}
