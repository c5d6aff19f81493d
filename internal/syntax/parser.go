package syntax

import "strings"

// declModifiers are declaration modifiers that may precede let/var.
var declModifiers = map[string]bool{
	"public":      true,
	"private":     true,
	"internal":    true,
	"fileprivate": true,
	"open":        true,
	"static":      true,
	"weak":        true,
	"lazy":        true,
	"final":       true,
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// parseImport recognizes a plain module import line.
func parseImport(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "import ") {
		return "", false
	}
	mod := strings.TrimSpace(strings.TrimPrefix(trimmed, "import "))
	if mod == "" {
		return "", false
	}
	// Module names are identifiers, optionally dotted.
	for _, part := range strings.Split(mod, ".") {
		if part == "" || !isIdentStart(part[0]) {
			return "", false
		}
		for k := 1; k < len(part); k++ {
			if !isIdentChar(part[k]) {
				return "", false
			}
		}
	}
	return mod, true
}

// parseDecl recognizes a single-line property declaration:
// indent, attributes, modifiers, let/var, identifier, optional type
// annotation, then anything (initializer, trailing comment) as Rest.
func parseDecl(s string) (*Decl, bool) {
	i, n := 0, len(s)

	for i < n && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	indent := s[:i]

	var attrs []string
	for i < n && s[i] == '@' {
		j := i + 1
		for j < n && isIdentChar(s[j]) {
			j++
		}
		if j == i+1 {
			return nil, false
		}
		if j < n && s[j] == '(' {
			depth := 0
			for ; j < n; j++ {
				if s[j] == '(' {
					depth++
				} else if s[j] == ')' {
					depth--
					if depth == 0 {
						j++
						break
					}
				}
			}
			if depth != 0 {
				return nil, false
			}
		}
		attrs = append(attrs, s[i:j])
		i = j
		for i < n && s[i] == ' ' {
			i++
		}
	}

	var mods strings.Builder
	for {
		w, next := word(s, i)
		if !declModifiers[w] {
			break
		}
		mods.WriteString(w)
		mods.WriteString(" ")
		i = next
	}

	kw, next := word(s, i)
	if kw != "let" && kw != "var" {
		return nil, false
	}
	if next >= n || next == i+len(kw) {
		// Keyword must be followed by whitespace.
		return nil, false
	}
	i = next

	nameStart := i
	for i < n && isIdentChar(s[i]) {
		i++
	}
	if i == nameStart || !isIdentStart(s[nameStart]) {
		return nil, false
	}
	name := s[nameStart:i]

	d := &Decl{
		Indent:     indent,
		Attributes: attrs,
		Modifiers:  mods.String(),
		Keyword:    kw,
		Name:       name,
	}

	j := i
	for j < n && s[j] == ' ' {
		j++
	}
	if j < n && s[j] == ':' {
		j++
		for j < n && s[j] == ' ' {
			j++
		}
		end := typeEnd(s, j)
		for end > j && s[end-1] == ' ' {
			end--
		}
		if end == j {
			return nil, false
		}
		d.TypeName = s[j:end]
		d.Rest = s[end:]
	} else {
		d.Rest = s[i:]
	}

	return d, true
}

// word reads the identifier starting at i and returns it along with the
// index past any following spaces.
func word(s string, i int) (string, int) {
	j := i
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	w := s[i:j]
	for j < len(s) && s[j] == ' ' {
		j++
	}
	return w, j
}

// typeEnd scans a type annotation starting at i and returns the index where
// it ends: a top-level '=', '{', or line comment.
func typeEnd(s string, i int) int {
	depth := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			if depth > 0 {
				depth--
			}
		case '=', '{':
			if depth == 0 {
				return i
			}
		case '/':
			if depth == 0 && i+1 < len(s) && s[i+1] == '/' {
				return i
			}
		}
	}
	return len(s)
}
