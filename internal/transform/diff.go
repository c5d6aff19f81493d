package transform

import (
	"fmt"
	"strings"
)

// Diff produces a minimal unified-diff-style text for the single changed
// region between before and after, keyed by file path with 1-based line
// numbers. Returns the diff text and the number of changed lines. Identical
// inputs yield an empty diff and zero.
func Diff(path, before, after string) (string, int) {
	if before == after {
		return "", 0
	}

	a := strings.Split(before, "\n")
	b := strings.Split(after, "\n")

	// Common prefix.
	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}

	// Common suffix, not overlapping the prefix.
	s := 0
	for s < len(a)-p && s < len(b)-p && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}

	oldMid := a[p : len(a)-s]
	newMid := b[p : len(b)-s]

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)
	fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", p+1, len(oldMid), p+1, len(newMid))
	for _, l := range oldMid {
		sb.WriteString("-")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	for _, l := range newMid {
		sb.WriteString("+")
		sb.WriteString(l)
		sb.WriteString("\n")
	}

	changed := len(oldMid)
	if len(newMid) > changed {
		changed = len(newMid)
	}
	return sb.String(), changed
}
