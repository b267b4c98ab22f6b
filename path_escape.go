package jshift

import "strings"

// Output keys and @-lookup keys are arbitrary strings, but they travel
// to gjson/sjson as dot-notation paths. Every character with path
// meaning is backslash-escaped so a segment always addresses a single
// literal member.

func escapeSegment(seg string) string {
	needsEscape := false
	for i := 0; i < len(seg); i++ {
		if shouldEscapePathChar(seg[i]) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return seg
	}

	var b strings.Builder
	b.Grow(len(seg) * 2)
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if shouldEscapePathChar(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// joinPath appends an already-escaped component to a document path.
func joinPath(base, component string) string {
	if base == "" {
		return component
	}
	return base + "." + component
}

func shouldEscapePathChar(c byte) bool {
	switch c {
	case '\\', '.', ':', '|', '@', '*', '?', '#', ',', '(', ')', '=', '!', '<', '>', '~':
		return true
	}
	return false
}
