package jshift

import (
	"fmt"
	"strconv"
	"strings"
)

// Parsed forms of the expression language used inside shift bodies.
// Keys on the left-hand side select input, string leaves on the
// right-hand side describe output locations. Values are immutable once
// parsed; String renders a canonical form that reparses to the same
// tree.

// Lhs is a parsed left-hand-side expression.
type Lhs interface {
	fmt.Stringer
	lhsVariant()
}

// DollarLhs references a matched key: $(Frame, Capture).
type DollarLhs struct {
	Frame   int
	Capture int
}

// AmpLhs matches an input key equal to an earlier capture: &(Frame, Capture).
type AmpLhs struct {
	Frame   int
	Capture int
}

// AtLhs references an input value Level frames up, optionally walking
// into it with Expr: @(Level, Expr).
type AtLhs struct {
	Level int
	Expr  Rhs
}

// SquareLhs injects a literal string value: #Literal.
type SquareLhs struct {
	Literal string
}

// PipesLhs is an alternation of star patterns. The first alternative
// that matches an input key wins.
type PipesLhs struct {
	Alternatives []Stars
}

// Stars is a sequence of literal fragments separated by * wildcards.
// A bare "*" is represented as two empty fragments.
type Stars struct {
	Fragments []string
}

func (DollarLhs) lhsVariant() {}
func (AmpLhs) lhsVariant()    {}
func (AtLhs) lhsVariant()     {}
func (SquareLhs) lhsVariant() {}
func (PipesLhs) lhsVariant()  {}

// Rhs is a parsed right-hand-side expression: an ordered sequence of
// output path parts.
type Rhs struct {
	Parts []RhsPart
}

// RhsPart is one output path part: a key part or an index part.
type RhsPart interface {
	fmt.Stringer
	rhsPartVariant()
}

// KeyPart produces a single output key from its concatenated entries.
type KeyPart struct {
	Entries []RhsEntry
}

// IndexPart addresses an array slot. A nil Op means append.
type IndexPart struct {
	Op IndexOp
}

func (KeyPart) rhsPartVariant()   {}
func (IndexPart) rhsPartVariant() {}

// RhsEntry is one component of a key part.
type RhsEntry interface {
	fmt.Stringer
	rhsEntryVariant()
}

// AmpEntry resolves to a capture: &(Frame, Capture).
type AmpEntry struct {
	Frame   int
	Capture int
}

// AtEntry resolves a value reference whose result must be a string.
type AtEntry struct {
	Level int
	Expr  Rhs
}

// KeyEntry is a literal key fragment.
type KeyEntry struct {
	Key string
}

func (AmpEntry) rhsEntryVariant() {}
func (AtEntry) rhsEntryVariant()  {}
func (KeyEntry) rhsEntryVariant() {}

// IndexOp resolves to a non-negative array index.
type IndexOp interface {
	fmt.Stringer
	indexOpVariant()
}

// AmpIndex parses a capture as the index.
type AmpIndex struct {
	Frame   int
	Capture int
}

// AtIndex uses a dereferenced value as the index.
type AtIndex struct {
	Level int
	Expr  Rhs
}

// LiteralIndex is a literal numeric index.
type LiteralIndex struct {
	Value int
}

func (AmpIndex) indexOpVariant()     {}
func (AtIndex) indexOpVariant()      {}
func (LiteralIndex) indexOpVariant() {}

// escapeExprKey makes a literal key safe to embed in an expression by
// escaping every special character.
func escapeExprKey(s string) string {
	if !strings.ContainsAny(s, `@$#&[]|.,()*\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, c := range s {
		if isSpecialChar(c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// numPair renders &/$ expressions with the shortest sugar. The full
// parenthesized form is forced when the following text begins with a
// digit, otherwise the digit would be absorbed into the index.
func numPair(sym byte, frame, capture int, digitFollows bool) string {
	if capture == 0 && !digitFollows {
		if frame == 0 {
			return string(sym)
		}
		return string(sym) + strconv.Itoa(frame)
	}
	return fmt.Sprintf("%c(%d,%d)", sym, frame, capture)
}

func atString(level int, expr Rhs) string {
	if level == 0 {
		if len(expr.Parts) == 0 {
			return "@"
		}
		return "@(" + expr.String() + ")"
	}
	return "@(" + strconv.Itoa(level) + "," + expr.String() + ")"
}

func (l DollarLhs) String() string { return numPair('$', l.Frame, l.Capture, false) }
func (l AmpLhs) String() string    { return numPair('&', l.Frame, l.Capture, false) }
func (l AtLhs) String() string     { return atString(l.Level, l.Expr) }
func (l SquareLhs) String() string { return "#" + escapeExprKey(l.Literal) }

func (s Stars) String() string {
	parts := make([]string, len(s.Fragments))
	for i, f := range s.Fragments {
		parts[i] = escapeExprKey(f)
	}
	return strings.Join(parts, "*")
}

func (l PipesLhs) String() string {
	parts := make([]string, len(l.Alternatives))
	for i, alt := range l.Alternatives {
		parts[i] = alt.String()
	}
	return strings.Join(parts, "|")
}

func (r Rhs) String() string {
	var b strings.Builder
	for i, part := range r.Parts {
		if _, isKey := part.(KeyPart); isKey && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part.String())
	}
	return b.String()
}

func (p KeyPart) String() string {
	var b strings.Builder
	for i, e := range p.Entries {
		digitFollows := false
		if i+1 < len(p.Entries) {
			if k, ok := p.Entries[i+1].(KeyEntry); ok && k.Key != "" {
				digitFollows = k.Key[0] >= '0' && k.Key[0] <= '9'
			}
		}
		if amp, ok := e.(AmpEntry); ok {
			b.WriteString(numPair('&', amp.Frame, amp.Capture, digitFollows))
			continue
		}
		b.WriteString(e.String())
	}
	return b.String()
}

func (p IndexPart) String() string {
	if p.Op == nil {
		return "[]"
	}
	return "[" + p.Op.String() + "]"
}

func (e AmpEntry) String() string { return numPair('&', e.Frame, e.Capture, false) }
func (e AtEntry) String() string  { return atString(e.Level, e.Expr) }
func (e KeyEntry) String() string { return escapeExprKey(e.Key) }

func (o AmpIndex) String() string     { return numPair('&', o.Frame, o.Capture, false) }
func (o AtIndex) String() string      { return atString(o.Level, o.Expr) }
func (o LiteralIndex) String() string { return strconv.Itoa(o.Value) }
