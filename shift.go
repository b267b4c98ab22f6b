package jshift

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// frame is one level of match context: the key matched at that level,
// its capture groups (captures[0] is always the whole key), and the
// input value the walk descended into. Frame 0 binds the empty key to
// the root document.
type frame struct {
	key      string
	captures []string
	val      gjson.Result
}

type shiftOp struct {
	root *patternNode
}

func (op shiftOp) apply(input []byte) ([]byte, error) {
	w := &shiftWalker{
		ctx: []frame{{key: "", captures: []string{""}, val: gjson.ParseBytes(input)}},
	}
	if err := w.walk(op.root); err != nil {
		return nil, err
	}
	if w.out == nil {
		return []byte(`{}`), nil
	}
	return w.out, nil
}

// shiftWalker advances the pattern tree and the input in lockstep,
// growing the output document by point writes.
type shiftWalker struct {
	ctx []frame
	out []byte
}

func (w *shiftWalker) walk(node *patternNode) error {
	tip := w.ctx[len(w.ctx)-1]

	for i := range node.infallible {
		ent := &node.infallible[i]
		routed, err := w.route(ent.lhs)
		if err != nil {
			return err
		}
		// The routed value is computed against the current context, then
		// handled one frame deeper: the extra frame repeats the tip's key
		// and captures with the value rebound, so &/$/@ offsets inside
		// the entry's RHS count from the entry itself.
		w.ctx = append(w.ctx, frame{key: tip.key, captures: tip.captures, val: routed})
		if ent.node != nil {
			err = w.walk(ent.node)
		} else {
			err = w.place(*ent.leaf, routed)
		}
		w.ctx = w.ctx[:len(w.ctx)-1]
		if err != nil {
			return err
		}
	}

	if len(node.fallible) == 0 {
		return nil
	}

	switch {
	case tip.val.IsObject():
		var ferr error
		tip.val.ForEach(func(k, v gjson.Result) bool {
			ferr = w.matchKey(node, k.String(), v)
			return ferr == nil
		})
		return ferr
	case tip.val.IsArray():
		// Array elements are matched like object members keyed by their
		// decimal index.
		for i, v := range tip.val.Array() {
			if err := w.matchKey(node, strconv.Itoa(i), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchKey tries the fallible entries in spec order against one input
// key. The first entry that matches consumes the key.
func (w *shiftWalker) matchKey(node *patternNode, k string, v gjson.Result) error {
	for i := range node.fallible {
		ent := &node.fallible[i]
		captures, ok, err := w.matchLhs(ent.lhs, k)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		w.ctx = append(w.ctx, frame{key: k, captures: captures, val: v})
		if ent.node != nil {
			err = w.walk(ent.node)
		} else {
			err = w.place(*ent.leaf, v)
		}
		w.ctx = w.ctx[:len(w.ctx)-1]
		return err
	}
	return nil
}

func (w *shiftWalker) matchLhs(lhs Lhs, k string) ([]string, bool, error) {
	switch l := lhs.(type) {
	case AmpLhs:
		m, err := w.capture(l.Frame, l.Capture)
		if err != nil {
			return nil, false, err
		}
		if m != k {
			return nil, false, nil
		}
		return []string{k}, true, nil
	case PipesLhs:
		for _, alt := range l.Alternatives {
			if caps, ok := matchStars(alt.Fragments, k); ok {
				return caps, true, nil
			}
		}
	}
	return nil, false, nil
}

// route evaluates an infallible entry into the value it forwards.
func (w *shiftWalker) route(lhs Lhs) (gjson.Result, error) {
	switch l := lhs.(type) {
	case DollarLhs:
		s, err := w.capture(l.Frame, l.Capture)
		if err != nil {
			return gjson.Result{}, err
		}
		return stringResult(s), nil
	case SquareLhs:
		return stringResult(l.Literal), nil
	case AtLhs:
		return w.evalAt(l.Level, l.Expr)
	}
	return gjson.Result{}, ErrSpec.New("left-hand side cannot route a value")
}

// capture resolves &(frameUp, capIdx) and $(frameUp, capIdx) against
// the match context.
func (w *shiftWalker) capture(frameUp, capIdx int) (string, error) {
	if frameUp >= len(w.ctx) {
		return "", ErrFrameOutOfRange.New(frameUp, len(w.ctx))
	}
	f := w.ctx[len(w.ctx)-1-frameUp]
	if capIdx >= len(f.captures) {
		return "", ErrCaptureOutOfRange.New(capIdx, len(f.captures))
	}
	return f.captures[capIdx], nil
}

// matchStars matches a key against star-pattern fragments. On a match
// it returns the captures: the whole key first, then one non-empty run
// per wildcard, bound leftmost-earliest. The final fragment anchors at
// the end of the key.
func matchStars(frags []string, k string) ([]string, bool) {
	if len(frags) == 1 {
		if k == frags[0] {
			return []string{k}, true
		}
		return nil, false
	}

	rest, found := strings.CutPrefix(k, frags[0])
	if !found {
		return nil, false
	}
	caps := []string{k}

	pos := 0
	for _, frag := range frags[1 : len(frags)-1] {
		if pos+1 > len(rest) {
			return nil, false
		}
		idx := strings.Index(rest[pos+1:], frag)
		if idx < 0 {
			return nil, false
		}
		caps = append(caps, rest[pos:pos+1+idx])
		pos += 1 + idx + len(frag)
	}

	last := frags[len(frags)-1]
	if last == "" {
		if pos >= len(rest) {
			return nil, false
		}
		return append(caps, rest[pos:]), true
	}
	cut := len(rest) - len(last)
	if cut < pos+1 || rest[cut:] != last {
		return nil, false
	}
	return append(caps, rest[pos:cut]), true
}

func stringResult(s string) gjson.Result {
	return gjson.ParseBytes(jsonString(s))
}

func jsonString(s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		return []byte(`""`)
	}
	return b
}
