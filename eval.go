package jshift

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RHS evaluation: resolving an expression against the match context
// into concrete output path segments, and placing a value at that path
// in the output document.

type segKind int

const (
	segKey segKind = iota
	segIndex
	segAppend
)

type outSeg struct {
	kind segKind
	key  string
	idx  int
}

// evalAt dereferences @(level, expr): the input value level frames up,
// walked by expr as strict key/index lookups.
func (w *shiftWalker) evalAt(level int, expr Rhs) (gjson.Result, error) {
	if level >= len(w.ctx) {
		return gjson.Result{}, ErrFrameOutOfRange.New(level, len(w.ctx))
	}
	v := w.ctx[len(w.ctx)-1-level].val

	for _, part := range expr.Parts {
		switch p := part.(type) {
		case KeyPart:
			key, err := w.keyOf(p)
			if err != nil {
				return gjson.Result{}, err
			}
			if !v.IsObject() {
				return gjson.Result{}, ErrShapeMismatch.New(key, "key lookup on a non-object")
			}
			child := v.Get(escapeSegment(key))
			if !child.Exists() {
				return gjson.Result{}, ErrKeyNotFound.New(key)
			}
			v = child
		case IndexPart:
			if p.Op == nil {
				return gjson.Result{}, ErrShapeMismatch.New(p.String(), "append segment in a value lookup")
			}
			idx, err := w.indexOf(p.Op)
			if err != nil {
				return gjson.Result{}, err
			}
			if !v.IsArray() {
				return gjson.Result{}, ErrShapeMismatch.New(p.String(), "index lookup on a non-array")
			}
			arr := v.Array()
			if idx >= len(arr) {
				return gjson.Result{}, ErrIndexOutOfRange.New(idx, len(arr))
			}
			v = arr[idx]
		}
	}
	return v, nil
}

// keyOf concatenates the entries of a key part into one output key.
func (w *shiftWalker) keyOf(p KeyPart) (string, error) {
	var b strings.Builder
	for _, entry := range p.Entries {
		switch e := entry.(type) {
		case KeyEntry:
			b.WriteString(e.Key)
		case AmpEntry:
			s, err := w.capture(e.Frame, e.Capture)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case AtEntry:
			v, err := w.evalAt(e.Level, e.Expr)
			if err != nil {
				return "", err
			}
			if v.Type != gjson.String {
				return "", ErrShapeMismatch.New(e.String(), "value in key position is not a string")
			}
			b.WriteString(v.Str)
		}
	}
	return b.String(), nil
}

// indexOf resolves an index operation to a non-negative integer.
func (w *shiftWalker) indexOf(op IndexOp) (int, error) {
	switch o := op.(type) {
	case LiteralIndex:
		return o.Value, nil
	case AmpIndex:
		s, err := w.capture(o.Frame, o.Capture)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, ErrNotAnInteger.New(s)
		}
		return n, nil
	case AtIndex:
		v, err := w.evalAt(o.Level, o.Expr)
		if err != nil {
			return 0, err
		}
		if v.Type != gjson.Number {
			return 0, ErrNotAnInteger.New(v.Raw)
		}
		n, err := strconv.Atoi(v.Raw)
		if err != nil || n < 0 {
			return 0, ErrNotAnInteger.New(v.Raw)
		}
		return n, nil
	}
	return 0, ErrSpec.New("unknown index operation")
}

// place resolves the RHS to output path segments and writes the value.
// Containers are created explicitly as the walk descends, so every
// write lands in a parent whose type has been checked: key segments
// need objects, index and append segments need arrays, and null is the
// only value a write may replace.
func (w *shiftWalker) place(rhs Rhs, v gjson.Result) error {
	segs := make([]outSeg, 0, len(rhs.Parts))
	for _, part := range rhs.Parts {
		switch p := part.(type) {
		case KeyPart:
			key, err := w.keyOf(p)
			if err != nil {
				return err
			}
			segs = append(segs, outSeg{kind: segKey, key: key})
		case IndexPart:
			if p.Op == nil {
				segs = append(segs, outSeg{kind: segAppend})
				continue
			}
			idx, err := w.indexOf(p.Op)
			if err != nil {
				return err
			}
			segs = append(segs, outSeg{kind: segIndex, idx: idx})
		}
	}

	// The first write fixes the root container type.
	if w.out == nil {
		if segs[0].kind == segKey {
			w.out = []byte(`{}`)
		} else {
			w.out = []byte(`[]`)
		}
	}

	parentPath := ""
	parent := gjson.ParseBytes(w.out)
	for i, seg := range segs {
		var comp string
		switch seg.kind {
		case segKey:
			if !parent.IsObject() {
				if err := w.checkContainer(parent, parentPath, segKey); err != nil {
					return err
				}
				if err := w.retype(parentPath, `{}`); err != nil {
					return err
				}
				parent = w.valueAt(parentPath)
			}
			comp = escapeSegment(seg.key)
		case segIndex, segAppend:
			if !parent.IsArray() {
				if err := w.checkContainer(parent, parentPath, seg.kind); err != nil {
					return err
				}
				if err := w.retype(parentPath, `[]`); err != nil {
					return err
				}
				parent = w.valueAt(parentPath)
			}
			if seg.kind == segAppend {
				comp = strconv.Itoa(len(parent.Array()))
			} else {
				comp = strconv.Itoa(seg.idx)
			}
		}
		childPath := joinPath(parentPath, comp)

		if i == len(segs)-1 {
			existing := gjson.GetBytes(w.out, childPath)
			if existing.Exists() && existing.Type != gjson.Null {
				return ErrCollision.New(childPath)
			}
			out, err := sjson.SetRawBytes(w.out, childPath, []byte(v.Raw))
			if err != nil {
				return ErrShapeMismatch.New(childPath, err.Error())
			}
			w.out = out
			return nil
		}

		child := gjson.GetBytes(w.out, childPath)
		if !child.Exists() || child.Type == gjson.Null {
			init := `{}`
			if segs[i+1].kind != segKey {
				init = `[]`
			}
			out, err := sjson.SetRawBytes(w.out, childPath, []byte(init))
			if err != nil {
				return ErrShapeMismatch.New(childPath, err.Error())
			}
			w.out = out
		}
		parentPath = childPath
		parent = w.valueAt(childPath)
	}
	return nil
}

// checkContainer decides whether a mistyped traversal position is
// recoverable. Null is empty and may be retyped; anything else is a
// shape error or a value in the way.
func (w *shiftWalker) checkContainer(parent gjson.Result, path string, kind segKind) error {
	if parent.Type == gjson.Null {
		return nil
	}
	if kind == segKey {
		if parent.IsArray() {
			return ErrShapeMismatch.New(path, "key segment on an array")
		}
		return ErrCollision.New(path)
	}
	if parent.IsObject() {
		return ErrShapeMismatch.New(path, "index segment on an object")
	}
	return ErrShapeMismatch.New(path, "index segment on a non-array")
}

// retype replaces a null at path with an empty container.
func (w *shiftWalker) retype(path, init string) error {
	if path == "" {
		w.out = []byte(init)
		return nil
	}
	out, err := sjson.SetRawBytes(w.out, path, []byte(init))
	if err != nil {
		return ErrShapeMismatch.New(path, err.Error())
	}
	w.out = out
	return nil
}

func (w *shiftWalker) valueAt(path string) gjson.Result {
	if path == "" {
		return gjson.ParseBytes(w.out)
	}
	return gjson.GetBytes(w.out, path)
}
