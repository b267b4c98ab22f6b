package jshift

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// removeOp prunes the input along the shape of the spec: a "" leaf
// deletes the key it sits under, objects recurse by key, arrays recurse
// by index.
type removeOp struct {
	spec gjson.Result
}

func (op removeOp) apply(input []byte) ([]byte, error) {
	out := input

	var prune func(path string, spec gjson.Result) error
	prune = func(path string, spec gjson.Result) error {
		var cur gjson.Result
		if path == "" {
			cur = gjson.ParseBytes(out)
		} else {
			cur = gjson.GetBytes(out, path)
		}
		if !cur.Exists() {
			return nil
		}

		switch {
		case spec.IsObject() && cur.IsObject():
			var ferr error
			spec.ForEach(func(k, v gjson.Result) bool {
				childPath := joinPath(path, escapeSegment(k.String()))
				if v.Type == gjson.String && v.Str == "" {
					res, err := sjson.DeleteBytes(out, childPath)
					if err != nil {
						ferr = ErrShapeMismatch.New(childPath, err.Error())
						return false
					}
					out = res
					return true
				}
				if v.IsObject() || v.IsArray() {
					ferr = prune(childPath, v)
					return ferr == nil
				}
				return true
			})
			return ferr
		case spec.IsArray() && cur.IsArray():
			// Deletions run highest index first so earlier indices stay
			// stable while elements are removed.
			items := spec.Array()
			for i := len(items) - 1; i >= 0; i-- {
				sv := items[i]
				childPath := joinPath(path, strconv.Itoa(i))
				if sv.Type == gjson.String && sv.Str == "" {
					res, err := sjson.DeleteBytes(out, childPath)
					if err != nil {
						return ErrShapeMismatch.New(childPath, err.Error())
					}
					out = res
					continue
				}
				if sv.IsObject() || sv.IsArray() {
					if err := prune(childPath, sv); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	if err := prune("", op.spec); err != nil {
		return nil, err
	}
	return out, nil
}
