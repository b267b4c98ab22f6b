package jshift

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// defaultOp fills gaps in the input with values from the spec: absent
// object keys are copied in, arrays align by index with the spec's tail
// appended, and values already present are never overwritten.
type defaultOp struct {
	spec gjson.Result
}

func (op defaultOp) apply(input []byte) ([]byte, error) {
	out := input

	var merge func(path string, spec gjson.Result) error
	merge = func(path string, spec gjson.Result) error {
		var cur gjson.Result
		if path == "" {
			cur = gjson.ParseBytes(out)
		} else {
			cur = gjson.GetBytes(out, path)
			if !cur.Exists() {
				res, err := sjson.SetRawBytes(out, path, []byte(spec.Raw))
				if err != nil {
					return ErrShapeMismatch.New(path, err.Error())
				}
				out = res
				return nil
			}
		}

		switch {
		case cur.IsObject() && spec.IsObject():
			var ferr error
			spec.ForEach(func(k, v gjson.Result) bool {
				ferr = merge(joinPath(path, escapeSegment(k.String())), v)
				return ferr == nil
			})
			return ferr
		case cur.IsArray() && spec.IsArray():
			for i, sv := range spec.Array() {
				if err := merge(joinPath(path, strconv.Itoa(i)), sv); err != nil {
					return err
				}
			}
		}
		// Present and not a matching container: the input value wins.
		return nil
	}

	if err := merge("", op.spec); err != nil {
		return nil, err
	}
	return out, nil
}
