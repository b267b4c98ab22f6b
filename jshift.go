// Package jshift transforms JSON documents with declarative JSON specs.
// Created by dhawalhost (2025-11-18 09:12:44)
//
// A spec is an ordered pipeline of operations. "shift" moves values
// from input locations to output locations through a small expression
// language on its keys and leaves, "default" fills in absent values,
// and "remove" prunes keys. Documents stay raw bytes throughout:
// traversal goes through gjson and output documents are grown with
// sjson point writes, so member order and number formatting survive
// untouched.
//
//	spec, err := jshift.ParseSpec([]byte(`{
//	    "operation": "shift",
//	    "spec": {"*": "data.&0"}
//	}`))
//	if err != nil {
//	    // invalid spec document
//	}
//	out, err := jshift.Transform([]byte(`{"id":1}`), spec)
//	// out == {"data":{"id":1}}
package jshift

import (
	"github.com/tidwall/gjson"
)

// TransformSpec is a compiled transform pipeline. It is immutable once
// parsed and safe for concurrent use.
type TransformSpec struct {
	ops []operation
}

// ParseSpec compiles a spec document: either a single operation object
// or an array of them. Every expression inside shift bodies is parsed
// here, so a spec that loads without error never fails to parse later.
func ParseSpec(data []byte) (*TransformSpec, error) {
	ops, err := parsePipeline(data)
	if err != nil {
		return nil, err
	}
	return &TransformSpec{ops: ops}, nil
}

// UnmarshalJSON implements json.Unmarshaler with ParseSpec semantics.
func (s *TransformSpec) UnmarshalJSON(data []byte) error {
	ops, err := parsePipeline(data)
	if err != nil {
		return err
	}
	s.ops = ops
	return nil
}

// Apply runs the pipeline over an input document, feeding each
// operation's output to the next. The first failing operation aborts
// the pipeline and its partial output is discarded.
func (s *TransformSpec) Apply(input []byte) ([]byte, error) {
	if !gjson.ValidBytes(input) {
		return nil, ErrSpec.New("input document is not valid JSON")
	}
	out := input
	for _, op := range s.ops {
		var err error
		out, err = op.apply(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Transform applies a compiled spec to an input document.
func Transform(input []byte, spec *TransformSpec) ([]byte, error) {
	return spec.Apply(input)
}

// TransformString is Transform for string documents.
func TransformString(input string, spec *TransformSpec) (string, error) {
	out, err := spec.Apply([]byte(input))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
