package jshift

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tidwall/gjson"
)

// Spec loading. The outer document is an ordered pipeline of
// operations; shift bodies are compiled into pattern trees with every
// expression parsed eagerly, so Transform never parses.

type operation interface {
	apply(input []byte) ([]byte, error)
}

// patternNode is one level of a compiled shift body. Entries keep their
// spec-declared order, split into the infallible class (@, $, #), which
// fires once per level, and the fallible class (&, key patterns), which
// is tried against each input key.
type patternNode struct {
	infallible []patternEntry
	fallible   []patternEntry
}

// patternEntry pairs a parsed LHS with either a sub-tree or an RHS leaf.
type patternEntry struct {
	lhs  Lhs
	node *patternNode
	leaf *Rhs
}

// Expressions repeat heavily across spec levels ("*", "&0" and friends),
// so parsed forms are memoized in a bounded LRU shared by all loads.
var exprCache, _ = lru.New(512)

func parseLhsCached(src string) (Lhs, error) {
	key := "lhs\x00" + src
	if v, ok := exprCache.Get(key); ok {
		return v.(Lhs), nil
	}
	lhs, err := ParseLhs(src)
	if err != nil {
		return nil, err
	}
	exprCache.Add(key, lhs)
	return lhs, nil
}

func parseRhsCached(src string) (Rhs, error) {
	key := "rhs\x00" + src
	if v, ok := exprCache.Get(key); ok {
		return v.(Rhs), nil
	}
	rhs, err := ParseRhs(src)
	if err != nil {
		return Rhs{}, err
	}
	exprCache.Add(key, rhs)
	return rhs, nil
}

func parsePipeline(data []byte) ([]operation, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrSpec.New("document is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		var ops []operation
		for _, entry := range root.Array() {
			op, err := parseOperation(entry)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}
		return ops, nil
	case root.IsObject():
		op, err := parseOperation(root)
		if err != nil {
			return nil, err
		}
		return []operation{op}, nil
	}
	return nil, ErrSpec.New("top level must be an operation or an array of operations")
}

func parseOperation(res gjson.Result) (operation, error) {
	if !res.IsObject() {
		return nil, ErrSpec.New("operation entry must be an object")
	}

	name := res.Get("operation")
	if name.Type != gjson.String {
		return nil, ErrSpec.New("missing operation name")
	}
	body := res.Get("spec")
	if !body.Exists() {
		return nil, ErrSpec.New(fmt.Sprintf("operation %q has no spec body", name.Str))
	}

	switch name.Str {
	case "shift":
		if !body.IsObject() {
			return nil, ErrSpec.New("shift spec must be an object")
		}
		node, err := compilePattern(body)
		if err != nil {
			return nil, err
		}
		return shiftOp{root: node}, nil
	case "default":
		return defaultOp{spec: body}, nil
	case "remove":
		return removeOp{spec: body}, nil
	}
	return nil, ErrSpec.New(fmt.Sprintf("unknown operation %q", name.Str))
}

// compilePattern turns one level of a shift body into a patternNode,
// parsing keys as LHS expressions and string leaves as RHS expressions.
func compilePattern(body gjson.Result) (*patternNode, error) {
	node := &patternNode{}
	seen := make(map[string]struct{})

	var ferr error
	body.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if _, dup := seen[key]; dup {
			ferr = ErrSpec.New(fmt.Sprintf("duplicate key %q in shift spec", key))
			return false
		}
		seen[key] = struct{}{}

		lhs, err := parseLhsCached(key)
		if err != nil {
			ferr = err
			return false
		}

		entry := patternEntry{lhs: lhs}
		switch {
		case v.IsObject():
			sub, err := compilePattern(v)
			if err != nil {
				ferr = err
				return false
			}
			entry.node = sub
		case v.Type == gjson.String:
			rhs, err := parseRhsCached(v.Str)
			if err != nil {
				ferr = err
				return false
			}
			if len(rhs.Parts) == 0 {
				ferr = ErrSpec.New(fmt.Sprintf("empty right-hand side for key %q", key))
				return false
			}
			entry.leaf = &rhs
		default:
			ferr = ErrSpec.New(fmt.Sprintf("shift leaf for key %q must be a string", key))
			return false
		}

		switch lhs.(type) {
		case AtLhs, DollarLhs, SquareLhs:
			node.infallible = append(node.infallible, entry)
		default:
			node.fallible = append(node.fallible, entry)
		}
		return true
	})
	if ferr != nil {
		return nil, ferr
	}
	return node, nil
}
