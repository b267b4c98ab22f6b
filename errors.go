package jshift

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

// Error kinds reported by spec loading and transform execution. Callers
// can classify failures with Kind.Is, e.g. jshift.ErrCollision.Is(err).
var (
	// ErrParse reports a DSL grammar or escape violation in an LHS/RHS
	// string. The offset is a byte position within that string.
	ErrParse = errors.NewKind("parse error at offset %d: %s")

	// ErrSpec reports a malformed spec document: bad operation name,
	// missing fields, or an invalid leaf under a shift body.
	ErrSpec = errors.NewKind("invalid spec: %s")

	// ErrKeyNotFound reports an @-dereference into an object that has no
	// such key.
	ErrKeyNotFound = errors.NewKind("key %q not found")

	// ErrIndexOutOfRange reports an @-dereference into an array past its
	// end.
	ErrIndexOutOfRange = errors.NewKind("array index %d out of range, length is %d")

	// ErrFrameOutOfRange reports an &, $ or @ expression that walks more
	// levels up than the match context holds.
	ErrFrameOutOfRange = errors.NewKind("path index %d out of range, context depth is %d")

	// ErrCaptureOutOfRange reports an & or $ expression addressing a
	// capture group the target frame does not have.
	ErrCaptureOutOfRange = errors.NewKind("capture index %d out of range, frame has %d")

	// ErrCollision reports a write targeting an output position that
	// already holds a non-null value.
	ErrCollision = errors.NewKind("output collision at %q")

	// ErrShapeMismatch reports a write or lookup whose segment type
	// disagrees with the container found at that position.
	ErrShapeMismatch = errors.NewKind("shape mismatch at %q: %s")

	// ErrNotAnInteger reports an index operand that did not resolve to a
	// non-negative integer.
	ErrNotAnInteger = errors.NewKind("expected a non-negative integer index, got %q")
)
