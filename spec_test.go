package jshift

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecSingleOperation(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"*":"data.&0"}}`))
	require.NoError(t, err)
	require.Len(t, spec.ops, 1)
}

func TestParseSpecPipeline(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"operation":"shift","spec":{"id":"data.id"}},
		{"operation":"default","spec":{"data":{"kind":"user"}}},
		{"operation":"remove","spec":{"data":{"id":""}}}
	]`))
	require.NoError(t, err)
	require.Len(t, spec.ops, 3)
}

func TestTransformSpecUnmarshalJSON(t *testing.T) {
	var spec TransformSpec
	err := json.Unmarshal([]byte(`{"operation":"shift","spec":{"id":"data.id"}}`), &spec)
	require.NoError(t, err)

	out, err := spec.Apply([]byte(`{"id":7}`))
	require.NoError(t, err)
	jsonEq(t, `{"data":{"id":7}}`, out)
}

func TestParseSpecErrors(t *testing.T) {
	cases := []struct {
		name string
		spec string
	}{
		{"not json", `{"operation":`},
		{"scalar top level", `42`},
		{"operation not an object", `[42]`},
		{"missing operation name", `{"spec":{}}`},
		{"unknown operation", `{"operation":"sort","spec":{}}`},
		{"missing body", `{"operation":"shift"}`},
		{"shift body not an object", `{"operation":"shift","spec":"a"}`},
		{"non-string leaf", `{"operation":"shift","spec":{"a":1}}`},
		{"null leaf", `{"operation":"shift","spec":{"a":null}}`},
		{"array leaf", `{"operation":"shift","spec":{"a":["x"]}}`},
		{"empty rhs leaf", `{"operation":"shift","spec":{"a":""}}`},
		{"duplicate key", `{"operation":"shift","spec":{"a":"x","a":"y"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tc.spec))
			require.Error(t, err)
			assert.True(t, ErrSpec.Is(err), "expected a spec error, got %v", err)
		})
	}
}

func TestParseSpecParseErrorsAreEager(t *testing.T) {
	_, err := ParseSpec([]byte(`{"operation":"shift","spec":{"&(1":"out"}}`))
	require.Error(t, err)
	assert.True(t, ErrParse.Is(err), "expected a parse error, got %v", err)

	_, err = ParseSpec([]byte(`{"operation":"shift","spec":{"a":"out["}}`))
	require.Error(t, err)
	assert.True(t, ErrParse.Is(err), "expected a parse error, got %v", err)
}

func TestParseSpecDefaultAndRemoveKeepBody(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"default","spec":{"a":{"b":[1,2]}}}`))
	require.NoError(t, err)

	out, err := spec.Apply([]byte(`{}`))
	require.NoError(t, err)
	jsonEq(t, `{"a":{"b":[1,2]}}`, out)

	spec, err = ParseSpec([]byte(`{"operation":"remove","spec":{"a":{"b":""}}}`))
	require.NoError(t, err)

	out, err = spec.Apply([]byte(`{"a":{"b":1,"c":2}}`))
	require.NoError(t, err)
	jsonEq(t, `{"a":{"c":2}}`, out)
}
