package jshift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/pretty"
)

// jsonEq compares documents after canonicalizing whitespace. Member
// order is significant: output objects keep write order.
func jsonEq(t *testing.T, want string, got []byte) {
	t.Helper()
	require.Equal(t, string(pretty.Ugly([]byte(want))), string(pretty.Ugly(got)))
}

func TestTransformPipeline(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"operation":"shift","spec":{"*":"data.&0"}},
		{"operation":"default","spec":{"data":{"kind":"user"},"version":2}},
		{"operation":"remove","spec":{"data":{"secret":""}}}
	]`))
	require.NoError(t, err)

	out, err := Transform([]byte(`{"id":1,"secret":"hunter2"}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"data":{"id":1,"kind":"user"},"version":2}`, out)
}

func TestTransformPipelineAbortsOnError(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"operation":"shift","spec":{"a":"x","b":"x"}},
		{"operation":"default","spec":{"never":"reached"}}
	]`))
	require.NoError(t, err)

	out, err := Transform([]byte(`{"a":1,"b":2}`), spec)
	require.Error(t, err)
	assert.True(t, ErrCollision.Is(err))
	assert.Nil(t, out)
}

func TestTransformString(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"id":"data.id"}}`))
	require.NoError(t, err)

	out, err := TransformString(`{"id":7}`, spec)
	require.NoError(t, err)
	jsonEq(t, `{"data":{"id":7}}`, []byte(out))
}

func TestTransformRejectsInvalidInput(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"id":"data.id"}}`))
	require.NoError(t, err)

	_, err = Transform([]byte(`{"id":`), spec)
	require.Error(t, err)
	assert.True(t, ErrSpec.Is(err))
}

// End-to-end scenarios, one per operation feature.

func TestScenarioIdentityRepack(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"*":"data.&0"}}`))
	require.NoError(t, err)
	out, err := Transform([]byte(`{"id":1,"name":"John Smith","account":{"id":1000,"type":"Checking"}}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"data":{"id":1,"name":"John Smith","account":{"id":1000,"type":"Checking"}}}`, out)
}

func TestScenarioExplicitFields(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"id|name":"data.&(0)"}}`))
	require.NoError(t, err)
	out, err := Transform([]byte(`{"id":1,"name":"John Smith","account":{"id":1000,"type":"Checking"}}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"data":{"id":1,"name":"John Smith"}}`, out)
}

func TestScenarioPathReversal(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"foo":{"bar":{"baz":"new_location.&(0).&(1).&(2)"}}}}`))
	require.NoError(t, err)
	out, err := Transform([]byte(`{"foo":{"bar":{"baz":"value"}}}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"new_location":{"baz":{"bar":{"foo":"value"}}}}`, out)
}

func TestScenarioArrayPush(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"items":{"*":{"@(guid.value)":"data[&(1)].guid","*":{"$":"data[&(2)].keys[]"}}}}}`))
	require.NoError(t, err)
	out, err := Transform([]byte(`{"items":[{"guid":{"value":"A"}},{"guid":{"value":"B"}}]}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"data":[{"guid":"A","keys":["guid"]},{"guid":"B","keys":["guid"]}]}`, out)
}

func TestScenarioDefault(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"default","spec":{"phones":{"mobile":0,"code":"+1"}}}`))
	require.NoError(t, err)
	out, err := Transform([]byte(`{"phones":{"mobile":1234567,"country":"US"}}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"phones":{"mobile":1234567,"country":"US","code":"+1"}}`, out)
}

func TestScenarioRemove(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"remove","spec":{"phones":{"country":""}}}`))
	require.NoError(t, err)
	out, err := Transform([]byte(`{"phones":{"mobile":1234567,"country":"US"}}`), spec)
	require.NoError(t, err)
	jsonEq(t, `{"phones":{"mobile":1234567}}`, out)
}

func TestScenarioCollision(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"a":"x","b":"x"}}`))
	require.NoError(t, err)
	_, err = Transform([]byte(`{"a":1,"b":2}`), spec)
	require.Error(t, err)
	assert.True(t, ErrCollision.Is(err))
}

func TestScenarioKeyNotFound(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"a":{"@(missing)":"out"}}}`))
	require.NoError(t, err)
	_, err = Transform([]byte(`{"a":{}}`), spec)
	require.Error(t, err)
	assert.True(t, ErrKeyNotFound.Is(err))
}

func TestTransformSpecIsReusable(t *testing.T) {
	spec, err := ParseSpec([]byte(`{"operation":"shift","spec":{"*":"data.&0"}}`))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out, err := Transform([]byte(`{"n":1}`), spec)
		require.NoError(t, err)
		jsonEq(t, `{"data":{"n":1}}`, out)
	}
}
