package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceBoolean(t *testing.T) {
	spec := FieldSpec{Type: TypeBoolean}

	truthy := []any{"1", 1, "True", "TrUe", true}
	for _, raw := range truthy {
		v, ok := Coerce(spec, raw)
		require.True(t, ok, "raw %v", raw)
		assert.Equal(t, true, v, "raw %v", raw)
	}

	falsy := []any{"0", 0, "False", "FaLSe", false}
	for _, raw := range falsy {
		v, ok := Coerce(spec, raw)
		require.True(t, ok, "raw %v", raw)
		assert.Equal(t, false, v, "raw %v", raw)
	}

	ambiguous := []any{"ABCD", 1234, nil, "yes", 3.14}
	for _, raw := range ambiguous {
		v, ok := Coerce(spec, raw)
		assert.False(t, ok, "raw %v", raw)
		assert.Nil(t, v, "raw %v", raw)
	}
}

func TestCoerceNumeric(t *testing.T) {
	v, ok := Coerce(FieldSpec{Type: TypeInteger}, "5,250")
	require.True(t, ok)
	assert.Equal(t, int64(5250), v)

	v, ok = Coerce(FieldSpec{Type: TypeFloat}, "-145.497800")
	require.True(t, ok)
	assert.InDelta(t, -145.4978, v.(float64), 1e-9)

	v, ok = Coerce(FieldSpec{Type: TypeNumber}, "1,130")
	require.True(t, ok)
	assert.InDelta(t, 1130.0, v.(float64), 1e-9)

	_, ok = Coerce(FieldSpec{Type: TypeInteger}, "abc")
	assert.False(t, ok)

	_, ok = Coerce(FieldSpec{Type: TypeFloat}, "")
	assert.False(t, ok)
}

func TestCoerceString(t *testing.T) {
	v, ok := Coerce(FieldSpec{Type: TypeString}, "  JFK ")
	require.True(t, ok)
	assert.Equal(t, "JFK", v)

	_, ok = Coerce(FieldSpec{Type: TypeString}, "   ")
	assert.False(t, ok)
}

func TestCoerceDateTime(t *testing.T) {
	spec := FieldSpec{Type: TypeDateTime, DateFormat: "01/02/2006"}

	v, ok := Coerce(spec, "07/28/2015")
	require.True(t, ok)
	assert.Equal(t, time.Date(2015, 7, 28, 0, 0, 0, 0, time.UTC), v)

	_, ok = Coerce(spec, "2015-07-28")
	assert.False(t, ok)

	_, ok = Coerce(FieldSpec{Type: TypeDateTime}, "07/28/2015")
	assert.False(t, ok, "missing layout cannot parse")
}

func TestSchemaRequired(t *testing.T) {
	s := Schema{
		"code": {Type: TypeString, Required: true},
		"name": {Type: TypeString, Required: true},
		"city": {Type: TypeString},
	}
	assert.ElementsMatch(t, []string{"code", "name"}, s.Required())
	assert.Equal(t, FieldSpec{Type: TypeString}, s.Spec("unknown"))
}
