package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHeaderCaseInsensitive(t *testing.T) {
	c := FlightGlobal()

	for _, raw := range []string{"Carrier", "carrier", "CARRIER", "  Carrier "} {
		name, ok := c.MapHeader(raw)
		require.True(t, ok, raw)
		assert.Equal(t, "carrier", name)
	}

	name, ok := c.MapHeader("FlightArrivalDayIndicator")
	require.True(t, ok)
	assert.Equal(t, "flightArrivalDayIndicator", name)

	_, ok = c.MapHeader("SomeFutureColumn")
	assert.False(t, ok)
}

func TestAllowsExtension(t *testing.T) {
	c := DiioAirport()
	assert.True(t, c.AllowsExtension(".tsv"))
	assert.True(t, c.AllowsExtension(".TSV"))
	assert.False(t, c.AllowsExtension(".csv"))

	assert.True(t, FlightGlobal().AllowsExtension(".csv"))
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name)
	}
	_, ok := ByName("Unknown")
	assert.False(t, ok)
}

func TestDialectReaders(t *testing.T) {
	fields, err := TabDialect.NewReader(strings.NewReader("a\tb\t\tc")).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "", "c"}, fields)

	// Short rows surface per row, not as a reader error.
	fields, err = CommaDialect.NewReader(strings.NewReader("a,b")).Read()
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}

func TestContractPositions(t *testing.T) {
	assert.Negative(t, FlightGlobal().TitlePos)
	assert.Zero(t, FlightGlobal().HeaderPos)

	diio := DiioExtract()
	assert.Equal(t, 2, diio.BlankRunEOD)
	assert.Equal(t, KindFlight, diio.Kind)
	assert.Equal(t, FlightCollection, diio.Collection)
}
