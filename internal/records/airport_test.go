package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylinedata/transnet/internal/provider"
)

var diioHeader = []string{
	"Code", "Name", "City", "State", "State Name", "Latitude", "Longitude",
	"Country", "Country Name", "Global Region", "WAC", "Notes",
}

func diioRow(code, name, lat, lon, country string) []string {
	return []string{code, name, "Anaa", "", "", lat, lon, country, "French Polynesia", "Australasia", "823", ""}
}

func TestValidCoordinatePair(t *testing.T) {
	assert.True(t, ValidCoordinatePair(-180, -90))
	assert.True(t, ValidCoordinatePair(180, 90))
	assert.True(t, ValidCoordinatePair(0, 0))
	assert.False(t, ValidCoordinatePair(-181, 0))
	assert.False(t, ValidCoordinatePair(181, 0))
	assert.False(t, ValidCoordinatePair(0, -91))
	assert.False(t, ValidCoordinatePair(0, 91))
}

func TestNewAirport(t *testing.T) {
	a, err := NewAirport(provider.DiioAirport(), diioHeader, diioRow("AAA", "Anaa", "-17.351700", "-145.497800", "PF"), 4)
	require.NoError(t, err)

	require.True(t, a.Validate())
	assert.Empty(t, a.Errors())
	assert.Equal(t, "AAA", a.Identity())
	assert.Equal(t, "AAA", a.Fields().Value("key"))
	assert.InDelta(t, -17.3517, a.Fields().Value("latitude").(float64), 1e-9)

	loc, ok := a.Fields().Get("loc")
	require.True(t, ok)
	require.NotNil(t, loc)
}

func TestNewAirportOutOfRangeCoordinates(t *testing.T) {
	// Latitude and longitude still coerce, so the record is valid;
	// only the derived location is withheld.
	a, err := NewAirport(provider.DiioAirport(), diioHeader, diioRow("ZZZ", "Unknown", "99.5", "-200.0", "ZZ"), 4)
	require.NoError(t, err)

	require.True(t, a.Validate())
	loc, ok := a.Fields().Get("loc")
	require.True(t, ok)
	assert.Nil(t, loc)
}

func TestNewAirportMissingRequired(t *testing.T) {
	a, err := NewAirport(provider.DiioAirport(), diioHeader, diioRow("---", "", "", "", "ZZ"), 7)
	require.NoError(t, err)

	require.False(t, a.Validate())
	assert.Empty(t, a.Identity())
	assert.NotEmpty(t, a.Errors())
	_, hasKey := a.Fields().Get("key")
	assert.False(t, hasKey)
}

func TestNewAirportLengthMismatch(t *testing.T) {
	_, err := NewAirport(provider.DiioAirport(), diioHeader, []string{"AAA", "Anaa"}, 4)

	var lenErr *InvalidLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, len(diioHeader), lenErr.HeaderLen)
	assert.Equal(t, 2, lenErr.RowLen)
}

func TestNewAirportWithoutHeader(t *testing.T) {
	_, err := NewAirport(provider.DiioAirport(), nil, diioRow("AAA", "Anaa", "0", "0", "PF"), 4)

	var propErr *InvalidPropertyError
	require.ErrorAs(t, err, &propErr)
}

func TestNewAirportIgnoresUnknownHeaders(t *testing.T) {
	header := append(append([]string{}, diioHeader...), "Bonus Column")
	row := append(diioRow("AAA", "Anaa", "-17.35", "-145.49", "PF"), "extra")

	a, err := NewAirport(provider.DiioAirport(), header, row, 4)
	require.NoError(t, err)
	require.True(t, a.Validate())
	_, ok := a.Fields().Get("Bonus Column")
	assert.False(t, ok)
}

func TestAirportSnapshotCoordinates(t *testing.T) {
	a, err := NewAirport(provider.DiioAirport(), diioHeader, diioRow("AAA", "Anaa", "-17.3517", "-145.4978", "PF"), 4)
	require.NoError(t, err)
	require.True(t, a.Validate())

	snap := a.Snapshot()
	assert.Equal(t, "AAA", snap.Code())
	lon, lat, ok := snap.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, -145.4978, lon, 1e-9)
	assert.InDelta(t, -17.3517, lat, 1e-9)

	_, _, ok = AirportSnapshot{"code": "XXX"}.Coordinates()
	assert.False(t, ok)
}

func TestInvalidRecordFromAirport(t *testing.T) {
	a, err := NewAirport(provider.DiioAirport(), diioHeader, diioRow("---", "", "", "", ""), 9)
	require.NoError(t, err)
	require.False(t, a.Validate())

	inv := NewInvalidRecord(a)
	require.True(t, inv.Validate())
	assert.Equal(t, "AirportRecord", inv.RecordType)
	assert.Equal(t, 9, inv.RowNumber)
	assert.Equal(t, a.Errors(), inv.Errors)

	doc := inv.Document()
	assert.Len(t, doc, 4)
}
