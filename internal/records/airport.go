package records

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/schema"
)

// airportSchema is the field-spec table for the airport record kind.
var airportSchema = schema.Schema{
	"code":         {Type: schema.TypeString, Required: true},
	"name":         {Type: schema.TypeString, Required: true},
	"city":         {Type: schema.TypeString},
	"state":        {Type: schema.TypeString},
	"stateName":    {Type: schema.TypeString},
	"latitude":     {Type: schema.TypeFloat, Required: true},
	"longitude":    {Type: schema.TypeFloat, Required: true},
	"country":      {Type: schema.TypeString, Required: true},
	"countryName":  {Type: schema.TypeString},
	"globalRegion": {Type: schema.TypeString},
	"WAC":          {Type: schema.TypeNumber},
	"notes":        {Type: schema.TypeString},
}

// Airport is one row of an airport reference report. Its natural key
// is the provider airport code.
type Airport struct {
	base
}

// NewAirport builds an airport record from one data row and derives
// its loc field.
func NewAirport(c *provider.Contract, header, row []string, rowNum int) (*Airport, error) {
	a := &Airport{base: newBase(c, airportSchema, rowNum)}
	if err := a.populate(header, row); err != nil {
		return nil, err
	}
	a.deriveLocation()
	return a, nil
}

// deriveLocation sets loc to a GeoJSON point when the coordinate pair
// is valid, nil otherwise. An out-of-range pair is not an error: the
// record is simply left ungeocoded.
func (a *Airport) deriveLocation() {
	lon, lonOK := toFloat(a.fields.Value("longitude"))
	lat, latOK := toFloat(a.fields.Value("latitude"))
	if !lonOK || !latOK || !ValidCoordinatePair(lon, lat) {
		a.fields.Set("loc", nil)
		return
	}
	a.fields.Set("loc", bson.D{
		{Key: "type", Value: "Point"},
		{Key: "coordinates", Value: bson.A{lon, lat}},
	})
}

// TypeName implements Record.
func (a *Airport) TypeName() string { return "AirportRecord" }

// Validate implements Record. On success the airport code becomes the
// record identity and is stored under the key field.
func (a *Airport) Validate() bool {
	a.errs = nil
	if !a.validateRequired() {
		return false
	}
	code, _ := a.fields.Value("code").(string)
	a.identity = code
	a.fields.Set("key", a.identity)
	return true
}

// Snapshot renders the airport as the embeddable document form that
// flight records denormalize at ingestion time.
func (a *Airport) Snapshot() AirportSnapshot {
	snap := make(AirportSnapshot, a.fields.Len())
	for _, k := range a.fields.Keys() {
		snap[k] = a.fields.Value(k)
	}
	return snap
}

// ValidCoordinatePair reports whether longitude is within [-180, 180]
// and latitude within [-90, 90].
func ValidCoordinatePair(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}
