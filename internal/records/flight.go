package records

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/schema"
)

// stopCodeSeparator splits the multi-stop routing column of the
// FlightGlobal deliverable ("AUH!BAH").
const stopCodeSeparator = "!"

// flightSchema is the field-spec table for the flight record kind.
// Canonical names the providers map but the table omits fall back to
// optional strings.
var flightSchema = schema.Schema{
	"carrier":                   {Type: schema.TypeString, Required: true},
	"flightNumber":              {Type: schema.TypeInteger, Required: true},
	"serviceType":               {Type: schema.TypeString},
	"effectiveDate":             {Type: schema.TypeDateTime, Required: true, DateFormat: "01/02/2006"},
	"discontinuedDate":          {Type: schema.TypeDateTime, DateFormat: "01/02/2006"},
	"day1":                      {Type: schema.TypeBoolean},
	"day2":                      {Type: schema.TypeBoolean},
	"day3":                      {Type: schema.TypeBoolean},
	"day4":                      {Type: schema.TypeBoolean},
	"day5":                      {Type: schema.TypeBoolean},
	"day6":                      {Type: schema.TypeBoolean},
	"day7":                      {Type: schema.TypeBoolean},
	"departureAirport":          {Type: schema.TypeString, Required: true},
	"arrivalAirport":            {Type: schema.TypeString, Required: true},
	"departureTimePub":          {Type: schema.TypeString},
	"arrivalTimePub":            {Type: schema.TypeString},
	"departureUTCVariance":      {Type: schema.TypeString},
	"arrivalUTCVariance":        {Type: schema.TypeString},
	"flightArrivalDayIndicator": {Type: schema.TypeInteger},
	"stops":                     {Type: schema.TypeInteger},
	"stopCodes":                 {Type: schema.TypeString},
	"flightDistance":            {Type: schema.TypeNumber},
	"elapsedTime":               {Type: schema.TypeNumber},
	"layoverTime":               {Type: schema.TypeNumber},
	"totalFrequency":            {Type: schema.TypeInteger},
	"availSeatMi":               {Type: schema.TypeNumber},
	"availSeatKm":               {Type: schema.TypeNumber},
	"totalSeats":                {Type: schema.TypeInteger},
	"firstClassSeats":           {Type: schema.TypeInteger},
	"businessClassSeats":        {Type: schema.TypeInteger},
	"premiumEconomyClassSeats":  {Type: schema.TypeInteger},
	"economyClassSeats":         {Type: schema.TypeInteger},
	"aircraftTonnage":           {Type: schema.TypeNumber},
}

// Leg is one directed airport-to-airport segment of a flight.
type Leg struct {
	Departure AirportSnapshot
	Arrival   AirportSnapshot
	Distance  float64 // statute miles
	Time      float64 // seconds
}

// Flight is one row of a flight-schedule report. Departure, arrival
// and intermediate-stop airports are embedded as snapshots looked up
// from the already-loaded airport collection.
type Flight struct {
	base

	depCode string
	arrCode string

	depAirport   AirportSnapshot
	arrAirport   AirportSnapshot
	stopAirports []AirportSnapshot
	missingStops []string

	legs []Leg
}

// NewFlight builds a flight record from one data row: populate,
// embed airport snapshots, then compute the derived fields.
func NewFlight(ctx context.Context, c *provider.Contract, header, row []string, rowNum int, lookup AirportLookup) (*Flight, error) {
	if lookup == nil {
		return nil, invalidProperty("flight record requires an airport lookup")
	}
	f := &Flight{base: newBase(c, flightSchema, rowNum)}
	if err := f.populate(header, row); err != nil {
		return nil, err
	}
	if err := f.embedAirports(ctx, lookup); err != nil {
		return nil, err
	}
	if err := f.derive(); err != nil {
		return nil, err
	}
	return f, nil
}

// embedAirports replaces the departure/arrival/stop code fields with
// denormalized airport documents. A code the store does not know
// leaves the field nil; validation rejects the record from there.
func (f *Flight) embedAirports(ctx context.Context, lookup AirportLookup) error {
	var err error
	if f.depCode, f.depAirport, err = f.embedOne(ctx, lookup, "departureAirport"); err != nil {
		return err
	}
	if f.arrCode, f.arrAirport, err = f.embedOne(ctx, lookup, "arrivalAirport"); err != nil {
		return err
	}

	codes, _ := f.fields.Value("stopCodes").(string)
	if codes == "" {
		return nil
	}
	stops := make(bson.A, 0, 2)
	for _, code := range strings.Split(codes, stopCodeSeparator) {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		snap, err := lookup.AirportByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("look up stop airport %s: %w", code, err)
		}
		if snap == nil {
			f.missingStops = append(f.missingStops, code)
			continue
		}
		f.stopAirports = append(f.stopAirports, snap)
		stops = append(stops, bson.M(snap))
	}
	f.fields.Set("stopAirports", stops)
	return nil
}

func (f *Flight) embedOne(ctx context.Context, lookup AirportLookup, field string) (string, AirportSnapshot, error) {
	code, _ := f.fields.Value(field).(string)
	if code == "" {
		f.fields.Set(field, nil)
		return "", nil, nil
	}
	snap, err := lookup.AirportByCode(ctx, code)
	if err != nil {
		return code, nil, fmt.Errorf("look up %s %s: %w", field, code, err)
	}
	if snap == nil {
		f.fields.Set(field, nil)
		return code, nil, nil
	}
	f.fields.Set(field, bson.M(snap))
	return code, snap, nil
}

// derive computes the calculated fields. The order is load-bearing:
// weekly frequency, total time, total distance, then legs — legs
// apportion total time over leg distances.
func (f *Flight) derive() error {
	f.fields.Set("weeklyFrequency", countWeeklyFrequency([]any{
		f.fields.Value("day1"), f.fields.Value("day2"), f.fields.Value("day3"),
		f.fields.Value("day4"), f.fields.Value("day5"), f.fields.Value("day6"),
		f.fields.Value("day7"),
	}))

	totalTime, err := f.deriveTotalTime()
	if err != nil {
		return err
	}

	if f.depCode != "" && f.depCode == f.arrCode && len(f.stopAirports) == 0 && len(f.missingStops) == 0 {
		return invalidProperty("flight departs and arrives at %s with no intermediate stops", f.depCode)
	}

	route := f.route()
	totalDistance := 0.0
	distances := make([]float64, 0, len(route))
	for i := 0; i+1 < len(route); i++ {
		d := 0.0
		if lon1, lat1, ok := route[i].Coordinates(); ok {
			if lon2, lat2, ok := route[i+1].Coordinates(); ok {
				d = haversineMiles(lon1, lat1, lon2, lat2)
			}
		}
		distances = append(distances, d)
		totalDistance += d
	}
	f.fields.Set("totalDistance", totalDistance)

	if len(route) >= 2 {
		legs := make([]Leg, 0, len(distances))
		legDocs := make(bson.A, 0, len(distances))
		for i, d := range distances {
			legTime := 0.0
			if totalDistance > 0 && totalTime != nil {
				legTime = float64(*totalTime) * (d / totalDistance)
			}
			leg := Leg{Departure: route[i], Arrival: route[i+1], Distance: d, Time: legTime}
			legs = append(legs, leg)
			legDocs = append(legDocs, bson.D{
				{Key: "departure", Value: bson.M(leg.Departure)},
				{Key: "arrival", Value: bson.M(leg.Arrival)},
				{Key: "legDistance", Value: leg.Distance},
				{Key: "legTime", Value: leg.Time},
			})
		}
		f.legs = legs
		f.fields.Set("legs", legDocs)
	} else {
		f.fields.Set("legs", bson.A{})
	}
	return nil
}

// deriveTotalTime computes timezone-adjusted elapsed seconds between
// the published departure and arrival times. Absent inputs leave the
// field nil; malformed inputs are a property error for the row.
func (f *Flight) deriveTotalTime() (*int64, error) {
	depTime, _ := f.fields.Value("departureTimePub").(string)
	arrTime, _ := f.fields.Value("arrivalTimePub").(string)
	depVar, _ := f.fields.Value("departureUTCVariance").(string)
	arrVar, _ := f.fields.Value("arrivalUTCVariance").(string)

	if depTime == "" || arrTime == "" || depVar == "" || arrVar == "" {
		f.fields.Set("totalTime", nil)
		return nil, nil
	}

	days := 0
	if n, ok := f.fields.Value("flightArrivalDayIndicator").(int64); ok {
		days = int(n)
	}

	secs, err := elapsedSeconds(depTime, depVar, arrTime, arrVar, days)
	if err != nil {
		return nil, err
	}
	f.fields.Set("totalTime", secs)
	return &secs, nil
}

// route returns the ordered airport sequence departure → stops →
// arrival, skipping ends that failed lookup.
func (f *Flight) route() []AirportSnapshot {
	if f.depAirport == nil || f.arrAirport == nil {
		return nil
	}
	route := make([]AirportSnapshot, 0, len(f.stopAirports)+2)
	route = append(route, f.depAirport)
	route = append(route, f.stopAirports...)
	route = append(route, f.arrAirport)
	return route
}

// TypeName implements Record.
func (f *Flight) TypeName() string { return "FlightRecord" }

// Validate implements Record. On success the deterministic identity
// hash is computed and stored under the key field.
func (f *Flight) Validate() bool {
	f.errs = nil
	valid := f.validateRequired()
	for _, code := range f.missingStops {
		f.errs = append(f.errs, "stop airport "+code+" not found in airport collection")
		valid = false
	}
	if !valid {
		return false
	}
	f.identity = f.computeIdentity()
	f.fields.Set("key", f.identity)
	return true
}

// computeIdentity hashes (effective date, carrier, flight number) so
// reruns upsert the same document.
func (f *Flight) computeIdentity() string {
	date, _ := f.fields.Value("effectiveDate").(time.Time)
	carrier, _ := f.fields.Value("carrier").(string)
	number, _ := f.fields.Value("flightNumber").(int64)

	sum := md5.Sum(fmt.Appendf(nil, "%s|%s|%d", date.UTC().Format("2006-01-02"), carrier, number))
	return hex.EncodeToString(sum[:])
}

// Legs returns the computed stop-to-stop segments.
func (f *Flight) Legs() []Leg { return f.legs }

// LegDocuments flattens the legs into standalone documents for the
// legs collection, each tagged with the owning flight's key.
func (f *Flight) LegDocuments() []bson.D {
	docs := make([]bson.D, 0, len(f.legs))
	for i, leg := range f.legs {
		docs = append(docs, bson.D{
			{Key: "flightKey", Value: f.identity},
			{Key: "legIndex", Value: i},
			{Key: "departure", Value: bson.M(leg.Departure)},
			{Key: "arrival", Value: bson.M(leg.Arrival)},
			{Key: "legDistance", Value: leg.Distance},
			{Key: "legTime", Value: leg.Time},
		})
	}
	return docs
}
