package records

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/schema"
)

// Record is one normalized row of provider data. A record is either
// fully typed according to its schema or a field is explicitly nil;
// Identity is non-empty exactly when every required field is present
// and well-typed, which is the sole precondition for persistence.
type Record interface {
	TypeName() string
	RowNumber() int

	// Identity returns the store's unique key, empty until Validate
	// has succeeded.
	Identity() string

	// Validate checks the record against its schema, populating the
	// error collection consumed by the quarantine path.
	Validate() bool
	Errors() []string

	Fields() *FieldMap
	Document() bson.D
}

// AirportLookup is the cross-reference point lookup flights use to
// embed airport snapshots. A missing code returns (nil, nil).
type AirportLookup interface {
	AirportByCode(ctx context.Context, code string) (AirportSnapshot, error)
}

// AirportSnapshot is an airport document copied out of the store at
// ingestion time. It is an owned value, not a live reference: later
// airport corrections do not alter flights already loaded.
type AirportSnapshot bson.M

// Code returns the snapshot's airport code.
func (s AirportSnapshot) Code() string {
	code, _ := s["code"].(string)
	return code
}

// Coordinates returns the snapshot's longitude/latitude pair. ok is
// false when either ordinate is absent or outside its valid range.
func (s AirportSnapshot) Coordinates() (lon, lat float64, ok bool) {
	lonV, lonOK := toFloat(s["longitude"])
	latV, latOK := toFloat(s["latitude"])
	if !lonOK || !latOK || !ValidCoordinatePair(lonV, latV) {
		return 0, 0, false
	}
	return lonV, latV, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// New builds the record kind the contract prescribes from one data
// row. Row-level failures (length mismatch, malformed derived-field
// inputs) come back as errors; schema violations do not — they are
// reported by Validate.
func New(ctx context.Context, c *provider.Contract, header, row []string, rowNum int, lookup AirportLookup) (Record, error) {
	if c == nil {
		return nil, invalidProperty("record requires a provider contract")
	}
	switch c.Kind {
	case provider.KindAirport:
		return NewAirport(c, header, row, rowNum)
	case provider.KindFlight:
		return NewFlight(ctx, c, header, row, rowNum, lookup)
	}
	return nil, invalidProperty("unknown record kind %q", c.Kind)
}

// base carries the state shared by the concrete record kinds.
type base struct {
	contract *provider.Contract
	sch      schema.Schema
	fields   *FieldMap
	rowNum   int
	identity string
	errs     []string
}

func newBase(c *provider.Contract, kindSchema schema.Schema, rowNum int) base {
	sch := kindSchema
	if len(c.SchemaOverrides) > 0 {
		sch = make(schema.Schema, len(kindSchema)+len(c.SchemaOverrides))
		for name, spec := range kindSchema {
			sch[name] = spec
		}
		for name, spec := range c.SchemaOverrides {
			sch[name] = spec
		}
	}
	return base{contract: c, sch: sch, fields: NewFieldMap(), rowNum: rowNum}
}

// populate sets fields from a data row, walking row positions in
// lock-step with the captured header row. Unmapped headers are
// skipped; coercion failures degrade the field to nil.
func (b *base) populate(header, row []string) error {
	if len(header) == 0 {
		return invalidProperty("record requires the captured header row")
	}
	if len(row) != len(header) {
		return &InvalidLengthError{HeaderLen: len(header), RowLen: len(row)}
	}
	for i, raw := range header {
		name, ok := b.contract.MapHeader(raw)
		if !ok {
			continue
		}
		v, ok := schema.Coerce(b.sch.Spec(name), row[i])
		if !ok {
			b.fields.Set(name, nil)
			continue
		}
		b.fields.Set(name, v)
	}
	return nil
}

// validateRequired checks every schema-required field, recording one
// error per violation.
func (b *base) validateRequired() bool {
	valid := true
	for _, name := range b.sch.Required() {
		if v, ok := b.fields.Get(name); !ok || v == nil {
			b.errs = append(b.errs, "required field "+name+" is missing or null")
			valid = false
		}
	}
	return valid
}

func (b *base) RowNumber() int    { return b.rowNum }
func (b *base) Identity() string  { return b.identity }
func (b *base) Errors() []string  { return b.errs }
func (b *base) Fields() *FieldMap { return b.fields }

func (b *base) Document() bson.D { return b.fields.BSON() }
