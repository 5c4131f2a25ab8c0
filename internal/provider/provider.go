package provider

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/skylinedata/transnet/internal/schema"
)

// Kind selects which record kind a contract's rows produce.
type Kind string

const (
	KindAirport Kind = "airport"
	KindFlight  Kind = "flight"
)

// Dialect describes how a provider delimits and quotes its rows. All
// supported providers use double-quote quoting and CRLF terminators,
// so only the delimiter varies.
type Dialect struct {
	Delimiter rune
}

// NewReader returns a csv.Reader configured for the dialect. Field
// counts are left unchecked here; the record model enforces the
// header/row length invariant itself so a short row is a per-row
// failure, not a file failure.
func (d Dialect) NewReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = d.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

var (
	// TabDialect is used by the Diio Mi Express reports.
	TabDialect = Dialect{Delimiter: '\t'}
	// CommaDialect is used by the FlightGlobal deliverables.
	CommaDialect = Dialect{Delimiter: ','}
)

// Contract is the static description of one input file format: where
// the structural rows sit, how end-of-data is recognized, how source
// headers map to canonical field names, and where records land.
type Contract struct {
	Name       string
	Kind       Kind
	Collection string

	// TitlePos is the zero-based title row position, -1 when the
	// format has no title row.
	TitlePos  int
	HeaderPos int
	DataPos   int

	// BlankRunEOD is the number of consecutive fully-blank data rows
	// that signals end of data. Zero means data runs to EOF.
	BlankRunEOD int

	Dialect    Dialect
	Extensions []string

	// fieldMap maps lowercased source header names to canonical names.
	fieldMap map[string]string

	// SchemaOverrides adjusts the record kind's schema per provider,
	// e.g. a provider-specific date layout.
	SchemaOverrides map[string]schema.FieldSpec
}

// MapHeader resolves a raw source header to its canonical name. The
// lookup is case-insensitive; unmapped headers return ok=false and are
// ignored by the record model, which is what lets a provider add
// columns without breaking ingestion.
func (c *Contract) MapHeader(raw string) (string, bool) {
	name, ok := c.fieldMap[strings.ToLower(strings.TrimSpace(raw))]
	return name, ok
}

// AllowsExtension reports whether the contract accepts a file with the
// given extension (lowercased, dot included).
func (c *Contract) AllowsExtension(ext string) bool {
	for _, allowed := range c.Extensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// ByName returns the contract registered under name.
func ByName(name string) (*Contract, bool) {
	switch name {
	case "DiioAirport":
		return DiioAirport(), true
	case "FlightGlobal":
		return FlightGlobal(), true
	case "DiioExtract":
		return DiioExtract(), true
	}
	return nil, false
}

// Names lists the registered contract names.
func Names() []string {
	return []string{"DiioAirport", "FlightGlobal", "DiioExtract"}
}
