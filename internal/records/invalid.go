package records

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// InvalidRecord is the quarantine entity created when a record fails
// validation. It is insert-only: reruns of the same malformed row
// produce new documents, never a merge.
type InvalidRecord struct {
	Date       time.Time
	Errors     []string
	RecordType string
	RowNumber  int
}

// NewInvalidRecord quarantines a failed record.
func NewInvalidRecord(rec Record) *InvalidRecord {
	errs := make([]string, len(rec.Errors()))
	copy(errs, rec.Errors())
	return &InvalidRecord{
		Date:       time.Now().UTC(),
		Errors:     errs,
		RecordType: rec.TypeName(),
		RowNumber:  rec.RowNumber(),
	}
}

// Validate reports whether the quarantine entry carries enough to be
// worth storing.
func (r *InvalidRecord) Validate() bool {
	return len(r.Errors) > 0 && r.RecordType != ""
}

// Document renders the quarantine document. It has no identity key.
func (r *InvalidRecord) Document() bson.D {
	return bson.D{
		{Key: "date", Value: r.Date},
		{Key: "errors", Value: r.Errors},
		{Key: "recordType", Value: r.RecordType},
		{Key: "rowNumber", Value: r.RowNumber},
	}
}
