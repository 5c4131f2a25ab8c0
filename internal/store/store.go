package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/skylinedata/transnet/internal/records"
)

// Store is the document-store boundary the pipeline runs against: a
// collection per record kind, point lookup by key, idempotent batch
// upsert, insert-only batches, and housekeeping counts.
type Store interface {
	records.AirportLookup

	// BulkUpsert writes one find-by-key upsert per document as a
	// single unordered batch. Partial failures are logged in detail
	// and do not fail the call; applied operations stand.
	BulkUpsert(ctx context.Context, collection string, docs []KeyedDocument) (WriteSummary, error)

	// InsertMany appends documents with no identity matching.
	// Duplicates across reruns are expected and accepted.
	InsertMany(ctx context.Context, collection string, docs []bson.D) (WriteSummary, error)

	InsertOne(ctx context.Context, collection string, doc bson.D) error
	Count(ctx context.Context, collection string) (int64, error)
	Clear(ctx context.Context, collection string) error

	Close(ctx context.Context) error
}

// KeyedDocument pairs a document with the identity its upsert matches
// on.
type KeyedDocument struct {
	Key    string
	Fields bson.D
}

// WriteSummary is the normalized outcome of one batch write. An empty
// input batch yields the zero summary.
type WriteSummary struct {
	Inserted int64
	Matched  int64
	Modified int64
	Upserted int64
}

// Empty reports whether the summary recorded no writes at all.
func (s WriteSummary) Empty() bool {
	return s == WriteSummary{}
}

func (s WriteSummary) String() string {
	return fmt.Sprintf("inserted=%d matched=%d modified=%d upserted=%d",
		s.Inserted, s.Matched, s.Modified, s.Upserted)
}
