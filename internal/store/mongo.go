package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/records"
)

// Mongo implements Store against a MongoDB database. A single handle
// is safe to share across goroutines; the chunk-batch dispatch mode
// still opens one handle per worker to keep connections out of shared
// ownership (see the reader package).
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
}

// Connect opens a client against uri and pings it.
func Connect(ctx context.Context, uri, database string, log *slog.Logger) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database), log: log}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// AirportByCode implements records.AirportLookup with a point lookup
// on the airport key index. A missing code is (nil, nil).
func (m *Mongo) AirportByCode(ctx context.Context, code string) (records.AirportSnapshot, error) {
	var doc bson.M
	err := m.db.Collection(provider.AirportCollection).FindOne(ctx, bson.D{{Key: "key", Value: code}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find airport %s: %w", code, err)
	}
	delete(doc, "_id")
	return records.AirportSnapshot(doc), nil
}

// BulkUpsert implements Store.
func (m *Mongo) BulkUpsert(ctx context.Context, collection string, docs []KeyedDocument) (WriteSummary, error) {
	if len(docs) == 0 {
		return WriteSummary{}, nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "key", Value: doc.Key}}).
			SetUpdate(bson.D{{Key: "$set", Value: doc.Fields}}).
			SetUpsert(true))
	}

	res, err := m.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) {
			return WriteSummary{}, fmt.Errorf("bulk upsert %s: %w", collection, err)
		}
		// Partial failure: surface every failed operation, keep what
		// was applied, and let the run continue.
		for _, we := range bwe.WriteErrors {
			m.log.Error("bulk upsert write error",
				"collection", collection,
				"index", we.Index,
				"code", we.Code,
				"message", we.Message)
		}
	}

	summary := WriteSummary{}
	if res != nil {
		summary = WriteSummary{
			Inserted: res.InsertedCount,
			Matched:  res.MatchedCount,
			Modified: res.ModifiedCount,
			Upserted: res.UpsertedCount,
		}
	}
	return summary, nil
}

// InsertMany implements Store.
func (m *Mongo) InsertMany(ctx context.Context, collection string, docs []bson.D) (WriteSummary, error) {
	if len(docs) == 0 {
		return WriteSummary{}, nil
	}

	batch := make([]any, len(docs))
	for i, d := range docs {
		batch[i] = d
	}

	res, err := m.db.Collection(collection).InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) {
			return WriteSummary{}, fmt.Errorf("insert into %s: %w", collection, err)
		}
		for _, we := range bwe.WriteErrors {
			m.log.Error("insert write error",
				"collection", collection,
				"index", we.Index,
				"code", we.Code,
				"message", we.Message)
		}
	}

	summary := WriteSummary{}
	if res != nil {
		summary.Inserted = int64(len(res.InsertedIDs))
	}
	return summary, nil
}

// InsertOne implements Store.
func (m *Mongo) InsertOne(ctx context.Context, collection string, doc bson.D) error {
	if _, err := m.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

// Count implements Store.
func (m *Mongo) Count(ctx context.Context, collection string) (int64, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Clear implements Store.
func (m *Mongo) Clear(ctx context.Context, collection string) error {
	if _, err := m.db.Collection(collection).DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	return nil
}
