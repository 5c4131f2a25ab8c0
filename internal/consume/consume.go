package consume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/skylinedata/transnet/internal/config"
	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/reader"
	"github.com/skylinedata/transnet/internal/records"
	"github.com/skylinedata/transnet/internal/store"
)

// ErrMissingAirports is returned when a flight file is loaded before
// any airport reference data exists: flight rows embed airports by
// lookup, so the run aborts before any row is processed.
var ErrMissingAirports = errors.New("no airports loaded: import airport reference data before flight data")

// Summary totals one completed run.
type Summary struct {
	Valid   int
	Invalid int
	Writes  store.WriteSummary
}

// Consumer parses one transportation-network data file and loads it
// into the store.
type Consumer struct {
	cfg     config.Config
	store   store.Store
	factory reader.StoreFactory
	log     *slog.Logger
}

// New builds a consumer. factory is only consulted for process-mode
// dispatch and may be nil otherwise.
func New(cfg config.Config, st store.Store, factory reader.StoreFactory, log *slog.Logger) *Consumer {
	return &Consumer{cfg: cfg, store: st, factory: factory, log: log}
}

// Run ingests input under the given contract. filename is only used
// to gate the file extension. Fatal conditions (bad extension, blank
// structural rows, flights before airports) return errors; row-level
// failures are logged, quarantined and counted.
func (c *Consumer) Run(ctx context.Context, contract *provider.Contract, filename string, input io.Reader) (Summary, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); !contract.AllowsExtension(ext) {
		return Summary{}, fmt.Errorf("%s: extension %q is not valid for %s (want %s)",
			filename, ext, contract.Name, strings.Join(contract.Extensions, ", "))
	}

	if contract.Kind == provider.KindFlight {
		if err := c.checkAirportsLoaded(ctx); err != nil {
			return Summary{}, err
		}
		// Legs are rebuilt from scratch on every flight run.
		if err := c.store.Clear(ctx, c.cfg.Collections.Legs); err != nil {
			return Summary{}, err
		}
	}

	var sum Summary
	dispatcher := reader.NewDispatcher(contract, c.cfg, c.store, c.factory, c.log)
	err := dispatcher.Run(ctx, input, func(ctx context.Context, res reader.Result) error {
		return c.persistChunk(ctx, contract, res, &sum)
	})
	if err != nil {
		return sum, err
	}

	c.log.Info("run complete",
		"contract", contract.Name,
		"valid", sum.Valid,
		"invalid", sum.Invalid,
		"writes", sum.Writes.String())

	if err := c.recordHistory(ctx); err != nil {
		c.log.Error("record ingestion history", "error", err)
	}
	return sum, nil
}

func (c *Consumer) checkAirportsLoaded(ctx context.Context) error {
	n, err := c.store.Count(ctx, provider.AirportCollection)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMissingAirports
	}
	return nil
}

// persistChunk upserts a chunk's valid records, inserts its
// quarantine entries, and flattens flight legs into the legs
// collection. Write failures inside a batch are non-fatal and
// surfaced by the adapter's own logging.
func (c *Consumer) persistChunk(ctx context.Context, contract *provider.Contract, res reader.Result, sum *Summary) error {
	docs := make([]store.KeyedDocument, 0, len(res.Records))
	var legDocs []bson.D
	for _, rec := range res.Records {
		docs = append(docs, store.KeyedDocument{Key: rec.Identity(), Fields: rec.Document()})
		if flight, ok := rec.(*records.Flight); ok {
			legDocs = append(legDocs, flight.LegDocuments()...)
		}
	}

	writes, err := c.store.BulkUpsert(ctx, contract.Collection, docs)
	if err != nil {
		return err
	}

	if len(legDocs) > 0 {
		if _, err := c.store.InsertMany(ctx, c.cfg.Collections.Legs, legDocs); err != nil {
			return err
		}
	}

	invalidDocs := make([]bson.D, 0, len(res.Invalid))
	for _, inv := range res.Invalid {
		invalidDocs = append(invalidDocs, inv.Document())
	}
	if _, err := c.store.InsertMany(ctx, c.cfg.Collections.InvalidRecords, invalidDocs); err != nil {
		return err
	}

	sum.Valid += len(res.Records)
	sum.Invalid += len(res.Invalid)
	sum.Writes.Inserted += writes.Inserted
	sum.Writes.Matched += writes.Matched
	sum.Writes.Modified += writes.Modified
	sum.Writes.Upserted += writes.Upserted

	if !writes.Empty() || len(res.Invalid) > 0 {
		c.log.Info("chunk persisted",
			"records", len(res.Records),
			"invalid", len(res.Invalid),
			"writes", writes.String())
	}
	return nil
}

// recordHistory appends a dated collection-count snapshot after each
// run so load growth can be tracked over time.
func (c *Consumer) recordHistory(ctx context.Context) error {
	counts := bson.D{}
	for _, collection := range []string{provider.AirportCollection, provider.FlightCollection, c.cfg.Collections.Legs} {
		n, err := c.store.Count(ctx, collection)
		if err != nil {
			return err
		}
		counts = append(counts, bson.E{Key: collection, Value: n})
	}
	return c.store.InsertOne(ctx, c.cfg.Collections.History, bson.D{
		{Key: "date", Value: time.Now().UTC()},
		{Key: "counts", Value: counts},
	})
}
