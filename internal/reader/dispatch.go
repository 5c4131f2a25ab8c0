package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skylinedata/transnet/internal/config"
	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/records"
	"github.com/skylinedata/transnet/internal/store"
)

// Result is one chunk's outcome: the records that passed validation
// and the quarantine entries for those that did not. Row order within
// a chunk is not guaranteed under concurrent dispatch.
type Result struct {
	Records []records.Record
	Invalid []*records.InvalidRecord
}

// PersistFunc receives each chunk's result for persistence. Under
// sequential and thread dispatch it is called in strict file order;
// under process dispatch, in chunk completion order.
type PersistFunc func(ctx context.Context, res Result) error

// StoreFactory opens a dedicated store handle for one worker. Process
// dispatch uses it so no connection is shared across workers.
type StoreFactory func(ctx context.Context) (store.Store, error)

// Dispatcher drives a file through chunked processing under the
// configured concurrency strategy.
type Dispatcher struct {
	contract *provider.Contract
	cfg      config.Config
	store    store.Store
	factory  StoreFactory
	log      *slog.Logger
}

// NewDispatcher builds a dispatcher. factory may be nil unless the
// configuration selects process mode.
func NewDispatcher(c *provider.Contract, cfg config.Config, st store.Store, factory StoreFactory, log *slog.Logger) *Dispatcher {
	return &Dispatcher{contract: c, cfg: cfg, store: st, factory: factory, log: log}
}

// Run reads input to end of data, dispatching each chunk per the
// configured mode and handing results to persist. Structural file
// errors and store failures abort the run; row-level errors are
// logged and skipped.
func (d *Dispatcher) Run(ctx context.Context, input io.Reader, persist PersistFunc) error {
	if d.cfg.Mode == config.ModeProcess && d.factory == nil {
		return errors.New("process mode requires a store factory")
	}

	fr := NewFileReader(d.contract, input, d.cfg.ChunkSize, d.cfg.Verbose, d.log)

	switch d.cfg.Mode {
	case config.ModeThread:
		return d.runChunks(ctx, fr, persist, d.processChunkPooled)
	case config.ModeProcess:
		return d.runBatched(ctx, fr, persist)
	default:
		return d.runChunks(ctx, fr, persist, d.processChunk)
	}
}

// runChunks is the single-driver loop shared by sequential and thread
// modes: read a chunk, process it, persist it, move on. The reader's
// end-of-data state is only ever touched here.
func (d *Dispatcher) runChunks(ctx context.Context, fr *FileReader, persist PersistFunc, process func(context.Context, *Chunk, []string) (Result, error)) error {
	for {
		chunk, err := fr.NextChunk()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		res, err := process(ctx, chunk, fr.Header())
		if err != nil {
			return err
		}
		if err := persist(ctx, res); err != nil {
			return err
		}
	}
}

// runBatched groups chunks into batches of the worker width. Each
// worker owns a separate store handle for the batch; results are
// gathered in completion order and persisted before the next batch is
// read.
func (d *Dispatcher) runBatched(ctx context.Context, fr *FileReader, persist PersistFunc) error {
	for {
		batch := make([]*Chunk, 0, d.cfg.Width)
		for len(batch) < d.cfg.Width {
			chunk, err := fr.NextChunk()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			batch = append(batch, chunk)
		}
		if len(batch) == 0 {
			return nil
		}

		results := make(chan Result, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for _, chunk := range batch {
			chunk := chunk
			g.Go(func() error {
				st, err := d.factory(gctx)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := st.Close(gctx); cerr != nil {
						d.log.Error("close worker store", "error", cerr)
					}
				}()
				res, err := d.processChunkWith(gctx, chunk, fr.Header(), st)
				if err != nil {
					return err
				}
				results <- res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		close(results)

		for res := range results {
			if err := persist(ctx, res); err != nil {
				return err
			}
		}

		if len(batch) < d.cfg.Width {
			return nil
		}
	}
}

// processChunk handles a chunk's rows one at a time in the calling
// goroutine against the shared store.
func (d *Dispatcher) processChunk(ctx context.Context, chunk *Chunk, header []string) (Result, error) {
	return d.processChunkWith(ctx, chunk, header, d.store)
}

// processChunkWith is the sequential per-row loop processChunk and the
// batched workers share.
func (d *Dispatcher) processChunkWith(ctx context.Context, chunk *Chunk, header []string, st store.Store) (Result, error) {
	var res Result
	for _, row := range chunk.Rows {
		rec, inv, err := d.processRow(ctx, row, header, st)
		if err != nil {
			return res, err
		}
		if inv != nil {
			res.Invalid = append(res.Invalid, inv)
			continue
		}
		if rec != nil {
			res.Records = append(res.Records, rec)
		}
	}
	return res, nil
}

// processChunkPooled fans one chunk's rows across a fixed-width
// worker pool sharing the dispatcher's store handle, joining before
// return so the chunk persists as a unit.
func (d *Dispatcher) processChunkPooled(ctx context.Context, chunk *Chunk, header []string) (Result, error) {
	rows := make(chan Row)
	var mu sync.Mutex
	var res Result
	var firstErr error

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rows {
				rec, inv, err := d.processRow(ctx, row, header, d.store)
				mu.Lock()
				switch {
				case err != nil:
					if firstErr == nil {
						firstErr = err
					}
				case inv != nil:
					res.Invalid = append(res.Invalid, inv)
				case rec != nil:
					res.Records = append(res.Records, rec)
				}
				mu.Unlock()
			}
		}()
	}

	for _, row := range chunk.Rows {
		rows <- row
	}
	close(rows)
	wg.Wait()

	if firstErr != nil {
		return Result{}, firstErr
	}
	return res, nil
}

// processRow builds and validates one record. Row-level construction
// failures (length mismatch, malformed derived-field input) are
// logged and skipped. Any other construction error, notably a store
// lookup failure, is an infrastructure fault and aborts the run.
// Validation failures become quarantine entries.
func (d *Dispatcher) processRow(ctx context.Context, row Row, header []string, st store.Store) (records.Record, *records.InvalidRecord, error) {
	rec, err := records.New(ctx, d.contract, header, row.Fields, row.Number, st)
	if err != nil {
		var propErr *records.InvalidPropertyError
		var lenErr *records.InvalidLengthError
		if errors.As(err, &propErr) || errors.As(err, &lenErr) {
			d.log.Warn("skipping row", "row", row.Number, "error", err)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("row %d: %w", row.Number, err)
	}
	if rec.Validate() {
		return rec, nil, nil
	}
	inv := records.NewInvalidRecord(rec)
	if !inv.Validate() {
		d.log.Warn("dropping unquarantineable row", "row", row.Number)
		return nil, nil, nil
	}
	return nil, inv, nil
}
