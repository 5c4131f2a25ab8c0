package reader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/skylinedata/transnet/internal/config"
	"github.com/skylinedata/transnet/internal/provider"
	"github.com/skylinedata/transnet/internal/records"
	"github.com/skylinedata/transnet/internal/store"
)

// memStore is an in-memory stand-in for the document store. Lookup
// reads are safe to share across worker goroutines.
type memStore struct {
	mu       sync.Mutex
	airports map[string]records.AirportSnapshot
	closed   int
}

func newMemStore() *memStore {
	return &memStore{airports: map[string]records.AirportSnapshot{}}
}

func (m *memStore) AirportByCode(_ context.Context, code string) (records.AirportSnapshot, error) {
	return m.airports[code], nil
}

func (m *memStore) BulkUpsert(_ context.Context, _ string, docs []store.KeyedDocument) (store.WriteSummary, error) {
	return store.WriteSummary{Upserted: int64(len(docs))}, nil
}

func (m *memStore) InsertMany(_ context.Context, _ string, docs []bson.D) (store.WriteSummary, error) {
	return store.WriteSummary{Inserted: int64(len(docs))}, nil
}

func (m *memStore) InsertOne(context.Context, string, bson.D) error { return nil }

func (m *memStore) Count(context.Context, string) (int64, error) { return 0, nil }

func (m *memStore) Clear(context.Context, string) error { return nil }

func (m *memStore) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// airportFile holds five valid airports and one with no coordinates,
// which fails required-field validation and lands in quarantine.
const airportFile = "Airport Report\n" +
	"\n" +
	"Code\tName\tLatitude\tLongitude\tCountry\n" +
	"\n" +
	"AAA\tAlpha\t10.0\t20.0\tUS\n" +
	"BBB\tBravo\t11.0\t21.0\tUS\n" +
	"CCC\tCharlie\t12.0\t22.0\tUS\n" +
	"DDD\tDelta\t\t\tUS\n" +
	"EEE\tEcho\t13.0\t23.0\tUS\n" +
	"FFF\tFoxtrot\t14.0\t24.0\tUS\n"

func runDispatch(t *testing.T, mode config.Mode) (identities []string, invalid int) {
	t.Helper()

	st := newMemStore()
	cfg := config.Default()
	cfg.Mode = mode
	cfg.ChunkSize = 2
	cfg.Width = 3

	factory := func(context.Context) (store.Store, error) { return st, nil }
	d := NewDispatcher(provider.DiioAirport(), cfg, st, factory, discardLogger())

	var mu sync.Mutex
	err := d.Run(context.Background(), strings.NewReader(airportFile), func(_ context.Context, res Result) error {
		mu.Lock()
		defer mu.Unlock()
		for _, rec := range res.Records {
			identities = append(identities, rec.Identity())
		}
		invalid += len(res.Invalid)
		return nil
	})
	require.NoError(t, err)
	return identities, invalid
}

func TestDispatcherModesAgree(t *testing.T) {
	want := []string{"AAA", "BBB", "CCC", "EEE", "FFF"}

	for _, mode := range []config.Mode{config.ModeSequential, config.ModeThread, config.ModeProcess} {
		t.Run(string(mode), func(t *testing.T) {
			identities, invalid := runDispatch(t, mode)
			assert.ElementsMatch(t, want, identities)
			assert.Equal(t, 1, invalid)
		})
	}
}

func TestDispatcherSequentialPreservesOrder(t *testing.T) {
	identities, _ := runDispatch(t, config.ModeSequential)
	assert.Equal(t, []string{"AAA", "BBB", "CCC", "EEE", "FFF"}, identities)
}

func TestDispatcherProcessModeRequiresFactory(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeProcess

	d := NewDispatcher(provider.DiioAirport(), cfg, newMemStore(), nil, discardLogger())
	err := d.Run(context.Background(), strings.NewReader(airportFile), func(context.Context, Result) error {
		return nil
	})
	require.Error(t, err)
}

// brokenLookupStore simulates a store whose point lookups fail, the
// way a dropped connection would mid-run.
type brokenLookupStore struct {
	*memStore
}

func (b *brokenLookupStore) AirportByCode(context.Context, string) (records.AirportSnapshot, error) {
	return nil, errors.New("connection reset by peer")
}

const flightPairFile = "Carrier,FlightNumber,EffectiveDate,DepartureAirport,ArrivalAirport\n" +
	"DL,479,07/28/2015,ACC,JFK\n" +
	"W3,107,07/28/2015,ACC,LOS\n"

func TestDispatcherLookupFailureAborts(t *testing.T) {
	for _, mode := range []config.Mode{config.ModeSequential, config.ModeThread, config.ModeProcess} {
		t.Run(string(mode), func(t *testing.T) {
			st := &brokenLookupStore{memStore: newMemStore()}
			cfg := config.Default()
			cfg.Mode = mode
			cfg.ChunkSize = 1
			cfg.Width = 2

			factory := func(context.Context) (store.Store, error) { return st, nil }
			d := NewDispatcher(provider.FlightGlobal(), cfg, st, factory, discardLogger())

			persisted := 0
			err := d.Run(context.Background(), strings.NewReader(flightPairFile), func(_ context.Context, res Result) error {
				persisted += len(res.Records) + len(res.Invalid)
				return nil
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "connection reset by peer")
			assert.Zero(t, persisted)
		})
	}
}

func TestDispatcherSkipsMalformedRowOnly(t *testing.T) {
	st := newMemStore()
	st.airports["ACC"] = records.AirportSnapshot{"code": "ACC", "latitude": 5.605190, "longitude": -0.166786}
	st.airports["JFK"] = records.AirportSnapshot{"code": "JFK", "latitude": 40.641300, "longitude": -73.778900}

	// The first row's departure time is not HH:MM:SS, a per-row
	// property error; the run carries on to the second row.
	input := "Carrier,FlightNumber,EffectiveDate,DepartureAirport,ArrivalAirport," +
		"DepartureTimePub,DepartureUTCVariance,ArrivalTimePub,ArrivalUTCVariance\n" +
		"DL,479,07/28/2015,ACC,JFK,2200,+0200,01:05:00,+0300\n" +
		"DL,481,07/28/2015,ACC,JFK,22:00:00,+0200,01:05:00,+0300\n"

	cfg := config.Default()
	d := NewDispatcher(provider.FlightGlobal(), cfg, st, nil, discardLogger())

	var kept []records.Record
	err := d.Run(context.Background(), strings.NewReader(input), func(_ context.Context, res Result) error {
		kept = append(kept, res.Records...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, int64(481), kept[0].Fields().Value("flightNumber"))
}

func TestDispatcherQuarantineEntry(t *testing.T) {
	st := newMemStore()
	cfg := config.Default()
	cfg.ChunkSize = 100

	var quarantined []*records.InvalidRecord
	d := NewDispatcher(provider.DiioAirport(), cfg, st, nil, discardLogger())
	err := d.Run(context.Background(), strings.NewReader(airportFile), func(_ context.Context, res Result) error {
		quarantined = append(quarantined, res.Invalid...)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, quarantined, 1)
	assert.Equal(t, "AirportRecord", quarantined[0].RecordType)
	assert.Equal(t, 7, quarantined[0].RowNumber)
	assert.NotEmpty(t, quarantined[0].Errors)
}