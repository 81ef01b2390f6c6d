package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	prices []PriceWithMarket
	err    error
}

func (f *fakeRepo) FindPricesByCrop(ctx context.Context, cropID int64) ([]PriceWithMarket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (f *fakeSink) InsertSearchEvent(ctx context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeSink) last() Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

func newTestService(repo PriceRepository, sink EventSink) *Service {
	return NewService(repo, sink, zerolog.Nop())
}

func testQuery() Query {
	return Query{
		CropID:    1,
		Quantity:  decimal.NewFromInt(3),
		Latitude:  27.7172,
		Longitude: 85.3240,
		SessionID: "sess-1",
	}
}

func TestServiceSearchRanksAndLogs(t *testing.T) {
	repo := &fakeRepo{prices: []PriceWithMarket{
		priceAt(1, "Market A", "100.00", 27.7172, 85.3748),
		priceAt(2, "Market B", "90.00", 27.7172, 85.8316),
	}}
	sink := &fakeSink{}
	svc := newTestService(repo, sink)

	result, err := svc.Search(context.Background(), testQuery())
	require.NoError(t, err)
	svc.Close()

	require.Len(t, result.Results, 2)
	assert.Equal(t, "Market B", result.BestPrice.MarketName)
	assert.Equal(t, "Market A", result.NearestMarket.MarketName)

	require.Equal(t, 1, sink.count())
	ev := sink.last()
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, int64(1), ev.CropID)
	assert.True(t, ev.Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 27.7172, ev.Latitude)
	assert.Equal(t, 85.3240, ev.Longitude)
	assert.WithinDuration(t, time.Now().UTC(), ev.CreatedAt, 5*time.Second)
}

// TestServiceSearchEmptyResultStillLogs verifies that a crop with zero price
// records is a valid, representable result and still produces a search event.
func TestServiceSearchEmptyResultStillLogs(t *testing.T) {
	sink := &fakeSink{}
	svc := newTestService(&fakeRepo{}, sink)

	result, err := svc.Search(context.Background(), testQuery())
	require.NoError(t, err)
	svc.Close()

	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
	assert.Nil(t, result.BestPrice)
	assert.Nil(t, result.NearestMarket)
	assert.Equal(t, 1, sink.count())
}

func TestServiceSearchRepositoryError(t *testing.T) {
	sink := &fakeSink{}
	svc := newTestService(&fakeRepo{err: errors.New("connection refused")}, sink)

	_, err := svc.Search(context.Background(), testQuery())
	require.Error(t, err)
	svc.Close()

	// No event on lookup failure.
	assert.Equal(t, 0, sink.count())
}

// TestServiceSearchEventFailureIsIsolated verifies the log write is auxiliary
// telemetry: its failure never fails the search response.
func TestServiceSearchEventFailureIsIsolated(t *testing.T) {
	repo := &fakeRepo{prices: []PriceWithMarket{
		priceAt(1, "Kalimati", "45.50", 27.6966, 85.2914),
	}}
	svc := newTestService(repo, &fakeSink{err: errors.New("insert failed")})

	result, err := svc.Search(context.Background(), testQuery())
	require.NoError(t, err)
	svc.Close()

	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].TotalPrice.Equal(decimal.RequireFromString("136.50")))
}

// TestServiceSearchDropsNegativePrices verifies defensive handling of bad
// price rows before totals are computed.
func TestServiceSearchDropsNegativePrices(t *testing.T) {
	repo := &fakeRepo{prices: []PriceWithMarket{
		priceAt(1, "Good", "45.50", 27.6966, 85.2914),
		priceAt(2, "Bad", "-10.00", 27.7000, 85.3000),
	}}
	sink := &fakeSink{}
	svc := newTestService(repo, sink)

	result, err := svc.Search(context.Background(), testQuery())
	require.NoError(t, err)
	svc.Close()

	require.Len(t, result.Results, 1)
	assert.Equal(t, "Good", result.Results[0].MarketName)
}

// TestServiceSearchLeavesRepositorySliceIntact verifies filtering never
// writes through to the repository's slice: an implementation may serve the
// same backing array to every caller.
func TestServiceSearchLeavesRepositorySliceIntact(t *testing.T) {
	shared := []PriceWithMarket{
		priceAt(1, "Bad", "-10.00", 27.7000, 85.3000),
		priceAt(2, "Good", "45.50", 27.6966, 85.2914),
	}
	repo := &fakeRepo{prices: shared}
	sink := &fakeSink{}
	svc := newTestService(repo, sink)

	result, err := svc.Search(context.Background(), testQuery())
	require.NoError(t, err)
	svc.Close()

	require.Len(t, result.Results, 1)
	assert.Equal(t, "Good", result.Results[0].MarketName)

	assert.Equal(t, "Bad", shared[0].MarketName, "repository slice must not be rewritten")
	assert.Equal(t, "Good", shared[1].MarketName)
}

// TestServiceOptions verifies the writer-pool and timeout knobs are applied
// and that out-of-range values fall back to the defaults.
func TestServiceOptions(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeSink{}, zerolog.Nop(),
		WithEventWriters(2),
		WithEventTimeout(250*time.Millisecond),
	)
	assert.Equal(t, 2, cap(svc.eventSem))
	assert.Equal(t, 250*time.Millisecond, svc.eventTimeout)

	svc = NewService(&fakeRepo{}, &fakeSink{}, zerolog.Nop(),
		WithEventWriters(0),
		WithEventTimeout(-1*time.Second),
	)
	assert.Equal(t, defaultEventWriters, cap(svc.eventSem))
	assert.Equal(t, defaultEventTimeout, svc.eventTimeout)
}

func TestServiceConcurrentSearches(t *testing.T) {
	repo := &fakeRepo{prices: []PriceWithMarket{
		priceAt(1, "Kalimati", "45.50", 27.6966, 85.2914),
	}}
	sink := &fakeSink{}
	svc := newTestService(repo, sink)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Search(context.Background(), testQuery())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	svc.Close()

	// Writer slots may saturate under burst; every event that was accepted
	// must have been persisted.
	assert.LessOrEqual(t, sink.count(), 20)
	assert.Greater(t, sink.count(), 0)
}
