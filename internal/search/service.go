// Package search implements the price-lookup core: ranking price records by
// cost and distance, and recording each search as a durable event.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/krisikbazar/market-service/internal/pkg/cuid2"
)

const (
	// defaultEventWriters bounds concurrent search-event inserts.
	defaultEventWriters = 16
	// defaultEventTimeout bounds a single search-event insert.
	defaultEventTimeout = 5 * time.Second
)

// Service composes the price lookup, the ranker, and the search logger.
// It is stateless apart from the bounded event writer; one instance serves
// all requests concurrently.
type Service struct {
	repo    PriceRepository
	events  EventSink
	metrics *MetricsRecorder
	logger  zerolog.Logger

	eventSem     chan struct{}
	eventWG      sync.WaitGroup
	eventTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithEventWriters sets the number of concurrent search-event writer slots.
// Values below 1 are ignored.
func WithEventWriters(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventSem = make(chan struct{}, n)
		}
	}
}

// WithEventTimeout sets the per-insert timeout for search-event writes.
// Non-positive values are ignored.
func WithEventTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.eventTimeout = d
		}
	}
}

// NewService creates a search service.
func NewService(repo PriceRepository, events EventSink, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		events:       events,
		metrics:      NewMetricsRecorder(),
		logger:       logger.With().Str("component", "search").Logger(),
		eventSem:     make(chan struct{}, defaultEventWriters),
		eventTimeout: defaultEventTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search retrieves all prices for the queried crop, ranks them against the
// request origin, and records the search event. The event write is decoupled
// from the response path: its failure is logged and counted but never fails
// the search. An empty result set is a valid outcome, not an error, and is
// still logged as an event.
func (s *Service) Search(ctx context.Context, q Query) (RankedResult, error) {
	start := time.Now()

	prices, err := s.repo.FindPricesByCrop(ctx, q.CropID)
	if err != nil {
		s.metrics.RecordSearch("error", time.Since(start))
		return RankedResult{}, fmt.Errorf("find prices for crop %d: %w", q.CropID, err)
	}

	prices = s.dropInvalidPrices(prices)

	result := Rank(prices, q.Quantity, q.Latitude, q.Longitude)
	s.metrics.RecordResultCount(len(result.Results))

	s.logEvent(q)

	outcome := "ok"
	if len(result.Results) == 0 {
		outcome = "empty"
	}
	s.metrics.RecordSearch(outcome, time.Since(start))

	return result, nil
}

// dropInvalidPrices removes records with a negative price-per-kg so totals
// are never computed from bad data. The input is never modified; the
// repository may hand out a shared or cached slice.
func (s *Service) dropInvalidPrices(prices []PriceWithMarket) []PriceWithMarket {
	valid := make([]PriceWithMarket, 0, len(prices))
	for _, p := range prices {
		if p.PricePerKg.IsNegative() {
			s.logger.Warn().
				Int64("price_id", p.ID).
				Str("price_per_kg", p.PricePerKg.String()).
				Msg("Skipping price record with negative price")
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

// logEvent persists the search event from a bounded goroutine with its own
// timeout, detached from the request context. When all writer slots are busy
// the event is dropped rather than delaying the response.
func (s *Service) logEvent(q Query) {
	ev := Event{
		ID:        cuid2.Generate(),
		SessionID: q.SessionID,
		CropID:    q.CropID,
		Quantity:  q.Quantity,
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case s.eventSem <- struct{}{}:
	default:
		s.metrics.RecordEventLogDropped()
		s.logger.Warn().Str("event_id", ev.ID).Msg("Search event dropped, writer saturated")
		return
	}

	s.eventWG.Add(1)
	go func() {
		defer s.eventWG.Done()
		defer func() { <-s.eventSem }()

		ctx, cancel := context.WithTimeout(context.Background(), s.eventTimeout)
		defer cancel()

		if err := s.events.InsertSearchEvent(ctx, ev); err != nil {
			s.metrics.RecordEventLogFailure()
			s.logger.Error().Err(err).
				Str("event_id", ev.ID).
				Int64("crop_id", ev.CropID).
				Msg("Failed to persist search event")
		}
	}()
}

// Close waits for in-flight search event writes to finish. Called during
// graceful shutdown.
func (s *Service) Close() {
	s.eventWG.Wait()
}
