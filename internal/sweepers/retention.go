package sweepers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/krisikbazar/market-service/internal/jobs"
)

// RetentionSweeper periodically trims aged search events
type RetentionSweeper struct {
	pool     *pgxpool.Pool
	logger   *zerolog.Logger
	config   jobs.CleanupConfig
	interval time.Duration
	stopChan chan struct{}
}

// NewRetentionSweeper creates a new sweeper for search event retention
func NewRetentionSweeper(pool *pgxpool.Pool, logger *zerolog.Logger, config jobs.CleanupConfig, interval time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		pool:     pool,
		logger:   logger,
		config:   config,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic retention sweep
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("retention_days", s.config.SearchEventRetentionDays).
		Msg("Starting retention sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Retention sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Retention sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to sweep search events")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *RetentionSweeper) Stop() {
	close(s.stopChan)
}

// Sweep removes search events past the retention window
func (s *RetentionSweeper) Sweep(ctx context.Context) error {
	s.logger.Debug().Msg("Running search event retention sweep")

	deleted, err := jobs.CleanupOldSearchEvents(ctx, s.pool, s.config)
	if err != nil {
		return err
	}

	if deleted > 0 {
		s.logger.Info().
			Int64("deleted", deleted).
			Msg("Trimmed aged search events")
	}

	return nil
}
