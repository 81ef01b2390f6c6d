package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CleanupConfig configures retention policies for cleanup jobs
type CleanupConfig struct {
	SearchEventRetentionDays int
}

// DefaultCleanupConfig returns sensible retention defaults
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		SearchEventRetentionDays: 90, // Keep search events for 90 days
	}
}

// CleanupOldSearchEvents removes search events older than the retention window.
// Events are analytics data, not business records, so trimming them is safe.
func CleanupOldSearchEvents(ctx context.Context, db *pgxpool.Pool, cfg CleanupConfig) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -cfg.SearchEventRetentionDays)

	result, err := db.Exec(ctx, `
		DELETE FROM search_events
		WHERE created_at < $1
	`, cutoffDate)

	if err != nil {
		return 0, fmt.Errorf("cleanup old search events: %w", err)
	}

	rowsAffected := result.RowsAffected()
	slog.Info("cleaned up old search events", "rows_deleted", rowsAffected, "cutoff", cutoffDate)

	return rowsAffected, nil
}

// CleanupStalePrices removes price records far beyond any useful history.
// A price older than the cutoff can no longer win a search, it only slows
// the crop price scan down.
func CleanupStalePrices(ctx context.Context, db *pgxpool.Pool, maxAgeDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -maxAgeDays)

	result, err := db.Exec(ctx, `
		DELETE FROM prices
		WHERE date < $1
	`, cutoffDate)

	if err != nil {
		return 0, fmt.Errorf("cleanup stale prices: %w", err)
	}

	rowsAffected := result.RowsAffected()
	slog.Info("cleaned up stale prices", "rows_deleted", rowsAffected, "cutoff", cutoffDate)

	return rowsAffected, nil
}

// RunAllCleanupJobs runs all cleanup jobs in sequence
func RunAllCleanupJobs(ctx context.Context, db *pgxpool.Pool, cfg CleanupConfig) error {
	slog.Info("starting cleanup jobs")

	if _, err := CleanupOldSearchEvents(ctx, db, cfg); err != nil {
		slog.Error("failed to cleanup search events", "error", err)
		// Continue with other jobs
	}

	// Prices older than two years are dead weight for the search scan.
	if _, err := CleanupStalePrices(ctx, db, 730); err != nil {
		slog.Error("failed to cleanup stale prices", "error", err)
	}

	slog.Info("cleanup jobs completed")

	return nil
}

// GetCleanupStats returns statistics about what would be cleaned up
func GetCleanupStats(ctx context.Context, db *pgxpool.Pool, cfg CleanupConfig) (map[string]int64, error) {
	stats := make(map[string]int64)

	eventCutoff := time.Now().AddDate(0, 0, -cfg.SearchEventRetentionDays)
	var eventCount int64
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM search_events WHERE created_at < $1
	`, eventCutoff).Scan(&eventCount)
	if err != nil {
		return nil, fmt.Errorf("count old search events: %w", err)
	}
	stats["old_search_events"] = eventCount

	priceCutoff := time.Now().AddDate(0, 0, -730)
	var priceCount int64
	err = db.QueryRow(ctx, `
		SELECT COUNT(*) FROM prices WHERE date < $1
	`, priceCutoff).Scan(&priceCount)
	if err != nil {
		return nil, fmt.Errorf("count stale prices: %w", err)
	}
	stats["stale_prices"] = priceCount

	return stats, nil
}
