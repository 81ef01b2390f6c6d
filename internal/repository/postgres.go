// Package repository implements the persistence boundary the search core
// depends on: an eager-join price lookup and an insert-only event store.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/krisikbazar/market-service/internal/search"
)

// Postgres implements search.PriceRepository and search.EventSink on a pgx
// connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// New creates a Postgres repository.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// FindPricesByCrop returns all price records for a crop with the crop and
// market resolved in the same query. An unknown crop yields an empty slice,
// not an error.
func (r *Postgres) FindPricesByCrop(ctx context.Context, cropID int64) ([]search.PriceWithMarket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			p.id,
			p.crop_id,
			c.name,
			c.name_nepali,
			p.market_id,
			m.name,
			m.address,
			m.latitude,
			m.longitude,
			p.price_per_kg::text,
			p.date,
			p.source
		FROM prices p
		JOIN crops c ON c.id = p.crop_id
		JOIN markets m ON m.id = p.market_id
		WHERE p.crop_id = $1
		ORDER BY p.date DESC, p.id
	`, cropID)
	if err != nil {
		return nil, fmt.Errorf("query prices for crop %d: %w", cropID, err)
	}
	defer rows.Close()

	prices := []search.PriceWithMarket{}
	for rows.Next() {
		var p search.PriceWithMarket
		var priceText string
		if err := rows.Scan(
			&p.ID, &p.CropID, &p.CropName, &p.CropNameNepali,
			&p.MarketID, &p.MarketName, &p.MarketAddress,
			&p.MarketLatitude, &p.MarketLongitude,
			&priceText, &p.Date, &p.Source,
		); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		p.PricePerKg, err = decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", priceText, err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return prices, nil
}

// InsertSearchEvent records one search request. Insert-only; events are never
// updated or deleted by the search flow.
func (r *Postgres) InsertSearchEvent(ctx context.Context, ev search.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO search_events (id, session_id, crop_id, quantity, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.ID, ev.SessionID, ev.CropID, ev.Quantity.String(), ev.Latitude, ev.Longitude, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search event %s: %w", ev.ID, err)
	}
	return nil
}
