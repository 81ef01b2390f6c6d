package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the bootstrap DDL for the service. Applied idempotently by the
// seed command and by tests; there is no separate migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS crops (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	name_normalized TEXT NOT NULL DEFAULT '',
	name_nepali TEXT NOT NULL DEFAULT '',
	image_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_crops_name_normalized ON crops(name_normalized);

CREATE TABLE IF NOT EXISTS markets (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	address TEXT NOT NULL,
	contact TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS prices (
	id BIGSERIAL PRIMARY KEY,
	crop_id BIGINT NOT NULL REFERENCES crops(id) ON DELETE CASCADE,
	market_id BIGINT NOT NULL REFERENCES markets(id) ON DELETE CASCADE,
	price_per_kg NUMERIC(8,2) NOT NULL CHECK (price_per_kg >= 0),
	date DATE NOT NULL DEFAULT CURRENT_DATE,
	source TEXT NOT NULL DEFAULT 'admin',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_prices_crop_id ON prices(crop_id);
CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date DESC);

CREATE TABLE IF NOT EXISTS search_events (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL DEFAULT '',
	crop_id BIGINT NOT NULL REFERENCES crops(id) ON DELETE CASCADE,
	quantity NUMERIC(8,2) NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_search_events_created_at ON search_events(created_at);
`

// EnsureSchema applies the bootstrap DDL.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
