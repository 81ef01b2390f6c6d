// Package seed loads reference data: the built-in fixture for a fresh
// install, or an XLSX price sheet for bulk imports.
package seed

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/krisikbazar/market-service/internal/catalog"
	"github.com/krisikbazar/market-service/internal/database"
)

// CropFixture is a crop to seed with a base price per kg.
type CropFixture struct {
	Name       string
	NameNepali string
	BasePrice  decimal.Decimal
}

// MarketFixture is a market to seed. Coordinates are mandatory.
type MarketFixture struct {
	Name      string
	Address   string
	Contact   string
	Latitude  float64
	Longitude float64
}

// Fixture is a complete seed data set.
type Fixture struct {
	Crops   []CropFixture
	Markets []MarketFixture
	Days    int // days of price history to generate, most recent first
}

// Stats reports what the loader wrote.
type Stats struct {
	Crops   int
	Markets int
	Prices  int64
}

// DefaultFixture returns the built-in data set: common Nepali crops and
// a handful of real markets with their coordinates.
func DefaultFixture() Fixture {
	return Fixture{
		Crops: []CropFixture{
			{Name: "Tomato", NameNepali: "गोलभेडा", BasePrice: decimal.RequireFromString("45.50")},
			{Name: "Potato", NameNepali: "आलु", BasePrice: decimal.RequireFromString("38.00")},
			{Name: "Onion", NameNepali: "प्याज", BasePrice: decimal.RequireFromString("52.00")},
			{Name: "Cauliflower", NameNepali: "काउली", BasePrice: decimal.RequireFromString("60.00")},
			{Name: "Wheat", NameNepali: "गहुँ", BasePrice: decimal.RequireFromString("32.00")},
		},
		Markets: []MarketFixture{
			{Name: "Kalimati Market", Address: "Kalimati, Kathmandu", Latitude: 27.6966, Longitude: 85.2914},
			{Name: "Baneshwor Market", Address: "Baneshwor, Kathmandu", Latitude: 27.6915, Longitude: 85.3420},
			{Name: "Pulchowk Market", Address: "Pulchowk, Lalitpur", Latitude: 27.6785, Longitude: 85.3166},
			{Name: "Bharatpur Market", Address: "Bharatpur, Chitwan", Latitude: 27.6789, Longitude: 84.4300},
			{Name: "Pokhara Market", Address: "New Road, Pokhara", Latitude: 28.2096, Longitude: 83.9856},
		},
		Days: 3,
	}
}

// Loader writes seed data into the database.
type Loader struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLoader creates a seed loader.
func NewLoader(pool *pgxpool.Pool, logger zerolog.Logger) *Loader {
	return &Loader{
		pool:   pool,
		logger: logger.With().Str("component", "seed").Logger(),
	}
}

// Load applies the fixture idempotently: crops and markets are upserted by
// name, prices are inserted only where no seed price exists for the same
// crop, market, and date. Safe to run on every startup.
func (l *Loader) Load(ctx context.Context, fixture Fixture) (Stats, error) {
	var stats Stats

	if err := database.EnsureSchema(ctx, l.pool); err != nil {
		return stats, err
	}

	cropIDs := make([]int64, len(fixture.Crops))
	for i, crop := range fixture.Crops {
		var id int64
		err := l.pool.QueryRow(ctx, `
			INSERT INTO crops (name, name_normalized, name_nepali)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET
				name_normalized = EXCLUDED.name_normalized,
				name_nepali = EXCLUDED.name_nepali
			RETURNING id
		`, crop.Name, catalog.NormalizeName(crop.Name), crop.NameNepali).Scan(&id)
		if err != nil {
			return stats, fmt.Errorf("seed crop %q: %w", crop.Name, err)
		}
		cropIDs[i] = id
		stats.Crops++
	}

	marketIDs := make([]int64, len(fixture.Markets))
	for i, market := range fixture.Markets {
		var id int64
		err := l.pool.QueryRow(ctx, `
			INSERT INTO markets (name, address, contact, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET
				address = EXCLUDED.address,
				contact = EXCLUDED.contact,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude
			RETURNING id
		`, market.Name, market.Address, market.Contact, market.Latitude, market.Longitude).Scan(&id)
		if err != nil {
			return stats, fmt.Errorf("seed market %q: %w", market.Name, err)
		}
		marketIDs[i] = id
		stats.Markets++
	}

	var priceCount atomic.Int64
	today := time.Now().Truncate(24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for mi := range fixture.Markets {
		mi := mi
		g.Go(func() error {
			for ci, crop := range fixture.Crops {
				for day := 0; day < fixture.Days; day++ {
					price := FixturePrice(crop.BasePrice, ci, mi, day)
					date := today.AddDate(0, 0, -day)

					tag, err := l.pool.Exec(gctx, `
						INSERT INTO prices (crop_id, market_id, price_per_kg, date, source)
						SELECT $1, $2, $3, $4, 'seed'
						WHERE NOT EXISTS (
							SELECT 1 FROM prices
							WHERE crop_id = $1 AND market_id = $2 AND date = $4 AND source = 'seed'
						)
					`, cropIDs[ci], marketIDs[mi], price.String(), date)
					if err != nil {
						return fmt.Errorf("seed price crop=%d market=%d: %w", cropIDs[ci], marketIDs[mi], err)
					}
					priceCount.Add(tag.RowsAffected())
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	stats.Prices = priceCount.Load()

	l.logger.Info().
		Int("crops", stats.Crops).
		Int("markets", stats.Markets).
		Int64("prices", stats.Prices).
		Msg("Seed data loaded")

	return stats, nil
}

// FixturePrice derives a deterministic price from the base: each market and
// day shifts the base by a whole percent in [-5, 5], so repeated loads write
// the same numbers and the spread across markets is stable for tests.
func FixturePrice(base decimal.Decimal, cropIdx, marketIdx, day int) decimal.Decimal {
	pct := int64((cropIdx*7+marketIdx*3+day)%11 - 5)
	offset := base.Mul(decimal.New(pct, -2))
	return base.Add(offset).Round(2)
}
