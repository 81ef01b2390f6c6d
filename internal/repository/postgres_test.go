package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/krisikbazar/market-service/internal/database"
	"github.com/krisikbazar/market-service/internal/search"
)

// setupTestDB starts a disposable postgres container with the service schema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping repository test in short mode (requires Docker)")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	config, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, database.EnsureSchema(ctx, pool), "Failed to apply schema")

	cleanup := func() {
		pool.Close()
		testcontainers.TerminateContainer(container)
	}

	return pool, cleanup
}

// seedCropWithMarkets inserts one crop priced at two markets and an unpriced
// second crop.
func seedCropWithMarkets(ctx context.Context, t *testing.T, pool *pgxpool.Pool) (cropID, emptyCropID int64) {
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO crops (name, name_nepali) VALUES ('Tomato', 'गोलभेडा') RETURNING id
	`).Scan(&cropID))
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO crops (name) VALUES ('Wheat') RETURNING id
	`).Scan(&emptyCropID))

	var marketA, marketB int64
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO markets (name, address, contact, latitude, longitude)
		VALUES ('Kalimati Market', 'Kalimati, Kathmandu, Nepal', '01-4270654', 27.6966, 85.2914)
		RETURNING id
	`).Scan(&marketA))
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO markets (name, address, latitude, longitude)
		VALUES ('Pokhara Market', 'Pokhara, Kaski, Nepal', 28.2096, 83.9856)
		RETURNING id
	`).Scan(&marketB))

	_, err := pool.Exec(ctx, `
		INSERT INTO prices (crop_id, market_id, price_per_kg, date, source) VALUES
		($1, $2, 45.50, '2026-08-20', 'seed'),
		($1, $3, 52.00, '2026-08-21', 'seed')
	`, cropID, marketA, marketB)
	require.NoError(t, err)

	return cropID, emptyCropID
}

func TestFindPricesByCropEagerJoin(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cropID, _ := seedCropWithMarkets(ctx, t, pool)

	repo := New(pool)
	prices, err := repo.FindPricesByCrop(ctx, cropID)
	require.NoError(t, err)
	require.Len(t, prices, 2)

	// Ordered by date descending.
	assert.Equal(t, "Pokhara Market", prices[0].MarketName)
	assert.Equal(t, "Kalimati Market", prices[1].MarketName)

	p := prices[1]
	assert.Equal(t, cropID, p.CropID)
	assert.Equal(t, "Tomato", p.CropName)
	assert.Equal(t, "गोलभेडा", p.CropNameNepali)
	assert.Equal(t, "Kalimati, Kathmandu, Nepal", p.MarketAddress)
	assert.Equal(t, 27.6966, p.MarketLatitude)
	assert.Equal(t, 85.2914, p.MarketLongitude)
	assert.True(t, p.PricePerKg.Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, "seed", p.Source)
	assert.Equal(t, "2026-08-20", p.Date.Format("2006-01-02"))
}

func TestFindPricesByCropEmptyStates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, emptyCropID := seedCropWithMarkets(ctx, t, pool)

	repo := New(pool)

	// Crop exists but has no prices.
	prices, err := repo.FindPricesByCrop(ctx, emptyCropID)
	require.NoError(t, err)
	assert.Empty(t, prices)

	// Crop does not exist at all: still empty, not an error.
	prices, err = repo.FindPricesByCrop(ctx, 99999)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestInsertSearchEvent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cropID, _ := seedCropWithMarkets(ctx, t, pool)

	repo := New(pool)
	ev := search.Event{
		ID:        "0aBcDeFgHiJkLmNoPqRsTuVw",
		SessionID: "sess-42",
		CropID:    cropID,
		Quantity:  decimal.RequireFromString("2.50"),
		Latitude:  27.7172,
		Longitude: 85.3240,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.InsertSearchEvent(ctx, ev))

	var sessionID, quantity string
	var lat, lon float64
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT session_id, quantity::text, latitude, longitude
		FROM search_events WHERE id = $1
	`, ev.ID).Scan(&sessionID, &quantity, &lat, &lon))

	assert.Equal(t, "sess-42", sessionID)
	assert.Equal(t, "2.50", quantity)
	assert.Equal(t, 27.7172, lat)
	assert.Equal(t, 85.3240, lon)
}
