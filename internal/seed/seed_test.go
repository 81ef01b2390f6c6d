package seed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixtureIsWellFormed(t *testing.T) {
	fixture := DefaultFixture()

	require.NotEmpty(t, fixture.Crops)
	require.NotEmpty(t, fixture.Markets)
	assert.Greater(t, fixture.Days, 0)

	cropNames := make(map[string]bool)
	for _, crop := range fixture.Crops {
		assert.NotEmpty(t, crop.Name)
		assert.NotEmpty(t, crop.NameNepali)
		assert.True(t, crop.BasePrice.IsPositive(), "base price must be positive for %s", crop.Name)
		assert.False(t, cropNames[crop.Name], "duplicate crop name %s", crop.Name)
		cropNames[crop.Name] = true
	}

	marketNames := make(map[string]bool)
	for _, market := range fixture.Markets {
		assert.NotEmpty(t, market.Name)
		assert.NotEmpty(t, market.Address)
		assert.GreaterOrEqual(t, market.Latitude, -90.0)
		assert.LessOrEqual(t, market.Latitude, 90.0)
		assert.GreaterOrEqual(t, market.Longitude, -180.0)
		assert.LessOrEqual(t, market.Longitude, 180.0)
		assert.False(t, marketNames[market.Name], "duplicate market name %s", market.Name)
		marketNames[market.Name] = true
	}
}

func TestFixturePriceDeterministic(t *testing.T) {
	base := decimal.RequireFromString("45.50")

	a := FixturePrice(base, 0, 1, 2)
	b := FixturePrice(base, 0, 1, 2)
	assert.True(t, a.Equal(b), "same inputs must give the same price")
}

func TestFixturePriceStaysNearBase(t *testing.T) {
	base := decimal.RequireFromString("100.00")
	low := decimal.RequireFromString("95.00")
	high := decimal.RequireFromString("105.00")

	for ci := 0; ci < 5; ci++ {
		for mi := 0; mi < 5; mi++ {
			for day := 0; day < 3; day++ {
				price := FixturePrice(base, ci, mi, day)
				assert.True(t, price.GreaterThanOrEqual(low), "price %s below -5%% band", price)
				assert.True(t, price.LessThanOrEqual(high), "price %s above +5%% band", price)
			}
		}
	}
}

func TestFixturePriceVariesAcrossMarkets(t *testing.T) {
	base := decimal.RequireFromString("100.00")

	distinct := make(map[string]bool)
	for mi := 0; mi < 5; mi++ {
		distinct[FixturePrice(base, 0, mi, 0).String()] = true
	}
	assert.Greater(t, len(distinct), 1, "markets should not all share one price")
}

func TestParsePriceRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		pr, err := parsePriceRow([]string{"Tomato", "गोलभेडा", "Kalimati Market", "45.50", "2026-08-20"})
		require.NoError(t, err)
		assert.Equal(t, "Tomato", pr.CropName)
		assert.Equal(t, "गोलभेडा", pr.CropNameNepali)
		assert.Equal(t, "Kalimati Market", pr.MarketName)
		assert.True(t, pr.PricePerKg.Equal(decimal.RequireFromString("45.50")))
		assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), pr.Date)
	})

	t.Run("blank date defaults to today", func(t *testing.T) {
		pr, err := parsePriceRow([]string{"Tomato", "", "Kalimati Market", "45.50"})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), pr.Date, 25*time.Hour)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		pr, err := parsePriceRow([]string{" Tomato ", "", " Kalimati Market ", " 45.50 ", ""})
		require.NoError(t, err)
		assert.Equal(t, "Tomato", pr.CropName)
		assert.Equal(t, "Kalimati Market", pr.MarketName)
	})

	t.Run("errors", func(t *testing.T) {
		cases := []struct {
			name string
			row  []string
		}{
			{"missing crop", []string{"", "", "Kalimati Market", "45.50", ""}},
			{"missing market", []string{"Tomato", "", "", "45.50", ""}},
			{"bad price", []string{"Tomato", "", "Kalimati Market", "cheap", ""}},
			{"negative price", []string{"Tomato", "", "Kalimati Market", "-1.00", ""}},
			{"bad date", []string{"Tomato", "", "Kalimati Market", "45.50", "20/08/2026"}},
			{"empty row", []string{}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := parsePriceRow(tc.row)
				assert.Error(t, err)
			})
		}
	})
}
