package search

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceWithMarket is a price record with its crop and market resolved in the
// same fetch. The repository returns these fully populated so ranking never
// needs a secondary lookup.
type PriceWithMarket struct {
	ID              int64
	CropID          int64
	CropName        string
	CropNameNepali  string
	MarketID        int64
	MarketName      string
	MarketAddress   string
	MarketLatitude  float64
	MarketLongitude float64
	PricePerKg      decimal.Decimal
	Date            time.Time
	Source          string
}

// Quote is a single ranked search result: a price record annotated with the
// total cost for the requested quantity and the distance from the request
// origin to the market.
type Quote struct {
	ID             int64           `json:"id"`
	CropName       string          `json:"crop_name"`
	CropNameNepali string          `json:"crop_name_nepali,omitempty"`
	MarketID       int64           `json:"market_id"`
	MarketName     string          `json:"market_name"`
	MarketAddress  string          `json:"market_address"`
	PricePerKg     decimal.Decimal `json:"price_per_kg"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	DistanceKm     float64         `json:"distance_km"`
	Date           string          `json:"date"`
}

// RankedResult is the outcome of a price search: all quotes sorted by
// (price, distance) ascending, plus the cheapest and nearest quotes exposed
// separately so a client can present both recommendations even when they
// disagree.
type RankedResult struct {
	Results       []Quote `json:"results"`
	BestPrice     *Quote  `json:"best_price"`
	NearestMarket *Quote  `json:"nearest_market"`
}

// Query describes one price search request.
type Query struct {
	CropID    int64
	Quantity  decimal.Decimal
	Latitude  float64
	Longitude float64
	SessionID string
}

// Event is the durable record of a search request. Write-only from the
// service's perspective; it is never read back.
type Event struct {
	ID        string
	SessionID string
	CropID    int64
	Quantity  decimal.Decimal
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}
