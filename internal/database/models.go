package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Crop is an agricultural product type tracked for pricing. Reference data:
// created by seed or CRUD endpoints, never mutated by the search flow.
type Crop struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	NameNepali string    `json:"name_nepali"`          // Optional localized name
	ImageURL   *string   `json:"image_url,omitempty"`  // Optional image
	CreatedAt  time.Time `json:"created_at"`
}

// Market is a physical marketplace with a fixed coordinate used as the
// distance anchor. The coordinate is mandatory: a market cannot participate
// in distance-ranked search without one.
type Market struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Contact   string    `json:"contact"`   // Optional contact string
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// Price is one observed price of a crop at a market on a date. Appended over
// time; the search flow only reads.
type Price struct {
	ID         int64           `json:"id"`
	CropID     int64           `json:"crop_id"`
	MarketID   int64           `json:"market_id"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	Date       time.Time       `json:"date"`
	Source     string          `json:"source"` // Provenance tag: 'admin', 'seed', 'import'
	CreatedAt  time.Time       `json:"created_at"`
}
