package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/krisikbazar/market-service/internal/database"
)

// PriceRequest represents the payload for creating or updating a price record
type PriceRequest struct {
	CropID     int64            `json:"crop_id" binding:"required"`
	MarketID   int64            `json:"market_id" binding:"required"`
	PricePerKg *decimal.Decimal `json:"price_per_kg" binding:"required"`
	Date       string           `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Source     string           `json:"source,omitempty"`
}

// PriceEntry is a price record flattened with its crop and market names
type PriceEntry struct {
	ID             int64           `json:"id"`
	CropID         int64           `json:"crop_id"`
	CropName       string          `json:"crop_name"`
	CropNameNepali string          `json:"crop_name_nepali,omitempty"`
	MarketID       int64           `json:"market_id"`
	MarketName     string          `json:"market_name"`
	PricePerKg     decimal.Decimal `json:"price_per_kg"`
	Date           string          `json:"date"`
	Source         string          `json:"source"`
}

// ListPricesResponse represents the price listing response
type ListPricesResponse struct {
	Prices []PriceEntry `json:"prices"`
	Total  int          `json:"total"`
}

func scanPriceEntry(row pgx.Row, e *PriceEntry) error {
	var priceText string
	var date time.Time
	if err := row.Scan(
		&e.ID, &e.CropID, &e.CropName, &e.CropNameNepali,
		&e.MarketID, &e.MarketName, &priceText, &date, &e.Source,
	); err != nil {
		return err
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return err
	}
	e.PricePerKg = price
	e.Date = date.Format("2006-01-02")
	return nil
}

const priceEntryColumns = `
	p.id, p.crop_id, c.name, c.name_nepali, p.market_id, m.name,
	p.price_per_kg::text, p.date, p.source
`

// ListPrices returns price records ordered by date descending, optionally
// filtered by crop and market
// GET /api/prices?crop_id=&market_id=
func ListPrices(c *gin.Context) {
	query := `
		SELECT ` + priceEntryColumns + `
		FROM prices p
		JOIN crops c ON c.id = p.crop_id
		JOIN markets m ON m.id = p.market_id
	`
	args := []interface{}{}
	where := ""

	if cropID := c.Query("crop_id"); cropID != "" {
		id, err := strconv.ParseInt(cropID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop_id"})
			return
		}
		args = append(args, id)
		where = " WHERE p.crop_id = $1"
	}
	if marketID := c.Query("market_id"); marketID != "" {
		id, err := strconv.ParseInt(marketID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market_id"})
			return
		}
		args = append(args, id)
		if where == "" {
			where = " WHERE p.market_id = $1"
		} else {
			where += " AND p.market_id = $2"
		}
	}

	query += where + " ORDER BY p.date DESC, p.id DESC"

	rows, err := database.Pool().Query(c.Request.Context(), query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prices"})
		return
	}
	defer rows.Close()

	prices := []PriceEntry{}
	for rows.Next() {
		var e PriceEntry
		if err := scanPriceEntry(rows, &e); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan price"})
			return
		}
		prices = append(prices, e)
	}
	if rows.Err() != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating prices"})
		return
	}

	c.JSON(http.StatusOK, ListPricesResponse{Prices: prices, Total: len(prices)})
}

// GetPrice returns a single price record by id
// GET /api/prices/:id
func GetPrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price id"})
		return
	}

	row := database.Pool().QueryRow(c.Request.Context(), `
		SELECT `+priceEntryColumns+`
		FROM prices p
		JOIN crops c ON c.id = p.crop_id
		JOIN markets m ON m.id = p.market_id
		WHERE p.id = $1
	`, id)

	var e PriceEntry
	err = scanPriceEntry(row, &e)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Price not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch price"})
		return
	}

	c.JSON(http.StatusOK, e)
}

// CreatePrice appends a new price observation
// POST /api/prices
func CreatePrice(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PricePerKg.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_per_kg must not be negative"})
		return
	}

	date := time.Now().Format("2006-01-02")
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		date = req.Date
	}

	source := req.Source
	if source == "" {
		source = "admin"
	}

	var id int64
	err := database.Pool().QueryRow(c.Request.Context(), `
		INSERT INTO prices (crop_id, market_id, price_per_kg, date, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, req.CropID, req.MarketID, req.PricePerKg.String(), date, source).Scan(&id)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create price"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdatePrice updates an existing price record
// PUT /api/prices/:id
func UpdatePrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price id"})
		return
	}

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PricePerKg.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_per_kg must not be negative"})
		return
	}
	if req.Source == "" {
		req.Source = "admin"
	}

	tag, err := database.Pool().Exec(c.Request.Context(), `
		UPDATE prices
		SET crop_id = $1, market_id = $2, price_per_kg = $3, source = $4
		WHERE id = $5
	`, req.CropID, req.MarketID, req.PricePerKg.String(), req.Source, id)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update price"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Price not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeletePrice deletes a price record
// DELETE /api/prices/:id
func DeletePrice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price id"})
		return
	}

	tag, err := database.Pool().Exec(c.Request.Context(), `DELETE FROM prices WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete price"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Price not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
