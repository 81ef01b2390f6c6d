package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/krisikbazar/market-service/internal/database"
)

// MarketRequest represents the payload for creating or updating a market.
// The coordinate is mandatory: a market without one cannot participate in
// distance-ranked search.
type MarketRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	Contact   string   `json:"contact"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// ListMarketsResponse represents the market listing response
type ListMarketsResponse struct {
	Markets []database.Market `json:"markets"`
	Total   int               `json:"total"`
}

func (r *MarketRequest) validateCoordinate() string {
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return "latitude must be between -90 and 90"
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return "longitude must be between -180 and 180"
	}
	return ""
}

// ListMarkets returns all markets
// GET /api/markets
func ListMarkets(c *gin.Context) {
	rows, err := database.Pool().Query(c.Request.Context(), `
		SELECT id, name, address, contact, latitude, longitude, created_at
		FROM markets
		ORDER BY name
	`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch markets"})
		return
	}
	defer rows.Close()

	markets := []database.Market{}
	for rows.Next() {
		var m database.Market
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.Contact, &m.Latitude, &m.Longitude, &m.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan market"})
			return
		}
		markets = append(markets, m)
	}
	if rows.Err() != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating markets"})
		return
	}

	c.JSON(http.StatusOK, ListMarketsResponse{Markets: markets, Total: len(markets)})
}

// GetMarket returns a single market by id
// GET /api/markets/:id
func GetMarket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	var m database.Market
	err = database.Pool().QueryRow(c.Request.Context(), `
		SELECT id, name, address, contact, latitude, longitude, created_at
		FROM markets WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Address, &m.Contact, &m.Latitude, &m.Longitude, &m.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch market"})
		return
	}

	c.JSON(http.StatusOK, m)
}

// CreateMarket creates a new market
// POST /api/markets
func CreateMarket(c *gin.Context) {
	var req MarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validateCoordinate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var m database.Market
	err := database.Pool().QueryRow(c.Request.Context(), `
		INSERT INTO markets (name, address, contact, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, address, contact, latitude, longitude, created_at
	`, req.Name, req.Address, req.Contact, *req.Latitude, *req.Longitude).
		Scan(&m.ID, &m.Name, &m.Address, &m.Contact, &m.Latitude, &m.Longitude, &m.CreatedAt)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create market"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// UpdateMarket updates an existing market
// PUT /api/markets/:id
func UpdateMarket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	var req MarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validateCoordinate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var m database.Market
	err = database.Pool().QueryRow(c.Request.Context(), `
		UPDATE markets
		SET name = $1, address = $2, contact = $3, latitude = $4, longitude = $5
		WHERE id = $6
		RETURNING id, name, address, contact, latitude, longitude, created_at
	`, req.Name, req.Address, req.Contact, *req.Latitude, *req.Longitude, id).
		Scan(&m.ID, &m.Name, &m.Address, &m.Contact, &m.Latitude, &m.Longitude, &m.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update market"})
		return
	}

	c.JSON(http.StatusOK, m)
}

// DeleteMarket deletes a market and, via cascade, its prices
// DELETE /api/markets/:id
func DeleteMarket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	tag, err := database.Pool().Exec(c.Request.Context(), `DELETE FROM markets WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete market"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
