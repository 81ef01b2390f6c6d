package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/krisikbazar/market-service/internal/search"
)

// SearchPricesRequest represents the price search request body.
// Latitude/longitude are pointers so 0 remains a representable coordinate
// while absence is still a validation error.
type SearchPricesRequest struct {
	CropID    int64            `json:"crop_id" binding:"required"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Latitude  *float64         `json:"latitude" binding:"required"`
	Longitude *float64         `json:"longitude" binding:"required"`
	SessionID string           `json:"session_id,omitempty"`
}

// SearchPricesResponse represents the ranked search response.
type SearchPricesResponse struct {
	Results       []search.Quote `json:"results"`
	BestPrice     *search.Quote  `json:"best_price"`
	NearestMarket *search.Quote  `json:"nearest_market"`
}

// Global search service instance (initialized by the application)
var searchService *search.Service

// InitSearch initializes the search service used by the handler.
// This should be called during application startup.
func InitSearch(s *search.Service) {
	searchService = s
}

// SearchPrices handles a price search: validate, look up, rank, respond.
// POST /api/search-prices
func SearchPrices(c *gin.Context) {
	var req SearchPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *req.Latitude < -90 || *req.Latitude > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude must be between -90 and 90"})
		return
	}
	if *req.Longitude < -180 || *req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "longitude must be between -180 and 180"})
		return
	}

	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		if req.Quantity.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must not be negative"})
			return
		}
		quantity = *req.Quantity
	}

	if searchService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search service not initialized"})
		return
	}

	result, err := searchService.Search(c.Request.Context(), search.Query{
		CropID:    req.CropID,
		Quantity:  quantity,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		SessionID: req.SessionID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SearchPricesResponse{
		Results:       result.Results,
		BestPrice:     result.BestPrice,
		NearestMarket: result.NearestMarket,
	})
}
