package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/krisikbazar/market-service/internal/catalog"
	"github.com/krisikbazar/market-service/internal/database"
)

// CropRequest represents the payload for creating or updating a crop
type CropRequest struct {
	Name       string  `json:"name" binding:"required"`
	NameNepali string  `json:"name_nepali"`
	ImageURL   *string `json:"image_url"`
}

// ListCropsResponse represents the crop listing response
type ListCropsResponse struct {
	Crops []database.Crop `json:"crops"`
	Total int             `json:"total"`
}

// ListCrops returns all crops, optionally filtered by name
// GET /api/crops?q=
func ListCrops(c *gin.Context) {
	pool := database.Pool()
	ctx := c.Request.Context()

	query := `
		SELECT id, name, name_nepali, image_url, created_at
		FROM crops
	`
	args := []interface{}{}

	if q := c.Query("q"); q != "" {
		// Both sides are folded the same way: the query here, the column at
		// write time. Nepali names are matched raw; normalization leaves
		// Devanagari intact.
		query += ` WHERE name_normalized LIKE '%' || $1 || '%' OR name_nepali ILIKE '%' || $1 || '%'`
		args = append(args, catalog.NormalizeName(q))
	}
	query += ` ORDER BY name`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch crops"})
		return
	}
	defer rows.Close()

	crops := []database.Crop{}
	for rows.Next() {
		var crop database.Crop
		if err := rows.Scan(&crop.ID, &crop.Name, &crop.NameNepali, &crop.ImageURL, &crop.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan crop"})
			return
		}
		crops = append(crops, crop)
	}
	if rows.Err() != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating crops"})
		return
	}

	c.JSON(http.StatusOK, ListCropsResponse{Crops: crops, Total: len(crops)})
}

// GetCrop returns a single crop by id
// GET /api/crops/:id
func GetCrop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop id"})
		return
	}

	var crop database.Crop
	err = database.Pool().QueryRow(c.Request.Context(), `
		SELECT id, name, name_nepali, image_url, created_at
		FROM crops WHERE id = $1
	`, id).Scan(&crop.ID, &crop.Name, &crop.NameNepali, &crop.ImageURL, &crop.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch crop"})
		return
	}

	c.JSON(http.StatusOK, crop)
}

// CreateCrop creates a new crop
// POST /api/crops
func CreateCrop(c *gin.Context) {
	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var crop database.Crop
	err := database.Pool().QueryRow(c.Request.Context(), `
		INSERT INTO crops (name, name_normalized, name_nepali, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, name_nepali, image_url, created_at
	`, req.Name, catalog.NormalizeName(req.Name), req.NameNepali, req.ImageURL).
		Scan(&crop.ID, &crop.Name, &crop.NameNepali, &crop.ImageURL, &crop.CreatedAt)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create crop"})
		return
	}

	c.JSON(http.StatusCreated, crop)
}

// UpdateCrop updates an existing crop
// PUT /api/crops/:id
func UpdateCrop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop id"})
		return
	}

	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var crop database.Crop
	err = database.Pool().QueryRow(c.Request.Context(), `
		UPDATE crops
		SET name = $1, name_normalized = $2, name_nepali = $3, image_url = $4
		WHERE id = $5
		RETURNING id, name, name_nepali, image_url, created_at
	`, req.Name, catalog.NormalizeName(req.Name), req.NameNepali, req.ImageURL, id).
		Scan(&crop.ID, &crop.Name, &crop.NameNepali, &crop.ImageURL, &crop.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update crop"})
		return
	}

	c.JSON(http.StatusOK, crop)
}

// DeleteCrop deletes a crop and, via cascade, its prices and search events
// DELETE /api/crops/:id
func DeleteCrop(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop id"})
		return
	}

	tag, err := database.Pool().Exec(c.Request.Context(), `DELETE FROM crops WHERE id = $1`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete crop"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
