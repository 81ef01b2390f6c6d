package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/krisikbazar/market-service/internal/database"
)

// setupCropsDB connects the shared pool to a disposable postgres container.
func setupCropsDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping handler integration test in short mode (requires Docker)")
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

	require.NoError(t, database.Connect(ctx, database.Config{
		URL:             connStr,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}), "Failed to connect pool")

	require.NoError(t, database.EnsureSchema(ctx, database.Pool()), "Failed to apply schema")

	t.Cleanup(func() {
		database.Close()
		testcontainers.TerminateContainer(container)
	})
}

func newCropsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/crops", ListCrops)
	router.POST("/api/crops", CreateCrop)
	return router
}

func createCrop(t *testing.T, router *gin.Engine, name, nameNepali string) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"name": name, "name_nepali": nameNepali})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/crops", bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
}

func listCrops(t *testing.T, router *gin.Engine, q string) ListCropsResponse {
	t.Helper()
	req, err := http.NewRequest("GET", "/api/crops?q="+url.QueryEscape(q), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListCropsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// TestListCropsNameFilterFoldsBothSides verifies the q filter matches stored
// names regardless of case and Latin diacritics: the column is folded at
// write time, the query at read time.
func TestListCropsNameFilterFoldsBothSides(t *testing.T) {
	setupCropsDB(t)
	router := newCropsRouter()

	createCrop(t, router, "Café Bean", "")
	createCrop(t, router, "Tomato", "गोलभेडा")

	t.Run("accented query matches accented name", func(t *testing.T) {
		resp := listCrops(t, router, "Café")
		require.Len(t, resp.Crops, 1)
		assert.Equal(t, "Café Bean", resp.Crops[0].Name)
	})

	t.Run("plain query matches accented name", func(t *testing.T) {
		resp := listCrops(t, router, "cafe")
		require.Len(t, resp.Crops, 1)
		assert.Equal(t, "Café Bean", resp.Crops[0].Name)
	})

	t.Run("case is folded", func(t *testing.T) {
		resp := listCrops(t, router, "CAFÉ")
		require.Len(t, resp.Crops, 1)
		assert.Equal(t, "Café Bean", resp.Crops[0].Name)
	})

	t.Run("nepali name still matches", func(t *testing.T) {
		resp := listCrops(t, router, "गोलभेडा")
		require.Len(t, resp.Crops, 1)
		assert.Equal(t, "Tomato", resp.Crops[0].Name)
	})

	t.Run("no match returns empty list", func(t *testing.T) {
		resp := listCrops(t, router, "plum")
		assert.Empty(t, resp.Crops)
		assert.Equal(t, 0, resp.Total)
	})
}
