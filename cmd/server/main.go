package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/krisikbazar/market-service/config"
	_ "github.com/krisikbazar/market-service/docs"
	"github.com/krisikbazar/market-service/internal/database"
	"github.com/krisikbazar/market-service/internal/handlers"
	"github.com/krisikbazar/market-service/internal/jobs"
	"github.com/krisikbazar/market-service/internal/repository"
	"github.com/krisikbazar/market-service/internal/search"
	"github.com/krisikbazar/market-service/internal/sweepers"
	"github.com/krisikbazar/market-service/internal/telemetry"
)

// @title Market Service API
// @version 1.0
// @description Crop price lookup API for markets across Nepal: catalog management and ranked price search.
// @BasePath /api
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting market service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(ctx, database.Config{
		URL:             dbURL,
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	if err := database.EnsureSchema(ctx, database.Pool()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}

	telemetryCleanup := telemetry.MustInit(ctx, telemetry.GetConfigFromEnv())
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryCleanup(cleanupCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}()

	repo := repository.New(database.Pool())
	searchService := search.NewService(repo, repo, *logger,
		search.WithEventWriters(cfg.Search.EventWriters),
		search.WithEventTimeout(cfg.Search.EventTimeout),
	)
	handlers.InitSearch(searchService)

	retentionSweeper := sweepers.NewRetentionSweeper(
		database.Pool(),
		logger,
		jobs.CleanupConfig{SearchEventRetentionDays: cfg.Retention.SearchEventDays},
		cfg.Retention.SweepInterval,
	)
	go retentionSweeper.Start(ctx)

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		api.POST("/search-prices", handlers.SearchPrices)

		crops := api.Group("/crops")
		{
			crops.GET("", handlers.ListCrops)
			crops.POST("", handlers.CreateCrop)
			crops.GET("/:id", handlers.GetCrop)
			crops.PUT("/:id", handlers.UpdateCrop)
			crops.DELETE("/:id", handlers.DeleteCrop)
		}

		markets := api.Group("/markets")
		{
			markets.GET("", handlers.ListMarkets)
			markets.POST("", handlers.CreateMarket)
			markets.GET("/:id", handlers.GetMarket)
			markets.PUT("/:id", handlers.UpdateMarket)
			markets.DELETE("/:id", handlers.DeleteMarket)
		}

		prices := api.Group("/prices")
		{
			prices.GET("", handlers.ListPrices)
			prices.POST("", handlers.CreatePrice)
			prices.GET("/:id", handlers.GetPrice)
			prices.PUT("/:id", handlers.UpdatePrice)
			prices.DELETE("/:id", handlers.DeletePrice)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	retentionSweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight search event writes finish before the pool closes.
	searchService.Close()

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "market-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
