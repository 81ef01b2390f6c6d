package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krisikbazar/market-service/internal/database"
	"github.com/krisikbazar/market-service/internal/seed"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in crop and market fixture",
	Long: `Apply the bootstrap schema and load the built-in reference data: common
Nepali crops with localized names, real markets with their coordinates, and a
few days of deterministic price history. Safe to run repeatedly; existing rows
are updated or left alone.`,
	Example: `  market-service seed`,
	RunE:    runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	defer database.Close()

	loader := seed.NewLoader(database.Pool(), *logger)
	stats, err := loader.Load(ctx, seed.DefaultFixture())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	fmt.Printf("Seeded %d crops, %d markets, %d new prices\n", stats.Crops, stats.Markets, stats.Prices)
	return nil
}
