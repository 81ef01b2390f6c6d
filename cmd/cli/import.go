package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krisikbazar/market-service/internal/database"
	"github.com/krisikbazar/market-service/internal/seed"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import prices from an XLSX sheet",
	Long: `Import price records from an XLSX sheet. Expected columns, with a header
row: crop_name, crop_name_nepali, market_name, price_per_kg, date (YYYY-MM-DD,
blank means today). Crops are created on demand; markets must already exist.`,
	Example: `  market-service import prices-2026-08.xlsx`,
	Args:    cobra.ExactArgs(1),
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	defer database.Close()

	if err := database.EnsureSchema(ctx, database.Pool()); err != nil {
		return err
	}

	loader := seed.NewLoader(database.Pool(), *logger)
	imported, err := loader.LoadXLSX(ctx, args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d prices from %s\n", imported, args[0])
	return nil
}
