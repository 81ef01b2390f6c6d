package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/krisikbazar/market-service/internal/database"
	"github.com/krisikbazar/market-service/internal/jobs"
)

var (
	cleanupDays   int
	cleanupDryRun bool
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Trim aged search events and stale prices",
	Long: `Delete search events older than the retention window and price records
too old to ever win a search. Use --dry-run to see the row counts without
deleting anything.`,
	Example: `  market-service cleanup
  market-service cleanup --days 30
  market-service cleanup --dry-run`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Search event retention in days (defaults to config value)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Report counts without deleting")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	defer database.Close()

	cleanupCfg := jobs.DefaultCleanupConfig()
	if cfg != nil && cfg.Retention.SearchEventDays > 0 {
		cleanupCfg.SearchEventRetentionDays = cfg.Retention.SearchEventDays
	}
	if cleanupDays > 0 {
		cleanupCfg.SearchEventRetentionDays = cleanupDays
	}

	if cleanupDryRun {
		stats, err := jobs.GetCleanupStats(ctx, database.Pool(), cleanupCfg)
		if err != nil {
			return fmt.Errorf("cleanup stats failed: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tROWS TO DELETE")
		fmt.Fprintf(w, "search_events\t%d\n", stats["old_search_events"])
		fmt.Fprintf(w, "prices\t%d\n", stats["stale_prices"])
		return w.Flush()
	}

	if err := jobs.RunAllCleanupJobs(ctx, database.Pool(), cleanupCfg); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Println("Cleanup complete")
	return nil
}
