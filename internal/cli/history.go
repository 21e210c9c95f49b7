package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/output"
)

var (
	historyLimit int
	historySince string
	historyStats bool
	historyPrune string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past pipeline runs",
	Long: `History lists recorded runs, newest first.

Examples:
  jobmatch history                # Last 20 runs
  jobmatch history --since=7d     # Runs in the last 7 days
  jobmatch history --stats        # Totals instead of a list
  jobmatch history --prune=3m     # Delete runs older than 3 months`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Time period (e.g., 7d, 2w, 1m)")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "Show aggregate statistics")
	historyCmd.Flags().StringVar(&historyPrune, "prune", "", "Delete runs older than this period (e.g., 90d)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Cache.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if historyPrune != "" {
		age, err := parseDuration(historyPrune)
		if err != nil {
			return fmt.Errorf("invalid prune period: %w", err)
		}
		deleted, err := db.DeleteMatchRunsBefore(ctx, time.Now().Add(-age))
		if err != nil {
			return fmt.Errorf("failed to prune runs: %w", err)
		}
		fmt.Printf("Deleted %d runs\n", deleted)
		return nil
	}

	// Parse time filter
	var since *time.Time
	if historySince != "" {
		duration, err := parseDuration(historySince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		sinceTime := time.Now().Add(-duration)
		since = &sinceTime
	}

	if historyStats {
		stats, err := db.GetRunStats(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to get run stats: %w", err)
		}
		return output.Output(outputFmt, stats)
	}

	runs, err := db.ListMatchRuns(ctx, database.RunListOptions{Since: since, Limit: historyLimit})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return output.Output(outputFmt, runs)
}

// parseDuration parses durations like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use d, w, or m)", unit)
	}
}
