package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/output"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
)

var cacheUser string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the recency cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered postings",
	Long: `List shows every posting in the recency cache with the users it
was delivered to.

Examples:
  jobmatch cache list
  jobmatch cache list --user ahmed`,
	RunE: runCacheList,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the recency cache",
	RunE:  runCacheStats,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove entries older than the retention period",
	RunE:  runCacheCleanup,
}

var cacheForgetCmd = &cobra.Command{
	Use:   "forget <url>...",
	Short: "Remove postings so they can be delivered again",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheForget,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheForgetCmd)
	cacheListCmd.Flags().StringVar(&cacheUser, "user", "", "Only postings shown to this user")
}

func runCacheList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	entries := env.loadCache(ctx).Entries()
	if cacheUser != "" {
		entries = entriesForUser(entries, cacheUser)
	}
	return output.Output(outputFmt, entries)
}

func entriesForUser(entries []recency.Entry, user string) []recency.Entry {
	filtered := make([]recency.Entry, 0, len(entries))
	for _, e := range entries {
		for _, u := range e.ShownToUsers {
			if u == user {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	return output.Output(outputFmt, env.loadCache(ctx).Stats())
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	cache := env.loadCache(ctx)
	removed := cache.Cleanup()
	if removed > 0 {
		if err := cache.Save(ctx); err != nil {
			return fmt.Errorf("failed to save recency cache: %w", err)
		}
	}

	fmt.Printf("Removed %d entries older than %d days (%d remain)\n", removed, cfg.Cache.RetentionDays, cache.Len())
	return nil
}

func runCacheForget(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	cache := env.loadCache(ctx)
	forgotten := 0
	for _, url := range args {
		if cache.Forget(url) {
			forgotten++
		} else {
			fmt.Printf("Not in cache: %s\n", url)
		}
	}

	if forgotten > 0 {
		if err := cache.Save(ctx); err != nil {
			return fmt.Errorf("failed to save recency cache: %w", err)
		}
	}
	fmt.Printf("Forgot %d postings\n", forgotten)
	return nil
}
