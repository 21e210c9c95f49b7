package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	watchInputs     []string
	watchUsersDir   string
	watchDeliverDir string
	watchSchedule   string
	watchNow        bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on a schedule",
	Long: `Watch re-reads the input files and runs the pipeline on a cron
schedule until interrupted. Input files are expected to be refreshed
by the scrapers between runs.

Examples:
  jobmatch watch -i jobs.json                       # schedule.spec from config
  jobmatch watch -i jobs.json --schedule "@every 6h"
  jobmatch watch -i jobs.json --schedule "0 8 * * *" --now`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVarP(&watchInputs, "input", "i", nil, "JSON posting files, in priority order (required)")
	watchCmd.Flags().StringVar(&watchUsersDir, "users", "", "Directory of user profiles (default: users.dir)")
	watchCmd.Flags().StringVar(&watchDeliverDir, "deliver-dir", "", "Directory for delivery files (default: delivery.dir)")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron spec (default: schedule.spec)")
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "Also run once immediately")
	_ = watchCmd.MarkFlagRequired("input")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	spec := watchSchedule
	if spec == "" {
		spec = cfg.Schedule.Spec
	}

	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	sink, closeSink, err := buildSink(ctx, cfg, watchDeliverDir, false)
	if err != nil {
		return err
	}
	defer closeSink()

	opts := pipelineOptions{
		Inputs:   watchInputs,
		UsersDir: watchUsersDir,
		Sink:     sink,
		Schedule: spec,
	}

	// Overlapping ticks are skipped rather than queued
	var running sync.Mutex
	tick := func() {
		if !running.TryLock() {
			logger.Warn("previous run still in progress, skipping tick", slog.String("schedule", spec))
			return
		}
		defer running.Unlock()

		result, err := runPipeline(ctx, env, opts)
		if err != nil {
			logger.Error("scheduled run failed", slog.Any("error", err))
			return
		}
		logger.Info("scheduled run delivered",
			slog.String("run_id", result.Run.RunID),
			slog.Int("users", result.Delivery.Users),
			slog.Int("jobs", result.Delivery.Delivered),
			slog.Int("errors", len(result.Run.Errors)+len(result.Delivery.Errors)))
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, tick); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	logger.Info("watching", slog.String("schedule", spec))
	fmt.Fprintf(os.Stderr, "Watching with schedule %q. Press Ctrl+C to stop.\n", spec)

	if watchNow {
		go tick()
	}

	<-ctx.Done()

	// Wait for a run in flight before closing the stores
	<-c.Stop().Done()
	running.Lock()
	defer running.Unlock()
	logger.Info("watch stopped")
	return nil
}
