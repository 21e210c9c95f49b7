package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/delivery"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/matcher"
	"github.com/vijay-prabhu/jobmatch/internal/output"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
)

var (
	runInputs     []string
	runUsersDir   string
	runDeliverDir string
	runDryRun     bool
	runStdout     bool
	runNoProgress bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match a batch of postings against every user",
	Long: `Run reads scraped postings, removes near-duplicates, scores them
for every enabled user and delivers each user's list.

Delivered postings are remembered so they are not sent again within
the recency window.

Examples:
  jobmatch run -i linkedin.json -i bayt.json
  jobmatch run -i jobs.json --dry-run        # Score and select, deliver nothing
  jobmatch run -i jobs.json --stdout -o json # Print lists instead of writing files`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVarP(&runInputs, "input", "i", nil, "JSON posting files, in priority order (required)")
	runCmd.Flags().StringVar(&runUsersDir, "users", "", "Directory of user profiles (default: users.dir)")
	runCmd.Flags().StringVar(&runDeliverDir, "deliver-dir", "", "Directory for delivery files (default: delivery.dir)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Do not deliver or update the recency cache")
	runCmd.Flags().BoolVar(&runStdout, "stdout", false, "Deliver to stdout instead of files")
	runCmd.Flags().BoolVar(&runNoProgress, "no-progress", false, "Hide progress output")
	_ = runCmd.MarkFlagRequired("input")
}

// pipelineOptions describes one pass of the pipeline
type pipelineOptions struct {
	Inputs   []string
	UsersDir string
	Sink     matcher.Sink
	DryRun   bool
	Schedule string
	Progress matcher.ProgressCallback
}

// pipelineResult is everything a pass produced
type pipelineResult struct {
	Run      *matcher.RunResult
	Delivery *matcher.DeliveryReport
}

func runRun(cmd *cobra.Command, args []string) error {
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

	sink, closeSink, err := buildSink(ctx, cfg, runDeliverDir, runStdout)
	if err != nil {
		return err
	}
	defer closeSink()

	opts := pipelineOptions{
		Inputs:   runInputs,
		UsersDir: runUsersDir,
		Sink:     sink,
		DryRun:   runDryRun,
	}

	terminal := NewTerminal()
	if !runNoProgress {
		opts.Progress = terminal.ProgressPrinter()
	}

	result, err := runPipeline(ctx, env, opts)
	terminal.ClearLine()
	if err != nil {
		return err
	}

	if runStdout && outputFmt == output.FormatJSON {
		// Lists already went to stdout; keep the stream parseable
		return nil
	}
	if err := output.Output(outputFmt, result.Run); err != nil {
		return err
	}
	if result.Delivery != nil && outputFmt != output.FormatJSON {
		return output.Output(outputFmt, result.Delivery)
	}
	return nil
}

// runPipeline loads postings and users, matches, delivers and persists.
// Only unusable input or a cancelled context is an error.
func runPipeline(ctx context.Context, env *environment, opts pipelineOptions) (*pipelineResult, error) {
	postings, err := job.ReadFiles(opts.Inputs)
	if err != nil {
		return nil, err
	}

	usersDir := opts.UsersDir
	if usersDir == "" {
		usersDir = env.cfg.Users.Dir
	}
	users, err := config.LoadUsers(usersDir)
	if errors.Is(err, config.ErrNoUsers) {
		return nil, err
	}
	if err != nil {
		// Some profiles were unusable; the rest still run
		env.logger.Warn("skipped user profiles", slog.Any("error", err))
	}

	cache := env.loadCache(ctx)
	var history matcher.HistoryRecorder
	if !opts.DryRun {
		history = env.db
	}

	m := matcher.New(matcher.Options{
		Config:   env.cfg,
		Cache:    cache,
		Logger:   env.logger,
		History:  history,
		Progress: opts.Progress,
		Schedule: opts.Schedule,
	})

	run, err := m.Run(ctx, postings, users)
	if err != nil {
		return nil, err
	}

	result := &pipelineResult{Run: run}
	if opts.DryRun {
		return result, nil
	}

	result.Delivery = m.Deliver(ctx, run, opts.Sink)
	if err := m.Finish(ctx, run, result.Delivery); err != nil {
		// Already logged; the delivered lists stand
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return result, nil
}

// buildSink picks the delivery sinks from flags and config
func buildSink(ctx context.Context, cfg *config.Config, dir string, stdout bool) (matcher.Sink, func(), error) {
	var sinks delivery.Multi
	closeFn := func() {}

	if stdout {
		sinks = append(sinks, delivery.NewWriterSink(os.Stdout, outputFmt))
	} else {
		if dir == "" {
			dir = cfg.Delivery.Dir
		}
		sinks = append(sinks, delivery.NewDirSink(dir))
	}

	if cfg.Delivery.RedisChannel != "" {
		url := cfg.Delivery.RedisURL
		if url == "" {
			url = cfg.Cache.RedisURL
		}
		client, err := recency.NewRedisClient(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect delivery redis: %w", err)
		}
		sinks = append(sinks, delivery.NewRedisSink(client, cfg.Delivery.RedisChannel))
		closeFn = func() { client.Close() }
	}

	if len(sinks) == 1 {
		return sinks[0], closeFn, nil
	}
	return sinks, closeFn, nil
}
