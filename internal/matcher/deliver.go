package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vijay-prabhu/jobmatch/internal/database"
)

// DeliveryReport summarizes a delivery pass
type DeliveryReport struct {
	Users     int          // users whose list was accepted by the sink
	Delivered int          // postings marked as shown
	Errors    []*UserError // sink failures; those postings stay unmarked
}

// Deliver hands each non-empty user list to sink. Postings are marked as shown
// only after the sink accepted them, one user at a time.
func (m *Matcher) Deliver(ctx context.Context, run *RunResult, sink Sink) *DeliveryReport {
	report := &DeliveryReport{}
	if run == nil {
		return report
	}

	total := len(run.Results)
	for i, res := range run.Results {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, &UserError{Username: res.Username, Err: err})
			continue
		}
		if len(res.Jobs) == 0 {
			continue
		}

		m.report(PhaseDelivering, i+1, total, "Delivering to "+res.Username)
		if err := sink.Deliver(ctx, res.Username, res.Jobs); err != nil {
			m.logger.Error("delivery failed",
				slog.String("user", res.Username), slog.Any("error", err))
			report.Errors = append(report.Errors, &UserError{
				Username: res.Username,
				Err:      fmt.Errorf("failed to deliver: %w", err),
			})
			continue
		}

		for _, p := range res.Jobs {
			m.cache.MarkAsShown(p, res.Username)
		}
		report.Users++
		report.Delivered += len(res.Jobs)
	}

	return report
}

// Finish prunes and persists the recency cache and records the run in history.
// It ignores cancellation of ctx. Errors are returned for reporting; the run
// itself already succeeded.
func (m *Matcher) Finish(ctx context.Context, run *RunResult, delivery *DeliveryReport) error {
	var errs []error

	// Postings already left through the sink; a shutdown signal must not drop their marks
	ctx = context.WithoutCancel(ctx)

	if removed := m.cache.Cleanup(); removed > 0 {
		m.logger.Info("pruned recency cache", slog.Int("removed", removed))
	}
	if err := m.cache.Save(ctx); err != nil {
		m.logger.Warn("failed to save recency cache", slog.Any("error", err))
		errs = append(errs, fmt.Errorf("failed to save recency cache: %w", err))
	}

	if m.history != nil && run != nil {
		record := &database.MatchRun{
			ID:         run.RunID,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
			Input:      run.PostingsIn,
			Unique:     run.PostingsUnique,
			Users:      len(run.Results) + len(run.Errors),
			Selected:   run.Selected(),
			Errors:     len(run.Errors),
			Overrun:    run.Overrun,
		}
		if delivery != nil {
			record.Delivered = delivery.Delivered
			record.Errors += len(delivery.Errors)
		}
		if m.schedule != "" {
			schedule := m.schedule
			record.Schedule = &schedule
		}
		if err := m.history.CreateMatchRun(ctx, record); err != nil {
			m.logger.Warn("failed to record run", slog.Any("error", err))
			errs = append(errs, fmt.Errorf("failed to record run: %w", err))
		}
	}

	return errors.Join(errs...)
}
