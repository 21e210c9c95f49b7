// Package matcher runs the matching pipeline: ingest, deduplicate, index the
// corpus once, then score and select per user in parallel.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/corpus"
	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/dedup"
	"github.com/vijay-prabhu/jobmatch/internal/filter"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
	"github.com/vijay-prabhu/jobmatch/internal/selector"
)

// ErrInvalidProfile is returned for a user whose profile cannot be scored
var ErrInvalidProfile = errors.New("invalid profile")

// Sink receives the final list for one user
type Sink interface {
	Deliver(ctx context.Context, username string, jobs []job.Posting) error
}

// HistoryRecorder stores run summaries
type HistoryRecorder interface {
	CreateMatchRun(ctx context.Context, r *database.MatchRun) error
}

// Options configures a Matcher
type Options struct {
	Config   *config.Config   // defaults to config.Default()
	Cache    *recency.Cache   // defaults to an empty in-memory cache
	Logger   *slog.Logger     // defaults to slog.Default()
	Scorer   *filter.Scorer   // defaults to one built from Config.Scoring
	Dedup    *dedup.Filter    // defaults to one built from Config.Dedup
	History  HistoryRecorder  // optional
	Progress ProgressCallback // optional
	Now      func() time.Time // defaults to time.Now
	Schedule string           // recorded with the run when started by watch
}

// Matcher orchestrates the matching pipeline
type Matcher struct {
	cfg      *config.Config
	cache    *recency.Cache
	logger   *slog.Logger
	scorer   *filter.Scorer
	dedup    *dedup.Filter
	history  HistoryRecorder
	progress ProgressCallback
	now      func() time.Time
	schedule string
}

// New creates a new Matcher
func New(opts Options) *Matcher {
	m := &Matcher{
		cfg:      opts.Config,
		cache:    opts.Cache,
		logger:   opts.Logger,
		scorer:   opts.Scorer,
		dedup:    opts.Dedup,
		history:  opts.History,
		progress: opts.Progress,
		now:      opts.Now,
		schedule: opts.Schedule,
	}
	if m.cfg == nil {
		m.cfg = config.Default()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.scorer == nil {
		m.scorer = filter.New(m.cfg.Scoring)
	}
	if m.dedup == nil {
		m.dedup = dedup.New(dedup.Options{
			CompanyThreshold: m.cfg.Dedup.CompanyThreshold,
			TitleThreshold:   m.cfg.Dedup.TitleThreshold,
		})
	}
	if m.cache == nil {
		m.cache = recency.New(recency.Options{
			Now:           m.now,
			RetentionDays: m.cfg.Cache.RetentionDays,
			Logger:        m.logger,
		})
	}
	return m
}

// Cache returns the recency cache the matcher reads and marks
func (m *Matcher) Cache() *recency.Cache {
	return m.cache
}

// report sends a progress update if a callback is configured
func (m *Matcher) report(phase ProgressPhase, current, total int, desc string) {
	if m.progress != nil {
		m.progress(Progress{
			Phase:       phase,
			Current:     current,
			Total:       total,
			Description: desc,
		})
	}
}

// outcome is one user's slot in the parallel phase
type outcome struct {
	result UserMatchResult
	err    error
}

// Run matches postings against every enabled user. Per-user failures are
// collected in RunResult.Errors; only a cancelled context fails the run.
func (m *Matcher) Run(ctx context.Context, postings []job.Posting, users []config.User) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:      uuid.New().String(),
		StartedAt:  m.now(),
		PostingsIn: len(postings),
		Results:    []UserMatchResult{},
	}

	// Ingest
	m.report(PhasePreparing, 0, len(postings), "Preparing postings")
	prepared := job.Prepare(postings, job.PrepareOptions{
		MaxAgeDays: m.cfg.Engine.MaxPostingAgeDays,
		Now:        m.now,
	})
	result.PostingsDropped = prepared.Dropped()
	if prepared.Dropped() > 0 {
		m.logger.Debug("dropped postings at ingestion",
			slog.Int("ineligible", prepared.Ineligible),
			slog.Int("expired", prepared.Expired))
	}
	m.report(PhasePreparing, len(postings), len(postings), "Prepared postings")

	// Deduplicate
	m.report(PhaseDeduplicating, 0, len(prepared.Postings), "Removing duplicates")
	unique := m.dedup.Deduplicate(prepared.Postings)
	result.PostingsUnique = len(unique)
	m.report(PhaseDeduplicating, len(prepared.Postings), len(prepared.Postings), "Duplicates removed")

	// Corpus statistics are shared read-only by every user
	m.report(PhaseIndexing, 0, len(unique), "Building corpus statistics")
	stats, err := corpus.Build(unique)
	if err != nil {
		m.logger.Debug("corpus unavailable, boost disabled", slog.Any("error", err))
	}
	booster := corpus.NewBooster(stats)
	m.report(PhaseIndexing, len(unique), len(unique), "Corpus statistics built")

	enabled := make([]config.User, 0, len(users))
	for _, u := range users {
		if !u.Config.Enabled {
			m.logger.Debug("skipping disabled user", slog.String("user", u.Username))
			continue
		}
		enabled = append(enabled, u)
	}

	// Score users in parallel; each goroutine writes only its own slot
	slots := make([]outcome, len(enabled))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(max(1, m.cfg.Engine.MaxWorkers))
	m.report(PhaseScoring, 0, len(enabled), "Scoring users")
	for i, u := range enabled {
		i, u := i, u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				slots[i].err = err
				return nil
			}
			res, err := m.matchUser(u, unique, booster)
			slots[i] = outcome{result: res, err: err}
			m.report(PhaseScoring, int(done.Add(1)), len(enabled), "Scoring users")
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	for i, o := range slots {
		if o.err != nil {
			m.logger.Error("user matching failed",
				slog.String("user", enabled[i].Username), slog.Any("error", o.err))
			result.Errors = append(result.Errors, &UserError{Username: enabled[i].Username, Err: o.err})
			continue
		}
		result.Results = append(result.Results, o.result)
	}

	result.FinishedAt = m.now()
	if budget := m.cfg.Engine.RunTimeout(); budget > 0 && result.Duration() > budget {
		result.Overrun = true
		m.logger.Warn("run exceeded its time budget",
			slog.Duration("elapsed", result.Duration()), slog.Duration("budget", budget))
	}

	m.logger.Info("run complete",
		slog.String("run_id", result.RunID),
		slog.Int("postings", result.PostingsIn),
		slog.Int("unique", result.PostingsUnique),
		slog.Int("users", len(result.Results)),
		slog.Int("selected", result.Selected()),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

// matchUser scores, boosts, filters and selects postings for one user.
// A panic is converted into an error so other users are unaffected.
func (m *Matcher) matchUser(u config.User, unique []job.Posting, booster *corpus.Booster) (res UserMatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while matching: %v", r)
		}
	}()

	if err := validateUser(u); err != nil {
		return UserMatchResult{}, err
	}

	scored := m.scorer.ScoreAll(unique, u.Profile)
	keywords := corpus.ProfileKeywords(u.Profile)
	for i := range scored {
		scored[i].TFIDFScore = booster.Score(scored[i], keywords)
	}

	fresh := m.cache.FilterRecentlyShown(scored, u.Username, m.cfg.Engine.RecencyWindowDays)

	threshold := u.EffectiveThreshold(m.cfg.Engine.DefaultThreshold)
	selected, decision := selector.SelectWithTrace(fresh, selector.Options{
		Threshold: threshold,
		MaxJobs:   u.Config.MaxJobsPerDay,
		Floor:     m.cfg.Engine.MinScoreFloor,
	})
	if selected == nil {
		selected = []job.Posting{}
	}

	m.logger.Debug("user matched",
		slog.String("user", u.Username),
		slog.String("selection", string(decision.Step)),
		slog.Int("threshold", decision.Threshold),
		slog.Int("candidates", decision.Candidates),
		slog.Int("recently_shown", len(scored)-len(fresh)),
		slog.Int("selected", len(selected)))

	st := filter.GetStats(selected, m.cfg.Engine.HighMatchThreshold)
	return UserMatchResult{
		Username: u.Username,
		Jobs:     selected,
		Stats: MatchStats{
			TotalJobsChecked: len(unique),
			JobsMatched:      len(selected),
			AvgScore:         roundTenth(st.Average),
			HighMatchCount:   st.HighMatches,
			RecentlyShown:    len(scored) - len(fresh),
			Threshold:        threshold,
			Selection:        decision.Step,
		},
	}, nil
}

// validateUser rejects profiles that can never match anything
func validateUser(u config.User) error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidProfile)
	}
	p := u.Profile
	if len(p.TargetRoles) == 0 && len(p.Skills.Primary) == 0 && len(p.Skills.Technologies) == 0 {
		return fmt.Errorf("%w: no target roles, skills or technologies", ErrInvalidProfile)
	}
	if u.Config.MaxJobsPerDay < 0 {
		return fmt.Errorf("%w: max_jobs_per_day is negative", ErrInvalidProfile)
	}
	return nil
}
