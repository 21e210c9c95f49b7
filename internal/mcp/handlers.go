package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/filter"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/matcher"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
)

func (s *Server) registerHandlers() {
	s.handlers["match_postings"] = s.handleMatchPostings
	s.handlers["score_posting"] = s.handleScorePosting
	s.handlers["list_users"] = s.handleListUsers
	s.handlers["recently_shown"] = s.handleRecentlyShown
	s.handlers["forget_posting"] = s.handleForgetPosting
	s.handlers["get_run_history"] = s.handleGetRunHistory
}

// loadCache reads the current recency state
func (s *Server) loadCache(ctx context.Context) *recency.Cache {
	return recency.Load(ctx, s.store, recency.Options{
		RetentionDays: s.config.Cache.RetentionDays,
		Logger:        s.logger,
	})
}

// loadUsers returns the usable profiles; unusable ones are logged
func (s *Server) loadUsers() ([]config.User, error) {
	users, err := config.LoadUsers(s.config.Users.Dir)
	if errors.Is(err, config.ErrNoUsers) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("mcp: skipped user profiles", slog.Any("error", err))
	}
	return users, nil
}

func (s *Server) findUser(username string) (config.User, error) {
	users, err := s.loadUsers()
	if err != nil {
		return config.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return config.User{}, fmt.Errorf("user not found: %s", username)
}

type matchPostingsParams struct {
	Postings   []job.Posting `json:"postings"`
	InputFiles []string      `json:"input_files"`
	Users      []string      `json:"users"`
}

type matchPostingsResult struct {
	RunID          string                    `json:"run_id"`
	PostingsIn     int                       `json:"postings_in"`
	PostingsUnique int                       `json:"postings_unique"`
	Results        []matcher.UserMatchResult `json:"results"`
	Errors         []string                  `json:"errors,omitempty"`
	Summary        string                    `json:"summary"`
}

func (s *Server) handleMatchPostings(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p matchPostingsParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
	}

	postings := p.Postings
	if len(p.InputFiles) > 0 {
		fromFiles, err := job.ReadFiles(p.InputFiles)
		if err != nil {
			return nil, err
		}
		postings = append(postings, fromFiles...)
	}
	if len(postings) == 0 {
		return nil, fmt.Errorf("postings or input_files is required")
	}

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	if len(p.Users) > 0 {
		users = slices.DeleteFunc(users, func(u config.User) bool {
			return !slices.Contains(p.Users, u.Username)
		})
	}

	m := matcher.New(matcher.Options{
		Config: s.config,
		Cache:  s.loadCache(ctx),
		Logger: s.logger,
	})
	run, err := m.Run(ctx, postings, users)
	if err != nil {
		return nil, err
	}

	return matchPostingsResult{
		RunID:          run.RunID,
		PostingsIn:     run.PostingsIn,
		PostingsUnique: run.PostingsUnique,
		Results:        run.Results,
		Errors:         run.ErrorMessages(),
		Summary: fmt.Sprintf("%d unique postings, %d selected across %d users",
			run.PostingsUnique, run.Selected(), len(run.Results)),
	}, nil
}

type scorePostingParams struct {
	Username string      `json:"username"`
	Posting  job.Posting `json:"posting"`
}

type scorePostingResult struct {
	Score     int              `json:"score"`
	Reasons   []string         `json:"reasons"`
	Breakdown filter.Breakdown `json:"breakdown"`
	Threshold int              `json:"threshold"`
	Passes    bool             `json:"passes"`
	Floor     int              `json:"floor"`
}

func (s *Server) handleScorePosting(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p scorePostingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	u, err := s.findUser(p.Username)
	if err != nil {
		return nil, err
	}

	result := filter.New(s.config.Scoring).ScoreJob(p.Posting, u.Profile)
	threshold := u.EffectiveThreshold(s.config.Engine.DefaultThreshold)
	return scorePostingResult{
		Score:     result.Score,
		Reasons:   result.Reasons,
		Breakdown: result.Breakdown,
		Threshold: threshold,
		Passes:    result.Score >= threshold,
		Floor:     s.config.Engine.MinScoreFloor,
	}, nil
}

func (s *Server) handleListUsers(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return s.loadUsers()
}

type recentlyShownParams struct {
	Username string `json:"username"`
	Days     int    `json:"days"`
}

func (s *Server) handleRecentlyShown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p recentlyShownParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	days := p.Days
	if days <= 0 {
		days = s.config.Engine.RecencyWindowDays
	}

	cache := s.loadCache(ctx)
	shown := []recency.Entry{}
	for _, e := range cache.Entries() {
		if cache.WasShownRecently(job.Posting{URL: e.URL}, p.Username, days) {
			shown = append(shown, e)
		}
	}
	return shown, nil
}

type forgetPostingParams struct {
	URL string `json:"url"`
}

func (s *Server) handleForgetPosting(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p forgetPostingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	cache := s.loadCache(ctx)
	if !cache.Forget(p.URL) {
		return fmt.Sprintf("Not in cache: %s", p.URL), nil
	}
	if err := cache.Save(ctx); err != nil {
		return nil, fmt.Errorf("failed to save recency cache: %w", err)
	}
	return fmt.Sprintf("Forgot %s", p.URL), nil
}

type getRunHistoryParams struct {
	SinceDays int `json:"since_days"`
	Limit     int `json:"limit"`
}

type runHistoryResult struct {
	Runs  []database.MatchRun `json:"runs"`
	Stats *database.RunStats  `json:"stats"`
}

func (s *Server) handleGetRunHistory(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p getRunHistoryParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
	}
	if s.db == nil {
		return nil, fmt.Errorf("run history is not available")
	}

	opts := database.RunListOptions{Limit: 20}
	if p.Limit > 0 {
		opts.Limit = p.Limit
	}
	if p.SinceDays > 0 {
		since := time.Now().AddDate(0, 0, -p.SinceDays)
		opts.Since = &since
	}

	runs, err := s.db.ListMatchRuns(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	stats, err := s.db.GetRunStats(ctx, opts.Since)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if runs == nil {
		runs = []database.MatchRun{}
	}
	return runHistoryResult{Runs: runs, Stats: stats}, nil
}
