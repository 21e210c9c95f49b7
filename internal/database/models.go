package database

import (
	"database/sql"
	"time"
)

// RecencyEntry is the stored form of a recency cache entry.
// Dates are calendar days formatted as YYYY-MM-DD.
type RecencyEntry struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	FirstSeen string   `json:"first_seen"`
	LastSeen  string   `json:"last_seen"`
	ShownTo   []string `json:"shown_to_users"`
}

// MatchRun records the outcome of one pipeline run
type MatchRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Input      int       `json:"input"`
	Unique     int       `json:"unique"`
	Users      int       `json:"users"`
	Selected   int       `json:"selected"`
	Delivered  int       `json:"delivered"`
	Errors     int       `json:"errors"`
	Overrun    bool      `json:"overrun"`
	Schedule   *string   `json:"schedule,omitempty"` // cron spec when started by watch
}

// Duration returns how long the run took
func (r *MatchRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStats represents aggregate run history
type RunStats struct {
	TotalRuns      int        `json:"total_runs"`
	TotalDelivered int        `json:"total_delivered"`
	TotalErrors    int        `json:"total_errors"`
	Overruns       int        `json:"overruns"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
}

// RunListOptions contains options for listing runs
type RunListOptions struct {
	Since *time.Time
	Limit int
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
