package matcher

import (
	"math"
	"time"

	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/selector"
)

// MatchStats are the aggregate numbers reported with each user's list
type MatchStats struct {
	TotalJobsChecked int           `json:"total_jobs_checked"`
	JobsMatched      int           `json:"jobs_matched"`
	AvgScore         float64       `json:"avg_score"`
	HighMatchCount   int           `json:"high_match_count"`
	RecentlyShown    int           `json:"recently_shown"`
	Threshold        int           `json:"threshold"`
	Selection        selector.Step `json:"selection"`
}

// UserMatchResult is the delivery list for one user
type UserMatchResult struct {
	Username string        `json:"username"`
	Jobs     []job.Posting `json:"jobs"`
	Stats    MatchStats    `json:"stats"`
}

// UserError records why a user was left out of a run
type UserError struct {
	Username string
	Err      error
}

func (e *UserError) Error() string {
	return e.Username + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// RunResult contains the results of a pipeline run
type RunResult struct {
	RunID           string            `json:"run_id"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
	PostingsIn      int               `json:"postings_in"`
	PostingsDropped int               `json:"postings_dropped"`
	PostingsUnique  int               `json:"postings_unique"`
	Results         []UserMatchResult `json:"results"`
	Errors          []*UserError      `json:"-"`
	Overrun         bool              `json:"overrun"`
}

// Duration returns the wall-clock time the run took
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Selected returns the total number of postings selected across users
func (r *RunResult) Selected() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Jobs)
	}
	return n
}

// ErrorMessages returns the user errors as strings, for JSON output
func (r *RunResult) ErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		msgs[i] = err.Error()
	}
	return msgs
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
