package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Posting is a single scraped job listing. URL is its canonical identity.
type Posting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Platform    string `json:"platform,omitempty"`
	PostedDate  string `json:"posted_date,omitempty"`

	// Attached by the engine
	Score        int      `json:"score"`
	MatchReasons []string `json:"match_reasons"`
	TFIDFScore   int      `json:"tfidf_score"`
}

// Eligible reports whether the posting carries the fields the engine needs
func (p *Posting) Eligible() bool {
	return strings.TrimSpace(p.Title) != "" &&
		strings.TrimSpace(p.Company) != "" &&
		strings.TrimSpace(p.URL) != ""
}

// Text returns the title and description joined, used for term statistics
func (p *Posting) Text() string {
	if p.Description == "" {
		return p.Title
	}
	return p.Title + " " + p.Description
}

// resetScoring clears engine-attached fields so values from the input never leak through
func (p *Posting) resetScoring() {
	p.Score = 0
	p.MatchReasons = nil
	p.TFIDFScore = 0
}

// PrepareOptions configures ingestion
type PrepareOptions struct {
	MaxAgeDays int              // 0 disables the posted-date filter
	Now        func() time.Time // defaults to time.Now
}

// PrepareResult describes what happened at the ingestion boundary
type PrepareResult struct {
	Postings   []Posting
	Ineligible int
	Expired    int
}

// Dropped returns the total number of postings removed during ingestion
func (r PrepareResult) Dropped() int {
	return r.Ineligible + r.Expired
}

// Prepare drops ineligible and expired postings and assigns IDs where missing.
// Input order is preserved.
func Prepare(postings []Posting, opts PrepareOptions) PrepareResult {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	result := PrepareResult{Postings: make([]Posting, 0, len(postings))}
	for _, p := range postings {
		if !p.Eligible() {
			result.Ineligible++
			continue
		}
		if opts.MaxAgeDays > 0 && !IsRecent(p.PostedDate, opts.MaxAgeDays, now()) {
			result.Expired++
			continue
		}

		p.URL = strings.TrimSpace(p.URL)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.resetScoring()
		result.Postings = append(result.Postings, p)
	}
	return result
}
