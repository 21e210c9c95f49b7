package filter

import (
	"fmt"
	"strings"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/textnorm"
)

// MaxScore bounds every rubric score
const MaxScore = 100

// maxReasonTech limits how many technologies are named in the reason
const maxReasonTech = 3

// Breakdown holds the four sub-scores before clamping
type Breakdown struct {
	Title    int `json:"title"`
	Skills   int `json:"skills"`
	Tech     int `json:"tech"`
	Location int `json:"location"`
}

// Total sums the sub-scores
func (b Breakdown) Total() int {
	return b.Title + b.Skills + b.Tech + b.Location
}

// Result represents the outcome of scoring a posting
type Result struct {
	Score     int       // Clamped to [0, MaxScore]
	Reasons   []string  // Title, skills, tech and location, in that order, when present
	Breakdown Breakdown // Unclamped sub-scores
}

// ScoreJob rates a posting against a profile
func (s *Scorer) ScoreJob(p job.Posting, profile config.UserProfile) Result {
	var (
		b       Breakdown
		reasons []string
	)

	// Title
	if role, ratio := bestRole(p.Title, profile.TargetRoles); ratio > 0 {
		b.Title = s.titlePoints(ratio)
		if b.Title > 0 {
			reasons = append(reasons, "Role matches "+role)
		}
	}

	description := textnorm.Fold(p.Description)

	// Skills
	if skills := matchedTerms(description, profile.Skills.Primary); len(skills) > 0 {
		b.Skills = s.skillPoints(len(skills))
		reasons = append(reasons, "Skills: "+strings.Join(skills, ", "))
	}

	// Technologies
	if tech := matchedTerms(description, profile.Skills.Technologies); len(tech) > 0 {
		b.Tech = s.techPoints(len(tech))
		reasons = append(reasons, "Tech: "+strings.Join(tech[:min(len(tech), maxReasonTech)], ", "))
	}

	// Location
	if points, reason := s.checkLocation(p.Location); points > 0 {
		b.Location = points
		if reason == "" {
			reason = fmt.Sprintf("Location: %s", p.Location)
		}
		reasons = append(reasons, reason)
	}

	return Result{
		Score:     max(0, min(b.Total(), MaxScore)),
		Reasons:   reasons,
		Breakdown: b,
	}
}

// ScoreAll scores a copy of postings for one profile. The input is not modified.
func (s *Scorer) ScoreAll(postings []job.Posting, profile config.UserProfile) []job.Posting {
	scored := make([]job.Posting, len(postings))
	for i, p := range postings {
		result := s.ScoreJob(p, profile)
		p.Score = result.Score
		p.MatchReasons = result.Reasons
		scored[i] = p
	}
	return scored
}

// FilterByScore returns the postings scoring at least minScore, in input order
func FilterByScore(postings []job.Posting, minScore int) []job.Posting {
	var kept []job.Posting
	for _, p := range postings {
		if p.Score >= minScore {
			kept = append(kept, p)
		}
	}
	return kept
}

// Stats summarizes a scored batch
type Stats struct {
	Total       int
	Scored      int // score > 0
	HighMatches int // score >= the high-match threshold
	Best        int
	Average     float64
}

// GetStats returns statistics about scored postings
func GetStats(postings []job.Posting, highMatch int) Stats {
	stats := Stats{Total: len(postings)}

	sum := 0
	for _, p := range postings {
		sum += p.Score
		if p.Score > 0 {
			stats.Scored++
		}
		if p.Score >= highMatch {
			stats.HighMatches++
		}
		stats.Best = max(stats.Best, p.Score)
	}
	if stats.Total > 0 {
		stats.Average = float64(sum) / float64(stats.Total)
	}

	return stats
}
