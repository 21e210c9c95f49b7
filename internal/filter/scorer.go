package filter

import "github.com/vijay-prabhu/jobmatch/internal/config"

// ScorerConfig configures the rubric weights
type ScorerConfig struct {
	TitleExactPoints int  // Awarded when every word of a target role is in the title
	TitlePartialMax  int  // Scaled by the word ratio for partial role matches
	SkillPoints      int  // Per primary skill found in the description
	CapSkills        bool // Apply SkillCap to the skill sub-score
	SkillCap         int
	TechPoints       int // Per technology found in the description
	TechCap          int
	LocationRules    []config.LocationRule
}

// DefaultScorerConfig returns the stock rubric
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		TitleExactPoints: 40,
		TitlePartialMax:  35,
		SkillPoints:      6,
		CapSkills:        false,
		SkillCap:         30,
		TechPoints:       2,
		TechCap:          20,
		LocationRules:    config.DefaultLocationRules(),
	}
}

// Scorer calculates rubric scores for postings against a profile.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	config   ScorerConfig
	location []locationRule
}

// NewScorer creates a new Scorer with the given configuration
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{
		config:   cfg,
		location: compileLocationRules(cfg.LocationRules),
	}
}

// New creates a Scorer from the [scoring] section of the application config
func New(cfg config.ScoringConfig) *Scorer {
	sc := DefaultScorerConfig()
	sc.SkillPoints = cfg.SkillPoints
	sc.CapSkills = cfg.CapSkills
	sc.SkillCap = cfg.SkillCap
	sc.TechPoints = cfg.TechPoints
	sc.TechCap = cfg.TechCap
	if len(cfg.LocationRules) > 0 {
		sc.LocationRules = cfg.LocationRules
	}
	return NewScorer(sc)
}

// Config returns the scorer configuration
func (s *Scorer) Config() ScorerConfig {
	return s.config
}

func (s *Scorer) titlePoints(ratio float64) int {
	switch {
	case ratio >= 1:
		return s.config.TitleExactPoints
	case ratio <= 0:
		return 0
	default:
		return int(ratio * float64(s.config.TitlePartialMax))
	}
}

func (s *Scorer) skillPoints(matched int) int {
	points := matched * s.config.SkillPoints
	if s.config.CapSkills {
		points = min(points, s.config.SkillCap)
	}
	return points
}

func (s *Scorer) techPoints(matched int) int {
	return min(matched*s.config.TechPoints, s.config.TechCap)
}
