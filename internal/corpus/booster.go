package corpus

import (
	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/textnorm"
)

// MaxBoost is the highest secondary score a posting can receive
const MaxBoost = 10

// Booster attaches a secondary 0..10 score from TF-IDF weights of profile terms
type Booster struct {
	stats *Stats
}

// NewBooster creates a Booster; nil stats make every score 0
func NewBooster(stats *Stats) *Booster {
	return &Booster{stats: stats}
}

// Score averages tf*idf over the profile keywords present in the posting and
// maps the average to a band. It never fails; missing data scores 0.
func (b *Booster) Score(p job.Posting, keywords []string) int {
	if b == nil || b.stats == nil {
		return 0
	}
	tf := b.stats.TermFreq(p.URL)
	if len(tf) == 0 {
		return 0
	}

	var total float64
	matched := 0
	for _, term := range KeywordTerms(keywords) {
		count := tf[term]
		if count == 0 {
			continue
		}
		total += float64(count) * b.stats.IDF(term)
		matched++
	}
	if matched == 0 {
		return 0
	}

	return band(total / float64(matched))
}

func band(avg float64) int {
	switch {
	case avg >= 5:
		return 10
	case avg >= 2:
		return 5
	case avg >= 0.5:
		return 2
	default:
		return 0
	}
}

// KeywordTerms tokenizes keywords with the corpus tokenizer and drops repeats
func KeywordTerms(keywords []string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, kw := range keywords {
		for _, term := range textnorm.Terms(kw) {
			if seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}

// ProfileKeywords collects the terms a profile cares about
func ProfileKeywords(profile config.UserProfile) []string {
	keywords := make([]string, 0, len(profile.TargetRoles)+len(profile.Skills.Primary)+len(profile.Skills.Technologies))
	keywords = append(keywords, profile.TargetRoles...)
	keywords = append(keywords, profile.Skills.Primary...)
	keywords = append(keywords, profile.Skills.Technologies...)
	return keywords
}
