package filter

import (
	"strings"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/textnorm"
)

type locationRule struct {
	keywords []string
	points   int
	reason   string
}

func compileLocationRules(rules []config.LocationRule) []locationRule {
	compiled := make([]locationRule, 0, len(rules))
	for _, r := range rules {
		lr := locationRule{points: r.Points, reason: r.Reason}
		for _, kw := range r.Keywords {
			if kw = textnorm.Fold(strings.TrimSpace(kw)); kw != "" {
				lr.keywords = append(lr.keywords, kw)
			}
		}
		compiled = append(compiled, lr)
	}
	return compiled
}

// checkLocation returns the points and reason of the first rule whose keyword
// appears in the posting location
func (s *Scorer) checkLocation(location string) (int, string) {
	loc := textnorm.Fold(location)
	if loc == "" {
		return 0, ""
	}

	for _, rule := range s.location {
		for _, kw := range rule.keywords {
			if strings.Contains(loc, kw) {
				return rule.points, rule.reason
			}
		}
	}
	return 0, ""
}
