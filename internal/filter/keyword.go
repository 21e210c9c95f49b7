package filter

import (
	"strings"

	"github.com/vijay-prabhu/jobmatch/internal/textnorm"
)

// bestRole returns the target role whose words best cover the title words,
// with the fraction of its words that matched. The first role wins ties.
func bestRole(title string, roles []string) (string, float64) {
	titleWords := textnorm.Words(title)
	if len(titleWords) == 0 {
		return "", 0
	}

	var (
		best      string
		bestRatio float64
	)
	for _, role := range roles {
		ratio := roleRatio(textnorm.Words(role), titleWords)
		if ratio > bestRatio {
			best, bestRatio = role, ratio
		}
	}
	return best, bestRatio
}

// roleRatio counts role words found among title words.
// A word matches when either one contains the other ("eng" vs "engineering").
func roleRatio(roleWords, titleWords []string) float64 {
	if len(roleWords) == 0 {
		return 0
	}

	matched := 0
	for _, rw := range roleWords {
		for _, tw := range titleWords {
			if strings.Contains(tw, rw) || strings.Contains(rw, tw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(roleWords))
}

// matchedTerms returns the entries of terms that occur in the folded text,
// keeping their original spelling and order. Blank entries never match.
func matchedTerms(foldedText string, terms []string) []string {
	var matched []string
	for _, term := range terms {
		needle := textnorm.Fold(strings.TrimSpace(term))
		if needle == "" {
			continue
		}
		if strings.Contains(foldedText, needle) {
			matched = append(matched, strings.TrimSpace(term))
		}
	}
	return matched
}
