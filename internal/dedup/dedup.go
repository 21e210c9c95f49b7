// Package dedup collapses postings that describe the same job with superficial
// text variation across sources.
//
// Exact URL matches are caught with a set lookup. Everything else is compared
// pairwise against the postings accepted so far, which is O(k²) in the number of
// unique postings. That is fine for batches in the low hundreds; at ten times that
// size the candidates should be bucketed by normalized company prefix first.
package dedup

import (
	"strings"

	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/textnorm"
)

// Default thresholds
const (
	DefaultCompanyThreshold = 0.70
	DefaultTitleThreshold   = 0.85
)

// legalSuffixes are stripped from the end of company names before comparison
var legalSuffixes = map[string]bool{
	"inc":     true,
	"ltd":     true,
	"llc":     true,
	"corp":    true,
	"co":      true,
	"limited": true,
	"company": true,
}

// Options configures the near-duplicate comparison
type Options struct {
	CompanyThreshold float64 // below this, two postings are never duplicates
	TitleThreshold   float64 // at or above this (same company), two postings are duplicates
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		CompanyThreshold: DefaultCompanyThreshold,
		TitleThreshold:   DefaultTitleThreshold,
	}
}

// Filter removes near-duplicate postings
type Filter struct {
	opts Options
}

// New creates a Filter. Zero thresholds fall back to the defaults.
func New(opts Options) *Filter {
	if opts.CompanyThreshold <= 0 {
		opts.CompanyThreshold = DefaultCompanyThreshold
	}
	if opts.TitleThreshold <= 0 {
		opts.TitleThreshold = DefaultTitleThreshold
	}
	return &Filter{opts: opts}
}

// Deduplicate runs the default filter over postings
func Deduplicate(postings []job.Posting) []job.Posting {
	return New(DefaultOptions()).Deduplicate(postings)
}

// accepted keeps the normalized forms of a unique posting so they are computed once
type accepted struct {
	title   string
	company string
}

// Deduplicate returns the unique postings in first-occurrence order
func (f *Filter) Deduplicate(postings []job.Posting) []job.Posting {
	unique := make([]job.Posting, 0, len(postings))
	keys := make([]accepted, 0, len(postings))
	seenURLs := make(map[string]struct{}, len(postings))

	for _, p := range postings {
		if _, ok := seenURLs[p.URL]; ok {
			continue
		}

		candidate := accepted{
			title:   NormalizeTitle(p.Title),
			company: NormalizeCompany(p.Company),
		}
		// A dropped posting's URL still names the same entity
		seenURLs[p.URL] = struct{}{}
		if f.matchesAny(candidate, keys) {
			continue
		}

		unique = append(unique, p)
		keys = append(keys, candidate)
	}

	return unique
}

func (f *Filter) matchesAny(candidate accepted, keys []accepted) bool {
	for _, k := range keys {
		if f.isDuplicate(candidate, k) {
			return true
		}
	}
	return false
}

func (f *Filter) isDuplicate(a, b accepted) bool {
	// Different companies may post similarly titled roles
	if Similarity(a.company, b.company) < f.opts.CompanyThreshold {
		return false
	}
	return Similarity(a.title, b.title) >= f.opts.TitleThreshold
}

// IsDuplicate reports whether two postings would be collapsed by f
func (f *Filter) IsDuplicate(a, b job.Posting) bool {
	if a.URL == b.URL {
		return true
	}
	return f.isDuplicate(
		accepted{title: NormalizeTitle(a.Title), company: NormalizeCompany(a.Company)},
		accepted{title: NormalizeTitle(b.Title), company: NormalizeCompany(b.Company)},
	)
}

// NormalizeTitle lowercases, strips punctuation and collapses whitespace
func NormalizeTitle(title string) string {
	return textnorm.Normalize(title)
}

// NormalizeCompany normalizes like NormalizeTitle and drops trailing legal suffixes
func NormalizeCompany(company string) string {
	words := textnorm.Words(company)
	for len(words) > 1 && legalSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}
