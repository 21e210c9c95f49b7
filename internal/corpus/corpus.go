// Package corpus computes batch-wide term rarity over one run's postings and
// uses it to reward rare, profile-specific terms.
//
// Statistics are rebuilt every run and shared read-only between users. They are
// never persisted or merged across runs.
package corpus

import (
	"errors"
	"math"

	"github.com/vijay-prabhu/jobmatch/internal/job"
	"github.com/vijay-prabhu/jobmatch/internal/textnorm"
)

// ErrEmptyCorpus is returned when there is nothing to index
var ErrEmptyCorpus = errors.New("corpus: no postings to index")

// Stats holds document frequencies and IDF for one batch.
// It is immutable after Build and safe for concurrent reads.
type Stats struct {
	n   int
	df  map[string]int
	idf map[string]float64
	tf  map[string]map[string]int // posting URL -> term -> count
}

// Build indexes the combined title and description of every posting
func Build(postings []job.Posting) (*Stats, error) {
	if len(postings) == 0 {
		return nil, ErrEmptyCorpus
	}

	s := &Stats{
		n:   len(postings),
		df:  make(map[string]int),
		idf: make(map[string]float64),
		tf:  make(map[string]map[string]int, len(postings)),
	}

	for _, p := range postings {
		counts := make(map[string]int)
		for _, term := range textnorm.Terms(p.Text()) {
			counts[term]++
		}
		for term := range counts {
			s.df[term]++
		}
		s.tf[p.URL] = counts
	}

	for term, df := range s.df {
		s.idf[term] = math.Log(float64(s.n) / float64(df))
	}

	return s, nil
}

// Len returns the number of documents in the corpus
func (s *Stats) Len() int {
	if s == nil {
		return 0
	}
	return s.n
}

// Terms returns the number of distinct terms observed
func (s *Stats) Terms() int {
	if s == nil {
		return 0
	}
	return len(s.df)
}

// DocFreq returns how many postings contain term at least once
func (s *Stats) DocFreq(term string) int {
	if s == nil {
		return 0
	}
	return s.df[term]
}

// IDF returns ln(N/df) for term, or 0 for unseen terms
func (s *Stats) IDF(term string) float64 {
	if s == nil {
		return 0
	}
	return s.idf[term]
}

// TermFreq returns the term counts of the posting with the given URL.
// The returned map must not be modified.
func (s *Stats) TermFreq(url string) map[string]int {
	if s == nil {
		return nil
	}
	return s.tf[url]
}
