// Package selector turns a scored batch into a bounded delivery set for one user.
package selector

import (
	"cmp"
	"slices"

	"github.com/vijay-prabhu/jobmatch/internal/job"
)

// Default step sizes for relaxing and tightening the threshold
const (
	DefaultFloor       = 30
	DefaultRelaxStep   = 10
	DefaultTightenStep = 10
)

// Options configures a selection
type Options struct {
	Threshold   int // the user's matching threshold
	MaxJobs     int // cap on the delivered set; <= 0 selects nothing
	Floor       int // absolute minimum score, never relaxed below
	RelaxStep   int
	TightenStep int
}

func (o Options) withDefaults() Options {
	if o.RelaxStep <= 0 {
		o.RelaxStep = DefaultRelaxStep
	}
	if o.TightenStep <= 0 {
		o.TightenStep = DefaultTightenStep
	}
	return o
}

// Step identifies which pass produced the selection
type Step string

const (
	StepNone     Step = "none"     // nothing selected
	StepStandard Step = "standard" // max(threshold, floor)
	StepRelaxed  Step = "relaxed"  // threshold lowered after an empty pass
	StepTight    Step = "tight"    // threshold raised to thin an oversized pass
)

// Decision explains a selection for logging
type Decision struct {
	Step       Step
	Threshold  int // effective threshold of the adopted pass
	Candidates int // postings at or above the adopted threshold before truncation
	Selected   int
}

// Select returns at most MaxJobs postings, highest scores first
func Select(scored []job.Posting, opts Options) []job.Posting {
	selected, _ := SelectWithTrace(scored, opts)
	return selected
}

// SelectWithTrace is Select that also reports how the result was reached
func SelectWithTrace(scored []job.Posting, opts Options) ([]job.Posting, Decision) {
	opts = opts.withDefaults()
	if opts.MaxJobs <= 0 || len(scored) == 0 {
		return nil, Decision{Step: StepNone}
	}

	ranked := rank(scored)

	threshold := max(opts.Threshold, opts.Floor)
	decision := Decision{Step: StepStandard, Threshold: threshold}
	candidates := atOrAbove(ranked, threshold)

	if len(candidates) == 0 && ranked[0].Score > 0 {
		threshold = max(opts.Threshold-opts.RelaxStep, opts.Floor)
		candidates = atOrAbove(ranked, threshold)
		decision = Decision{Step: StepRelaxed, Threshold: threshold}
	}

	if len(candidates) > 2*opts.MaxJobs {
		tight := max(opts.Threshold+opts.TightenStep, opts.Floor)
		if stricter := atOrAbove(ranked, tight); len(stricter) >= opts.MaxJobs {
			candidates = stricter
			decision = Decision{Step: StepTight, Threshold: tight}
		}
	}

	decision.Candidates = len(candidates)
	if len(candidates) == 0 {
		decision.Step = StepNone
		return nil, decision
	}

	selected := slices.Clone(candidates[:min(len(candidates), opts.MaxJobs)])
	decision.Selected = len(selected)
	return selected, decision
}

// rank sorts a copy descending by score, then corpus boost, keeping input order for ties
func rank(scored []job.Posting) []job.Posting {
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, func(a, b job.Posting) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(b.TFIDFScore, a.TFIDFScore)
	})
	return ranked
}

// atOrAbove returns the prefix of ranked scoring at least threshold
func atOrAbove(ranked []job.Posting, threshold int) []job.Posting {
	n := 0
	for n < len(ranked) && ranked[n].Score >= threshold {
		n++
	}
	return ranked[:n]
}
