package corpus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/job"
)

func testBatch() []job.Posting {
	return []job.Posting{
		{URL: "1", Title: "AI Engineer", Description: "Python python PYTHON, pytorch and kubernetes"},
		{URL: "2", Title: "Backend Engineer", Description: "Golang, kubernetes, postgres"},
		{URL: "3", Title: "Data Analyst", Description: "SQL, Excel, python"},
		{URL: "4", Title: "HR Specialist", Description: "Recruitment and onboarding"},
	}
}

func TestBuild(t *testing.T) {
	stats, err := Build(testBatch())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Len())
	assert.Equal(t, 2, stats.DocFreq("python"))
	assert.Equal(t, 2, stats.DocFreq("engineer"))
	assert.Equal(t, 1, stats.DocFreq("pytorch"))
	assert.Zero(t, stats.DocFreq("and"), "stop words are dropped")
	assert.Zero(t, stats.DocFreq("ai"), "short tokens are dropped")

	assert.InDelta(t, math.Log(4.0/2.0), stats.IDF("python"), 1e-9)
	assert.InDelta(t, math.Log(4.0), stats.IDF("pytorch"), 1e-9)
	assert.Zero(t, stats.IDF("unseen"))

	assert.Equal(t, 3, stats.TermFreq("1")["python"])
	assert.Positive(t, stats.Terms())
}

func TestBuild_Empty(t *testing.T) {
	stats, err := Build(nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Nil(t, stats)

	// nil stats degrade gracefully
	assert.Zero(t, stats.Len())
	assert.Zero(t, stats.IDF("python"))
	assert.Nil(t, stats.TermFreq("1"))
}

func TestBooster_Score(t *testing.T) {
	stats, err := Build(testBatch())
	require.NoError(t, err)
	b := NewBooster(stats)

	tests := []struct {
		name     string
		posting  job.Posting
		keywords []string
		want     int
	}{
		{
			// python: tf 3 * ln2 = 2.08 ; pytorch: 1 * ln4 = 1.39 ; avg 1.73 -> band 2
			name:     "mid band",
			posting:  testBatch()[0],
			keywords: []string{"Python", "PyTorch"},
			want:     2,
		},
		{
			// python alone: 2.08 -> band 5
			name:     "upper band",
			posting:  testBatch()[0],
			keywords: []string{"python"},
			want:     5,
		},
		{
			// backend: 1 * ln4 = 1.39 ; engineer: 1 * ln2 = 0.69 ; avg 1.04 -> band 2
			name:     "low band",
			posting:  testBatch()[1],
			keywords: []string{"Backend Engineer"},
			want:     2,
		},
		{
			name:     "no keyword matched",
			posting:  testBatch()[3],
			keywords: []string{"python"},
			want:     0,
		},
		{
			name:     "unknown posting",
			posting:  job.Posting{URL: "missing", Title: "python"},
			keywords: []string{"python"},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Score(tt.posting, tt.keywords))
		})
	}
}

func TestBooster_TopBand(t *testing.T) {
	batch := []job.Posting{
		{URL: "1", Title: "Rust Rust Rust Rust Rust Rust Rust Rust"},
		{URL: "2", Title: "Java"},
		{URL: "3", Title: "Java"},
		{URL: "4", Title: "Java"},
	}
	stats, err := Build(batch)
	require.NoError(t, err)

	// rust: tf 8 * ln4 = 11.09
	assert.Equal(t, MaxBoost, NewBooster(stats).Score(batch[0], []string{"rust"}))
}

func TestBooster_NilStats(t *testing.T) {
	assert.Zero(t, NewBooster(nil).Score(testBatch()[0], []string{"python"}))
	var b *Booster
	assert.Zero(t, b.Score(testBatch()[0], []string{"python"}))
}

func TestProfileKeywords(t *testing.T) {
	var p config.UserProfile
	p.TargetRoles = []string{"AI Engineer"}
	p.Skills.Primary = []string{"Machine Learning"}
	p.Skills.Technologies = []string{"Python", "python"}

	assert.Equal(t, []string{"AI Engineer", "Machine Learning", "Python", "python"}, ProfileKeywords(p))
	assert.Equal(t, []string{"engineer", "machine", "learning", "python"}, KeywordTerms(ProfileKeywords(p)))
}
