package selector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/jobmatch/internal/job"
)

func postingsWithScores(scores ...int) []job.Posting {
	postings := make([]job.Posting, len(scores))
	for i, s := range scores {
		postings[i] = job.Posting{URL: fmt.Sprintf("https://example.com/%d", i), Score: s}
	}
	return postings
}

func scoresOf(postings []job.Posting) []int {
	scores := make([]int, len(postings))
	for i, p := range postings {
		scores[i] = p.Score
	}
	return scores
}

func TestSelect_Standard(t *testing.T) {
	scored := postingsWithScores(40, 90, 65, 70, 10)

	selected, d := SelectWithTrace(scored, Options{Threshold: 60, MaxJobs: 5, Floor: 30})

	assert.Equal(t, []int{90, 70, 65}, scoresOf(selected))
	assert.Equal(t, StepStandard, d.Step)
	assert.Equal(t, 60, d.Threshold)
	assert.Equal(t, 3, d.Selected)
}

func TestSelect_NeverExceedsCap(t *testing.T) {
	scored := postingsWithScores(95, 94, 93, 92, 91, 90, 89, 88, 87, 86, 85, 84)

	for _, maxJobs := range []int{1, 3, 5, 12, 50} {
		selected := Select(scored, Options{Threshold: 60, MaxJobs: maxJobs, Floor: 30})
		assert.LessOrEqual(t, len(selected), maxJobs)
	}
}

func TestSelect_ZeroCapSelectsNothing(t *testing.T) {
	scored := postingsWithScores(90, 80)

	assert.Empty(t, Select(scored, Options{Threshold: 60, MaxJobs: 0, Floor: 30}))
	assert.Empty(t, Select(scored, Options{Threshold: 60, MaxJobs: -1, Floor: 30}))
}

func TestSelect_RelaxesWhenEmpty(t *testing.T) {
	scored := postingsWithScores(55, 20, 52)

	selected, d := SelectWithTrace(scored, Options{Threshold: 60, MaxJobs: 5, Floor: 30})

	assert.Equal(t, []int{55, 52}, scoresOf(selected))
	assert.Equal(t, StepRelaxed, d.Step)
	assert.Equal(t, 50, d.Threshold)
}

func TestSelect_RelaxNeverBelowFloor(t *testing.T) {
	scored := postingsWithScores(28, 25)

	selected, d := SelectWithTrace(scored, Options{Threshold: 35, MaxJobs: 5, Floor: 30})

	assert.Empty(t, selected)
	assert.Equal(t, StepNone, d.Step)
}

func TestSelect_NoRelaxWhenAllZero(t *testing.T) {
	scored := postingsWithScores(0, 0)

	selected, d := SelectWithTrace(scored, Options{Threshold: 10, MaxJobs: 5, Floor: 0})

	assert.Empty(t, selected)
	assert.Equal(t, StepNone, d.Step)
}

func TestSelect_FloorBindsLowThreshold(t *testing.T) {
	scored := postingsWithScores(35, 25, 15)

	selected := Select(scored, Options{Threshold: 10, MaxJobs: 5, Floor: 30})

	assert.Equal(t, []int{35}, scoresOf(selected))
}

func TestSelect_TightensOversizedPool(t *testing.T) {
	// 7 candidates >= 60 for a cap of 3; 4 remain >= 70
	scored := postingsWithScores(60, 61, 62, 70, 75, 80, 90)

	selected, d := SelectWithTrace(scored, Options{Threshold: 60, MaxJobs: 3, Floor: 30})

	assert.Equal(t, StepTight, d.Step)
	assert.Equal(t, 70, d.Threshold)
	assert.Equal(t, 4, d.Candidates)
	assert.Equal(t, []int{90, 80, 75}, scoresOf(selected))
}

func TestSelect_KeepsPoolWhenTighterTooSmall(t *testing.T) {
	// 7 candidates >= 60 for a cap of 3; only 2 remain >= 70
	scored := postingsWithScores(60, 61, 62, 63, 64, 75, 90)

	selected, d := SelectWithTrace(scored, Options{Threshold: 60, MaxJobs: 3, Floor: 30})

	assert.Equal(t, StepStandard, d.Step)
	assert.Equal(t, 7, d.Candidates)
	assert.Equal(t, []int{90, 75, 64}, scoresOf(selected))
}

func TestSelect_TieBreaks(t *testing.T) {
	scored := []job.Posting{
		{URL: "first", Score: 70, TFIDFScore: 2},
		{URL: "second", Score: 70, TFIDFScore: 5},
		{URL: "third", Score: 70, TFIDFScore: 2},
	}

	selected := Select(scored, Options{Threshold: 60, MaxJobs: 3, Floor: 30})

	require.Len(t, selected, 3)
	assert.Equal(t, "second", selected[0].URL)
	assert.Equal(t, "first", selected[1].URL)
	assert.Equal(t, "third", selected[2].URL)
}

func TestSelect_DoesNotReorderInput(t *testing.T) {
	scored := postingsWithScores(10, 90, 50)

	_ = Select(scored, Options{Threshold: 40, MaxJobs: 2, Floor: 30})

	assert.Equal(t, []int{10, 90, 50}, scoresOf(scored))
}

func TestSelect_Empty(t *testing.T) {
	selected, d := SelectWithTrace(nil, Options{Threshold: 60, MaxJobs: 5})
	assert.Nil(t, selected)
	assert.Equal(t, StepNone, d.Step)
}
