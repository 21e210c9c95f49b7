package job

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosting_Eligible(t *testing.T) {
	tests := []struct {
		name string
		p    Posting
		want bool
	}{
		{"complete", Posting{Title: "AI Engineer", Company: "Aramco", URL: "https://x/1"}, true},
		{"missing title", Posting{Company: "Aramco", URL: "https://x/1"}, false},
		{"missing company", Posting{Title: "AI Engineer", URL: "https://x/1"}, false},
		{"blank url", Posting{Title: "AI Engineer", Company: "Aramco", URL: "   "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Eligible())
		})
	}
}

func TestPrepare(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in := []Posting{
		{Title: "A", Company: "C", URL: " https://x/1 ", Score: 99, MatchReasons: []string{"stale"}},
		{Title: "", Company: "C", URL: "https://x/2"},
		{ID: "keep-me", Title: "B", Company: "C", URL: "https://x/3", PostedDate: "2026-03-01"},
		{Title: "Old", Company: "C", URL: "https://x/4", PostedDate: "2025-10-01"},
	}

	res := Prepare(in, PrepareOptions{MaxAgeDays: 60, Now: func() time.Time { return now }})

	require.Len(t, res.Postings, 2)
	assert.Equal(t, 1, res.Ineligible)
	assert.Equal(t, 1, res.Expired)
	assert.Equal(t, 2, res.Dropped())

	first := res.Postings[0]
	assert.Equal(t, "https://x/1", first.URL)
	assert.NotEmpty(t, first.ID)
	assert.Zero(t, first.Score)
	assert.Nil(t, first.MatchReasons)

	assert.Equal(t, "keep-me", res.Postings[1].ID)
}

func TestPrepare_AgeFilterDisabled(t *testing.T) {
	in := []Posting{{Title: "Old", Company: "C", URL: "u", PostedDate: "2001-01-01"}}
	res := Prepare(in, PrepareOptions{})
	assert.Len(t, res.Postings, 1)
}

func TestIsRecent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want bool
	}{
		{"", true},
		{"sometime", true},
		{"2026-03-01", true},
		{"2026-03-01T10:00:00Z", true},
		{"2025-12-01", false},
		{"2026-04-01", false},
		{"3 days ago", true},
		{"12 weeks ago", false},
		{"yesterday", true},
		{"05/03/2026", true},
		{"Jan 2, 2025", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecent(tt.date, 60, now))
		})
	}
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "bayt.json")
	b := filepath.Join(dir, "linkedin.json")
	require.NoError(t, os.WriteFile(a, []byte(`[{"title":"HR Specialist","company":"Acme","url":"https://bayt/1","platform":"Bayt"}]`), 0644))
	require.NoError(t, os.WriteFile(b, []byte(`[{"title":"HR Specialist","company":"Acme","url":"https://linkedin/1","platform":"LinkedIn"}]`), 0644))

	postings, err := ReadFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "Bayt", postings[0].Platform)
	assert.Equal(t, "LinkedIn", postings[1].Platform)
}

func TestRead_Empty(t *testing.T) {
	postings, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, postings)

	_, err = Read(strings.NewReader("{not json"))
	assert.Error(t, err)
}
