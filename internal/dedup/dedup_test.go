package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-prabhu/jobmatch/internal/job"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.a, tt.b), func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 1e-9)
}

func TestSimilarity_SeniorVsSr(t *testing.T) {
	a := NormalizeTitle("Senior Software Engineer")
	b := NormalizeTitle("Sr Software Engineer")

	sim := Similarity(a, b)
	assert.InDelta(t, 0.833, sim, 0.01)
	assert.Less(t, sim, DefaultTitleThreshold)
}

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Aramco", "aramco"},
		{"Acme, Inc.", "acme"},
		{"Acme Co. Ltd", "acme"},
		{"Saudi Telecom Company", "saudi telecom"},
		{"Company", "company"},
		{"Coca Cola", "coca cola"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCompany(tt.in))
		})
	}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name    string
		in      []job.Posting
		wantIDs []string
	}{
		{
			name: "identical url keeps first occurrence",
			in: []job.Posting{
				{ID: "1", Title: "Data Scientist", Company: "STC", URL: "https://a/1"},
				{ID: "2", Title: "Completely Different", Company: "Other", URL: "https://a/1"},
			},
			wantIDs: []string{"1"},
		},
		{
			name: "same job across sources",
			in: []job.Posting{
				{ID: "bayt", Title: "HR Specialist", Company: "Acme", URL: "https://bayt.com/1", Platform: "Bayt"},
				{ID: "linkedin", Title: "HR Specialist", Company: "Acme", URL: "https://linkedin.com/9", Platform: "LinkedIn"},
			},
			wantIDs: []string{"bayt"},
		},
		{
			name: "punctuation and legal suffix variation",
			in: []job.Posting{
				{ID: "1", Title: "Backend Engineer (Go)", Company: "Tamara Inc.", URL: "u1"},
				{ID: "2", Title: "backend engineer - go", Company: "Tamara", URL: "u2"},
			},
			wantIDs: []string{"1"},
		},
		{
			name: "different companies with the same title coexist",
			in: []job.Posting{
				{ID: "1", Title: "Software Engineer", Company: "Aramco", URL: "u1"},
				{ID: "2", Title: "Software Engineer", Company: "Google", URL: "u2"},
			},
			wantIDs: []string{"1", "2"},
		},
		{
			name: "senior vs sr stays distinct",
			in: []job.Posting{
				{ID: "1", Title: "Senior Software Engineer", Company: "Acme", URL: "u1"},
				{ID: "2", Title: "Sr Software Engineer", Company: "Acme", URL: "u2"},
			},
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "empty batch",
			in:      nil,
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deduplicate(tt.in)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []job.Posting{
		{Title: "HR Specialist", Company: "Acme", URL: "1"},
		{Title: "HR Specialist", Company: "Acme LLC", URL: "2"},
		{Title: "Senior Software Engineer", Company: "Acme", URL: "3"},
		{Title: "Sr Software Engineer", Company: "Acme", URL: "4"},
		{Title: "Software Engineer", Company: "Google", URL: "5"},
		{Title: "Software Engineer", Company: "Google", URL: "5"},
		{Title: "Data Engineer", Company: "Google", URL: "6"},
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)
	require.Equal(t, once, twice)
	assert.Len(t, once, 5)
}

func TestDeduplicate_URLOfDroppedPosting(t *testing.T) {
	in := []job.Posting{
		{Title: "HR Specialist", Company: "Acme", URL: "u1"},
		{Title: "HR Specialist", Company: "Acme", URL: "u2"},
		{Title: "Data Scientist", Company: "Other", URL: "u2"},
	}

	got := Deduplicate(in)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].URL)
}

func TestFilter_CustomThresholds(t *testing.T) {
	f := New(Options{CompanyThreshold: 0.7, TitleThreshold: 0.8})
	a := job.Posting{Title: "Senior Software Engineer", Company: "Acme", URL: "1"}
	b := job.Posting{Title: "Sr Software Engineer", Company: "Acme", URL: "2"}

	assert.True(t, f.IsDuplicate(a, b))
	assert.False(t, New(Options{}).IsDuplicate(a, b))
}
