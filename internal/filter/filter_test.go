package filter

import (
	"reflect"
	"testing"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/job"
)

func aiProfile() config.UserProfile {
	return config.UserProfile{
		Name:        "Ahmed",
		Location:    "Riyadh",
		TargetRoles: []string{"AI Engineer", "ML Engineer"},
		Skills: config.Skills{
			Primary:      []string{"Machine Learning", "Computer Vision"},
			Technologies: []string{"Python", "PyTorch", "Docker", "Kubernetes"},
		},
	}
}

func TestScorer_AramcoScenario(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	p := job.Posting{
		Title:       "AI Engineer",
		Company:     "Aramco",
		Location:    "Riyadh, Saudi Arabia",
		URL:         "https://example.com/aramco/1",
		Description: "Build machine learning systems in Python for upstream operations.",
	}

	result := s.ScoreJob(p, aiProfile())

	want := Breakdown{Title: 40, Skills: 6, Tech: 2, Location: 10}
	if result.Breakdown != want {
		t.Errorf("Breakdown = %+v, want %+v", result.Breakdown, want)
	}
	if result.Score != 58 {
		t.Errorf("Score = %d, want 58", result.Score)
	}

	wantReasons := []string{
		"Role matches AI Engineer",
		"Skills: Machine Learning",
		"Tech: Python",
		"Located in Riyadh",
	}
	if !reflect.DeepEqual(result.Reasons, wantReasons) {
		t.Errorf("Reasons = %q, want %q", result.Reasons, wantReasons)
	}

	nonEmpty := 0
	for _, r := range result.Reasons {
		if r != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 3 {
		t.Errorf("expected at least 3 non-empty reasons, got %d", nonEmpty)
	}
}

func TestScorer_TitleMatch(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	tests := []struct {
		name  string
		roles []string
		title string
		want  int
	}{
		{"exact", []string{"Data Scientist"}, "Data Scientist", 40},
		{"extra title words still exact", []string{"Data Scientist"}, "Senior Data Scientist (Remote)", 40},
		{"partial", []string{"Senior Data Scientist"}, "Data Scientist", 23},
		{"substring either direction", []string{"ML Engineer"}, "Machine Learning Engineering Lead", 17},
		{"best role wins", []string{"Designer", "Backend Engineer"}, "Backend Engineer", 40},
		{"no match", []string{"Accountant"}, "Software Engineer", 0},
		{"no roles", nil, "Software Engineer", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := config.UserProfile{TargetRoles: tt.roles}
			result := s.ScoreJob(job.Posting{Title: tt.title}, profile)

			if result.Breakdown.Title != tt.want {
				t.Errorf("Title = %d, want %d", result.Breakdown.Title, tt.want)
			}
			if (tt.want > 0) != (len(result.Reasons) > 0) {
				t.Errorf("unexpected reasons %q", result.Reasons)
			}
		})
	}
}

func TestScorer_SkillsUncappedByDefault(t *testing.T) {
	skills := []string{"sql", "etl", "spark", "airflow", "dbt", "kafka"}
	profile := config.UserProfile{Skills: config.Skills{Primary: skills}}
	p := job.Posting{Description: "SQL ETL Spark Airflow dbt Kafka"}

	uncapped := NewScorer(DefaultScorerConfig()).ScoreJob(p, profile)
	if uncapped.Breakdown.Skills != 36 {
		t.Errorf("uncapped Skills = %d, want 36", uncapped.Breakdown.Skills)
	}

	cfg := DefaultScorerConfig()
	cfg.CapSkills = true
	capped := NewScorer(cfg).ScoreJob(p, profile)
	if capped.Breakdown.Skills != 30 {
		t.Errorf("capped Skills = %d, want 30", capped.Breakdown.Skills)
	}
}

func TestScorer_TechReasonListsThree(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())
	p := job.Posting{Description: "python, pytorch, docker and kubernetes"}

	result := s.ScoreJob(p, aiProfile())

	if result.Breakdown.Tech != 8 {
		t.Errorf("Tech = %d, want 8", result.Breakdown.Tech)
	}
	want := []string{"Tech: Python, PyTorch, Docker"}
	if !reflect.DeepEqual(result.Reasons, want) {
		t.Errorf("Reasons = %q, want %q", result.Reasons, want)
	}
}

func TestScorer_TechCap(t *testing.T) {
	var techs []string
	desc := ""
	for _, w := range []string{"go", "rust", "java", "scala", "ruby", "perl", "lua", "php", "dart", "swift", "elixir", "haskell"} {
		techs = append(techs, w)
		desc += w + " "
	}
	profile := config.UserProfile{Skills: config.Skills{Technologies: techs}}

	result := NewScorer(DefaultScorerConfig()).ScoreJob(job.Posting{Description: desc}, profile)
	if result.Breakdown.Tech != 20 {
		t.Errorf("Tech = %d, want 20", result.Breakdown.Tech)
	}
}

func TestScorer_Location(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())

	tests := []struct {
		location   string
		wantPoints int
		wantReason string
	}{
		{"Riyadh", 10, "Located in Riyadh"},
		{"Hybrid - Riyadh", 10, "Located in Riyadh"},
		{"Remote", 8, "Remote/Hybrid friendly"},
		{"Jeddah, Saudi Arabia", 5, "Located in Saudi Arabia"},
		{"Dubai", 0, ""},
		{"", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			result := s.ScoreJob(job.Posting{Location: tt.location}, config.UserProfile{})
			if result.Breakdown.Location != tt.wantPoints {
				t.Errorf("Location = %d, want %d", result.Breakdown.Location, tt.wantPoints)
			}
			if tt.wantReason == "" && len(result.Reasons) != 0 {
				t.Errorf("unexpected reasons %q", result.Reasons)
			}
			if tt.wantReason != "" && (len(result.Reasons) != 1 || result.Reasons[0] != tt.wantReason) {
				t.Errorf("Reasons = %q, want [%q]", result.Reasons, tt.wantReason)
			}
		})
	}
}

func TestScorer_CustomLocationRules(t *testing.T) {
	s := New(config.ScoringConfig{
		SkillPoints: 6,
		SkillCap:    30,
		TechPoints:  2,
		TechCap:     20,
		LocationRules: []config.LocationRule{
			{Keywords: []string{"Dubai"}, Points: 7, Reason: "Located in Dubai"},
		},
	})

	result := s.ScoreJob(job.Posting{Location: "Dubai, UAE"}, config.UserProfile{})
	if result.Breakdown.Location != 7 {
		t.Errorf("Location = %d, want 7", result.Breakdown.Location)
	}
}

func TestScorer_ScoreIsBounded(t *testing.T) {
	var skills []string
	desc := ""
	for _, w := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet", "kilo", "lima"} {
		skills = append(skills, w)
		desc += w + " "
	}
	profile := config.UserProfile{
		TargetRoles: []string{"Engineer"},
		Skills:      config.Skills{Primary: skills, Technologies: skills},
	}
	p := job.Posting{Title: "Engineer", Location: "Riyadh", Description: desc}

	result := NewScorer(DefaultScorerConfig()).ScoreJob(p, profile)
	if result.Breakdown.Total() <= MaxScore {
		t.Fatalf("expected unclamped total above %d, got %d", MaxScore, result.Breakdown.Total())
	}
	if result.Score != MaxScore {
		t.Errorf("Score = %d, want %d", result.Score, MaxScore)
	}
}

func TestScoreAll_DoesNotMutateInput(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())
	postings := []job.Posting{
		{Title: "AI Engineer", Location: "Riyadh"},
		{Title: "Chef", Location: "Paris"},
	}

	scored := s.ScoreAll(postings, aiProfile())

	if postings[0].Score != 0 || postings[0].MatchReasons != nil {
		t.Error("input posting was modified")
	}
	if scored[0].Score != 50 {
		t.Errorf("scored[0].Score = %d, want 50", scored[0].Score)
	}
	if scored[1].Score != 0 {
		t.Errorf("scored[1].Score = %d, want 0", scored[1].Score)
	}
}

func TestFilterByScore(t *testing.T) {
	postings := []job.Posting{
		{URL: "a", Score: 80},
		{URL: "b", Score: 20},
		{URL: "c", Score: 50},
	}

	kept := FilterByScore(postings, 50)
	if len(kept) != 2 || kept[0].URL != "a" || kept[1].URL != "c" {
		t.Errorf("FilterByScore() = %+v", kept)
	}
}

func TestGetStats(t *testing.T) {
	postings := []job.Posting{{Score: 90}, {Score: 30}, {Score: 0}}

	stats := GetStats(postings, 85)

	if stats.Total != 3 || stats.Scored != 2 || stats.HighMatches != 1 || stats.Best != 90 {
		t.Errorf("GetStats() = %+v", stats)
	}
	if stats.Average != 40 {
		t.Errorf("Average = %v, want 40", stats.Average)
	}
}
