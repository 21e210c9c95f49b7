package config

import "time"

// Config represents the application configuration
type Config struct {
	Engine   EngineConfig   `toml:"engine" envPrefix:"ENGINE_"`
	Dedup    DedupConfig    `toml:"dedup" envPrefix:"DEDUP_"`
	Scoring  ScoringConfig  `toml:"scoring" envPrefix:"SCORING_"`
	Cache    CacheConfig    `toml:"cache" envPrefix:"CACHE_"`
	Users    UsersConfig    `toml:"users" envPrefix:"USERS_"`
	Delivery DeliveryConfig `toml:"delivery" envPrefix:"DELIVERY_"`
	Schedule ScheduleConfig `toml:"schedule" envPrefix:"SCHEDULE_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
}

// EngineConfig contains matching pipeline settings
type EngineConfig struct {
	MinScoreFloor      int `toml:"min_score_floor" env:"MIN_SCORE_FLOOR"`           // nothing below this is ever delivered
	DefaultThreshold   int `toml:"default_threshold" env:"DEFAULT_THRESHOLD"`       // used when a user sets no threshold
	RecencyWindowDays  int `toml:"recency_window_days" env:"RECENCY_WINDOW_DAYS"`   // suppress re-delivery within this many days
	HighMatchThreshold int `toml:"high_match_threshold" env:"HIGH_MATCH_THRESHOLD"` // score counted as a high match
	MaxWorkers         int `toml:"max_workers" env:"MAX_WORKERS"`                   // users scored in parallel
	RunTimeoutSeconds  int `toml:"run_timeout_seconds" env:"RUN_TIMEOUT_SECONDS"`   // wall-clock budget for a run
	MaxPostingAgeDays  int `toml:"max_posting_age_days" env:"MAX_POSTING_AGE_DAYS"` // 0 disables the age filter
}

// RunTimeout returns the run budget as a duration
func (e EngineConfig) RunTimeout() time.Duration {
	return time.Duration(e.RunTimeoutSeconds) * time.Second
}

// DedupConfig contains near-duplicate detection thresholds
type DedupConfig struct {
	CompanyThreshold float64 `toml:"company_threshold" env:"COMPANY_THRESHOLD"`
	TitleThreshold   float64 `toml:"title_threshold" env:"TITLE_THRESHOLD"`
}

// ScoringConfig contains rubric scorer weights
type ScoringConfig struct {
	SkillPoints   int            `toml:"skill_points" env:"SKILL_POINTS"`
	CapSkills     bool           `toml:"cap_skills" env:"CAP_SKILLS"` // apply SkillCap before the global clamp
	SkillCap      int            `toml:"skill_cap" env:"SKILL_CAP"`
	TechPoints    int            `toml:"tech_points" env:"TECH_POINTS"`
	TechCap       int            `toml:"tech_cap" env:"TECH_CAP"`
	LocationRules []LocationRule `toml:"location_rules"`
}

// LocationRule awards points when a posting location contains any keyword.
// Rules are checked in order and the first match wins.
type LocationRule struct {
	Keywords []string `toml:"keywords"`
	Points   int      `toml:"points"`
	Reason   string   `toml:"reason"`
}

// CacheConfig contains recency cache settings
type CacheConfig struct {
	Backend       string `toml:"backend" env:"BACKEND"` // file, sqlite or redis
	Path          string `toml:"path" env:"PATH"`
	DatabasePath  string `toml:"database_path" env:"DATABASE_PATH"`
	RedisURL      string `toml:"redis_url" env:"REDIS_URL"`
	KeyPrefix     string `toml:"key_prefix" env:"KEY_PREFIX"`
	RetentionDays int    `toml:"retention_days" env:"RETENTION_DAYS"`
}

// Cache backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// UsersConfig points at the user profile directory
type UsersConfig struct {
	Dir string `toml:"dir" env:"DIR"`
}

// DeliveryConfig contains settings for the delivery sinks.
// When RedisChannel is set, lists are also published there.
type DeliveryConfig struct {
	Dir          string `toml:"dir" env:"DIR"`
	RedisURL     string `toml:"redis_url" env:"REDIS_URL"`
	RedisChannel string `toml:"redis_channel" env:"REDIS_CHANNEL"`
}

// ScheduleConfig contains the watch command schedule
type ScheduleConfig struct {
	Spec string `toml:"spec" env:"SPEC"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// DefaultLocationRules mirrors the stock location tiers
func DefaultLocationRules() []LocationRule {
	return []LocationRule{
		{Keywords: []string{"riyadh"}, Points: 10, Reason: "Located in Riyadh"},
		{Keywords: []string{"remote", "hybrid"}, Points: 8, Reason: "Remote/Hybrid friendly"},
		{Keywords: []string{"saudi arabia"}, Points: 5, Reason: "Located in Saudi Arabia"},
	}
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MinScoreFloor:      30,
			DefaultThreshold:   60,
			RecencyWindowDays:  3,
			HighMatchThreshold: 85,
			MaxWorkers:         4,
			RunTimeoutSeconds:  300,
			MaxPostingAgeDays:  0,
		},
		Dedup: DedupConfig{
			CompanyThreshold: 0.70,
			TitleThreshold:   0.85,
		},
		Scoring: ScoringConfig{
			SkillPoints:   6,
			CapSkills:     false,
			SkillCap:      30,
			TechPoints:    2,
			TechCap:       20,
			LocationRules: DefaultLocationRules(),
		},
		Cache: CacheConfig{
			Backend:       BackendFile,
			Path:          "~/.local/share/jobmatch/recency.json",
			DatabasePath:  "~/.local/share/jobmatch/jobmatch.db",
			KeyPrefix:     "jobmatch:",
			RetentionDays: 30,
		},
		Users: UsersConfig{
			Dir: "~/.config/jobmatch/users",
		},
		Delivery: DeliveryConfig{
			Dir: "~/.local/share/jobmatch/delivered",
		},
		Schedule: ScheduleConfig{
			Spec: "@daily",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
