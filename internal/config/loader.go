package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override, e.g. JOBMATCH_CACHE_BACKEND
const EnvPrefix = "JOBMATCH_"

// Load reads the configuration file, applies environment overrides and validates.
// A missing file is not an error; defaults plus environment are used instead.
func Load(path string) (*Config, error) {
	// A .env next to the working directory is optional
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		expandedPath, err := expandPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}

		data, err := os.ReadFile(expandedPath)
		switch {
		case err == nil:
			// Array tables would otherwise merge with the default rules
			cfg.Scoring.LocationRules = nil
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
			if len(cfg.Scoring.LocationRules) == 0 {
				cfg.Scoring.LocationRules = DefaultLocationRules()
			}
		case os.IsNotExist(err):
			// fall through with defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Cache.Path,
		&c.Cache.DatabasePath,
		&c.Users.Dir,
		&c.Delivery.Dir,
	} {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Engine validation
	if c.Engine.MinScoreFloor < 0 || c.Engine.MinScoreFloor > 100 {
		errs = append(errs, errors.New("engine.min_score_floor must be between 0 and 100"))
	}
	if c.Engine.DefaultThreshold < 0 || c.Engine.DefaultThreshold > 100 {
		errs = append(errs, errors.New("engine.default_threshold must be between 0 and 100"))
	}
	if c.Engine.RecencyWindowDays < 0 {
		errs = append(errs, errors.New("engine.recency_window_days must not be negative"))
	}
	if c.Engine.HighMatchThreshold < 0 || c.Engine.HighMatchThreshold > 100 {
		errs = append(errs, errors.New("engine.high_match_threshold must be between 0 and 100"))
	}
	if c.Engine.MaxWorkers < 1 {
		errs = append(errs, errors.New("engine.max_workers must be at least 1"))
	}
	if c.Engine.RunTimeoutSeconds < 1 {
		errs = append(errs, errors.New("engine.run_timeout_seconds must be at least 1"))
	}
	if c.Engine.MaxPostingAgeDays < 0 {
		errs = append(errs, errors.New("engine.max_posting_age_days must not be negative"))
	}

	// Dedup validation
	if c.Dedup.CompanyThreshold <= 0 || c.Dedup.CompanyThreshold > 1 {
		errs = append(errs, errors.New("dedup.company_threshold must be in (0, 1]"))
	}
	if c.Dedup.TitleThreshold <= 0 || c.Dedup.TitleThreshold > 1 {
		errs = append(errs, errors.New("dedup.title_threshold must be in (0, 1]"))
	}

	// Scoring validation
	if c.Scoring.SkillPoints < 0 || c.Scoring.TechPoints < 0 || c.Scoring.TechCap < 0 || c.Scoring.SkillCap < 0 {
		errs = append(errs, errors.New("scoring points and caps must not be negative"))
	}
	for i, rule := range c.Scoring.LocationRules {
		if len(rule.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("scoring.location_rules[%d] needs at least one keyword", i))
		}
	}

	// Cache validation
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Path == "" {
			errs = append(errs, errors.New("cache.path is required for the file backend"))
		}
	case BackendSQLite:
		if c.Cache.DatabasePath == "" {
			errs = append(errs, errors.New("cache.database_path is required for the sqlite backend"))
		}
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be 'file', 'sqlite' or 'redis', got '%s'", c.Cache.Backend))
	}
	if c.Cache.RetentionDays < 1 {
		errs = append(errs, errors.New("cache.retention_days must be at least 1"))
	}

	// Delivery validation
	if c.Delivery.RedisChannel != "" && c.Delivery.RedisURL == "" && c.Cache.RedisURL == "" {
		errs = append(errs, errors.New("delivery.redis_channel needs delivery.redis_url or cache.redis_url"))
	}

	// Log validation
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be 'text' or 'json', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// EnsureDirectories creates the directories the configured backends write to
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Delivery.Dir}
	switch c.Cache.Backend {
	case BackendFile:
		dirs = append(dirs, filepath.Dir(c.Cache.Path))
	case BackendSQLite:
		dirs = append(dirs, filepath.Dir(c.Cache.DatabasePath))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
