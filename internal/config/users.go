package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrNoUsers is returned when no usable user profile could be loaded
var ErrNoUsers = errors.New("no user profiles found")

// Skills groups the skill lists of a profile
type Skills struct {
	Primary      []string `yaml:"primary" toml:"primary" json:"primary"`
	Technologies []string `yaml:"technologies" toml:"technologies" json:"technologies"`
}

// UserProfile describes what a user is looking for. Immutable for a run.
type UserProfile struct {
	Name               string   `yaml:"name" toml:"name" json:"name"`
	Location           string   `yaml:"location" toml:"location" json:"location"`
	TargetRoles        []string `yaml:"target_roles" toml:"target_roles" json:"target_roles"`
	Skills             Skills   `yaml:"skills" toml:"skills" json:"skills"`
	MinExperienceMatch float64  `yaml:"min_experience_match" toml:"min_experience_match" json:"min_experience_match"`
	Languages          []string `yaml:"languages" toml:"languages" json:"languages"`
}

// UserConfig holds per-user delivery settings. Immutable for a run.
type UserConfig struct {
	Enabled           bool              `yaml:"enabled" toml:"enabled" json:"enabled"`
	MatchingThreshold int               `yaml:"matching_threshold" toml:"matching_threshold" json:"matching_threshold"`
	MaxJobsPerDay     int               `yaml:"max_jobs_per_day" toml:"max_jobs_per_day" json:"max_jobs_per_day"`
	Delivery          map[string]string `yaml:"delivery" toml:"delivery" json:"delivery,omitempty"` // opaque to the engine
}

// User pairs a profile with its settings under an opaque username
type User struct {
	Username string      `yaml:"username" toml:"username" json:"username"`
	Profile  UserProfile `yaml:"profile" toml:"profile" json:"profile"`
	Config   UserConfig  `yaml:"config" toml:"config" json:"config"`
}

// DefaultMaxJobsPerDay applies when a profile file does not set a cap
const DefaultMaxJobsPerDay = 10

// newUser returns a User with the defaults that absent keys should keep
func newUser(username string) User {
	return User{
		Username: username,
		Config: UserConfig{
			Enabled:       true,
			MaxJobsPerDay: DefaultMaxJobsPerDay,
		},
	}
}

// EffectiveThreshold returns the score threshold for the user.
// An explicit matching_threshold wins; otherwise min_experience_match is used,
// read as a fraction when <= 1 and as a score when above.
func (u User) EffectiveThreshold(fallback int) int {
	if u.Config.MatchingThreshold > 0 {
		return u.Config.MatchingThreshold
	}
	m := u.Profile.MinExperienceMatch
	switch {
	case m > 0 && m <= 1:
		return int(math.Round(m * 100))
	case m > 1 && m <= 100:
		return int(math.Round(m))
	default:
		return fallback
	}
}

// Validate checks the fields a user record must carry
func (u User) Validate() error {
	var errs []error
	if strings.TrimSpace(u.Username) == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if u.Config.MatchingThreshold < 0 || u.Config.MatchingThreshold > 100 {
		errs = append(errs, fmt.Errorf("matching_threshold must be between 0 and 100, got %d", u.Config.MatchingThreshold))
	}
	if u.Config.MaxJobsPerDay < 0 {
		errs = append(errs, fmt.Errorf("max_jobs_per_day must not be negative, got %d", u.Config.MaxJobsPerDay))
	}
	if u.Profile.MinExperienceMatch < 0 {
		errs = append(errs, errors.New("min_experience_match must not be negative"))
	}
	return errors.Join(errs...)
}

// LoadUsers reads every *.yaml, *.yml and *.toml profile in dir, sorted by file name.
// Files that fail to parse or validate are reported in the returned error but do not
// prevent the other users from loading. ErrNoUsers is returned when none loaded.
func LoadUsers(dir string) ([]User, error) {
	expanded, err := expandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand users dir: %w", err)
	}

	entries, err := os.ReadDir(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrNoUsers, expanded)
		}
		return nil, fmt.Errorf("failed to read users dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".toml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		users []User
		errs  []error
		seen  = make(map[string]string)
	)
	for _, name := range names {
		u, err := LoadUser(filepath.Join(expanded, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := seen[u.Username]; ok {
			errs = append(errs, fmt.Errorf("%s: username %q already defined in %s", name, u.Username, prev))
			continue
		}
		seen[u.Username] = name
		users = append(users, u)
	}

	if len(users) == 0 {
		errs = append([]error{ErrNoUsers}, errs...)
	}
	return users, errors.Join(errs...)
}

// LoadUser reads a single profile file. The username defaults to the file stem.
func LoadUser(path string) (User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return User{}, fmt.Errorf("failed to read profile: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	u := newUser(stem)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &u)
	default:
		err = yaml.Unmarshal(data, &u)
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: failed to parse profile: %w", filepath.Base(path), err)
	}

	if u.Username == "" {
		u.Username = stem
	}
	if err := u.Validate(); err != nil {
		return User{}, fmt.Errorf("%s: invalid profile: %w", filepath.Base(path), err)
	}
	return u, nil
}

// EnabledUsers returns the users whose gate is on, in input order
func EnabledUsers(users []User) []User {
	enabled := make([]User, 0, len(users))
	for _, u := range users {
		if u.Config.Enabled {
			enabled = append(enabled, u)
		}
	}
	return enabled
}
