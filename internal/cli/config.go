package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var configShowEffective bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().BoolVar(&configShowEffective, "effective", false,
		"Show the merged configuration after defaults and environment overrides")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Dir(configPath)
	usersDir := filepath.Join(home, ".config", "jobmatch", "users")
	dataDir := filepath.Join(home, ".local", "share", "jobmatch")

	// Create directories
	for _, dir := range []string{configDir, usersDir, dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at %s\n", configPath)
		fmt.Println("Use 'jobmatch config show' to view current configuration")
		return nil
	}

	// Write default config
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	exampleUser := filepath.Join(usersDir, "example.yaml")
	if _, err := os.Stat(exampleUser); os.IsNotExist(err) {
		if err := os.WriteFile(exampleUser, []byte(exampleProfile), 0644); err != nil {
			return fmt.Errorf("failed to write example profile: %w", err)
		}
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit the example profile in %s/ (one file per user)\n", usersDir)
	fmt.Println("  2. Export scraped postings as a JSON array")
	fmt.Println("  3. Run 'jobmatch run -i postings.json'")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if configShowEffective {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Println("# Effective configuration")
		fmt.Println()
		fmt.Print(string(data))
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found. Run 'jobmatch config init' to create one.")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}

// defaultConfig mirrors config.Default
const defaultConfig = `# jobmatch configuration

[engine]
min_score_floor = 30        # nothing below this score is ever delivered
default_threshold = 60      # used when a profile sets no threshold
recency_window_days = 3     # do not resend a posting within this many days
high_match_threshold = 85
max_workers = 4             # users scored in parallel
run_timeout_seconds = 300
max_posting_age_days = 0    # 0 keeps postings of any age

[dedup]
company_threshold = 0.70
title_threshold = 0.85

[scoring]
skill_points = 6
cap_skills = false
skill_cap = 30
tech_points = 2
tech_cap = 20

# First matching rule wins
[[scoring.location_rules]]
keywords = ["riyadh"]
points = 10
reason = "Located in Riyadh"

[[scoring.location_rules]]
keywords = ["remote", "hybrid"]
points = 8
reason = "Remote/Hybrid friendly"

[[scoring.location_rules]]
keywords = ["saudi arabia"]
points = 5
reason = "Located in Saudi Arabia"

[cache]
backend = "file"            # file, sqlite or redis
path = "~/.local/share/jobmatch/recency.json"
database_path = "~/.local/share/jobmatch/jobmatch.db"
# redis_url = "redis://localhost:6379/0"
key_prefix = "jobmatch:"
retention_days = 30

[users]
dir = "~/.config/jobmatch/users"

[delivery]
dir = "~/.local/share/jobmatch/delivered"
# redis_channel = "jobmatch:deliveries"

[schedule]
spec = "@daily"

[log]
level = "info"
format = "text"
`

const exampleProfile = `# The username defaults to the file name
profile:
  name: Example User
  location: Riyadh
  target_roles:
    - AI Engineer
    - Machine Learning Engineer
  skills:
    primary:
      - Machine Learning
      - Deep Learning
    technologies:
      - Python
      - PyTorch
config:
  enabled: true
  matching_threshold: 60
  max_jobs_per_day: 10
`
