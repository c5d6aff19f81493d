// Package config loads the engine's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sourcefix/autofix/internal/domain"
)

// Config holds the engine's runtime configuration.
type Config struct {
	DBPath            string   `json:"db_path"`
	Policy            string   `json:"policy"`
	PolicyFile        string   `json:"policy_file"`
	Strategy          string   `json:"strategy"`
	MinimumConfidence float64  `json:"minimum_confidence"`
	MaxTasksPerRun    int      `json:"max_tasks_per_run"`
	EnabledCategories []string `json:"enabled_categories"`
	ProtectedPaths    []string `json:"protected_paths"`
}

var validCategories = map[string]bool{
	string(domain.CategoryDocumentation): true,
	string(domain.CategoryQuality):       true,
	string(domain.CategoryDataFlow):      true,
	string(domain.CategoryStructural):    true,
	string(domain.CategoryArchitecture):  true,
}

// Load reads a JSON config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Policy == "" && c.PolicyFile == "" {
		c.Policy = "moderate"
	}
	if c.Strategy == "" {
		c.Strategy = "text"
	}
	if c.MinimumConfidence == 0 {
		c.MinimumConfidence = 0.7
	}
	if c.MaxTasksPerRun == 0 {
		c.MaxTasksPerRun = 10
	}
	if len(c.EnabledCategories) == 0 {
		c.EnabledCategories = []string{
			string(domain.CategoryDataFlow),
			string(domain.CategoryQuality),
		}
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.MinimumConfidence < 0 || c.MinimumConfidence > 1 {
		problems = append(problems, "minimum_confidence must be within [0,1]")
	}
	if c.MaxTasksPerRun < 0 {
		problems = append(problems, "max_tasks_per_run must not be negative")
	}
	if c.Strategy != "text" && c.Strategy != "tree" {
		problems = append(problems, fmt.Sprintf("unknown strategy %q", c.Strategy))
	}
	for _, cat := range c.EnabledCategories {
		if !validCategories[cat] {
			problems = append(problems, fmt.Sprintf("unknown category %q", cat))
		}
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}

// Generation converts the config into a task generation config.
func (c *Config) Generation() domain.TaskGenerationConfig {
	cats := make([]domain.IntentCategory, 0, len(c.EnabledCategories))
	for _, cat := range c.EnabledCategories {
		cats = append(cats, domain.IntentCategory(cat))
	}
	return domain.TaskGenerationConfig{
		MinimumConfidence: c.MinimumConfidence,
		MaxTasksPerRun:    c.MaxTasksPerRun,
		EnabledCategories: cats,
	}
}
