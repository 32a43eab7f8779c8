// Package config loads application settings from an optional YAML file
// layered under CRISP_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/abhisek/crispterm/internal/interview"
)

type Config struct {
	Interview InterviewConfig `koanf:"interview"`
	Remote    RemoteConfig    `koanf:"remote"`
	Storage   StorageConfig   `koanf:"storage"`
}

type InterviewConfig struct {
	// Role the candidate is interviewed for.
	Role string `koanf:"role"`

	// Topic narrows the question domain. Optional.
	Topic string `koanf:"topic"`

	// Sequence is the ordered difficulty schedule.
	Sequence []string `koanf:"sequence"`

	// BudgetsMs maps difficulty to the per-question time budget in
	// milliseconds.
	BudgetsMs map[string]int64 `koanf:"budgets_ms"`
}

type RemoteConfig struct {
	// BaseURL of the interview service. Empty disables remote push.
	BaseURL string `koanf:"base_url"`
}

type StorageConfig struct {
	// Path to the local sqlite database. Empty uses the default
	// data directory.
	Path string `koanf:"path"`
}

// Load reads the config file at path (or the default location when
// path is empty) and overlays CRISP_* environment variables. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// CRISP_REMOTE__BASE_URL maps to remote.base_url.
	if err := k.Load(env.Provider("CRISP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CRISP_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills unset fields from the built-in schedule.
func (c *Config) applyDefaults() {
	def := interview.DefaultSchedule()

	if c.Interview.Role == "" {
		c.Interview.Role = "Full Stack Developer"
	}
	if len(c.Interview.Sequence) == 0 {
		for _, d := range def.Sequence {
			c.Interview.Sequence = append(c.Interview.Sequence, string(d))
		}
	}
	if c.Interview.BudgetsMs == nil {
		c.Interview.BudgetsMs = make(map[string]int64)
	}
	for d, budget := range def.Budgets {
		if _, ok := c.Interview.BudgetsMs[string(d)]; !ok {
			c.Interview.BudgetsMs[string(d)] = budget.Milliseconds()
		}
	}
}

// Schedule converts the configured sequence and budgets into the
// engine's schedule form.
func (c *Config) Schedule() (interview.Schedule, error) {
	s := interview.Schedule{
		Budgets: make(map[interview.Difficulty]time.Duration),
	}

	for _, raw := range c.Interview.Sequence {
		d := interview.Difficulty(raw)
		if !d.Valid() {
			return interview.Schedule{}, fmt.Errorf("invalid difficulty in sequence: %q", raw)
		}
		s.Sequence = append(s.Sequence, d)
	}

	for raw, ms := range c.Interview.BudgetsMs {
		d := interview.Difficulty(raw)
		if !d.Valid() {
			return interview.Schedule{}, fmt.Errorf("invalid difficulty in budgets: %q", raw)
		}
		if ms <= 0 {
			return interview.Schedule{}, fmt.Errorf("budget for %s must be positive, got %d", raw, ms)
		}
		s.Budgets[d] = time.Duration(ms) * time.Millisecond
	}

	if err := s.Validate(); err != nil {
		return interview.Schedule{}, err
	}
	return s, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "crispterm", "config.yaml")
}
