package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel            = "gpt-3.5-turbo-0613"
	DefaultDataDir          = "data"
	DefaultMaxAttempts      = 3
	DefaultMinBackoff       = time.Second
	DefaultMaxBackoff       = 40 * time.Second
	DefaultMaxFunctionCalls = 20
)

// Profile is the mock identity returned by the user lookup functions.
type Profile struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Email    string `yaml:"email"`
}

// Config holds all runtime configuration for the chat client.
type Config struct {
	Model            string
	DataDir          string
	MaxAttempts      int
	MinBackoff       time.Duration
	MaxBackoff       time.Duration
	MaxFunctionCalls int
	Verbose          bool
	Profile          Profile

	APIKey  string
	BaseURL string
}

// fileConfig mirrors the optional YAML config file. Pointer fields distinguish
// "unset" from zero values so the file only overrides what it names.
type fileConfig struct {
	Model            *string        `yaml:"model"`
	BaseURL          *string        `yaml:"base_url"`
	DataDir          *string        `yaml:"data_dir"`
	MaxAttempts      *int           `yaml:"max_attempts"`
	MinBackoff       *time.Duration `yaml:"min_backoff"`
	MaxBackoff       *time.Duration `yaml:"max_backoff"`
	MaxFunctionCalls *int           `yaml:"max_function_calls"`
	Profile          *Profile       `yaml:"profile"`
}

// DefaultProfile returns the built-in mock user.
func DefaultProfile() Profile {
	return Profile{
		Name:     "Peter",
		Location: "London",
		Email:    "pz@me.com",
	}
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Model:            DefaultModel,
		DataDir:          DefaultDataDir,
		MaxAttempts:      DefaultMaxAttempts,
		MinBackoff:       DefaultMinBackoff,
		MaxBackoff:       DefaultMaxBackoff,
		MaxFunctionCalls: DefaultMaxFunctionCalls,
		Profile:          DefaultProfile(),
	}
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Model != nil {
		cfg.Model = *fc.Model
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if fc.MaxAttempts != nil {
		cfg.MaxAttempts = *fc.MaxAttempts
	}
	if fc.MinBackoff != nil {
		cfg.MinBackoff = *fc.MinBackoff
	}
	if fc.MaxBackoff != nil {
		cfg.MaxBackoff = *fc.MaxBackoff
	}
	if fc.MaxFunctionCalls != nil {
		cfg.MaxFunctionCalls = *fc.MaxFunctionCalls
	}
	if fc.Profile != nil {
		if fc.Profile.Name != "" {
			cfg.Profile.Name = fc.Profile.Name
		}
		if fc.Profile.Location != "" {
			cfg.Profile.Location = fc.Profile.Location
		}
		if fc.Profile.Email != "" {
			cfg.Profile.Email = fc.Profile.Email
		}
	}
	return cfg, nil
}

// ParseDebug reports whether a DEBUG environment value enables debug logging.
func ParseDebug(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.MinBackoff < 0 {
		cfg.MinBackoff = 0
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.MaxFunctionCalls <= 0 {
		cfg.MaxFunctionCalls = 1
	}

	defaults := DefaultProfile()
	if strings.TrimSpace(cfg.Profile.Name) == "" {
		cfg.Profile.Name = defaults.Name
	}
	if strings.TrimSpace(cfg.Profile.Location) == "" {
		cfg.Profile.Location = defaults.Location
	}
	if strings.TrimSpace(cfg.Profile.Email) == "" {
		cfg.Profile.Email = defaults.Email
	}
	return cfg
}
