package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	configpkg "github.com/minhyannv/weather-chat-go/pkg/config"
)

// parseCLIConfig layers defaults, the optional YAML file, environment and
// explicitly set flags, in that order.
func parseCLIConfig(args []string, getenv func(string) string) (configpkg.Config, error) {
	defaults := configpkg.DefaultConfig()

	fs := flag.NewFlagSet("weather-chat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "Path to a YAML config file")
	model := fs.String("model", defaults.Model, "Chat model name")
	dataDir := fs.String("data_dir", defaults.DataDir, "Directory holding <location>.csv temperature tables")
	maxAttempts := fs.Int("max_attempts", defaults.MaxAttempts, "Total chat completion attempts per request")
	maxFunctionCalls := fs.Int("max_function_calls", defaults.MaxFunctionCalls, "Max function calls per user input")
	verbose := fs.Bool("verbose", defaults.Verbose, "Verbose debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return configpkg.Config{}, fmt.Errorf("usage: weather-chat [-config file] [-model name] [-data_dir dir] [-max_attempts n] [-max_function_calls n] [-verbose]")
		}
		return configpkg.Config{}, fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return configpkg.Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := defaults
	if path := strings.TrimSpace(*configPath); path != "" {
		var err error
		if cfg, err = configpkg.LoadFile(cfg, path); err != nil {
			return configpkg.Config{}, err
		}
	}

	cfg.APIKey = strings.TrimSpace(getenv("OPENAI_API_KEY"))
	if v := strings.TrimSpace(getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}
	cfg.Verbose = cfg.Verbose || configpkg.ParseDebug(getenv("DEBUG"))

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model = *model
		case "data_dir":
			cfg.DataDir = *dataDir
		case "max_attempts":
			cfg.MaxAttempts = *maxAttempts
		case "max_function_calls":
			cfg.MaxFunctionCalls = *maxFunctionCalls
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
	return cfg, nil
}
