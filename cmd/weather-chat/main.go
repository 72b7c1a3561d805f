// Package main provides the interactive weather chat CLI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/minhyannv/weather-chat-go/pkg/agent"
	configpkg "github.com/minhyannv/weather-chat-go/pkg/config"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
	"github.com/minhyannv/weather-chat-go/pkg/render"
	"github.com/minhyannv/weather-chat-go/pkg/transport"
)

// main is the program entry point.
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := parseCLIConfig(os.Args[1:], os.Getenv)
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	if cfg.APIKey == "" {
		var readSecret func() ([]byte, error)
		if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
			readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
		}
		cfg.APIKey, err = readAPIKey(in, os.Stdout, readSecret)
		if err != nil {
			return err
		}
	}
	cfg = configpkg.Normalize(cfg)

	appLogger := loggerpkg.NewWriterLogger(os.Stderr, loggerpkg.Options{
		Debug:   cfg.Verbose,
		Session: uuid.NewString(),
	})

	registry, err := functions.NewDefault(functions.Options{
		DataDir: cfg.DataDir,
		Profile: functions.Profile(cfg.Profile),
		Logger:  appLogger,
	})
	if err != nil {
		return fmt.Errorf("build functions: %w", err)
	}

	sender, err := transport.NewOpenAI(transport.Options{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Logger:  appLogger,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	retrying := transport.NewRetrying(sender, transport.RetryOptions{
		MaxAttempts: cfg.MaxAttempts,
		MinWait:     cfg.MinBackoff,
		MaxWait:     cfg.MaxBackoff,
		Logger:      appLogger,
	})

	app, err := agent.New(cfg, registry, retrying,
		agent.WithLogger(appLogger),
		agent.WithPrinter(render.New(os.Stdout)),
	)
	if err != nil {
		return err
	}

	// The first interrupt cancels in-flight work; a second one kills the
	// process as usual.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	return runREPL(ctx, app, replOptions{
		Verbose: cfg.Verbose,
		Logger:  appLogger,
	}, in, os.Stdout)
}
