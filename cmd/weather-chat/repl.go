package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// chatter is the agent surface the REPL drives.
type chatter interface {
	HandleInput(ctx context.Context, input string) error
}

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
	// NoColor prints the prompt without ANSI escapes.
	NoColor bool
}

// runREPL reads user lines until quit or EOF. A failed turn ends the session
// with that error.
func runREPL(ctx context.Context, app chatter, opts replOptions, in io.Reader, out io.Writer) error {
	if app == nil {
		return fmt.Errorf("agent is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", nil)

	promptColor := color.New(color.FgGreen, color.Bold)
	if opts.NoColor {
		promptColor.DisableColor()
	}

	scanner := bufio.NewScanner(in)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, promptColor.Sprint("user:"))
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" {
			return nil
		}

		if strings.HasPrefix(input, "/") {
			handled, shouldQuit := handleCommand(input, out)
			if shouldQuit {
				return nil
			}
			if handled {
				continue
			}
		}

		if err := app.HandleInput(ctx, input); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "=== Weather Chat ===")
	_, _ = fmt.Fprintln(out, "Ask about the weather, temperatures or what to wear. Type quit or /help.")
	_, _ = fmt.Fprintln(out)
}

func handleCommand(input string, out io.Writer) (bool, bool) {
	switch strings.ToLower(input) {
	case "/help", "/h":
		printHelp(out)
		return true, false
	case "/quit", "/exit", "/q":
		_, _ = fmt.Fprintln(out, "Goodbye!")
		return true, true
	default:
		_, _ = fmt.Fprintf(out, "Unknown command: %s. Type /help for available commands.\n\n", input)
		return true, false
	}
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /quit  - Exit the program")
	_, _ = fmt.Fprintln(out, "  /exit  - Exit the program")
	_, _ = fmt.Fprintln(out, "  quit   - Exit the program")
	_, _ = fmt.Fprintln(out)
}
