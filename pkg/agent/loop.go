// Package agent runs the chat dispatch loop: it sends the conversation,
// resolves function calls depth-first and appends every turn.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	configpkg "github.com/minhyannv/weather-chat-go/pkg/config"
	"github.com/minhyannv/weather-chat-go/pkg/conversation"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
	"github.com/minhyannv/weather-chat-go/pkg/prompt"
	"github.com/minhyannv/weather-chat-go/pkg/transport"
)

// ErrTooManyFunctionCalls stops a turn whose model keeps requesting calls.
var ErrTooManyFunctionCalls = errors.New("too many function calls for one input")

// Functions is the registry surface the loop needs.
type Functions interface {
	Specs() []functions.Spec
	Lookup(name string) (functions.Spec, error)
	Call(ctx context.Context, name, arguments string) (string, error)
}

// Printer shows a message once it has been appended.
type Printer interface {
	Print(m conversation.Message)
}

type nopPrinter struct{}

func (nopPrinter) Print(conversation.Message) {}

// Agent holds the conversation for one process run.
type Agent struct {
	conv             *conversation.Conversation
	functions        Functions
	sender           transport.Sender
	printer          Printer
	logger           loggerpkg.Logger
	verbose          bool
	maxFunctionCalls int
}

// New seeds a conversation with the system prompt and returns an agent
// ready for input.
func New(cfg configpkg.Config, fns Functions, sender transport.Sender, opts ...AgentOption) (*Agent, error) {
	cfg = configpkg.Normalize(cfg)
	deps := agentDeps{
		logger:  loggerpkg.NopLogger{},
		printer: nopPrinter{},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if fns == nil {
		return nil, errors.New("function registry is required")
	}
	if sender == nil {
		return nil, errors.New("chat transport is required")
	}

	systemPrompt := prompt.BuildSystemPrompt(deps.now())
	conv, err := conversation.New(conversation.System(systemPrompt))
	if err != nil {
		return nil, err
	}
	loggerpkg.Debug(cfg.Verbose, deps.logger, "agent init", map[string]any{
		"model":              cfg.Model,
		"functions":          len(fns.Specs()),
		"max_function_calls": cfg.MaxFunctionCalls,
		"prompt_bytes":       len(systemPrompt),
	})

	return &Agent{
		conv:             conv,
		functions:        fns,
		sender:           sender,
		printer:          deps.printer,
		logger:           deps.logger,
		verbose:          cfg.Verbose,
		maxFunctionCalls: cfg.MaxFunctionCalls,
	}, nil
}

// History returns a copy of the conversation so far.
func (a *Agent) History() []conversation.Message {
	return a.conv.Messages()
}

// HandleInput appends input as a user turn and processes responses until no
// function call is pending. Transport failures, unknown functions and the
// per-input call limit end the turn with an error.
func (a *Agent) HandleInput(ctx context.Context, input string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.conv.Append(conversation.User(input)); err != nil {
		return err
	}

	pending, err := a.send(ctx)
	if err != nil {
		return err
	}

	calls := 0
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		if err := a.appendAndPrint(msg); err != nil {
			return err
		}
		if !msg.HasFunctionCall() {
			continue
		}

		calls++
		if calls > a.maxFunctionCalls {
			return fmt.Errorf("%w: limit is %d", ErrTooManyFunctionCalls, a.maxFunctionCalls)
		}
		result, err := a.invoke(ctx, *msg.FunctionCall)
		if err != nil {
			return err
		}
		if err := a.appendAndPrint(result); err != nil {
			return err
		}

		followUp, err := a.send(ctx)
		if err != nil {
			return err
		}
		// Only the first follow-up choice is kept, ahead of older candidates.
		pending = append([]conversation.Message{followUp[0]}, pending...)
	}
	return nil
}

func (a *Agent) send(ctx context.Context) ([]conversation.Message, error) {
	loggerpkg.Debugf(a.verbose, a.logger, "sending %d message(s)", a.conv.Len())
	out, err := a.sender.Send(ctx, a.conv.Messages(), a.functions.Specs())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, transport.ErrNoChoices
	}
	return out, nil
}

// invoke runs the requested function. Argument errors are reported back to
// the model as a result so it can correct itself.
func (a *Agent) invoke(ctx context.Context, call conversation.FunctionCall) (conversation.Message, error) {
	spec, err := a.functions.Lookup(call.Name)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("call %s: %w", call.Name, err)
	}
	if spec.Hidden {
		loggerpkg.Warn(a.logger, "model called an unadvertised function", map[string]any{
			"function": call.Name,
		})
	}

	out, err := a.functions.Call(ctx, call.Name, call.Arguments)
	if err == nil {
		return conversation.FunctionResult(call.Name, out), nil
	}
	if !functions.IsArgumentError(err) {
		return conversation.Message{}, fmt.Errorf("call %s: %w", call.Name, err)
	}

	loggerpkg.Warn(a.logger, "function arguments rejected", map[string]any{
		"function":  call.Name,
		"arguments": call.Arguments,
		"error":     err.Error(),
	})
	body, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		return conversation.Message{}, mErr
	}
	return conversation.FunctionResult(call.Name, string(body)), nil
}

func (a *Agent) appendAndPrint(m conversation.Message) error {
	if err := a.conv.Append(m); err != nil {
		return err
	}
	a.printer.Print(m)
	return nil
}
