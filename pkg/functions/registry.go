// Package functions implements the local functions the model may call.
package functions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// Name identifies a registered function.
type Name string

const (
	GetToday               Name = "get_today"
	GetTemperature         Name = "get_temperature"
	GetCurrentWeather      Name = "get_current_weather"
	GetUserLocation        Name = "get_user_location"
	WhereAmI               Name = "where_am_i"
	GetUserInformation     Name = "get_user_information"
	GetDressForTemperature Name = "get_dress_for_temperature"
	SendEmail              Name = "send_email"
	Python                 Name = "python"
)

// Spec describes a function to the model.
type Spec struct {
	Name        Name
	Description string
	// Parameters is a JSON-schema object. Nil disables argument validation.
	Parameters map[string]any
	// Hidden functions are dispatchable but never advertised.
	Hidden bool
	// LooseFormats advertises "format" keywords without enforcing them.
	LooseFormats bool
}

// Handler computes a function result from its JSON argument text.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

type entry struct {
	spec    Spec
	handler Handler
	schema  *jsonschema.Schema
}

// Registry maps function names to specs and handlers.
type Registry struct {
	entries map[Name]*entry
	order   []Name
	logger  loggerpkg.Logger
}

// NewRegistry returns an empty registry. Handlers registered on it are
// wrapped with call/result logging.
func NewRegistry(logger loggerpkg.Logger) *Registry {
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}
	return &Registry{
		entries: make(map[Name]*entry),
		logger:  logger,
	}
}

// Register adds a function. The parameter schema is compiled up front so a
// broken schema fails at startup rather than on first call.
func (r *Registry) Register(spec Spec, handler Handler) error {
	if spec.Name == "" {
		return errors.New("function name is required")
	}
	if handler == nil {
		return fmt.Errorf("function %s: handler is required", spec.Name)
	}
	if _, ok := r.entries[spec.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, spec.Name)
	}

	schema, err := compileSchema(spec.Name, spec.Parameters, !spec.LooseFormats)
	if err != nil {
		return fmt.Errorf("function %s: compile schema: %w", spec.Name, err)
	}

	r.entries[spec.Name] = &entry{
		spec:    spec,
		handler: withLogging(r.logger, spec.Name, handler),
		schema:  schema,
	}
	r.order = append(r.order, spec.Name)
	return nil
}

// Specs returns the advertised specs in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		if e.spec.Hidden {
			continue
		}
		out = append(out, e.spec)
	}
	return out
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (Spec, error) {
	e, ok := r.entries[Name(name)]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return e.spec, nil
}

// Call validates arguments against the function's schema and runs its
// handler. Blank argument text is treated as an empty object.
func (r *Registry) Call(ctx context.Context, name, arguments string) (string, error) {
	e, ok := r.entries[Name(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw := strings.TrimSpace(arguments)
	if raw == "" {
		raw = "{}"
	}

	if e.schema != nil {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
		if err != nil {
			return "", &ArgumentError{Function: name, Reason: "arguments are not valid JSON", Err: err}
		}
		if err := e.schema.Validate(doc); err != nil {
			return "", &ArgumentError{Function: name, Reason: err.Error(), Err: err}
		}
	}

	out, err := e.handler(ctx, json.RawMessage(raw))
	if err != nil {
		var ae *ArgumentError
		if errors.As(err, &ae) && ae.Function == "" {
			ae.Function = name
		}
		return "", err
	}
	return out, nil
}

// typed adapts a handler taking decoded arguments of type T.
func typed[T any](fn func(ctx context.Context, args T) (string, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args T
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", &ArgumentError{Reason: "decode arguments: " + err.Error(), Err: err}
		}
		return fn(ctx, args)
	}
}

func withLogging(logger loggerpkg.Logger, name Name, next Handler) Handler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		loggerpkg.Info(logger, "function called", map[string]any{
			"function":  string(name),
			"arguments": string(args),
		})
		out, err := next(ctx, args)
		if err != nil {
			loggerpkg.Warn(logger, "function failed", map[string]any{
				"function": string(name),
				"error":    err.Error(),
			})
			return "", err
		}
		loggerpkg.Info(logger, "function returned", map[string]any{
			"function": string(name),
			"result":   out,
		})
		return out, nil
	}
}
