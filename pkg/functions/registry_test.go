package functions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Info(msg string, _ any)  { r.messages = append(r.messages, "INFO "+msg) }
func (r *recordingLogger) Warn(msg string, _ any)  { r.messages = append(r.messages, "WARN "+msg) }
func (r *recordingLogger) Debug(msg string, _ any) { r.messages = append(r.messages, "DEBUG "+msg) }
func (r *recordingLogger) Error(msg string, _ any) { r.messages = append(r.messages, "ERROR "+msg) }

func echoHandler(_ context.Context, args json.RawMessage) (string, error) {
	return string(args), nil
}

func TestRegistry_RegisterAndCall(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{
		Name: "echo",
		Parameters: objectSchema(map[string]any{
			"text": map[string]any{"type": "string"},
		}, "text"),
	}, echoHandler))

	out, err := reg.Call(context.Background(), "echo", `{"text":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hi"}`, out)
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{Name: "echo"}, echoHandler))
	err := reg.Register(Spec{Name: "echo"}, echoHandler)
	assert.ErrorIs(t, err, ErrDuplicateFunction)
}

func TestRegistry_RejectsBrokenSchema(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Register(Spec{Name: "broken", Parameters: map[string]any{"type": 42}}, echoHandler)
	assert.Error(t, err)
}

func TestRegistry_UnknownFunction(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Call(context.Background(), "rm_rf", "{}")
	assert.ErrorIs(t, err, ErrUnknownFunction)

	_, err = reg.Lookup("rm_rf")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestRegistry_ArgumentValidation(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{
		Name: "echo",
		Parameters: objectSchema(map[string]any{
			"day": map[string]any{"type": "string", "format": "date"},
		}, "day"),
	}, echoHandler))

	cases := map[string]string{
		"malformed json":   `{"day":`,
		"missing required": `{}`,
		"wrong type":       `{"day": 3}`,
		"bad date format":  `{"day": "03/01/2024"}`,
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Call(context.Background(), "echo", args)
			require.Error(t, err)
			assert.True(t, IsArgumentError(err), "expected ArgumentError, got %T", err)
			var ae *ArgumentError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, "echo", ae.Function)
		})
	}
}

func TestRegistry_LooseFormats(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{
		Name:         "echo",
		LooseFormats: true,
		Parameters: objectSchema(map[string]any{
			"day": map[string]any{"type": "string", "format": "date"},
		}, "day"),
	}, echoHandler))

	out, err := reg.Call(context.Background(), "echo", `{"day":"tomorrow"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"day":"tomorrow"}`, out)

	_, err = reg.Call(context.Background(), "echo", `{"day":3}`)
	assert.True(t, IsArgumentError(err), "types are still enforced")
}

func TestRegistry_BlankArgumentsAreEmptyObject(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{Name: "noop", Parameters: objectSchema(map[string]any{})}, echoHandler))

	out, err := reg.Call(context.Background(), "noop", "   ")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestRegistry_HandlerArgumentErrorGetsFunctionName(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{Name: "strict"}, func(context.Context, json.RawMessage) (string, error) {
		return "", &ArgumentError{Reason: "nope"}
	}))

	_, err := reg.Call(context.Background(), "strict", "{}")
	var ae *ArgumentError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "strict", ae.Function)
	assert.Contains(t, err.Error(), "invalid arguments for strict")
}

func TestRegistry_CancelledContext(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Spec{Name: "echo"}, echoHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Call(ctx, "echo", "{}")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_LogsCallsAndResults(t *testing.T) {
	rec := &recordingLogger{}
	reg := NewRegistry(rec)
	require.NoError(t, reg.Register(Spec{Name: "echo"}, echoHandler))
	require.NoError(t, reg.Register(Spec{Name: "fail"}, func(context.Context, json.RawMessage) (string, error) {
		return "", errors.New("boom")
	}))

	_, err := reg.Call(context.Background(), "echo", "{}")
	require.NoError(t, err)
	_, err = reg.Call(context.Background(), "fail", "{}")
	require.Error(t, err)

	assert.Equal(t, []string{
		"INFO function called",
		"INFO function returned",
		"INFO function called",
		"WARN function failed",
	}, rec.messages)
}
