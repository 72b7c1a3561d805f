package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/minhyannv/weather-chat-go/pkg/conversation"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingLogger) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, level+" "+msg)
}

func (r *recordingLogger) Info(msg string, _ any)  { r.add("INFO", msg) }
func (r *recordingLogger) Warn(msg string, _ any)  { r.add("WARN", msg) }
func (r *recordingLogger) Debug(msg string, _ any) { r.add("DEBUG", msg) }
func (r *recordingLogger) Error(msg string, _ any) { r.add("ERROR", msg) }

type capturedRequest struct {
	Path string
	Auth string
	Body map[string]any
}

func newCompletionServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		requests = append(requests, capturedRequest{Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestSender(t *testing.T, srv *httptest.Server, logger *recordingLogger) *OpenAI {
	t.Helper()
	sender, err := NewOpenAI(Options{
		APIKey:     "sk-test",
		BaseURL:    srv.URL + "/v1/",
		Model:      "gpt-3.5-turbo-0613",
		HTTPClient: srv.Client(),
		Logger:     logger,
	})
	require.NoError(t, err)
	return sender
}

const functionCallResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo-0613",
  "choices": [
    {"index": 0, "finish_reason": "function_call", "message": {"role": "assistant", "content": null, "function_call": {"name": "get_today", "arguments": "{}"}}},
    {"index": 1, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hello there"}}
  ]
}`

func TestOpenAI_SendBuildsLegacyFunctionRequest(t *testing.T) {
	srv, requests := newCompletionServer(t, http.StatusOK, functionCallResponse)
	sender := newTestSender(t, srv, &recordingLogger{})

	msgs := []conversation.Message{
		conversation.System("be helpful"),
		conversation.User("what day is it?"),
		conversation.AssistantCall("get_today", "{}"),
		conversation.FunctionResult("get_today", "2024-03-05T14:07:09.123456Z"),
	}
	specs := []functions.Spec{{
		Name:        functions.GetToday,
		Description: "Gets the current date",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	}}

	out, err := sender.Send(context.Background(), msgs, specs)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.True(t, out[0].HasFunctionCall())
	assert.Equal(t, "get_today", out[0].FunctionCall.Name)
	assert.Equal(t, "{}", out[0].FunctionCall.Arguments)
	assert.Equal(t, conversation.Assistant("Hello there"), out[1])

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Auth)
	assert.Equal(t, "gpt-3.5-turbo-0613", req.Body["model"])
	assert.Equal(t, float64(0), req.Body["temperature"])
	assert.Equal(t, float64(0), req.Body["top_p"])
	assert.Equal(t, "auto", req.Body["function_call"])

	fns, ok := req.Body["functions"].([]any)
	require.True(t, ok)
	require.Len(t, fns, 1)
	fn := fns[0].(map[string]any)
	assert.Equal(t, "get_today", fn["name"])
	assert.Equal(t, "Gets the current date", fn["description"])

	sent, ok := req.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, sent, 4)
	roles := make([]string, 0, len(sent))
	for _, m := range sent {
		roles = append(roles, m.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"system", "user", "assistant", "function"}, roles)

	call := sent[2].(map[string]any)["function_call"].(map[string]any)
	assert.Equal(t, "get_today", call["name"])
	result := sent[3].(map[string]any)
	assert.Equal(t, "get_today", result["name"])
	assert.Equal(t, "2024-03-05T14:07:09.123456Z", result["content"])
}

func TestOpenAI_SendOmitsFunctionsWhenNoneAdvertised(t *testing.T) {
	srv, requests := newCompletionServer(t, http.StatusOK, functionCallResponse)
	sender := newTestSender(t, srv, &recordingLogger{})

	_, err := sender.Send(context.Background(), []conversation.Message{conversation.User("hi")}, nil)
	require.NoError(t, err)

	req := (*requests)[0]
	assert.NotContains(t, req.Body, "functions")
	assert.NotContains(t, req.Body, "function_call")
}

func TestOpenAI_SendStatusError(t *testing.T) {
	srv, requests := newCompletionServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`)
	logger := &recordingLogger{}
	sender := newTestSender(t, srv, logger)

	_, err := sender.Send(context.Background(), []conversation.Message{conversation.User("hi")}, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "boom")

	assert.Len(t, *requests, 1, "the SDK must not retry on its own")
	assert.Contains(t, logger.messages, "ERROR chat completion rejected")
}

func TestOpenAI_SendNoChoices(t *testing.T) {
	srv, _ := newCompletionServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	sender := newTestSender(t, srv, &recordingLogger{})

	_, err := sender.Send(context.Background(), []conversation.Message{conversation.User("hi")}, nil)
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAI_RejectsUnknownRole(t *testing.T) {
	srv, requests := newCompletionServer(t, http.StatusOK, functionCallResponse)
	sender := newTestSender(t, srv, &recordingLogger{})

	_, err := sender.Send(context.Background(), []conversation.Message{{Role: "tool", Content: "x"}}, nil)
	require.Error(t, err)
	assert.Empty(t, *requests)
}

func TestNewOpenAI_RequiresKeyAndModel(t *testing.T) {
	_, err := NewOpenAI(Options{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAI(Options{APIKey: "k"})
	assert.Error(t, err)
}
