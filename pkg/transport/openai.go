package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/minhyannv/weather-chat-go/pkg/conversation"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// Options configures the OpenAI sender.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPClient overrides the SDK default, mainly for tests.
	HTTPClient *http.Client
	Logger     loggerpkg.Logger
	Verbose    bool
}

// OpenAI sends requests with the legacy functions API. It never retries on
// its own; wrap it with Retrying for that.
type OpenAI struct {
	client  openai.Client
	model   string
	logger  loggerpkg.Logger
	verbose bool
}

// NewOpenAI builds a sender from opts.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, errors.New("APIKey is not set")
	}
	if opts.Model == "" {
		return nil, errors.New("Model is not set")
	}
	logger := opts.Logger
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}
	return &OpenAI{
		client:  newOpenAIClient(opts),
		model:   opts.Model,
		logger:  logger,
		verbose: opts.Verbose,
	}, nil
}

func newOpenAIClient(opts Options) openai.Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return openai.NewClient(reqOpts...)
}

// Send posts the whole conversation and returns every choice as an assistant
// message.
func (o *OpenAI) Send(ctx context.Context, messages []conversation.Message, specs []functions.Spec) ([]conversation.Message, error) {
	params, err := buildParams(o.model, messages, specs)
	if err != nil {
		return nil, err
	}
	loggerpkg.Debug(o.verbose, o.logger, "sending chat completion", map[string]any{
		"model":     o.model,
		"messages":  len(messages),
		"functions": len(specs),
	})

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			body := apiErr.RawJSON()
			loggerpkg.Error(o.logger, "chat completion rejected", map[string]any{
				"status": apiErr.StatusCode,
				"body":   body,
			})
			return nil, &StatusError{StatusCode: apiErr.StatusCode, Body: body}
		}
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	out := make([]conversation.Message, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		out = append(out, fromCompletionMessage(choice.Message))
	}
	loggerpkg.Debug(o.verbose, o.logger, "chat completion received", map[string]any{
		"choices": len(out),
	})
	return out, nil
}

func buildParams(model string, messages []conversation.Message, specs []functions.Spec) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(0),
		TopP:        openai.Float(0),
	}
	for i, m := range messages {
		p, err := toMessageParam(m)
		if err != nil {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("message %d: %w", i, err)
		}
		params.Messages = append(params.Messages, p)
	}
	if len(specs) == 0 {
		return params, nil
	}
	for _, spec := range specs {
		fn := openai.ChatCompletionNewParamsFunction{
			Name:       string(spec.Name),
			Parameters: openai.FunctionParameters(spec.Parameters),
		}
		if spec.Description != "" {
			fn.Description = openai.String(spec.Description)
		}
		params.Functions = append(params.Functions, fn)
	}
	params.FunctionCall = openai.ChatCompletionNewParamsFunctionCallUnion{
		OfFunctionCallMode: openai.String("auto"),
	}
	return params, nil
}

func toMessageParam(m conversation.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case conversation.RoleSystem:
		return openai.SystemMessage(m.Content), nil
	case conversation.RoleUser:
		return openai.UserMessage(m.Content), nil
	case conversation.RoleAssistant:
		p := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			p.Content.OfString = openai.String(m.Content)
		}
		if m.FunctionCall != nil {
			p.FunctionCall = openai.ChatCompletionAssistantMessageParamFunctionCall{
				Name:      m.FunctionCall.Name,
				Arguments: m.FunctionCall.Arguments,
			}
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &p}, nil
	case conversation.RoleFunction:
		return openai.ChatCompletionMessageParamUnion{
			OfFunction: &openai.ChatCompletionFunctionMessageParam{
				Name:    m.Name,
				Content: openai.String(m.Content),
			},
		}, nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role %q", m.Role)
	}
}

func fromCompletionMessage(msg openai.ChatCompletionMessage) conversation.Message {
	out := conversation.Message{Role: conversation.RoleAssistant, Content: msg.Content}
	if msg.FunctionCall.Name != "" {
		out.FunctionCall = &conversation.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}
	return out
}
