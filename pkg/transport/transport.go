// Package transport sends a conversation to the chat completions endpoint
// and maps the returned choices back to conversation messages.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/minhyannv/weather-chat-go/pkg/conversation"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
)

// Sender performs one chat completion round trip.
type Sender interface {
	Send(ctx context.Context, messages []conversation.Message, specs []functions.Spec) ([]conversation.Message, error)
}

// ErrNoChoices is returned when a completion carries no candidate messages.
var ErrNoChoices = errors.New("completion returned no choices")

// StatusError is a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completion failed with status %d: %s", e.StatusCode, e.Body)
}

// Error reports a request that kept failing until retries ran out.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("chat completion failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
