package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhyannv/weather-chat-go/pkg/conversation"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
)

type scriptedSender struct {
	errs  []error
	calls int
}

func (s *scriptedSender) Send(context.Context, []conversation.Message, []functions.Spec) ([]conversation.Message, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return nil, s.errs[s.calls-1]
	}
	return []conversation.Message{conversation.Assistant("ok")}, nil
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestRetrying_GivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	next := &scriptedSender{errs: []error{boom, boom, boom, boom}}
	logger := &recordingLogger{}
	r := NewRetrying(next, RetryOptions{NewBackOff: zeroBackOff, Logger: logger})

	out, err := r.Send(context.Background(), nil, nil)
	assert.Nil(t, out)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 3, terr.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, []string{
		"WARN chat completion failed, retrying",
		"WARN chat completion failed, retrying",
	}, logger.messages)
}

func TestRetrying_SucceedsAfterTransientFailure(t *testing.T) {
	next := &scriptedSender{errs: []error{&StatusError{StatusCode: 502, Body: "bad gateway"}}}
	r := NewRetrying(next, RetryOptions{NewBackOff: zeroBackOff})

	out, err := r.Send(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []conversation.Message{conversation.Assistant("ok")}, out)
	assert.Equal(t, 2, next.calls)
}

func TestRetrying_CustomAttempts(t *testing.T) {
	boom := errors.New("boom")
	next := &scriptedSender{errs: []error{boom, boom, boom, boom, boom}}
	r := NewRetrying(next, RetryOptions{MaxAttempts: 1, NewBackOff: zeroBackOff})

	_, err := r.Send(context.Background(), nil, nil)
	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 1, terr.Attempts)
	assert.Equal(t, 1, next.calls)
}

func TestRetrying_StopsOnCancelledContext(t *testing.T) {
	boom := errors.New("boom")
	next := &scriptedSender{errs: []error{boom, boom, boom}}
	r := NewRetrying(next, RetryOptions{
		NewBackOff: func() backoff.BackOff { return backoff.NewConstantBackOff(time.Hour) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Send(ctx, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, next.calls)
}

func TestRandomExponential_Bounds(t *testing.T) {
	b := NewRandomExponential(time.Second, 40*time.Second)

	ceilings := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		40 * time.Second,
		40 * time.Second,
	}
	for round := 0; round < 20; round++ {
		b.Reset()
		for i, ceiling := range ceilings {
			wait := b.NextBackOff()
			assert.GreaterOrEqual(t, wait, time.Second, "retry %d", i+1)
			assert.LessOrEqual(t, wait, ceiling, "retry %d", i+1)
		}
	}
}

func TestRandomExponential_LargeRetryCountDoesNotOverflow(t *testing.T) {
	b := NewRandomExponential(time.Second, 40*time.Second)
	for i := 0; i < 200; i++ {
		wait := b.NextBackOff()
		require.GreaterOrEqual(t, wait, time.Second)
		require.LessOrEqual(t, wait, 40*time.Second)
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Attempts: 3, Err: &StatusError{StatusCode: 500, Body: "oops"}}
	assert.Equal(t, "chat completion failed after 3 attempt(s): chat completion failed with status 500: oops", err.Error())
}
