package transport

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/minhyannv/weather-chat-go/pkg/conversation"
	"github.com/minhyannv/weather-chat-go/pkg/functions"
	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

const (
	DefaultMaxAttempts = 3
	DefaultMinWait     = time.Second
	DefaultMaxWait     = 40 * time.Second
)

// RetryOptions configures Retrying.
type RetryOptions struct {
	// MaxAttempts counts the first request too.
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	// NewBackOff replaces the random exponential schedule, mainly for tests.
	NewBackOff func() backoff.BackOff
	Logger     loggerpkg.Logger
}

// Retrying resends the whole request when the wrapped sender fails.
type Retrying struct {
	next        Sender
	maxAttempts int
	newBackOff  func() backoff.BackOff
	logger      loggerpkg.Logger
}

// NewRetrying wraps next. Zero options fall back to the package defaults.
func NewRetrying(next Sender, opts RetryOptions) *Retrying {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MinWait <= 0 {
		opts.MinWait = DefaultMinWait
	}
	if opts.MaxWait < opts.MinWait {
		opts.MaxWait = max(DefaultMaxWait, opts.MinWait)
	}
	if opts.NewBackOff == nil {
		minWait, maxWait := opts.MinWait, opts.MaxWait
		opts.NewBackOff = func() backoff.BackOff {
			return NewRandomExponential(minWait, maxWait)
		}
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	return &Retrying{
		next:        next,
		maxAttempts: opts.MaxAttempts,
		newBackOff:  opts.NewBackOff,
		logger:      opts.Logger,
	}
}

// Send retries next.Send until it succeeds, attempts run out, or ctx ends.
// Failures are always returned as *Error.
func (r *Retrying) Send(ctx context.Context, messages []conversation.Message, specs []functions.Spec) ([]conversation.Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := 0
	op := func() ([]conversation.Message, error) {
		attempts++
		return r.next.Send(ctx, messages, specs)
	}
	notify := func(err error, wait time.Duration) {
		loggerpkg.Warn(r.logger, "chat completion failed, retrying", map[string]any{
			"attempt": attempts,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)), ctx)
	out, err := backoff.RetryNotifyWithData(op, b, notify)
	if err != nil {
		return nil, &Error{Attempts: attempts, Err: err}
	}
	return out, nil
}

// RandomExponential waits a uniform random time in [min, high] where high
// doubles from min on every retry and is capped at max.
type RandomExponential struct {
	min, max time.Duration
	retry    int
	rand     *rand.Rand
}

var _ backoff.BackOff = (*RandomExponential)(nil)

// NewRandomExponential returns a schedule bounded by minWait and maxWait.
func NewRandomExponential(minWait, maxWait time.Duration) *RandomExponential {
	return &RandomExponential{
		min:  minWait,
		max:  maxWait,
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NextBackOff implements backoff.BackOff.
func (b *RandomExponential) NextBackOff() time.Duration {
	b.retry++
	high := b.ceiling(b.retry)
	if high <= b.min {
		return b.min
	}
	return b.min + time.Duration(b.rand.Int64N(int64(high-b.min)+1))
}

// Reset implements backoff.BackOff.
func (b *RandomExponential) Reset() { b.retry = 0 }

// ceiling is min·2^(retry-1) clamped to [min, max].
func (b *RandomExponential) ceiling(retry int) time.Duration {
	high := b.min
	for i := 1; i < retry; i++ {
		if high >= b.max/2 {
			return b.max
		}
		high *= 2
	}
	return min(max(high, b.min), b.max)
}
