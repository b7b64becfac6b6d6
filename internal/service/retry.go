package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Retrier re-runs a whole operation a fixed number of times with a constant pause between attempts.
type Retrier struct {
	maxAttempts int
	delay       time.Duration
	timer       backoff.Timer
}

type RetrierOption func(*Retrier)

// WithTimer replaces the wall-clock timer used between attempts.
func WithTimer(t backoff.Timer) RetrierOption {
	return func(r *Retrier) { r.timer = t }
}

func NewRetrier(maxAttempts int, delay time.Duration, opts ...RetrierOption) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	r := &Retrier{maxAttempts: maxAttempts, delay: delay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrier) MaxAttempts() int {
	return r.maxAttempts
}

// Do calls fn until it succeeds or the attempts are used up. The last error is returned wrapped.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.delay), uint64(r.maxAttempts-1)),
		ctx,
	)
	operation := func() error {
		attempt++
		return fn(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Int("maxAttempts", r.maxAttempts).Dur("retryIn", wait).Msg("Attempt failed, retrying")
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, r.timer); err != nil {
		log.Error().Err(err).Str("op", op).Int("attempts", attempt).Msg("Giving up")
		return fmt.Errorf("%s failed after %d attempt(s): %w", op, attempt, err)
	}
	return nil
}
