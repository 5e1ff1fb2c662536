package operations

import (
	"context"
	"math"
	"time"

	apperrors "museumreport/internal/errors"
)

// RetryPolicy decides whether a failed call is attempted again
type RetryPolicy struct {
	cfg RetryConfig
}

// NewRetryPolicy creates a policy. Fields left at zero take the defaults of
// NewRetryConfig.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	def := NewRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	return RetryPolicy{cfg: cfg}
}

// Config returns the effective configuration
func (p RetryPolicy) Config() RetryConfig {
	return p.cfg
}

// Decide is called after attempt number attempt (1-based) failed with err.
// It returns whether to try again and how long to wait first.
//
// Only retryable errors are retried: connection failures, timeouts and
// 5xx/429 responses. Not-found and cancellation fail immediately.
func (p RetryPolicy) Decide(attempt int, err error) (bool, time.Duration) {
	if err == nil || !apperrors.IsRetryable(err) {
		return false, 0
	}
	if attempt >= p.cfg.MaxAttempts {
		return false, 0
	}
	return true, p.Delay(attempt)
}

// Delay returns the wait after attempt failed: InitialDelay grown by
// Multiplier per attempt, capped at MaxDelay
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.cfg.InitialDelay) * math.Pow(p.cfg.Multiplier, float64(attempt-1))
	if delay > float64(p.cfg.MaxDelay) {
		return p.cfg.MaxDelay
	}
	return time.Duration(delay)
}

// RetryFunc is notified before each retry
type RetryFunc func(attempt int, delay time.Duration, err error)

// Do calls fn until it succeeds or Decide gives up, and returns the last
// error. Waiting between attempts stops when ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error, onRetry RetryFunc) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		retry, delay := p.Decide(attempt, err)
		if !retry {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
