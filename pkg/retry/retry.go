package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tumblrbackup/pkg/config"
	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/logger"
)

// Operation is a single attempt at some network call
type Operation func(ctx context.Context) error

// Policy describes how an Operation is retried
type Policy struct {
	// MaxAttempts counts the first try; 1 disables retry
	MaxAttempts int
	Backoff     BackoffStrategy
	RetryIf     func(error) bool
	OnRetry     func(attempt int, err error, delay time.Duration)
	Logger      logger.Logger
}

// SingleAttempt returns a policy that never retries
func SingleAttempt() *Policy {
	return &Policy{
		MaxAttempts: 1,
		Backoff:     &ConstantBackoff{},
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

// FromConfig builds a policy from the retry section of the config
func FromConfig(cfg config.RetryConfig, log logger.Logger) *Policy {
	if log == nil {
		log = logger.NewNopLogger()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Policy{
		MaxAttempts: attempts,
		Backoff: &ExponentialBackoff{
			BaseDelay:    cfg.BaseDelay,
			MaxDelay:     cfg.MaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: DefaultRetryIf,
		Logger:  log,
	}
}

// DefaultRetryIf retries typed errors whose type is retryable and never
// retries context errors.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errs.IsRetryable(errs.TypeOf(err))
}

// Do runs op until it succeeds, returns a non-retryable error, runs out
// of attempts, or ctx is cancelled. The last error is returned unwrapped
// so callers can still inspect its type.
func Do(ctx context.Context, p *Policy, op Operation) error {
	if p == nil {
		p = SingleAttempt()
	}
	log := p.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if attempt >= p.MaxAttempts || !retryIf(err) {
			if attempt > 1 {
				log.WarnWithFields("giving up after retries", map[string]interface{}{
					"attempts": attempt,
					"error":    err.Error(),
				})
			}
			return err
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff.NextDelay(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}

		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": p.MaxAttempts,
		})

		if werr := Wait(ctx, delay); werr != nil {
			return fmt.Errorf("retry cancelled: %w", werr)
		}
	}
}

// DoWithResult is Do for operations that produce a value
func DoWithResult[T any](ctx context.Context, p *Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, p, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
