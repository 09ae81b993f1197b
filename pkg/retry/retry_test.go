package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tumblrbackup/pkg/config"
	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/logger"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{9, time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 140*time.Millisecond)
		assert.LessOrEqual(t, d, 260*time.Millisecond)
	}
}

func fastPolicy(attempts int, log logger.Logger) *Policy {
	return &Policy{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{},
		Logger:      log,
	}
}

func TestDoSingleAttemptByDefault(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, func(ctx context.Context) error {
		calls++
		return errs.New(errs.ErrorTypeServerError, 503, "unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errs.Is(err, errs.ErrorTypeServerError))
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	log := logger.NewTestLogger()
	calls := 0

	err := Do(context.Background(), fastPolicy(3, log), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, 0, "connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2)
	assert.True(t, log.HasMessage("operation succeeded after retry"))
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5, nil), func(ctx context.Context) error {
		calls++
		return errs.New(errs.ErrorTypeNotFound, 404, "gone")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errs.Is(err, errs.ErrorTypeNotFound))
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2, nil), func(ctx context.Context) error {
		calls++
		return errs.New(errs.ErrorTypeRateLimit, 429, "slow down")
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, errs.ErrorTypeRateLimit, errs.TypeOf(err))
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Policy{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Hour},
		OnRetry:     func(int, error, time.Duration) { cancel() },
	}

	err := Do(ctx, p, func(ctx context.Context) error {
		return errs.New(errs.ErrorTypeNetwork, 0, "timeout")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastPolicy(2, nil), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errs.New(errs.ErrorTypeServerError, 500, "boom")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errors.New("plain")))
	assert.True(t, DefaultRetryIf(errs.Wrap(errs.ErrorTypeNetwork, errors.New("eof"), "read body")))
	assert.False(t, DefaultRetryIf(errs.PostShape("slug", "missing photo-url")))
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{MaxAttempts: 0, BaseDelay: time.Second, MaxDelay: 5 * time.Second}, nil)
	assert.Equal(t, 1, p.MaxAttempts)
	assert.NotNil(t, p.Logger)

	p = FromConfig(config.RetryConfig{MaxAttempts: 4, BaseDelay: time.Second}, nil)
	assert.Equal(t, 4, p.MaxAttempts)
}
