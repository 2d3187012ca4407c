package client

import (
	"context"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxRetries   int           = 3
	DefaultInitialDelay time.Duration = 2 * time.Second
	DefaultMultiplier   float64       = 2
	DefaultMaxDelay     time.Duration = time.Minute
)

// RetryFilter reports whether a failed attempt should be retried
type RetryFilter func(err error) bool

// RetryConfig describes an exponential backoff: the delay before retry n
// is InitialDelay * Multiplier^(n-1), capped at MaxDelay. A nil Filter
// retries every failure, including client data errors.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Filter       RetryFilter

	// OnRetry is called before sleeping with the number of the upcoming
	// attempt, the error that triggered it and the delay
	OnRetry func(attempt int, err error, delay time.Duration)
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
		MaxDelay:     DefaultMaxDelay,
	}
}

// RetryAll retries every failure
func RetryAll(error) bool {
	return true
}

// RetryTransient only retries transport and service errors
func RetryTransient(err error) bool {
	return IsTransport(err) || IsService(err)
}

func (r *RetryConfig) Configure(envs map[string]string) error {
	if s, ok := envs["CLIENT_RETRY_MAX"]; ok && s != "" {
		i, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		r.MaxRetries = i
	}
	if s, ok := envs["CLIENT_RETRY_INITIAL_DELAY"]; ok && s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		r.InitialDelay = time.Duration(i) * time.Millisecond
	}
	if s, ok := envs["CLIENT_RETRY_MULTIPLIER"]; ok && s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		r.Multiplier = f
	}
	if s, ok := envs["CLIENT_RETRY_MAX_DELAY"]; ok && s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		r.MaxDelay = time.Duration(i) * time.Millisecond
	}
	if s, ok := envs["CLIENT_RETRY_TRANSIENT_ONLY"]; ok && s != "" {
		transientOnly, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		if transientOnly {
			r.Filter = RetryTransient
		}
	}
	return nil
}

func (r RetryConfig) maxTries() uint {
	if r.MaxRetries < 0 {
		return 1
	}
	return uint(r.MaxRetries) + 1
}

func (r RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     r.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          r.Multiplier,
		MaxInterval:         r.MaxDelay,
	}
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultInitialDelay
	}
	if b.Multiplier < 1 {
		b.Multiplier = DefaultMultiplier
	}
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = max(DefaultMaxDelay, b.InitialInterval)
	}
	return b
}

// withRetry runs fx until it succeeds or the configured tries are used up;
// the last error is returned unchanged
func withRetry[T any](ctx context.Context, c *client, operation string, config RetryConfig, fx func() (T, error)) (T, error) {
	var attempt int
	var lastErr error

	maxTries := config.maxTries()
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		result, err := fx()
		lastErr = err
		if err != nil && config.Filter != nil && !config.Filter(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	},
		backoff.WithBackOff(config.backOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			c.Warn(ctx, "%s: retrying (attempt %d of %d) in %v after error: %s",
				operation, attempt+1, maxTries, delay, err)
			c.metrics.retry(operation)
			if config.OnRetry != nil {
				config.OnRetry(attempt+1, err, delay)
			}
		}),
	)
	if permanent, ok := err.(*backoff.PermanentError); ok {
		err = permanent.Unwrap()
	}
	if err != nil && lastErr != nil && ctx.Err() != nil {
		//KIM: the context was cancelled while waiting, surface the last
		// classified error rather than the context error
		err = lastErr
	}
	return result, err
}
