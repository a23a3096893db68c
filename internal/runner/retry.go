package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for transport failures.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		JitterFraction: 0.25,
	}
}

// Retry wraps a Runner with automatic retry on transport failures. Command
// failures (the command ran and exited non-zero) are never retried; retry
// policy belongs to the transport, not to the VCS logic above it.
type Retry struct {
	inner  Runner
	config *RetryConfig
}

// NewRetry creates a Retry that wraps the given Runner.
func NewRetry(inner Runner, cfg *RetryConfig) *Retry {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return &Retry{inner: inner, config: cfg}
}

// isTransient returns true for errors that are worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransportError
	return errors.As(err, &te)
}

// backoff computes the delay for the given attempt with jitter.
func (r *Retry) backoff(attempt int) time.Duration {
	base := float64(r.config.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(r.config.MaxBackoff) {
		base = float64(r.config.MaxBackoff)
	}
	jitter := base * r.config.JitterFraction * (rand.Float64()*2 - 1) // +/- jitter
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the command, retrying transport failures with backoff.
func (r *Retry) Run(ctx context.Context, command string, opts Opts) (Result, error) {
	var res Result
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		res, lastErr = r.inner.Run(ctx, command, opts)
		if lastErr == nil {
			return res, nil
		}
		if !isTransient(lastErr) {
			return res, lastErr
		}
		if attempt < r.config.MaxRetries {
			if err := sleep(ctx, r.backoff(attempt)); err != nil {
				return res, fmt.Errorf("run: %w (retry cancelled)", lastErr)
			}
		}
	}
	return res, fmt.Errorf("run: %w (after %d retries)", lastErr, r.config.MaxRetries)
}
