// Package retry provides bounded retry helpers for remote operations.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	Attempts    int
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Do executes the operation up to Attempts times, sleeping Interval between
// attempts. The default multiplier of 1.0 keeps a fixed cadence; a larger
// multiplier grows the interval up to MaxInterval. Context cancellation is
// honored between attempts.
//
// Errors wrapped with Fatal() abort immediately.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	cfg := &Config{
		Attempts:    5,
		Interval:    1 * time.Second,
		MaxInterval: 30 * time.Second,
		Multiplier:  1.0,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	interval := cfg.Interval
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}

		if attempt < cfg.Attempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled after %d attempt(s): %w", attempt, ctx.Err())
			case <-time.After(interval):
				interval = time.Duration(float64(interval) * cfg.Multiplier)
				if interval > cfg.MaxInterval {
					interval = cfg.MaxInterval
				}
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempt(s): %w", cfg.Attempts, lastErr)
}

// WithAttempts sets the total number of attempts.
func WithAttempts(n int) Option {
	return func(c *Config) {
		c.Attempts = n
	}
}

// WithInterval sets the delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxInterval sets the maximum delay between attempts.
func WithMaxInterval(d time.Duration) Option {
	return func(c *Config) {
		c.MaxInterval = d
	}
}

// WithMultiplier sets the interval growth factor.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
