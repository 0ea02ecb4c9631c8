package store

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/rcliao/recoengine/internal/core"
)

// RetryConfig controls the exponential backoff applied to transient
// StoreErrors, per spec §7: "3 attempts, base 100ms, cap 2s".
type RetryConfig struct {
	Attempts int
	Base     time.Duration
	Cap      time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, Base: 100 * time.Millisecond, Cap: 2 * time.Second}
}

// WithRetry runs fn, retrying with full-jitter exponential backoff only when
// fn fails with a transient core.StoreError. Permanent errors and non-store
// errors return immediately.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var se *core.StoreError
		if !errors.As(lastErr, &se) || !se.Transient {
			return lastErr
		}

		if attempt == cfg.Attempts-1 {
			break
		}

		backoff := time.Duration(math.Min(
			float64(cfg.Cap),
			float64(cfg.Base)*math.Pow(2, float64(attempt)),
		))
		jittered := time.Duration(rand.Int63n(int64(backoff) + 1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jittered):
		}
	}
	return lastErr
}
