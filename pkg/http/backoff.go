package http

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig configures the exponential backoff schedule used between
// retry attempts.
type BackoffConfig struct {
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Maximum delay cap
	Multiplier float64       // Exponential multiplier (typically 2.0)
	Jitter     time.Duration // Width of the uniform additive jitter, 0 disables
}

// DefaultBackoffConfig returns the standard schedule: 1s base, doubling
// per attempt, capped at 30s, with up to 1s of additive jitter.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     1 * time.Second,
	}
}

// CalculateBackoff returns the pre-jitter delay for a 0-indexed attempt:
// BaseDelay * Multiplier^attempt, capped at MaxDelay. Negative attempts
// are treated as attempt 0.
func CalculateBackoff(config BackoffConfig, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	multiplier := math.Pow(config.Multiplier, float64(attempt))
	delay := time.Duration(float64(config.BaseDelay) * multiplier)

	// Overflow or cap: large attempt numbers saturate at MaxDelay.
	if delay <= 0 || delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	return delay
}

// withJitter adds a uniform random duration in [0, Jitter) to the delay.
func withJitter(config BackoffConfig, delay time.Duration) time.Duration {
	if config.Jitter <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(config.Jitter))) //nolint:gosec // G404: math/rand is sufficient for jitter
}
