// Package retry computes the backoff schedule of a delivery retry chain.
package retry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Strategy defines how many times a delivery is attempted and how long to wait in between.
//
// The delay after a failed attempt n follows: delay = min(BaseDelay * ExponentialBase^(n-1), MaxDelay)
//
// Example with defaults (3 retries, 5s base, 2.0 exponential, 1h max):
//
//	Attempt 1 fails: retry after 5s
//	Attempt 2 fails: retry after 10s
//	Attempt 3 fails: retry after 20s
//	Attempt 4 fails: terminal
type Strategy struct {
	MaxRetries      int           // Retries after the first attempt
	BaseDelay       time.Duration // Delay after the first failed attempt
	MaxDelay        time.Duration // Upper bound for any single delay
	ExponentialBase float64       // Backoff multiplier
}

// DefaultStrategy returns the default delivery retry strategy
func DefaultStrategy() Strategy {
	return Strategy{
		MaxRetries:      3,
		BaseDelay:       5 * time.Second,
		MaxDelay:        time.Hour,
		ExponentialBase: 2.0,
	}
}

// MaxAttempts is the total number of attempts of a chain, first one included
func (s Strategy) MaxAttempts() int {
	if s.MaxRetries < 0 {
		return 1
	}
	return s.MaxRetries + 1
}

// ShouldRetry reports whether a failed attempt may be followed by another one
func (s Strategy) ShouldRetry(attempt int) bool {
	return attempt < s.MaxAttempts()
}

// Delay returns how long to wait after the given failed attempt (1-based)
func (s Strategy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := s.ExponentialBase
	if base < 1 {
		base = 2.0
	}

	delay := float64(s.BaseDelay) * math.Pow(base, float64(attempt-1))
	if s.MaxDelay > 0 && delay > float64(s.MaxDelay) {
		return s.MaxDelay
	}
	return time.Duration(delay)
}

// Validate checks the strategy parameters
func (s Strategy) Validate() error {
	if s.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", s.MaxRetries)
	}
	if s.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive: %s", s.BaseDelay)
	}
	if s.MaxDelay > 0 && s.MaxDelay < s.BaseDelay {
		return fmt.Errorf("max delay %s is shorter than base delay %s", s.MaxDelay, s.BaseDelay)
	}
	return nil
}

// Schedule returns the delays between consecutive attempts of a chain
func (s Strategy) Schedule() []time.Duration {
	delays := make([]time.Duration, 0, s.MaxAttempts()-1)
	for attempt := 1; s.ShouldRetry(attempt); attempt++ {
		delays = append(delays, s.Delay(attempt))
	}
	return delays
}

// String returns a human-readable description of the retry schedule
func (s Strategy) String() string {
	var b strings.Builder
	b.WriteString("retry schedule:")
	for i, d := range s.Schedule() {
		fmt.Fprintf(&b, " attempt %d +%s ->", i+2, d)
	}
	b.WriteString(" terminal")
	return b.String()
}
