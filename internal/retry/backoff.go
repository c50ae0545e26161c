package retry

import (
	"math"
	"math/rand"
	"time"
)

// Default backoff shape for MySQL session establishment. A compile run
// opens exactly one pinned session, so the schedule favors a quick first
// retry (a restarting mysqld typically accepts connections again within
// a few hundred milliseconds) while the cap keeps the total wait well
// under the compile timeout.
const (
	defaultInitialDelay = 100 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second
	defaultMultiplier   = 2.0
	defaultJitter       = 0.1
)

// ExponentialBackoff grows the wait between connection attempts by a
// fixed multiplier, capped at a maximum, and randomizes each wait by the
// jitter fraction so parallel CI jobs hitting the same server do not
// retry in lockstep.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64

	// maxAttempts counts retries after the initial attempt;
	// -1 retries without limit, 0 disables retries.
	maxAttempts int

	// jitter is the +/- fraction applied to each delay; 0 disables it.
	jitter float64

	// random yields values in [0, 1); tests pin it for exact delays.
	random func() float64
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initialDelay = d }
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.maxDelay = d }
}

// WithMultiplier sets the per-attempt growth factor.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.multiplier = m }
}

// WithJitter sets the +/- randomization fraction (0.0-1.0) applied to
// each delay. WithJitter(0) makes delays deterministic.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithRandom replaces the jitter randomness source. Tests use this to
// make jittered delays exact.
func WithRandom(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff creates a backoff schedule with the MySQL
// connection defaults, adjustable via options.
//
// Example:
//
//	strategy := retry.NewExponentialBackoff(5,
//	    retry.WithInitialDelay(200*time.Millisecond),
//	    retry.WithMaxDelay(time.Minute),
//	)
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		multiplier:   defaultMultiplier,
		maxAttempts:  maxAttempts,
		jitter:       defaultJitter,
		random:       rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns the wait before retry number attempt (0-based):
// initialDelay * multiplier^attempt, capped at maxDelay, then widened or
// narrowed by up to the jitter fraction.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 {
		// Map [0,1) to [-1,1) and scale by the jitter fraction.
		offset := (b.random() - 0.5) * 2.0
		delay *= 1.0 + b.jitter*offset
	}

	return time.Duration(delay)
}

// MaxAttempts returns the retry budget after the initial attempt.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}
