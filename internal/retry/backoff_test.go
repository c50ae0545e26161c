package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_GeometricGrowth(t *testing.T) {
	b := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Minute),
		WithJitter(0),
	)

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
	}
	for attempt, want := range expected {
		if got := b.NextDelay(attempt); got != want {
			t.Errorf("NextDelay(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestExponentialBackoff_CapsAtMaxDelay(t *testing.T) {
	b := NewExponentialBackoff(10,
		WithInitialDelay(time.Second),
		WithMaxDelay(5*time.Second),
		WithJitter(0),
	)

	// 1s, 2s, 4s, then pinned at the cap.
	if got := b.NextDelay(2); got != 4*time.Second {
		t.Errorf("NextDelay(2) = %v, want 4s", got)
	}
	for attempt := 3; attempt < 20; attempt++ {
		if got := b.NextDelay(attempt); got != 5*time.Second {
			t.Errorf("NextDelay(%d) = %v, want cap 5s", attempt, got)
		}
	}
}

func TestExponentialBackoff_NonDecreasingBelowCap(t *testing.T) {
	b := NewExponentialBackoff(8,
		WithInitialDelay(50*time.Millisecond),
		WithMaxDelay(30*time.Second),
		WithMultiplier(1.5),
		WithJitter(0),
	)

	prev := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		delay := b.NextDelay(attempt)
		if delay < prev {
			t.Fatalf("NextDelay(%d) = %v decreased from %v", attempt, delay, prev)
		}
		prev = delay
	}
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	newBackoff := func(random float64) *ExponentialBackoff {
		return NewExponentialBackoff(3,
			WithInitialDelay(time.Second),
			WithJitter(0.2),
			WithRandom(func() float64 { return random }),
		)
	}

	// Midpoint of the randomness range leaves the delay untouched.
	if got := newBackoff(0.5).NextDelay(0); got != time.Second {
		t.Errorf("NextDelay(0) at midpoint = %v, want 1s", got)
	}

	// Low extreme narrows the delay, high extreme widens it, and both
	// stay within the 20% jitter band.
	if got := newBackoff(0.0).NextDelay(0); got >= time.Second || got < 790*time.Millisecond {
		t.Errorf("NextDelay(0) at low extreme = %v, want in [790ms, 1s)", got)
	}
	if got := newBackoff(0.999).NextDelay(0); got <= time.Second || got > 1210*time.Millisecond {
		t.Errorf("NextDelay(0) at high extreme = %v, want in (1s, 1210ms]", got)
	}
}

func TestExponentialBackoff_RandomJitterStaysInRange(t *testing.T) {
	b := NewExponentialBackoff(3,
		WithInitialDelay(time.Second),
		WithJitter(0.1),
	)

	low := 899 * time.Millisecond
	high := 1101 * time.Millisecond
	for i := 0; i < 100; i++ {
		delay := b.NextDelay(0)
		if delay < low || delay > high {
			t.Fatalf("jittered delay %v outside [%v, %v]", delay, low, high)
		}
	}
}

func TestExponentialBackoff_Defaults(t *testing.T) {
	b := NewExponentialBackoff(5)

	if b.initialDelay != 100*time.Millisecond {
		t.Errorf("default initial delay = %v, want 100ms", b.initialDelay)
	}
	if b.maxDelay != 30*time.Second {
		t.Errorf("default max delay = %v, want 30s", b.maxDelay)
	}
	if b.multiplier != 2.0 {
		t.Errorf("default multiplier = %v, want 2.0", b.multiplier)
	}
	if b.jitter != 0.1 {
		t.Errorf("default jitter = %v, want 0.1", b.jitter)
	}
	if b.MaxAttempts() != 5 {
		t.Errorf("MaxAttempts() = %d, want 5", b.MaxAttempts())
	}
}

func TestExponentialBackoff_MaxAttemptsPassthrough(t *testing.T) {
	// -1 means unlimited, 0 means no retries; both flow through untouched
	// for the executor to interpret.
	for _, attempts := range []int{-1, 0, 1, 100} {
		b := NewExponentialBackoff(attempts)
		if got := b.MaxAttempts(); got != attempts {
			t.Errorf("MaxAttempts() = %d, want %d", got, attempts)
		}
	}
}
