package retry

import (
	"context"
	"time"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// Executor retries an operation while the classifier deems its failures
// transient, waiting per the backoff strategy between attempts. The
// connectors use it around session establishment; statement execution
// inside the compile pipeline is never retried, since a failed CREATE
// must surface as a routine failure.
//
// An Executor is safe for concurrent Execute calls. WithOnRetry returns
// a configured copy, so shared base executors stay immutable.
type Executor struct {
	classifier sprocc.ErrorClassifier
	strategy   sprocc.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier sprocc.ErrorClassifier,
	strategy sprocc.BackoffStrategy,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnRetry returns a copy of the executor that invokes callback
// before each retry wait. attempt is 0-based, err is the failure being
// retried and delay is the upcoming wait. The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation, retrying transient failures up to the
// strategy's attempt budget (negative budget retries without limit).
// Returns nil on the first success, the error of the first fatal
// failure, or the last transient error once the budget is exhausted.
// Context cancellation is honored between attempts and during waits.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}
	if !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}
		if err := wait(ctx, delay); err != nil {
			return err
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// wait blocks for the backoff delay or until ctx is done.
func wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
