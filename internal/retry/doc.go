// Package retry recovers from transient MySQL connection failures with
// classified errors and exponential backoff.
//
// The connectors wrap session establishment in an Executor: the
// MySQLErrorClassifier decides whether a failure is worth another
// attempt (server restarting, failover in progress, connection limits)
// or fatal (access denied, unknown database), and ExponentialBackoff
// spaces the attempts with jitter. Statement execution is never routed
// through this package; a failing routine source must fail its compile.
//
//	classifier := retry.NewMySQLErrorClassifier()
//	strategy := retry.NewExponentialBackoff(5)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return openSession(ctx)
//	})
//
// Executors are immutable once built. WithOnRetry returns a copy with a
// per-wait callback, which the connectors use to log retry attempts.
package retry
