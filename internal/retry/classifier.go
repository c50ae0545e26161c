package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers for transient conditions
// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlErrConRefused         = 1040 // ER_CON_COUNT_ERROR: too many connections
	mysqlErrHostBlocked        = 1129 // ER_HOST_IS_BLOCKED
	mysqlErrAborted            = 1152 // ER_ABORTING_CONNECTION
	mysqlErrNetReadError       = 1158 // ER_NET_READ_ERROR
	mysqlErrNetReadInterrupted = 1159 // ER_NET_READ_INTERRUPTED
	mysqlErrNetWriteError      = 1160 // ER_NET_ERROR_ON_WRITE
	mysqlErrTableLockWait      = 1205 // ER_LOCK_WAIT_TIMEOUT
	mysqlErrDeadlock           = 1213 // ER_LOCK_DEADLOCK
	mysqlErrQueryInterrupted   = 1317 // ER_QUERY_INTERRUPTED
	mysqlErrServerShutdown     = 1053 // ER_SERVER_SHUTDOWN
	mysqlErrNormalShutdown     = 1077 // ER_NORMAL_SHUTDOWN
	mysqlErrReadOnly           = 1290 // ER_OPTION_PREVENTS_STATEMENT (read-only during failover)
	mysqlErrTooManyUserConns   = 1203 // ER_TOO_MANY_USER_CONNECTIONS
)

// MySQLErrorClassifier implements ErrorClassifier for MySQL-specific errors.
type MySQLErrorClassifier struct{}

// NewMySQLErrorClassifier creates a new MySQL error classifier.
func NewMySQLErrorClassifier() *MySQLErrorClassifier {
	return &MySQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *MySQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Check for MySQL server errors
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return c.isTransientMySQLError(myErr)
	}

	// Driver-level connection loss
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	// Check for network-level errors
	if c.isNetworkError(err) {
		return true
	}

	// Check for connection errors
	if c.isConnectionError(err) {
		return true
	}

	return false
}

// isTransientMySQLError checks MySQL server error numbers for transient
// conditions.
func (c *MySQLErrorClassifier) isTransientMySQLError(myErr *mysql.MySQLError) bool {
	switch myErr.Number {
	case mysqlErrConRefused,
		mysqlErrTooManyUserConns,
		mysqlErrHostBlocked,
		mysqlErrAborted,
		mysqlErrNetReadError,
		mysqlErrNetReadInterrupted,
		mysqlErrNetWriteError,
		mysqlErrTableLockWait,
		mysqlErrDeadlock,
		mysqlErrQueryInterrupted,
		mysqlErrServerShutdown,
		mysqlErrNormalShutdown,
		mysqlErrReadOnly:
		return true
	}

	return false
}

// isNetworkError checks for network-level errors.
func (c *MySQLErrorClassifier) isNetworkError(err error) bool {
	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// Temporary DNS failures are retryable
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	// Network operation errors
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Temporary network errors are retryable
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}

		// Check underlying error
		if opErr.Err != nil {
			// Connection refused (server not ready)
			if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
				return true
			}

			// Connection reset by peer
			if errors.Is(opErr.Err, syscall.ECONNRESET) {
				return true
			}

			// Network unreachable
			if errors.Is(opErr.Err, syscall.ENETUNREACH) {
				return true
			}

			// Host unreachable
			if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
				return true
			}
		}
	}

	return false
}

// isConnectionError checks for connection-related errors by message.
func (c *MySQLErrorClassifier) isConnectionError(err error) bool {
	errMsg := err.Error()

	// Check for common connection error messages
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"invalid connection",
		"bad connection",
		"unexpected eof",
		"commands out of sync",
		"context deadline exceeded", // May be transient if external timeout
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(strings.ToLower(errMsg), pattern) {
			return true
		}
	}

	return false
}
