package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/sprocc/internal/retry"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// Pool configuration constants. The compile pipeline runs statements
// sequentially on one pinned session, so the pool stays tiny.
const (
	DefaultMaxConns        = 2
	DefaultMaxConnIdleTime = 10 * time.Minute
)

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(DefaultMaxConns)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(DefaultMaxConnIdleTime)
}

// newRetryExecutor builds the session-establishment retry executor with
// sprocc defaults, reporting each retry wait through logger.
func newRetryExecutor(logger sprocc.Logger) *retry.Executor {
	classifier := retry.NewMySQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(sprocc.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(sprocc.DefaultRetryInitialDelay),
		retry.WithMaxDelay(sprocc.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(classifier, strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("Connection attempt %d failed (%v), retrying in %s",
				attempt+1, err, delay.Round(time.Millisecond))
		})
}

// StandardConnector implements the Connector interface for standard
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *sprocc.ConnectionConfig
	logger        sprocc.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector with the given
// configuration. Retry behavior uses sprocc defaults:
// DefaultRetryMaxAttempts attempts, exponential backoff starting at
// DefaultRetryInitialDelay, max DefaultRetryMaxDelay.
// Panics if logger is nil.
func NewStandardConnector(config *sprocc.ConnectionConfig, logger sprocc.Logger) *StandardConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger),
	}
}

// Connect opens a database handle, pins a session and verifies it, with
// automatic retry on transient failures.
func (c *StandardConnector) Connect(ctx context.Context) (sprocc.DBConn, error) {
	var adapter *SessionAdapter
	dsn := BuildDSN(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		adapter, err = openSession(ctx, dsn)
		if err != nil {
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return adapter, nil
}

// openSession opens a pool on the DSN, verifies connectivity and pins
// one session.
func openSession(ctx context.Context, dsn string) (*SessionAdapter, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return NewSessionAdapter(ctx, db)
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod. Retry attempts and token
// diagnostics are reported through logger.
func NewConnector(config *sprocc.ConnectionConfig, logger sprocc.Logger) (sprocc.Connector, error) {
	switch config.AuthMethod {
	case sprocc.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case sprocc.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case sprocc.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case sprocc.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, sprocc.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw driver connection errors with actionable
// guidance and chains the ErrConnectionFailed sentinel for exit-code
// classification.
func wrapConnectionError(err error, host string, port int, database string) error {
	return fmt.Errorf("%w: %w", sprocc.ErrConnectionFailed, describeConnectionError(err, host, port, database))
}

func describeConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - MySQL is not running (check: mysqladmin -h %s -P %d ping)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, host, err)

	case strings.Contains(errStr, "access denied"):
		return fmt.Errorf(`access denied for database "%s"

Possible causes:
  - Wrong password (check $MYSQL_PWD or ~/.my.cnf)
  - Wrong username
  - User does not have access from this host

Original error: %w`, database, err)

	case strings.Contains(errStr, "unknown database"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  mysql -e "CREATE DATABASE %s"

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires TLS but the tls parameter is wrong
  - Certificate verification failed (try tls=skip-verify for diagnosis only)
  - Server was built without TLS support

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached on the server
  - Stale connections from previous runs

Check: SHOW PROCESSLIST;

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *sprocc.ConnectionConfig, logger sprocc.Logger) (sprocc.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *sprocc.ConnectionConfig, logger sprocc.Logger) (sprocc.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires google_instance in sprocc.yaml (project:region:instance)")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U)")
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// If explicit credentials (tenant, client, secret) are provided, uses Service Principal auth.
// Otherwise, falls back to DefaultAzureCredential chain.
func newAzureConnector(config *sprocc.ConnectionConfig, logger sprocc.Logger) (sprocc.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
