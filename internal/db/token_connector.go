package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/sprocc/internal/retry"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired from a TokenProvider and used as the password.
type TokenBasedConnector struct {
	config        *sprocc.ConnectionConfig
	tokenProvider TokenProvider
	logger        sprocc.Logger
	retryExecutor *retry.Executor
	providerName  string
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM", "Azure").
// Panics if logger is nil.
func NewTokenBasedConnector(config *sprocc.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger sprocc.Logger) *TokenBasedConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger),
		providerName:  providerName,
	}
}

// Connect acquires a token, uses it as the password and opens a pinned
// session, with automatic retry. A fresh token is acquired on every
// attempt so retries never reuse one close to expiry.
func (c *TokenBasedConnector) Connect(ctx context.Context) (sprocc.DBConn, error) {
	var adapter *SessionAdapter

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		if time.Until(expiresOn) < 5*time.Minute {
			c.logger.Warn("%s token expires in %v", c.providerName, time.Until(expiresOn).Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		adapter, err = openSession(ctx, BuildDSN(&configWithToken))
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
