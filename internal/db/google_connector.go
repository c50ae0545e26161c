package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	cloudsqlmysql "cloud.google.com/go/cloudsqlconn/mysql/mysql"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// cloudSQLDriverName is the database/sql driver the Cloud SQL connector
// registers. Registration is process-global, hence the sync.Once.
const cloudSQLDriverName = "cloudsql-mysql"

var (
	cloudSQLRegisterOnce sync.Once
	cloudSQLCleanup      func() error
	cloudSQLRegisterErr  error
)

func registerCloudSQLDriver() error {
	cloudSQLRegisterOnce.Do(func() {
		cloudSQLCleanup, cloudSQLRegisterErr = cloudsqlmysql.RegisterDriver(
			cloudSQLDriverName, cloudsqlconn.WithIAMAuthN())
	})
	return cloudSQLRegisterErr
}

// GoogleCloudSQLConnector implements the Connector interface for Google
// Cloud SQL using IAM database authentication via the Cloud SQL Go
// Connector. The connector dials the instance by its connection name, so
// no host or port configuration is needed.
type GoogleCloudSQLConnector struct {
	config   *sprocc.ConnectionConfig
	instance string
	logger   sprocc.Logger
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM
// authentication. instance is the instance connection name in format:
// project:region:instance
// Panics if logger is nil.
func NewGoogleCloudSQLConnector(config *sprocc.ConnectionConfig, instance string, logger sprocc.Logger) *GoogleCloudSQLConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &GoogleCloudSQLConnector{
		config:   config,
		instance: instance,
		logger:   logger,
	}
}

// Connect opens a pinned session through the Cloud SQL dialer. The
// dialer handles authentication, TLS, and connection management.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (sprocc.DBConn, error) {
	if err := registerCloudSQLDriver(); err != nil {
		return nil, fmt.Errorf("failed to register Cloud SQL driver: %w", err)
	}
	c.logger.Verbose("Dialing Cloud SQL instance %s as %s", c.instance, c.config.Username)

	// IAM authentication supplies the password, so the DSN carries none.
	dsn := fmt.Sprintf("%s:empty@%s(%s)/%s?parseTime=false",
		c.config.Username, cloudSQLDriverName, c.instance, c.config.Database)

	db, err := sql.Open(cloudSQLDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Cloud SQL connection: %w", err)
	}

	configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSessionAdapter(ctx, db)
}
