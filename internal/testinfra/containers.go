// Package testinfra provides MySQL containers and TLS material for
// integration tests.
package testinfra

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MySQLImage    = "mysql:8.0"
	MySQLUser     = "sprocc"
	MySQLPassword = "sprocc"
	MySQLDatabase = "sprocc_test"

	containerCertDir = "/etc/mysql/certs"
)

type MySQLContainer struct {
	*mysql.MySQLContainer
	DSN string
}

// StartMySQL starts a plain MySQL container and returns a go-sql-driver
// DSN for its configured database.
func StartMySQL(ctx context.Context) (*MySQLContainer, error) {
	ctr, err := mysql.Run(ctx,
		MySQLImage,
		mysql.WithUsername(MySQLUser),
		mysql.WithPassword(MySQLPassword),
		mysql.WithDatabase(MySQLDatabase),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start mysql: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "parseTime=true", "multiStatements=true")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &MySQLContainer{MySQLContainer: ctr, DSN: dsn}, nil
}

// StartTLSMySQL starts a MySQL container that only accepts TLS
// connections, using the server certificate from certPaths. Returns a
// DSN whose tls parameter names a config registered for the bundle's CA.
func StartTLSMySQL(ctx context.Context, certPaths *CertPaths) (*MySQLContainer, error) {
	confPath, err := writeTLSConfigFile(filepath.Dir(certPaths.CACert))
	if err != nil {
		return nil, err
	}

	ctr, err := mysql.Run(ctx,
		MySQLImage,
		mysql.WithUsername(MySQLUser),
		mysql.WithPassword(MySQLPassword),
		mysql.WithDatabase(MySQLDatabase),
		mysql.WithConfigFile(confPath),
		testcontainers.WithFiles(
			certFile(certPaths.CACert, "ca.pem", 0o644),
			certFile(certPaths.ServerCert, "server-cert.pem", 0o644),
			certFile(certPaths.ServerKey, "server-key.pem", 0o600),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start TLS mysql: %w", err)
	}

	tlsName, err := RegisterClientTLS(certPaths)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	dsn, err := ctr.ConnectionString(ctx, "parseTime=true", "tls="+tlsName)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &MySQLContainer{MySQLContainer: ctr, DSN: dsn}, nil
}

// RegisterClientTLS registers a driver TLS config trusting the bundle's
// CA and returns the name to pass as the DSN tls parameter. The server
// certificate carries localhost and 127.0.0.1 SANs, which covers the
// mapped container address the driver verifies against.
func RegisterClientTLS(certPaths *CertPaths) (string, error) {
	caPEM, err := os.ReadFile(certPaths.CACert)
	if err != nil {
		return "", fmt.Errorf("read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return "", fmt.Errorf("invalid CA certificate %s", certPaths.CACert)
	}

	name := "sprocc-testinfra"
	err = mysqldriver.RegisterTLSConfig(name, &tls.Config{
		RootCAs: pool,
	})
	if err != nil {
		return "", fmt.Errorf("register TLS config: %w", err)
	}
	return name, nil
}

func certFile(hostPath, name string, mode int64) testcontainers.ContainerFile {
	return testcontainers.ContainerFile{
		HostFilePath:      hostPath,
		ContainerFilePath: containerCertDir + "/" + name,
		FileMode:          mode,
	}
}

func writeTLSConfigFile(dir string) (string, error) {
	conf := fmt.Sprintf(`[mysqld]
ssl-ca=%s/ca.pem
ssl-cert=%s/server-cert.pem
ssl-key=%s/server-key.pem
require_secure_transport=ON
`, containerCertDir, containerCertDir, containerCertDir)

	path := filepath.Join(dir, "tls.cnf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		return "", fmt.Errorf("write tls.cnf: %w", err)
	}
	return path, nil
}
