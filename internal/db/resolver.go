package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/sprocc/internal/config"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// GranularConnFlags represents connection parameters from CLI flags.
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $MYSQL_PWD environment variable
//  2. Interactive prompt
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	TLSMode  string
}

// AzureFlags represents Azure Entra ID CLI flags.
// These override the corresponding AZURE_* environment variables.
// Note: Client secret is NOT included as a CLI flag for security reasons.
// Use AZURE_CLIENT_SECRET environment variable instead.
type AzureFlags struct {
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// IsEmpty returns true if no Azure flags were provided.
func (a *AzureFlags) IsEmpty() bool {
	return a == nil || (a.TenantID == "" && a.ClientID == "")
}

// IsEmpty returns true if no connection-related granular flags were provided
// by the user. The database flag is excluded because it can override the
// database named in a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.TLSMode == ""
}

// EnvVars represents MySQL client environment variables.
// See: https://dev.mysql.com/doc/refman/8.0/en/environment-variables.html
type EnvVars struct {
	MYSQL_HOST     string // MySQL server host
	MYSQL_TCP_PORT string // MySQL server port
	MYSQL_USER     string // MySQL username
	MYSQL_PWD      string // MySQL password (discouraged, prefer the prompt)
	MYSQL_DATABASE string // Default database name (container convention)
	DATABASE_URL   string // Full connection string (Heroku/Rails convention)

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string // Azure AD tenant/directory ID
	AZURE_CLIENT_ID     string // Azure AD application/client ID
	AZURE_CLIENT_SECRET string // Azure AD client secret (for Service Principal auth)
}

// LoadFromEnvironment loads MySQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		MYSQL_HOST:          os.Getenv("MYSQL_HOST"),
		MYSQL_TCP_PORT:      os.Getenv("MYSQL_TCP_PORT"),
		MYSQL_USER:          os.Getenv("MYSQL_USER"),
		MYSQL_PWD:           os.Getenv("MYSQL_PWD"),
		MYSQL_DATABASE:      os.Getenv("MYSQL_DATABASE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ResolveConnectionParams resolves connection parameters with this precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. Granular flags (--host, --port, --username, --database) - if any provided
//  3. Environment variables (MYSQL_HOST, MYSQL_TCP_PORT, etc.)
//  4. DATABASE_URL environment variable - fallback if no granular params
//  5. Project file (sprocc.yaml connection block)
//  6. Defaults (localhost:3306)
//
// Azure Entra ID Authentication:
// If azureFlags are provided OR Azure environment variables are set
// (AZURE_TENANT_ID, etc.), the AuthMethod is set to AzureEntraID and
// credentials are attached to the config. CLI flags take precedence over
// environment variables.
//
// Conflict Detection:
// Returns an error if BOTH --connection AND granular flags are provided.
// This prevents ambiguity and ensures clear user intent.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	azureFlags *AzureFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*sprocc.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	// Check for conflicts: connection string XOR granular flags
	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (--host, --port, --username)\n" +
				"Choose one approach:\n" +
				"  1. Connection string: --connection \"mysql://user@localhost:3306/app\"\n" +
				"  2. Granular flags: --host localhost --port 3306 --username myuser --database app\n" +
				"  3. Environment variables: export MYSQL_HOST=localhost MYSQL_TCP_PORT=3306 MYSQL_USER=myuser",
		)
	}

	var cfg *sprocc.ConnectionConfig
	var err error

	if connStringFlag != "" {
		cfg, err = resolveFromConnectionString(connStringFlag)
	} else if granularFlags.IsEmpty() && envVars.DATABASE_URL != "" {
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL)
	} else {
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	// A database flag overrides the one named in a connection string.
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	// Apply Azure Entra ID authentication if configured
	applyAzureAuth(cfg, azureFlags, envVars)

	return cfg, nil
}

// applyAzureAuth sets Azure Entra ID authentication on the config if
// credentials are available. CLI flags take precedence over environment
// variables.
func applyAzureAuth(cfg *sprocc.ConnectionConfig, flags *AzureFlags, env *EnvVars) {
	tenantID := flags.TenantID
	if tenantID == "" {
		tenantID = env.AZURE_TENANT_ID
	}

	clientID := flags.ClientID
	if clientID == "" {
		clientID = env.AZURE_CLIENT_ID
	}

	// Client secret only comes from env var (no flag for security)
	clientSecret := env.AZURE_CLIENT_SECRET

	if tenantID != "" || clientID != "" {
		cfg.AuthMethod = sprocc.AuthMethodAzureEntraID
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = clientSecret
	}
}

func resolveFromConnectionString(connStr string) (*sprocc.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	return cfg, nil
}

// resolveFromGranularParams builds ConnectionConfig from granular flags,
// environment variables and the project file.
//
// Precedence for each parameter:
//  1. CLI flag (highest priority)
//  2. Environment variable
//  3. sprocc.yaml connection block
//  4. Default value (lowest priority)
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*sprocc.ConnectionConfig, error) {
	cfg := &sprocc.ConnectionConfig{
		AuthMethod:       sprocc.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	// Host: flag > MYSQL_HOST > sprocc.yaml > default
	cfg.Host = flags.Host
	if cfg.Host == "" {
		cfg.Host = envVars.MYSQL_HOST
	}
	if cfg.Host == "" {
		cfg.Host = pc.Host
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}

	// Port: flag > MYSQL_TCP_PORT > sprocc.yaml > default
	if flags.Port != 0 {
		cfg.Port = flags.Port
	} else if envVars.MYSQL_TCP_PORT != "" {
		port, err := strconv.Atoi(envVars.MYSQL_TCP_PORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $MYSQL_TCP_PORT value '%s': must be an integer", envVars.MYSQL_TCP_PORT)
		}
		cfg.Port = port
	} else if pc.Port != 0 {
		cfg.Port = pc.Port
	} else {
		cfg.Port = sprocc.DefaultMySQLPort
	}

	// Username: flag > MYSQL_USER > sprocc.yaml > current OS user
	cfg.Username = flags.Username
	if cfg.Username == "" {
		cfg.Username = envVars.MYSQL_USER
	}
	if cfg.Username == "" {
		cfg.Username = pc.Username
	}
	if cfg.Username == "" {
		if currentUser := os.Getenv("USER"); currentUser != "" {
			cfg.Username = currentUser
		} else if currentUser := os.Getenv("USERNAME"); currentUser != "" {
			cfg.Username = currentUser
		}
	}

	cfg.Password = envVars.MYSQL_PWD

	// Database: flag > MYSQL_DATABASE > sprocc.yaml
	cfg.Database = flags.Database
	if cfg.Database == "" {
		cfg.Database = envVars.MYSQL_DATABASE
	}
	if cfg.Database == "" {
		cfg.Database = pc.Database
	}

	// TLSMode: flag > sprocc.yaml > driver default
	cfg.TLSMode = flags.TLSMode
	if cfg.TLSMode == "" {
		cfg.TLSMode = pc.TLSMode
	}

	return cfg, nil
}
