package sprocc

import (
	"errors"
	"fmt"
	"time"
)

// CompileConfig contains all parameters needed for a batch compile run.
type CompileConfig struct {
	// SourcePath is the directory containing routine source files.
	SourcePath string

	// Extension is the source file extension convention; a file's routine
	// name is its base name minus this extension. Defaults to ".sql".
	Extension string

	// DatabaseName is the target schema the routines are created in.
	DatabaseName string

	// ConnectionString is the MySQL connection string (DSN or URI form).
	ConnectionString string

	// Placeholders is the replacement table for @NAME@ tokens, keyed by
	// uppercased placeholder name.
	Placeholders map[string]string

	// Session is the desired session triple. Empty members are filled
	// from the live server at session start.
	Session SessionSettings

	// StorePath is the BuildMetadata store location. Defaults to
	// DefaultStoreFileName inside SourcePath.
	StorePath string

	// Rebuild forces recompilation of every routine regardless of
	// staleness. Destructive (drops existing routines), so it requires
	// approval unless Force is set.
	Rebuild bool

	// Force bypasses interactive approval when used with Rebuild.
	Force bool

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (AuthMethodAzureEntraID).
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is the region used to sign IAM auth tokens (AuthMethodAWSIAM).
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name,
	// project:region:instance (AuthMethodGoogleIAM).
	GoogleInstance string
}

// Validate checks if the CompileConfig has all required fields and valid
// values. It returns a joined error if multiple validation failures occur.
func (c *CompileConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.Force && !c.Rebuild {
		errs = append(errs, fmt.Errorf("force flag requires rebuild to be enabled: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// TLSMode is the go-sql-driver tls parameter value:
	// "true", "false", "skip-verify" or "preferred".
	TLSMode string

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM authentication (Aurora/RDS MySQL).
	AWSRegion string

	// Google Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string

	// Azure Entra ID parameters. If all three are provided, Service
	// Principal authentication is used; otherwise the
	// DefaultAzureCredential chain applies.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard    AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                        // AWS IAM database authentication
	AuthMethodGoogleIAM                     // Google Cloud SQL IAM
	AuthMethodAzureEntraID                  // Azure Active Directory (Entra ID)
)

// String returns a human-readable representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// Warning is a non-fatal consistency finding emitted during compilation,
// typically a documentation/catalog mismatch. Warnings never affect the
// produced metadata or the routine's successful load.
type Warning struct {
	Routine   string
	Parameter string
	Message   string
}

func (w Warning) String() string {
	if w.Parameter != "" {
		return fmt.Sprintf("%s: parameter %q: %s", w.Routine, w.Parameter, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Routine, w.Message)
}
