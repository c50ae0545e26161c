package sprocc

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Compilation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or placeholders
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied rebuild approval
	ExitCompileFailed   = 13 // One or more routines failed to compile
	ExitSourceMissing   = 14 // Source directory missing or empty
)

const (
	// DefaultExtension is the source file extension convention; a file's
	// routine name is its base name minus this extension.
	DefaultExtension = ".sql"

	// DefaultStoreFileName is the BuildMetadata store file created inside
	// the source directory when no explicit store path is configured.
	DefaultStoreFileName = "sprocc.lock.yaml"

	// DefaultForceApprovalCountdown is the countdown duration before a
	// forced rebuild approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the
	// first connection retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry
	// attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry
	// attempts.
	DefaultRetryMaxAttempts = 3

	// MaxErrorPreviewLength is the maximum number of characters shown in
	// error messages when previewing failed SQL statements.
	MaxErrorPreviewLength = 200

	// DefaultMySQLPort is the standard MySQL server port.
	DefaultMySQLPort = 3306
)

// Reserved placeholder names resolved from compile context rather than
// caller configuration. They are substituted while building the create
// statement and never recorded in BuildMetadata.
const (
	MagicFile = "__FILE__" // absolute source file path
	MagicName = "__NAME__" // routine name
	MagicDir  = "__DIR__"  // absolute containing directory
	MagicLine = "__LINE__" // current line number, re-bound per line
)

// IsMagicPlaceholder reports whether name (uppercased placeholder name)
// is one of the reserved compile-context tokens.
func IsMagicPlaceholder(name string) bool {
	switch name {
	case MagicFile, MagicName, MagicDir, MagicLine:
		return true
	}
	return false
}

