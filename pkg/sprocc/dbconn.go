package sprocc

import (
	"context"
	"strings"
)

// DBConn abstracts the database operations the compiler core needs:
// statement execution, row queries, single-scalar queries, and string
// escaping. It decouples the core from the concrete driver so tests can
// substitute a double that records statements and returns scripted rows.
//
// Thread-Safety: implementations follow their underlying connection's
// guarantees. The compiler itself issues calls strictly sequentially.
type DBConn interface {
	// Exec executes a statement without returning rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a query returning zero or more rows.
	// The caller must Close the returned Rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryScalar executes a query expected to return at most one row with
	// a single column. The second return value reports whether a row was
	// found; a missing row is not an error.
	QueryScalar(ctx context.Context, sql string, args ...any) (string, bool, error)

	// Escape escapes a string for safe embedding into statement text where
	// placeholder binding is unavailable (session settings, DDL).
	Escape(s string) string

	// Close releases the underlying connection resources.
	Close() error
}

// Rows is a minimal cursor over a query result set.
type Rows interface {
	// Next advances to the next row, returning false when exhausted.
	Next() bool

	// Scan reads the current row's values into dest.
	Scan(dest ...any) error

	// Err returns any error encountered during iteration.
	Err() error

	// Close releases the result set.
	Close() error
}

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM, etc.).
type Connector interface {
	// Connect establishes a connection to the database.
	// The returned connection should be closed by the caller when done.
	Connect(ctx context.Context) (DBConn, error)
}

// QuoteIdentifier quotes a MySQL identifier with backticks, doubling any
// embedded backtick.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
