package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// SessionAdapter adapts a dedicated *sql.Conn to the sprocc.DBConn
// interface. All statements run on the same underlying session, which
// keeps SET statements and temporary tables in effect across the run.
//
// Not safe for concurrent use; the compile pipeline is sequential.
type SessionAdapter struct {
	db   *sql.DB
	conn *sql.Conn
}

// NewSessionAdapter pins one connection from db and wraps it. The
// adapter owns both and releases them on Close.
func NewSessionAdapter(ctx context.Context, db *sql.DB) (*SessionAdapter, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SessionAdapter{db: db, conn: conn}, nil
}

// Exec executes a statement without returning any rows.
func (a *SessionAdapter) Exec(ctx context.Context, query string, args ...any) error {
	_, err := a.conn.ExecContext(ctx, query, args...)
	return err
}

// Query executes a query returning rows.
func (a *SessionAdapter) Query(ctx context.Context, query string, args ...any) (sprocc.Rows, error) {
	rows, err := a.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{rows: rows}, nil
}

// QueryScalar executes a query expected to return at most one row with
// one column. The second return value reports whether a row was found.
// NULL scans as the empty string.
func (a *SessionAdapter) QueryScalar(ctx context.Context, query string, args ...any) (string, bool, error) {
	var value sql.NullString
	err := a.conn.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value.String, true, nil
}

// Escape returns s with MySQL string-literal special characters
// backslash-escaped, for the rare statements that cannot take
// placeholder arguments (SET, DDL).
func (a *SessionAdapter) Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\'', '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0x1a:
			b.WriteString(`\Z`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Close releases the pinned session and closes the pool.
func (a *SessionAdapter) Close() error {
	connErr := a.conn.Close()
	if err := a.db.Close(); err != nil {
		return err
	}
	return connErr
}

// rowsAdapter adapts *sql.Rows to sprocc.Rows.
type rowsAdapter struct {
	rows *sql.Rows
}

func (r *rowsAdapter) Next() bool { return r.rows.Next() }

func (r *rowsAdapter) Scan(dest ...any) error { return r.rows.Scan(dest...) }

func (r *rowsAdapter) Err() error { return r.rows.Err() }

func (r *rowsAdapter) Close() error { return r.rows.Close() }

// Verify SessionAdapter implements DBConn at compile time
var _ sprocc.DBConn = (*SessionAdapter)(nil)
