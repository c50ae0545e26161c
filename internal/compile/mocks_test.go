package compile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// fakeRows replays scripted row values through the sprocc.Rows cursor.
type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *sql.NullString:
			if v == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: v.(string), Valid: true}
			}
		case *sql.NullInt64:
			if v == nil {
				*d = sql.NullInt64{}
			} else {
				*d = sql.NullInt64{Int64: v.(int64), Valid: true}
			}
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

// paramRow builds one information_schema.parameters row.
func paramRow(name, mode string, ordinal int, dataType string, precision, scale any, charset, collation any) []any {
	toInt64 := func(v any) any {
		if v == nil {
			return nil
		}
		return int64(v.(int))
	}
	return []any{name, mode, ordinal, dataType, toInt64(precision), toInt64(scale), charset, collation}
}

// fakeDBConn serves every query shape the pipeline issues, keyed by
// statement content, and records executed statements.
type fakeDBConn struct {
	// routineKinds maps routine name to its catalog routine_type; absent
	// routines are reported as missing. Routines become visible after
	// their create statement executes, like the real catalog.
	routineKinds map[string]string

	// parameterRows maps routine name to scripted parameter rows.
	parameterRows map[string][][]any

	// columnRows are SHOW COLUMNS rows for bulk-insert introspection.
	columnRows [][]any

	// tableExists reports bulk-insert target tables present in the
	// catalog.
	tableExists map[string]bool

	session []string

	execErrFor string

	executed []string
	closed   bool
}

func newFakeDBConn() *fakeDBConn {
	return &fakeDBConn{
		routineKinds:  make(map[string]string),
		parameterRows: make(map[string][][]any),
		tableExists:   make(map[string]bool),
		session:       []string{"STRICT_TRANS_TABLES", "utf8mb4", "utf8mb4_general_ci"},
	}
}

func (c *fakeDBConn) Exec(ctx context.Context, stmt string, args ...any) error {
	c.executed = append(c.executed, stmt)
	if c.execErrFor != "" && strings.Contains(stmt, c.execErrFor) {
		return fmt.Errorf("scripted failure for %q", c.execErrFor)
	}

	lower := strings.ToLower(stmt)
	if strings.HasPrefix(lower, "create procedure") || strings.Contains(lower, "\ncreate procedure") {
		c.registerCreated(stmt, "PROCEDURE")
	} else if strings.HasPrefix(lower, "create function") || strings.Contains(lower, "\ncreate function") {
		c.registerCreated(stmt, "FUNCTION")
	}
	return nil
}

// registerCreated makes a created routine visible to later catalog
// queries within the same fake session.
func (c *fakeDBConn) registerCreated(stmt, kind string) {
	fields := strings.Fields(stmt)
	for i, f := range fields {
		if strings.EqualFold(f, "procedure") || strings.EqualFold(f, "function") {
			if i+1 < len(fields) {
				name := fields[i+1]
				if j := strings.IndexByte(name, '('); j != -1 {
					name = name[:j]
				}
				c.routineKinds[strings.Trim(name, "`")] = kind
			}
			return
		}
	}
}

func (c *fakeDBConn) Query(ctx context.Context, stmt string, args ...any) (sprocc.Rows, error) {
	switch {
	case strings.Contains(stmt, "information_schema.parameters"):
		routine := args[1].(string)
		return &fakeRows{rows: c.parameterRows[routine]}, nil
	case strings.Contains(stmt, "@@sql_mode"):
		return &fakeRows{rows: [][]any{{c.session[0], c.session[1], c.session[2]}}}, nil
	case strings.Contains(stmt, "SHOW COLUMNS"):
		return &fakeRows{rows: c.columnRows}, nil
	}
	return &fakeRows{}, nil
}

func (c *fakeDBConn) QueryScalar(ctx context.Context, stmt string, args ...any) (string, bool, error) {
	switch {
	case strings.Contains(stmt, "information_schema.routines"):
		kind, ok := c.routineKinds[args[1].(string)]
		return kind, ok, nil
	case strings.Contains(stmt, "information_schema.tables"):
		if c.tableExists[args[1].(string)] {
			return "1", true, nil
		}
		return "", false, nil
	}
	return "", false, nil
}

func (c *fakeDBConn) Escape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func (c *fakeDBConn) Close() error {
	c.closed = true
	return nil
}

// fakeConnector hands out a prepared fake connection.
type fakeConnector struct {
	conn *fakeDBConn
	err  error
}

func (f *fakeConnector) Connect(ctx context.Context) (sprocc.DBConn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

// fakeApprover records approval requests and returns a scripted answer.
type fakeApprover struct {
	approve   bool
	err       error
	requested []string
}

func (f *fakeApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	f.requested = append(f.requested, dbName)
	return f.approve, f.err
}
