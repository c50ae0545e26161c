package manager_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/sprocc/internal/db/manager"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// mockDBConn is a test double for sprocc.DBConn.
type mockDBConn struct {
	execFunc        func(ctx context.Context, sql string, args ...any) error
	queryScalarFunc func(ctx context.Context, sql string, args ...any) (string, bool, error)

	executedSQL  []string
	executedArgs [][]any
}

func (m *mockDBConn) Exec(ctx context.Context, sql string, args ...any) error {
	m.executedSQL = append(m.executedSQL, sql)
	m.executedArgs = append(m.executedArgs, args)
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return nil
}

func (m *mockDBConn) Query(ctx context.Context, sql string, args ...any) (sprocc.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *mockDBConn) QueryScalar(ctx context.Context, sql string, args ...any) (string, bool, error) {
	m.executedSQL = append(m.executedSQL, sql)
	m.executedArgs = append(m.executedArgs, args)
	if m.queryScalarFunc != nil {
		return m.queryScalarFunc(ctx, sql, args...)
	}
	return "", false, nil
}

func (m *mockDBConn) Escape(s string) string { return s }
func (m *mockDBConn) Close() error           { return nil }

func TestManager_RoutineKind_Exists(t *testing.T) {
	mgr := manager.New()

	conn := &mockDBConn{
		queryScalarFunc: func(ctx context.Context, sql string, args ...any) (string, bool, error) {
			return "procedure", true, nil
		},
	}

	kind, ok, err := mgr.RoutineKind(context.Background(), conn, "app", "get_user")
	if err != nil {
		t.Fatalf("RoutineKind failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected routine to exist")
	}
	if kind != sprocc.KindProcedure {
		t.Errorf("Expected PROCEDURE, got %s", kind)
	}

	if len(conn.executedArgs) != 1 || conn.executedArgs[0][0] != "app" || conn.executedArgs[0][1] != "get_user" {
		t.Errorf("Unexpected query args: %v", conn.executedArgs)
	}
}

func TestManager_RoutineKind_Missing(t *testing.T) {
	mgr := manager.New()
	conn := &mockDBConn{}

	_, ok, err := mgr.RoutineKind(context.Background(), conn, "app", "missing")
	if err != nil {
		t.Fatalf("RoutineKind failed: %v", err)
	}
	if ok {
		t.Error("Expected routine to be missing")
	}
}

func TestManager_RoutineKind_QueryError(t *testing.T) {
	mgr := manager.New()

	expectedErr := errors.New("connection lost")
	conn := &mockDBConn{
		queryScalarFunc: func(ctx context.Context, sql string, args ...any) (string, bool, error) {
			return "", false, expectedErr
		},
	}

	_, _, err := mgr.RoutineKind(context.Background(), conn, "app", "get_user")
	if err == nil {
		t.Fatal("Expected error from query failure")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected wrapped error, got: %v", err)
	}
}

func TestManager_DropRoutine(t *testing.T) {
	mgr := manager.New()
	conn := &mockDBConn{}

	err := mgr.DropRoutine(context.Background(), conn, sprocc.KindFunction, "app", "score")
	if err != nil {
		t.Fatalf("DropRoutine failed: %v", err)
	}

	if len(conn.executedSQL) != 1 {
		t.Fatal("Expected one statement")
	}
	got := conn.executedSQL[0]
	if got != "DROP FUNCTION IF EXISTS `app`.`score`" {
		t.Errorf("Unexpected statement: %s", got)
	}
}

func TestManager_DropRoutine_QuotesSpecialCharacters(t *testing.T) {
	testCases := []struct {
		name    string
		routine string
	}{
		{"name with backtick", "my`routine"},
		{"name with semicolon", "my;routine"},
		{"name with spaces", "my routine"},
		{"injection attempt", "x`; DROP TABLE users; --"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mgr := manager.New()
			conn := &mockDBConn{}

			err := mgr.DropRoutine(context.Background(), conn, sprocc.KindProcedure, "app", tc.routine)
			if err != nil {
				t.Fatalf("DropRoutine failed: %v", err)
			}

			got := conn.executedSQL[0]
			// The raw name must never appear unquoted.
			if strings.Contains(got, tc.routine+";") || strings.HasSuffix(got, tc.routine) {
				t.Errorf("Routine name was not properly quoted: %s", got)
			}
			t.Logf("Sanitized SQL: %s", got)
		})
	}
}

func TestManager_DropRoutine_ExecError(t *testing.T) {
	mgr := manager.New()

	expectedErr := errors.New("access denied")
	conn := &mockDBConn{
		execFunc: func(ctx context.Context, sql string, args ...any) error {
			return expectedErr
		},
	}

	err := mgr.DropRoutine(context.Background(), conn, sprocc.KindProcedure, "app", "get_user")
	if err == nil {
		t.Fatal("Expected error from exec failure")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected wrapped error, got: %v", err)
	}
}

func TestManager_TableExists(t *testing.T) {
	mgr := manager.New()

	conn := &mockDBConn{
		queryScalarFunc: func(ctx context.Context, sql string, args ...any) (string, bool, error) {
			if args[1] == "staging" {
				return "1", true, nil
			}
			return "", false, nil
		},
	}

	exists, err := mgr.TableExists(context.Background(), conn, "app", "staging")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected table to exist")
	}

	exists, err = mgr.TableExists(context.Background(), conn, "app", "missing")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if exists {
		t.Error("Expected table to be missing")
	}
}
