package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

const (
	queryRoutineKind = `
		SELECT routine_type
		FROM information_schema.routines
		WHERE routine_schema = ? AND routine_name = ?
	`
	queryTableExists = `
		SELECT 1
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`
)

// Manager implements catalog lifecycle operations using the DBConn
// abstraction. Stateless; thread safety depends on the injected DBConn.
type Manager struct{}

// New creates a new Manager instance.
func New() *Manager {
	return &Manager{}
}

// RoutineKind looks up a routine in the catalog. The second return value
// reports whether the routine exists; when it does, the first carries
// its kind (PROCEDURE or FUNCTION).
func (m *Manager) RoutineKind(ctx context.Context, conn sprocc.DBConn, database, routine string) (sprocc.RoutineKind, bool, error) {
	kind, found, err := conn.QueryScalar(ctx, queryRoutineKind, database, routine)
	if err != nil {
		return "", false, fmt.Errorf("failed to check routine existence: %w", err)
	}
	if !found {
		return "", false, nil
	}
	return sprocc.RoutineKind(strings.ToUpper(kind)), true, nil
}

// DropRoutine drops the named routine. Dropping a routine that does not
// exist is not an error.
func (m *Manager) DropRoutine(ctx context.Context, conn sprocc.DBConn, kind sprocc.RoutineKind, database, routine string) error {
	stmt := fmt.Sprintf("DROP %s IF EXISTS %s.%s",
		kind, sprocc.QuoteIdentifier(database), sprocc.QuoteIdentifier(routine))
	if err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop %s %q: %w", strings.ToLower(string(kind)), routine, err)
	}
	return nil
}

// TableExists checks whether a base table exists in the given schema.
func (m *Manager) TableExists(ctx context.Context, conn sprocc.DBConn, database, table string) (bool, error) {
	_, found, err := conn.QueryScalar(ctx, queryTableExists, database, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return found, nil
}
