// Package loader writes a routine into the database: it substitutes
// placeholders and compile-context tokens into the source, drops any
// pre-existing routine of the same name, applies the session settings and
// submits the create statement.
package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/sprocc/internal/annotate"
	"github.com/vvka-141/sprocc/internal/db/manager"
	"github.com/vvka-141/sprocc/internal/source"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

const querySessionDefaults = `SELECT @@sql_mode, @@character_set_client, @@collation_connection`

// Loader executes the load stage of the per-routine pipeline.
type Loader struct {
	logger  sprocc.Logger
	manager *manager.Manager
}

// New creates a loader.
// Panics if logger or mgr is nil.
func New(logger sprocc.Logger, mgr *manager.Manager) *Loader {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if mgr == nil {
		panic("manager cannot be nil")
	}
	return &Loader{logger: logger, manager: mgr}
}

// ResolveSession fills every empty member of the desired session triple
// from the live server defaults. Called once per compile pass; the
// resolved triple both drives the staleness decision and is applied
// before each routine is created.
func (l *Loader) ResolveSession(ctx context.Context, conn sprocc.DBConn, desired sprocc.SessionSettings) (sprocc.SessionSettings, error) {
	if desired.SQLMode != "" && desired.CharacterSet != "" && desired.Collation != "" {
		return desired, nil
	}

	rows, err := conn.Query(ctx, querySessionDefaults)
	if err != nil {
		return sprocc.SessionSettings{}, fmt.Errorf("failed to query session defaults: %w", err)
	}
	defer rows.Close()

	var defaults sprocc.SessionSettings
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return sprocc.SessionSettings{}, fmt.Errorf("failed to read session defaults: %w", err)
		}
		return sprocc.SessionSettings{}, fmt.Errorf("failed to read session defaults: no row returned")
	}
	if err := rows.Scan(&defaults.SQLMode, &defaults.CharacterSet, &defaults.Collation); err != nil {
		return sprocc.SessionSettings{}, fmt.Errorf("failed to scan session defaults: %w", err)
	}

	resolved := desired
	if resolved.SQLMode == "" {
		resolved.SQLMode = defaults.SQLMode
	}
	if resolved.CharacterSet == "" {
		resolved.CharacterSet = defaults.CharacterSet
	}
	if resolved.Collation == "" {
		resolved.Collation = defaults.Collation
	}
	return resolved, nil
}

// Load drops any existing routine of the same name, applies the session
// settings and executes the substituted create statement.
func (l *Loader) Load(
	ctx context.Context,
	conn sprocc.DBConn,
	database string,
	src *source.RoutineSource,
	placeholders map[string]string,
	session sprocc.SessionSettings,
) error {
	kind, exists, err := l.manager.RoutineKind(ctx, conn, database, src.Routine)
	if err != nil {
		return err
	}
	if exists {
		l.logger.Verbose("Dropping existing %s %s", strings.ToLower(string(kind)), src.Routine)
		if err := l.manager.DropRoutine(ctx, conn, kind, database, src.Routine); err != nil {
			return err
		}
	}

	if err := l.applySession(ctx, conn, session); err != nil {
		return err
	}

	stmt := BuildCreateStatement(src, placeholders)
	if err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create routine %s: %w (statement: %s)",
			src.Routine, err, preview(stmt))
	}
	return nil
}

// applySession sets the session triple. Values are embedded as escaped
// literals; SET statements take no placeholder bindings.
func (l *Loader) applySession(ctx context.Context, conn sprocc.DBConn, session sprocc.SessionSettings) error {
	setMode := fmt.Sprintf("SET sql_mode = '%s'", conn.Escape(session.SQLMode))
	if err := conn.Exec(ctx, setMode); err != nil {
		return fmt.Errorf("failed to set sql_mode: %w", err)
	}

	setNames := fmt.Sprintf("SET NAMES '%s' COLLATE '%s'",
		conn.Escape(session.CharacterSet), conn.Escape(session.Collation))
	if err := conn.Exec(ctx, setNames); err != nil {
		return fmt.Errorf("failed to set session character set: %w", err)
	}
	return nil
}

// BuildCreateStatement substitutes placeholder tokens and the reserved
// compile-context tokens into the source text. The line token is re-bound
// per line so diagnostics inside the body reference their source line.
// Compile-context values exist only here; they are never recorded.
func BuildCreateStatement(src *source.RoutineSource, placeholders map[string]string) string {
	magic := map[string]string{
		sprocc.MagicFile: src.Path,
		sprocc.MagicName: src.Routine,
		sprocc.MagicDir:  src.Dir,
	}

	var b strings.Builder
	for i, line := range src.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		magic[sprocc.MagicLine] = strconv.Itoa(i + 1)
		b.WriteString(annotate.SubstituteLine(line, placeholders, magic))
	}
	return b.String()
}

// preview truncates a statement for inclusion in error messages.
func preview(stmt string) string {
	if len(stmt) <= sprocc.MaxErrorPreviewLength {
		return stmt
	}
	return stmt[:sprocc.MaxErrorPreviewLength] + "..."
}
