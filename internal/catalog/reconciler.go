// Package catalog reads routine parameter descriptors and bulk-insert
// target-table columns back from the database catalog after a successful
// load, and merges them with the source's extended-parameter declarations.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vvka-141/sprocc/internal/db/manager"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

const queryParameters = `
SELECT parameter_name, parameter_mode, ordinal_position, data_type,
       numeric_precision, numeric_scale,
       character_set_name, collation_name
FROM information_schema.parameters
WHERE specific_schema = ? AND specific_name = ? AND parameter_name IS NOT NULL
ORDER BY ordinal_position`

// TableColumn is one introspected column of a bulk-insert target table.
type TableColumn struct {
	Name string

	// BaseType is the leading word of the column's full type string,
	// e.g. "int" for "int(11) unsigned".
	BaseType string
}

// Reconciler reconciles live catalog state with source annotations.
type Reconciler struct {
	logger  sprocc.Logger
	manager *manager.Manager
}

// NewReconciler creates a catalog reconciler.
// Panics if logger or mgr is nil.
func NewReconciler(logger sprocc.Logger, mgr *manager.Manager) *Reconciler {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if mgr == nil {
		panic("manager cannot be nil")
	}
	return &Reconciler{logger: logger, manager: mgr}
}

// Parameters queries the catalog for the routine's parameters in ordinal
// order and merges each extended declaration into its matching parameter.
// An extended declaration naming a parameter the catalog does not report
// is fatal.
func (r *Reconciler) Parameters(
	ctx context.Context,
	conn sprocc.DBConn,
	database, routine string,
	extended map[string]sprocc.ExtendedParameter,
) ([]sprocc.CatalogParameter, error) {
	rows, err := conn.Query(ctx, queryParameters, database, routine)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters of %s: %w", routine, err)
	}
	defer rows.Close()

	var params []sprocc.CatalogParameter
	for rows.Next() {
		var (
			name, mode, dataType sql.NullString
			ordinal              int
			precision, scale     sql.NullInt64
			charset, collation   sql.NullString
		)
		if err := rows.Scan(&name, &mode, &ordinal, &dataType,
			&precision, &scale, &charset, &collation); err != nil {
			return nil, fmt.Errorf("failed to scan parameter row of %s: %w", routine, err)
		}

		p := sprocc.CatalogParameter{
			Name:         name.String,
			Mode:         strings.ToUpper(mode.String),
			Ordinal:      ordinal,
			DataType:     strings.ToLower(dataType.String),
			CharacterSet: charset.String,
			Collation:    collation.String,
		}
		if precision.Valid {
			v := precision.Int64
			p.NumericPrecision = &v
		}
		if scale.Valid {
			v := scale.Int64
			p.NumericScale = &v
		}
		p.TypeDescriptor = buildTypeDescriptor(p)
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameters of %s: %w", routine, err)
	}

	if err := mergeExtended(routine, params, extended); err != nil {
		return nil, err
	}
	return params, nil
}

// buildTypeDescriptor appends character-set and collation clauses to the
// catalog data type when reported.
func buildTypeDescriptor(p sprocc.CatalogParameter) string {
	descriptor := p.DataType
	if p.CharacterSet != "" {
		descriptor += " character set " + p.CharacterSet
	}
	if p.Collation != "" {
		descriptor += " collate " + p.Collation
	}
	return descriptor
}

// mergeExtended attaches each extended declaration to the catalog
// parameter of the same name.
func mergeExtended(routine string, params []sprocc.CatalogParameter, extended map[string]sprocc.ExtendedParameter) error {
	byName := make(map[string]int, len(params))
	for i, p := range params {
		byName[p.Name] = i
	}

	for name := range extended {
		i, ok := byName[name]
		if !ok {
			return fmt.Errorf("specific parameter %q does not exist in routine %s", name, routine)
		}
		e := extended[name]
		params[i].List = &e
	}
	return nil
}

// BulkColumns introspects the bulk-insert target table and validates the
// declared column list against it.
//
// A table present in information_schema.tables is introspected directly.
// A table absent from the catalog is assumed temporary: the routine is
// invoked once with all-NULL arguments to materialize it inside the
// current session, introspected, and dropped again on every exit path.
func (r *Reconciler) BulkColumns(
	ctx context.Context,
	conn sprocc.DBConn,
	database, routine string,
	designation sprocc.Designation,
	params []sprocc.CatalogParameter,
) (_ []TableColumn, err error) {
	exists, err := r.manager.TableExists(ctx, conn, database, designation.Table)
	if err != nil {
		return nil, err
	}

	if !exists {
		r.logger.Verbose("Table %s not in catalog, materializing temporary table via %s", designation.Table, routine)
		if err := r.materializeTempTable(ctx, conn, database, routine, len(params)); err != nil {
			return nil, err
		}
		defer func() {
			dropSQL := fmt.Sprintf("DROP TEMPORARY TABLE IF EXISTS %s",
				sprocc.QuoteIdentifier(designation.Table))
			if dropErr := conn.Exec(ctx, dropSQL); dropErr != nil {
				r.logger.Error("Failed to drop temporary table %s: %v", designation.Table, dropErr)
				if err == nil {
					err = fmt.Errorf("failed to drop temporary table %s: %w", designation.Table, dropErr)
				}
			}
		}()
	}

	columns, err := r.showColumns(ctx, conn, database, designation.Table, !exists)
	if err != nil {
		return nil, err
	}

	if len(columns) != len(designation.Columns) {
		return nil, fmt.Errorf("field/column count mismatch for table %s: %d columns declared, %d found",
			designation.Table, len(designation.Columns), len(columns))
	}
	return columns, nil
}

// materializeTempTable calls the routine once with one NULL per parameter
// so its temporary target table exists in the current session.
func (r *Reconciler) materializeTempTable(ctx context.Context, conn sprocc.DBConn, database, routine string, arity int) error {
	args := make([]string, arity)
	for i := range args {
		args[i] = "NULL"
	}

	call := fmt.Sprintf("CALL %s.%s(%s)",
		sprocc.QuoteIdentifier(database),
		sprocc.QuoteIdentifier(routine),
		strings.Join(args, ", "))
	if err := conn.Exec(ctx, call); err != nil {
		return fmt.Errorf("failed to materialize temporary table via %s: %w", routine, err)
	}
	return nil
}

// showColumns introspects a table's columns. Temporary tables are only
// visible to the current session and cannot be schema-qualified.
func (r *Reconciler) showColumns(ctx context.Context, conn sprocc.DBConn, database, table string, temporary bool) ([]TableColumn, error) {
	stmt := fmt.Sprintf("SHOW COLUMNS FROM %s", sprocc.QuoteIdentifier(table))
	if !temporary {
		stmt += fmt.Sprintf(" FROM %s", sprocc.QuoteIdentifier(database))
	}

	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect table %s: %w", table, err)
	}
	defer rows.Close()

	var columns []TableColumn
	for rows.Next() {
		var (
			field, fullType      string
			nullable, key, extra sql.NullString
			defaultValue         sql.NullString
		)
		if err := rows.Scan(&field, &fullType, &nullable, &key, &defaultValue, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column row of %s: %w", table, err)
		}
		columns = append(columns, TableColumn{
			Name:     field,
			BaseType: baseTypeToken(fullType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	return columns, nil
}

// baseTypeToken extracts the base type from a full column type string:
// the leading word before any length, modifier or attribute.
func baseTypeToken(fullType string) string {
	token := fullType
	if i := strings.IndexAny(token, "( "); i != -1 {
		token = token[:i]
	}
	return strings.ToLower(token)
}
