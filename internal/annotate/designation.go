package annotate

import (
	"regexp"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// designationRegex matches the single calling-convention comment line:
// "-- type: <name> [<args>]".
var designationRegex = regexp.MustCompile(`^\s*--\s*type:\s*(\S+)[ \t]*(.*?)\s*$`)

// identRegex validates table and column identifiers in designation args.
var identRegex = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)

// parseDesignation turns a matched designation comment into a tagged
// Designation value.
//
// Argument shape per kind:
//   - none, rows: no arguments
//   - rows_with_key, rows_with_index: one comma-separated column list
//   - bulk_insert: a table name and a comma-separated column list
func parseDesignation(filePath string, line int, name, args string) (sprocc.Designation, error) {
	kind := sprocc.DesignationKind(name)

	switch kind {
	case sprocc.DesignationNone, sprocc.DesignationRows:
		if args != "" {
			return sprocc.Designation{}, &ParseError{
				FilePath: filePath,
				Line:     line,
				Message:  "designation " + name + " takes no arguments, got " + quote(args),
				Hint:     "Write the comment as exactly \"-- type: " + name + "\".",
			}
		}
		return sprocc.Designation{Kind: kind}, nil

	case sprocc.DesignationRowsWithKey, sprocc.DesignationRowsWithIndex:
		groups := strings.Fields(args)
		if len(groups) != 1 {
			return sprocc.Designation{}, &ParseError{
				FilePath: filePath,
				Line:     line,
				Message:  "designation " + name + " expects one column-list argument",
				Hint:     "Example: \"-- type: " + name + " id,tenant_id\".",
			}
		}
		columns, err := parseColumnList(filePath, line, groups[0])
		if err != nil {
			return sprocc.Designation{}, err
		}
		return sprocc.Designation{Kind: kind, Columns: columns}, nil

	case sprocc.DesignationBulkInsert:
		groups := strings.Fields(args)
		if len(groups) != 2 || !identRegex.MatchString(groups[0]) {
			return sprocc.Designation{}, &ParseError{
				FilePath: filePath,
				Line:     line,
				Message:  "expected bulk_insert syntax: \"-- type: bulk_insert <table> <col,col,...>\"",
			}
		}
		columns, err := parseColumnList(filePath, line, groups[1])
		if err != nil {
			return sprocc.Designation{}, err
		}
		return sprocc.Designation{Kind: kind, Table: groups[0], Columns: columns}, nil

	default:
		return sprocc.Designation{}, &ParseError{
			FilePath: filePath,
			Line:     line,
			Message:  "unknown designation type " + quote(name),
			Hint:     "Supported types: none, rows, rows_with_key, rows_with_index, bulk_insert.",
		}
	}
}

// parseColumnList splits a comma-separated identifier list, validating
// each member.
func parseColumnList(filePath string, line int, list string) ([]string, error) {
	parts := strings.Split(list, ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		col := strings.TrimSpace(part)
		if !identRegex.MatchString(col) {
			return nil, &ParseError{
				FilePath: filePath,
				Line:     line,
				Message:  "invalid column name " + quote(col) + " in designation argument",
			}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
