package typemap

import (
	"fmt"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// integerTypes are engine types whose values marshal as integers.
var integerTypes = map[string]struct{}{
	"tinyint":   {},
	"smallint":  {},
	"mediumint": {},
	"int":       {},
	"integer":   {},
	"bigint":    {},
	"bit":       {},
	"year":      {},
}

// floatTypes are approximate numeric engine types.
var floatTypes = map[string]struct{}{
	"float":  {},
	"double": {},
	"real":   {},
}

// textTypes are engine types whose values marshal as strings.
var textTypes = map[string]struct{}{
	"char":       {},
	"varchar":    {},
	"tinytext":   {},
	"text":       {},
	"mediumtext": {},
	"longtext":   {},
	"binary":     {},
	"varbinary":  {},
	"tinyblob":   {},
	"blob":       {},
	"mediumblob": {},
	"longblob":   {},
	"enum":       {},
	"set":        {},
	"json":       {},
	"date":       {},
	"time":       {},
	"datetime":   {},
	"timestamp":  {},
}

// MapParameter resolves the abstract type of a catalog parameter. A
// parameter carrying a list declaration maps by its list type rather
// than its engine type. Unrecognized engine types are an error, never
// a silent fallback.
func MapParameter(routine string, p sprocc.CatalogParameter) (sprocc.AbstractType, error) {
	if p.List != nil {
		switch p.List.ListType {
		case "int_list":
			return sprocc.TypeTextOrIntegerList, nil
		case "text_list":
			return sprocc.TypeText, nil
		default:
			return "", fmt.Errorf("routine %s: parameter %q: unsupported list type %q",
				routine, p.Name, p.List.ListType)
		}
	}

	abstract, err := MapDataType(p.DataType, p.NumericScale)
	if err != nil {
		return "", fmt.Errorf("routine %s: parameter %q: %w", routine, p.Name, err)
	}
	return abstract, nil
}

// MapDataType maps a bare engine data type to its abstract type.
// Exact numerics map to integer when their scale is zero and to float
// otherwise.
func MapDataType(dataType string, scale *int64) (sprocc.AbstractType, error) {
	dt := strings.ToLower(strings.TrimSpace(dataType))

	if _, ok := integerTypes[dt]; ok {
		return sprocc.TypeInteger, nil
	}
	if _, ok := floatTypes[dt]; ok {
		return sprocc.TypeFloat, nil
	}
	if _, ok := textTypes[dt]; ok {
		return sprocc.TypeText, nil
	}

	switch dt {
	case "decimal", "numeric", "dec", "fixed":
		if scale == nil || *scale == 0 {
			return sprocc.TypeInteger, nil
		}
		return sprocc.TypeFloat, nil
	}

	return "", fmt.Errorf("unsupported engine type %q", dataType)
}
