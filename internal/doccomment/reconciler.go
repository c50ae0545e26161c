package doccomment

import (
	"fmt"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// Reconcile matches documented parameters against the catalog parameter
// list. Mismatches are advisory: each undocumented catalog parameter
// and each doc tag naming a parameter the routine does not have yields
// one warning, and compilation proceeds regardless.
func Reconcile(routine string, doc sprocc.RoutineDoc, catalog []sprocc.CatalogParameter) []sprocc.Warning {
	var warnings []sprocc.Warning

	documented := make(map[string]struct{}, len(doc.Params))
	for _, p := range doc.Params {
		documented[p.Name] = struct{}{}
	}

	known := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		known[p.Name] = struct{}{}
		if _, ok := documented[p.Name]; !ok {
			warnings = append(warnings, sprocc.Warning{
				Routine:   routine,
				Parameter: p.Name,
				Message:   "not documented",
			})
		}
	}

	for _, p := range doc.Params {
		if _, ok := known[p.Name]; !ok {
			warnings = append(warnings, sprocc.Warning{
				Routine:   routine,
				Parameter: p.Name,
				Message:   fmt.Sprintf("documented but not declared by %s", routine),
			})
		}
	}

	return warnings
}

// Describe returns the documented description for a parameter, or the
// empty string when the parameter carries no doc tag.
func Describe(doc sprocc.RoutineDoc, parameter string) string {
	for _, p := range doc.Params {
		if p.Name == parameter {
			return p.Description
		}
	}
	return ""
}
