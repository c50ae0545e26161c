package params

import "strings"

// Table is the placeholder replacement table, keyed by uppercased
// placeholder name. Every @NAME@ token found in a routine source must
// resolve here before any database interaction.
type Table map[string]string

// NewTable builds a Table from raw key/value pairs, uppercasing keys.
// A later duplicate (differing only in case) overrides an earlier one.
func NewTable(values map[string]string) Table {
	t := make(Table, len(values))
	for k, v := range values {
		t[strings.ToUpper(k)] = v
	}
	return t
}

// Resolve looks up a placeholder name case-insensitively.
func (t Table) Resolve(name string) (string, bool) {
	v, ok := t[strings.ToUpper(name)]
	return v, ok
}

// Merge returns a new Table with entries from other overriding the
// receiver's. The receiver is not modified.
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
