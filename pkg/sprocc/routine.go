package sprocc

import (
	"time"

	"github.com/google/uuid"
)

// RoutineKind distinguishes stored procedures from stored functions.
type RoutineKind string

const (
	KindProcedure RoutineKind = "PROCEDURE"
	KindFunction  RoutineKind = "FUNCTION"
)

// DesignationKind classifies a routine's calling convention. The
// designation determines how the wrapper generator interprets the
// routine's result shape.
type DesignationKind string

const (
	// DesignationNone marks a routine with no declared result shape.
	DesignationNone DesignationKind = "none"

	// DesignationRows marks a routine returning a plain row list.
	DesignationRows DesignationKind = "rows"

	// DesignationRowsWithKey marks a routine whose rows are keyed by the
	// named columns.
	DesignationRowsWithKey DesignationKind = "rows_with_key"

	// DesignationRowsWithIndex marks a routine whose rows are indexed by
	// the named columns.
	DesignationRowsWithIndex DesignationKind = "rows_with_index"

	// DesignationBulkInsert marks a routine that bulk-inserts caller rows
	// into a target table.
	DesignationBulkInsert DesignationKind = "bulk_insert"
)

// Designation is the parsed calling-convention declaration of a routine,
// extracted from its "-- type:" comment line.
//
// Invariants (enforced by the annotation scanner):
//   - bulk_insert carries a table name and a non-empty column list
//   - rows_with_key and rows_with_index carry a non-empty column list
//   - none and rows carry no arguments
type Designation struct {
	Kind DesignationKind `yaml:"kind"`

	// Table is the bulk-insert target table. Empty for other kinds.
	Table string `yaml:"table,omitempty"`

	// Columns holds the declared column arguments for bulk_insert,
	// rows_with_key and rows_with_index.
	Columns []string `yaml:"columns,omitempty"`
}

// AbstractType is the semantic type a catalog type maps to, consumed by
// the wrapper generator.
type AbstractType string

const (
	TypeInteger           AbstractType = "integer"
	TypeFloat             AbstractType = "float"
	TypeText              AbstractType = "text"
	TypeTextOrIntegerList AbstractType = "text_or_integer_list"
)

// List-encoding defaults for extended parameters.
const (
	DefaultListDelimiter = ","
	DefaultListEnclosure = `"`
	DefaultListEscape    = `\`
)

// ExtendedParameter describes a routine parameter whose value is a
// delimited list encoded as a single string. Declared via
// "-- param: <name> <type> [delim enclosure escape]" comment lines.
type ExtendedParameter struct {
	Name string `yaml:"name"`

	// ListType is the declared abstract list type: "int_list" or
	// "text_list".
	ListType string `yaml:"list_type"`

	// Single-character list-encoding controls.
	Delimiter string `yaml:"delimiter"`
	Enclosure string `yaml:"enclosure"`
	Escape    string `yaml:"escape"`
}

// CatalogParameter is a routine parameter as reported by the database
// catalog, optionally merged with a matching ExtendedParameter.
// Ephemeral per compile pass.
type CatalogParameter struct {
	Name     string
	Mode     string // IN, OUT or INOUT
	Ordinal  int
	DataType string // catalog base type token, e.g. "int", "decimal"

	// TypeDescriptor is the composite declaration: the catalog data type
	// with character-set and collation clauses appended when reported.
	TypeDescriptor string

	// Numeric precision/scale, nil when the catalog reports none.
	NumericPrecision *int64
	NumericScale     *int64

	CharacterSet string
	Collation    string

	// List is the merged extended-parameter declaration, nil for plain
	// parameters.
	List *ExtendedParameter
}

// Parameter is the fully resolved parameter record persisted in
// BuildMetadata: catalog shape, semantic type, list spec and
// documentation.
type Parameter struct {
	Name           string             `yaml:"name"`
	Mode           string             `yaml:"mode"`
	Ordinal        int                `yaml:"ordinal"`
	DataType       string             `yaml:"data_type"`
	TypeDescriptor string             `yaml:"type_descriptor"`
	SemanticType   AbstractType       `yaml:"semantic_type"`
	List           *ExtendedParameter `yaml:"list,omitempty"`

	// Description is the matched documentation text, empty when the
	// parameter is undocumented.
	Description string `yaml:"description,omitempty"`
}

// ParamDoc is one (parameter name, description) pair extracted from the
// routine's leading documentation comment, in declaration order.
type ParamDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// RoutineDoc is the documentation payload of a routine.
type RoutineDoc struct {
	Short  string     `yaml:"short,omitempty"`
	Long   string     `yaml:"long,omitempty"`
	Params []ParamDoc `yaml:"params,omitempty"`
}

// SessionSettings is the database session triple applied before routine
// creation and recorded for the staleness decision.
type SessionSettings struct {
	SQLMode      string `yaml:"sql_mode"`
	CharacterSet string `yaml:"character_set"`
	Collation    string `yaml:"collation"`
}

// BuildMetadata is the persisted record of one compiled routine: the
// calling contract consumed by the wrapper generator and the state that
// drives the next pass's staleness decision.
//
// Two generations exist during a compile pass: the previous (read-only)
// record drives staleness; the current record is synthesized only after
// every pipeline stage succeeds and then replaces the previous one.
type BuildMetadata struct {
	// BuildID identifies the pass that produced this record.
	BuildID uuid.UUID `yaml:"build_id"`

	Routine     string      `yaml:"routine"`
	Kind        RoutineKind `yaml:"kind"`
	Designation Designation `yaml:"designation"`

	// TableName is the bulk-insert target, empty otherwise.
	TableName string `yaml:"table_name,omitempty"`

	// Columns are the declared bulk-insert columns; Fields the
	// introspected target-table column names. Equal length on success.
	Columns []string `yaml:"bulk_columns,omitempty"`
	Fields  []string `yaml:"bulk_fields,omitempty"`

	Parameters []Parameter `yaml:"parameters"`

	// Placeholders maps each placeholder token found in the source to its
	// resolved value. Magic constants are never recorded here.
	Placeholders map[string]string `yaml:"placeholders,omitempty"`

	// ExtendedParams preserves the raw extended-parameter spec map.
	ExtendedParams map[string]ExtendedParameter `yaml:"extended_params,omitempty"`

	Doc RoutineDoc `yaml:"doc"`

	Session SessionSettings `yaml:"session"`

	// ModTime is the source file's modification time at compile time.
	ModTime time.Time `yaml:"mod_time"`

	// Content checksums, recorded for diagnostics and change reporting.
	Checksum    string `yaml:"checksum"`
	ChecksumRaw string `yaml:"checksum_raw"`
}

// MetadataStore provides read-before/write-after access to BuildMetadata
// generations. The core is agnostic to the persistence mechanism.
type MetadataStore interface {
	// Load returns the previous-generation record for the routine, or
	// (nil, nil) when none exists.
	Load(routine string) (*BuildMetadata, error)

	// Save persists the current-generation record, replacing any previous
	// one for the same routine.
	Save(meta *BuildMetadata) error
}
