package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sprocc/internal/params"
	"github.com/vvka-141/sprocc/internal/source"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

func sourceFromText(routine, text string) *source.RoutineSource {
	lines := strings.Split(text, "\n")
	return &source.RoutineSource{
		Path:    "/srv/routines/" + routine + ".sql",
		Dir:     "/srv/routines",
		Routine: routine,
		Text:    text,
		Lines:   lines,
	}
}

const getUserSource = `-- Fetch one user.
--
-- Returns the user row for the given identifier.
--
-- @param id The user identifier.
-- type: rows_with_key id
-- param: ids int_list
create procedure get_user( in id int, in ids text )
begin
	select * from @SCHEMA@.users where id = id;
end
`

func TestScanHappyPath(t *testing.T) {
	src := sourceFromText("get_user", getUserSource)
	table := params.NewTable(map[string]string{"SCHEMA": "app"})

	ann, err := NewScanner().Scan(src, table)
	require.NoError(t, err)

	assert.Equal(t, sprocc.KindProcedure, ann.Kind)
	assert.Equal(t, sprocc.DesignationRowsWithKey, ann.Designation.Kind)
	assert.Equal(t, []string{"id"}, ann.Designation.Columns)
	assert.Equal(t, map[string]string{"@SCHEMA@": "app"}, ann.Placeholders)

	require.Contains(t, ann.Extended, "ids")
	ids := ann.Extended["ids"]
	assert.Equal(t, "int_list", ids.ListType)
	assert.Equal(t, ",", ids.Delimiter)
	assert.Equal(t, `"`, ids.Enclosure)
	assert.Equal(t, `\`, ids.Escape)

	assert.Contains(t, ann.DocComment, "Fetch one user.")
	assert.Contains(t, ann.DocComment, "@param id The user identifier.")
	assert.NotContains(t, ann.DocComment, "-- type:")
	assert.NotContains(t, ann.DocComment, "-- param:")
}

func TestScanUnknownPlaceholder(t *testing.T) {
	src := sourceFromText("p", "-- type: none\ncreate procedure p()\nbegin\nselect @MISSING@;\nend\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown placeholder @MISSING@")
	assert.Contains(t, err.Error(), src.Path)
}

func TestScanMagicPlaceholdersNotResolved(t *testing.T) {
	text := "-- type: none\ncreate procedure p()\nbegin\nselect '@__FILE__@', '@__LINE__@', '@__DIR__@', '@__NAME__@';\nend\n"
	src := sourceFromText("p", text)

	ann, err := NewScanner().Scan(src, params.NewTable(nil))
	require.NoError(t, err)
	assert.Empty(t, ann.Placeholders)
}

func TestScanPlaceholderTypeSuffixAndCase(t *testing.T) {
	text := "-- type: none\ncreate procedure p()\nbegin\nselect @limit%int@, @Limit@;\nend\n"
	src := sourceFromText("p", text)

	ann, err := NewScanner().Scan(src, params.NewTable(map[string]string{"LIMIT": "10"}))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"@limit%int@": "10", "@Limit@": "10"}, ann.Placeholders)
}

func TestScanMissingBegin(t *testing.T) {
	src := sourceFromText("p", "-- type: none\ncreate procedure p()\nselect 1;\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "designation not found")
}

func TestScanBeginMustBeExact(t *testing.T) {
	// "BEGIN" and indented "begin" are not body markers.
	src := sourceFromText("p", "-- type: none\ncreate procedure p()\nBEGIN\n  begin\nselect 1;\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	assert.Error(t, err)
}

func TestScanMissingDesignation(t *testing.T) {
	src := sourceFromText("p", "create procedure p()\nbegin\nselect 1;\nend\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "designation not found")
}

func TestScanMultipleDesignations(t *testing.T) {
	src := sourceFromText("p", "-- type: none\n-- type: rows\ncreate procedure p()\nbegin\nend\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple designation comments")
}

func TestScanDesignationVariants(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    sprocc.Designation
		wantErr string
	}{
		{"none", "-- type: none", sprocc.Designation{Kind: sprocc.DesignationNone}, ""},
		{"rows", "-- type: rows", sprocc.Designation{Kind: sprocc.DesignationRows}, ""},
		{"none with args", "-- type: none extra", sprocc.Designation{}, "takes no arguments"},
		{"rows_with_index", "-- type: rows_with_index a,b", sprocc.Designation{Kind: sprocc.DesignationRowsWithIndex, Columns: []string{"a", "b"}}, ""},
		{"rows_with_key spaces", "-- type: rows_with_key a, b", sprocc.Designation{}, "one column-list argument"},
		{"bulk ok", "-- type: bulk_insert staging id,name", sprocc.Designation{Kind: sprocc.DesignationBulkInsert, Table: "staging", Columns: []string{"id", "name"}}, ""},
		{"bulk missing cols", "-- type: bulk_insert staging", sprocc.Designation{}, "expected bulk_insert syntax"},
		{"bulk too many groups", "-- type: bulk_insert staging id name", sprocc.Designation{}, "expected bulk_insert syntax"},
		{"bulk bad column", "-- type: bulk_insert staging id,na me", sprocc.Designation{}, "expected bulk_insert syntax"},
		{"unknown", "-- type: mystery", sprocc.Designation{}, "unknown designation type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.line + "\ncreate procedure p()\nbegin\nend\n"
			ann, err := NewScanner().Scan(sourceFromText("p", text), params.NewTable(nil))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ann.Designation)
		})
	}
}

func TestScanExtendedParams(t *testing.T) {
	text := strings.Join([]string{
		"-- type: none",
		"-- param: ids int_list ; ' /",
		"-- param: names text_list",
		"-- param:",
		"create procedure p()",
		"begin",
		"end",
	}, "\n")

	ann, err := NewScanner().Scan(sourceFromText("p", text), params.NewTable(nil))
	require.NoError(t, err)
	require.Len(t, ann.Extended, 2)

	ids := ann.Extended["ids"]
	assert.Equal(t, ";", ids.Delimiter)
	assert.Equal(t, "'", ids.Enclosure)
	assert.Equal(t, "/", ids.Escape)

	names := ann.Extended["names"]
	assert.Equal(t, ",", names.Delimiter)
}

func TestScanExtendedParamErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"missing type", "-- param: ids", "expected param syntax"},
		{"bad list type", "-- param: ids integer_list", "unsupported list type"},
		{"multichar control", "-- param: ids int_list ;;", "single character"},
		{"too many fields", "-- param: ids int_list , \" \\ extra", "expected param syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "-- type: none\n" + tt.line + "\ncreate procedure p()\nbegin\nend\n"
			_, err := NewScanner().Scan(sourceFromText("p", text), params.NewTable(nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScanDuplicateExtendedParam(t *testing.T) {
	text := strings.Join([]string{
		"-- type: none",
		"-- param: ids int_list",
		"-- param: ids int_list",
		"create procedure p()",
		"begin",
		"end",
	}, "\n")

	_, err := NewScanner().Scan(sourceFromText("p", text), params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate parameter "ids"`)
}

func TestScanNameMismatch(t *testing.T) {
	src := sourceFromText("get_user", "-- type: none\ncreate procedure Get_User()\nbegin\nend\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match file name")
}

func TestScanBacktickedHeaderName(t *testing.T) {
	src := sourceFromText("get_user", "-- type: none\nCREATE FUNCTION `get_user`() returns int\nbegin\nend\n")

	ann, err := NewScanner().Scan(src, params.NewTable(nil))
	require.NoError(t, err)
	assert.Equal(t, sprocc.KindFunction, ann.Kind)
}

func TestScanMissingHeader(t *testing.T) {
	src := sourceFromText("p", "-- type: none\nbegin\nend\n")

	_, err := NewScanner().Scan(src, params.NewTable(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header found before")
}

func TestExtractPlaceholdersDeduplicates(t *testing.T) {
	tokens := ExtractPlaceholders("@A@ @b.c@ @A@ @x%int@ not@aplaceholder")
	assert.Equal(t, []string{"@A@", "@b.c@", "@x%int@"}, tokens)
}
