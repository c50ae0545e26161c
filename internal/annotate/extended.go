package annotate

import (
	"regexp"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// extendedParamRegex matches extended-parameter declarations:
// "-- param: <name> <type> [delim enclosure escape]".
// The capture may be empty; an empty declaration is tolerated and
// declares nothing.
var extendedParamRegex = regexp.MustCompile(`^\s*--\s*param:[ \t]*(.*?)\s*$`)

// supported extended list types and their meaning for the type mapper
const (
	listTypeInt  = "int_list"
	listTypeText = "text_list"
)

// parseExtendedParam parses the content of one non-empty "-- param:"
// declaration into an ExtendedParameter.
func parseExtendedParam(filePath string, line int, content string) (sprocc.ExtendedParameter, error) {
	fields := strings.Fields(content)

	syntaxErr := &ParseError{
		FilePath: filePath,
		Line:     line,
		Message:  "expected param syntax: \"-- param: <name> <type> [delim enclosure escape]\", got " + quote(content),
		Hint:     "Example: \"-- param: user_ids int_list , \\\" \\\\\".",
	}

	if len(fields) < 2 || len(fields) > 5 {
		return sprocc.ExtendedParameter{}, syntaxErr
	}

	name := fields[0]
	if !identRegex.MatchString(name) {
		return sprocc.ExtendedParameter{}, syntaxErr
	}

	listType := fields[1]
	if listType != listTypeInt && listType != listTypeText {
		return sprocc.ExtendedParameter{}, &ParseError{
			FilePath: filePath,
			Line:     line,
			Message:  "unsupported list type " + quote(listType) + " for parameter " + quote(name),
			Hint:     "Supported list types: int_list, text_list.",
		}
	}

	param := sprocc.ExtendedParameter{
		Name:      name,
		ListType:  listType,
		Delimiter: sprocc.DefaultListDelimiter,
		Enclosure: sprocc.DefaultListEnclosure,
		Escape:    sprocc.DefaultListEscape,
	}

	controls := []*string{&param.Delimiter, &param.Enclosure, &param.Escape}
	for i, field := range fields[2:] {
		if len(field) != 1 {
			return sprocc.ExtendedParameter{}, &ParseError{
				FilePath: filePath,
				Line:     line,
				Message:  "list-encoding control " + quote(field) + " must be a single character",
			}
		}
		*controls[i] = field
	}

	return param, nil
}
