// Package annotate parses the comment-based DSL carried by routine
// sources: placeholder tokens, the designation comment, extended-parameter
// declarations and the create header.
package annotate

import (
	"regexp"
	"strings"

	"github.com/vvka-141/sprocc/internal/params"
	"github.com/vvka-141/sprocc/internal/source"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// beginKeyword is the body marker; matched as an exact, case-sensitive
// line so bodies may freely contain the word elsewhere.
const beginKeyword = "begin"

// createHeaderRegex matches the routine header line. The keyword is
// case-insensitive; the captured name is compared case-sensitively
// against the file name.
var createHeaderRegex = regexp.MustCompile("(?i)^\\s*create\\s+(procedure|function)\\s+(?:`([^`]+)`|([A-Za-z0-9_$.]+))")

// commentLineRegex matches any line comment, used to delimit the leading
// documentation block.
var commentLineRegex = regexp.MustCompile(`^\s*--`)

// Annotations is the scanner's output: everything the rest of the
// pipeline needs to know about the source text.
type Annotations struct {
	// Kind is PROCEDURE or FUNCTION, from the create header.
	Kind sprocc.RoutineKind

	// Designation is the parsed calling-convention declaration.
	Designation sprocc.Designation

	// Extended maps parameter name to its extended declaration.
	Extended map[string]sprocc.ExtendedParameter

	// Placeholders maps each placeholder token in the source to its
	// resolved value. Magic tokens are excluded.
	Placeholders map[string]string

	// DocComment is the raw leading comment block preceding the create
	// header, handed to the documentation tokenizer.
	DocComment string
}

// Scanner parses routine source annotations.
// Stateless and safe for concurrent use.
type Scanner struct{}

// NewScanner creates an annotation scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan extracts and validates all annotations from one routine source.
// Any malformed annotation, unknown placeholder or name mismatch rejects
// the routine with a ParseError before any database interaction.
func (s *Scanner) Scan(src *source.RoutineSource, table params.Table) (*Annotations, error) {
	placeholders, err := resolvePlaceholders(src.Path, src.Text, table)
	if err != nil {
		return nil, err
	}

	beginLine := -1
	for i, line := range src.Lines {
		if line == beginKeyword {
			beginLine = i
			break
		}
	}
	if beginLine == -1 {
		return nil, &ParseError{
			FilePath: src.Path,
			Message:  "designation not found: no \"" + beginKeyword + "\" line in source",
			Hint:     "The routine body must start with a line containing exactly \"" + beginKeyword + "\".",
		}
	}

	kind, err := s.scanCreateHeader(src, beginLine)
	if err != nil {
		return nil, err
	}

	designation, designationLine, err := s.scanDesignation(src, beginLine)
	if err != nil {
		return nil, err
	}

	extended, err := s.scanExtendedParams(src, designationLine+1, beginLine)
	if err != nil {
		return nil, err
	}

	return &Annotations{
		Kind:         kind,
		Designation:  designation,
		Extended:     extended,
		Placeholders: placeholders,
		DocComment:   s.leadingDocComment(src.Lines),
	}, nil
}

// scanCreateHeader locates the create header before begin and validates
// the declared name against the file name.
func (s *Scanner) scanCreateHeader(src *source.RoutineSource, beginLine int) (sprocc.RoutineKind, error) {
	for i := 0; i < beginLine; i++ {
		m := createHeaderRegex.FindStringSubmatch(src.Lines[i])
		if m == nil {
			continue
		}

		name := m[2]
		if name == "" {
			name = m[3]
		}
		if name != src.Routine {
			return "", &ParseError{
				FilePath: src.Path,
				Line:     i + 1,
				Message:  "routine name " + quote(name) + " does not match file name (expected " + quote(src.Routine) + ")",
				Hint:     "The file name minus its extension must equal the created routine name, case-sensitively.",
			}
		}
		return sprocc.RoutineKind(strings.ToUpper(m[1])), nil
	}

	return "", &ParseError{
		FilePath: src.Path,
		Message:  "no \"create procedure\" or \"create function\" header found before " + quote(beginKeyword),
	}
}

// scanDesignation scans backward from begin looking for the single
// designation comment. Returns the parsed designation and its line index.
func (s *Scanner) scanDesignation(src *source.RoutineSource, beginLine int) (sprocc.Designation, int, error) {
	found := -1
	for i := beginLine - 1; i >= 0; i-- {
		if designationRegex.MatchString(src.Lines[i]) {
			if found != -1 {
				return sprocc.Designation{}, 0, &ParseError{
					FilePath: src.Path,
					Line:     i + 1,
					Message:  "multiple designation comments found",
					Hint:     "Exactly one \"-- type:\" line is allowed per routine.",
				}
			}
			found = i
		}
	}

	if found == -1 {
		return sprocc.Designation{}, 0, &ParseError{
			FilePath: src.Path,
			Message:  "designation not found: no \"-- type:\" comment before " + quote(beginKeyword),
			Hint:     "Declare the calling convention, e.g. \"-- type: rows_with_key id\".",
		}
	}

	m := designationRegex.FindStringSubmatch(src.Lines[found])
	designation, err := parseDesignation(src.Path, found+1, m[1], m[2])
	if err != nil {
		return sprocc.Designation{}, 0, err
	}
	return designation, found, nil
}

// scanExtendedParams scans the lines between the designation comment and
// begin for extended-parameter declarations.
func (s *Scanner) scanExtendedParams(src *source.RoutineSource, from, to int) (map[string]sprocc.ExtendedParameter, error) {
	extended := make(map[string]sprocc.ExtendedParameter)

	for i := from; i < to; i++ {
		m := extendedParamRegex.FindStringSubmatch(src.Lines[i])
		if m == nil {
			continue
		}
		if m[1] == "" {
			// Declares nothing; tolerated.
			continue
		}

		param, err := parseExtendedParam(src.Path, i+1, m[1])
		if err != nil {
			return nil, err
		}

		if _, dup := extended[param.Name]; dup {
			return nil, &ParseError{
				FilePath: src.Path,
				Line:     i + 1,
				Message:  "duplicate parameter " + quote(param.Name),
				Hint:     "Each parameter may carry at most one \"-- param:\" declaration.",
			}
		}
		extended[param.Name] = param
	}

	return extended, nil
}

// leadingDocComment collects the contiguous comment block at the top of
// the file, excluding annotation lines, for the documentation tokenizer.
func (s *Scanner) leadingDocComment(lines []string) string {
	var doc []string
	started := false

	for _, line := range lines {
		if !started && strings.TrimSpace(line) == "" {
			continue
		}
		if !commentLineRegex.MatchString(line) {
			break
		}
		started = true
		if designationRegex.MatchString(line) || extendedParamRegex.MatchString(line) {
			continue
		}
		doc = append(doc, line)
	}

	return strings.Join(doc, "\n")
}
