package annotate

import "fmt"

// ParseError is a structured source-annotation error with file context
// and an actionable hint. A ParseError aborts compilation of the routine
// it names, never the whole batch.
type ParseError struct {
	FilePath string // Path to the file with the error
	Line     int    // 1-based line number (0 if unknown)
	Message  string // Primary error message
	Hint     string // Actionable suggestion for fixing
}

// Error implements the error interface with rich formatting.
func (e *ParseError) Error() string {
	location := e.FilePath
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", e.FilePath, e.Line)
	}

	msg := fmt.Sprintf("parse error in %s: %s", location, e.Message)

	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}

	return msg
}
