package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator is an interface for computing file checksums.
// This abstraction allows for different checksum strategies and algorithms.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	// Normalization makes checksums resilient to formatting changes.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256 with MySQL-aware
// normalization:
//  1. Remove comments (-- to end of line, # to end of line, /* */)
//     while preserving quoted strings and backtick identifiers
//  2. Collapse whitespace to single spaces
//  3. Convert to lowercase
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple
// goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	normalized := c.normalize(string(content))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

func (c SHA256) normalize(content string) string {
	cleaned := c.removeComments(content)

	var b strings.Builder
	b.Grow(len(cleaned))

	lastWasSpace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(unicode.ToLower(r))
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

type lexState int

const (
	lsNormal lexState = iota
	lsLineComment
	lsBlockComment
	lsSingleQuote
	lsDoubleQuote
	lsBacktick
)

// removeComments removes MySQL comments while preserving literals.
// Handles -- (requires trailing space or end of line per MySQL), #,
// non-nested /* */, single- and double-quoted strings with backslash
// escapes and doubled-quote escapes, and backtick identifiers.
func (c SHA256) removeComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	state := lsNormal
	i := 0

	for i < len(content) {
		ch := content[i]
		var next byte
		if i+1 < len(content) {
			next = content[i+1]
		}

		switch state {
		case lsNormal:
			switch {
			case ch == '-' && next == '-' && (i+2 >= len(content) || content[i+2] == ' ' || content[i+2] == '\t' || content[i+2] == '\n' || content[i+2] == '\r'):
				state = lsLineComment
				b.WriteByte(' ')
				i += 2
			case ch == '#':
				state = lsLineComment
				b.WriteByte(' ')
				i++
			case ch == '/' && next == '*':
				state = lsBlockComment
				b.WriteByte(' ')
				i += 2
			case ch == '\'':
				state = lsSingleQuote
				b.WriteByte(ch)
				i++
			case ch == '"':
				state = lsDoubleQuote
				b.WriteByte(ch)
				i++
			case ch == '`':
				state = lsBacktick
				b.WriteByte(ch)
				i++
			default:
				b.WriteByte(ch)
				i++
			}

		case lsLineComment:
			if ch == '\n' {
				b.WriteByte(ch)
				state = lsNormal
			}
			i++

		case lsBlockComment:
			if ch == '*' && next == '/' {
				state = lsNormal
				i += 2
			} else {
				i++
			}

		case lsSingleQuote, lsDoubleQuote:
			quote := byte('\'')
			if state == lsDoubleQuote {
				quote = '"'
			}
			b.WriteByte(ch)
			switch {
			case ch == '\\' && i+1 < len(content):
				b.WriteByte(next)
				i += 2
			case ch == quote:
				if next == quote {
					b.WriteByte(next)
					i += 2
				} else {
					state = lsNormal
					i++
				}
			default:
				i++
			}

		case lsBacktick:
			b.WriteByte(ch)
			if ch == '`' {
				if next == '`' {
					b.WriteByte(next)
					i += 2
				} else {
					state = lsNormal
					i++
				}
			} else {
				i++
			}
		}
	}

	return b.String()
}
