package annotate

import (
	"regexp"
	"strings"

	"github.com/vvka-141/sprocc/internal/params"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// placeholderRegex matches substitution tokens of the form @NAME@ or
// @NAME%type@. Names allow letters, digits, underscore and dot; the
// optional %type suffix carries a hint for the wrapper generator.
var placeholderRegex = regexp.MustCompile(`@([A-Za-z0-9_.]+)(?:%([A-Za-z0-9_]+))?@`)

// ExtractPlaceholders scans the full source text for placeholder tokens
// and returns the distinct tokens in order of first appearance.
func ExtractPlaceholders(text string) []string {
	matches := placeholderRegex.FindAllString(text, -1)

	var tokens []string
	seen := make(map[string]bool, len(matches))
	for _, token := range matches {
		if seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}

// placeholderName returns the uppercased name of a placeholder token,
// without the surrounding @s and the optional %type suffix.
func placeholderName(token string) string {
	m := placeholderRegex.FindStringSubmatch(token)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// SubstituteLine replaces every placeholder token in line. Reserved
// compile-context tokens are looked up by uppercased name in magic;
// everything else is looked up by token in resolved. Tokens found in
// neither table are left untouched.
func SubstituteLine(line string, resolved map[string]string, magic map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(line, func(token string) string {
		name := placeholderName(token)
		if value, ok := magic[name]; ok && sprocc.IsMagicPlaceholder(name) {
			return value
		}
		if value, ok := resolved[token]; ok {
			return value
		}
		return token
	})
}

// resolvePlaceholders maps every placeholder token found in the source to
// its substitution value from the replacement table. Reserved
// compile-context tokens are skipped; they are bound later by the loader
// and never recorded. An unresolvable token rejects the routine before
// any database interaction.
func resolvePlaceholders(filePath, text string, table params.Table) (map[string]string, error) {
	resolved := make(map[string]string)

	for _, token := range ExtractPlaceholders(text) {
		name := placeholderName(token)
		if sprocc.IsMagicPlaceholder(name) {
			continue
		}

		value, ok := table.Resolve(name)
		if !ok {
			return nil, &ParseError{
				FilePath: filePath,
				Message:  "unknown placeholder " + token,
				Hint: "Every @NAME@ token must resolve in the replacement table.\n" +
					"Add the value via sprocc.yaml placeholders:, a --placeholders-file, or --placeholder " + name + "=<value>.",
			}
		}
		resolved[token] = value
	}

	return resolved, nil
}
