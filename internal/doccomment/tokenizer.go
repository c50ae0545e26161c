// Package doccomment parses the leading comment block of a routine
// source into structured documentation and reconciles it against the
// catalog parameter list.
package doccomment

import (
	"regexp"
	"strings"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// tagRegex matches a tagged documentation line after the comment prefix
// has been stripped, e.g. "@param id The user identifier.".
var tagRegex = regexp.MustCompile(`^@([A-Za-z_]+)\s*(.*)$`)

// commentPrefixRegex strips the line-comment marker and at most one
// following space, preserving deeper indentation inside the text.
var commentPrefixRegex = regexp.MustCompile(`^\s*-- ?`)

// Parse tokenizes a leading comment block. The first paragraph becomes
// the short description, the remaining untagged paragraphs the long
// description. Tagged lines ("@tag content") are collected separately;
// only "param" tags are interpreted, other tags are preserved verbatim
// in the long description so nothing the author wrote is lost.
func Parse(block string) sprocc.RoutineDoc {
	var doc sprocc.RoutineDoc
	if strings.TrimSpace(block) == "" {
		return doc
	}

	var paragraphs [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, current)
			current = nil
		}
	}

	for _, raw := range strings.Split(block, "\n") {
		line := commentPrefixRegex.ReplaceAllString(raw, "")

		if m := tagRegex.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			if m[1] == "param" {
				name, desc := splitParamTag(m[2])
				if name != "" {
					doc.Params = append(doc.Params, sprocc.ParamDoc{Name: name, Description: desc})
				}
				continue
			}
			// Unknown tag: keep the line as prose.
			current = append(current, strings.TrimSpace(line))
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	flush()

	if len(paragraphs) > 0 {
		doc.Short = strings.Join(paragraphs[0], "\n")
	}
	if len(paragraphs) > 1 {
		var rest []string
		for _, p := range paragraphs[1:] {
			rest = append(rest, strings.Join(p, "\n"))
		}
		doc.Long = strings.Join(rest, "\n\n")
	}
	return doc
}

// splitParamTag separates the parameter name from its description in a
// "@param <name> <description>" tag body.
func splitParamTag(body string) (name, description string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ""
	}
	fields := strings.SplitN(body, " ", 2)
	name = fields[0]
	if len(fields) == 2 {
		description = strings.TrimSpace(fields[1])
	}
	return name, description
}
