// Package frontmatter splits markdown files into a key/value metadata block
// and a raw body.
//
// The accepted format is deliberately small: a first line of exactly "---",
// any number of "key: value" lines, and a closing "---" line. Values are
// plain strings; the "categories" key holds a bracketed, comma-separated
// list. Malformed input never produces an error, only less metadata.
package frontmatter

import (
	"strings"

	"github.com/starford/opskrifter/internal/models"
)

const (
	delimiter = "---"
	bom       = "\ufeff"

	// CategoriesKey is parsed as a list instead of a scalar.
	CategoriesKey = "categories"
)

// Result holds the output of parsing a markdown file.
type Result struct {
	Metadata models.Metadata
	Body     string
	// Closed is false when an opening delimiter had no matching close.
	Closed bool
}

// Parse splits raw markdown bytes into metadata and body.
func Parse(data []byte) *Result {
	return ParseString(string(data))
}

// ParseString is Parse for string input. A leading byte order mark is
// dropped before looking for the opening delimiter.
func ParseString(text string) *Result {
	text = strings.TrimPrefix(text, bom)
	first, rest, found := strings.Cut(text, "\n")
	if !isDelimiter(first) {
		return &Result{Metadata: models.Metadata{}, Body: text, Closed: true}
	}

	meta := models.Metadata{}
	if !found {
		return &Result{Metadata: meta}
	}

	for {
		line, tail, more := strings.Cut(rest, "\n")
		if isDelimiter(line) {
			return &Result{Metadata: meta, Body: tail, Closed: true}
		}
		parseLine(meta, line)
		if !more {
			break
		}
		rest = tail
	}

	// No closing delimiter: keep what was parsed, body is empty.
	return &Result{Metadata: meta}
}

func isDelimiter(line string) bool {
	return strings.TrimSuffix(line, "\r") == delimiter
}

// parseLine stores a single "key: value" line into meta. Only the first
// colon separates key from value; later duplicates overwrite earlier ones.
func parseLine(meta models.Metadata, line string) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	value = strings.TrimSpace(value)

	if key == CategoriesKey {
		meta[key] = parseList(value)
		return
	}
	meta[key] = unquote(value)
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}

// parseList handles the "[a, b, 'c']" syntax. Brackets and single quotes are
// removed wherever they appear, so quoting cannot protect a comma.
func parseList(s string) []string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '\'':
			return -1
		}
		return r
	}, s)

	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
