// Package models defines the domain types for opskrifter.
package models

// Metadata holds parsed front-matter fields. Values are either string or,
// for list-valued keys such as "categories", []string.
type Metadata map[string]any

// String returns the string value stored under key, or "" when the key is
// missing or holds a list.
func (m Metadata) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Strings returns the list value stored under key. A plain string value is
// returned as a single-element list.
func (m Metadata) Strings(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Has reports whether key is present with a non-empty value.
func (m Metadata) Has(key string) bool {
	switch v := m[key].(type) {
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	}
	return false
}

// Document is a single markdown file split into metadata and body.
type Document struct {
	Slug     string   `json:"slug"`
	Metadata Metadata `json:"metadata"`
	Body     string   `json:"body"`
}

// RecipeSummary is the teaser projection returned by list operations.
type RecipeSummary struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Path        string   `json:"path"`
	Image       string   `json:"image,omitempty"`
	Time        any      `json:"time"`
	Difficulty  string   `json:"difficulty"`
	Servings    any      `json:"servings"`
	Categories  []string `json:"categories"`
}

// RecipeDetail is the full recipe returned by single-item fetches.
// Time and Image stay absent when the file does not set them.
type RecipeDetail struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Path        string   `json:"path"`
	Image       string   `json:"image,omitempty"`
	Time        any      `json:"time,omitempty"`
	Difficulty  string   `json:"difficulty"`
	Servings    any      `json:"servings"`
	Categories  []string `json:"categories"`
	Body        string   `json:"body"`
}
