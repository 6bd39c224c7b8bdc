// Package testutil provides shared test helpers for setting up content roots.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ContentDir creates a temporary content root that is removed after the test.
func ContentDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes raw content to name inside dir.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// WriteRecipe writes slug.md with the given front-matter fields in order
// (key, value, key, value...) followed by body.
func WriteRecipe(t *testing.T, dir, slug, body string, fields ...string) {
	t.Helper()
	if len(fields)%2 != 0 {
		t.Fatalf("WriteRecipe: odd number of field arguments")
	}
	var b strings.Builder
	b.WriteString("---\n")
	for i := 0; i < len(fields); i += 2 {
		fmt.Fprintf(&b, "%s: %s\n", fields[i], fields[i+1])
	}
	b.WriteString("---\n")
	b.WriteString(body)
	WriteFile(t, dir, slug+".md", b.String())
}

// BrokenLink creates name inside dir as a symlink to a missing target, which
// is listed like a file but fails to read.
func BrokenLink(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.Symlink(filepath.Join(dir, "missing-target"), filepath.Join(dir, name)); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
