// Package content reads front-matter documents from a single directory of
// markdown files.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"

	"github.com/starford/opskrifter/internal/apperr"
	"github.com/starford/opskrifter/internal/frontmatter"
	"github.com/starford/opskrifter/internal/models"
)

// Ext is the only file extension treated as content.
const Ext = ".md"

const defaultConcurrency = 8

// slugRe rejects path separators and leading dots so a slug can never
// address anything outside the content root.
var slugRe = regexp.MustCompile(`^[^./\\][^/\\]*$`)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// Loader reads documents from a content root directory. It holds no state
// besides its configuration; every call goes to disk.
type Loader struct {
	root        string // absolute path to content directory
	concurrency int
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds the number of parallel reads in LoadAll.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-document skips.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader rooted at dir. The directory does not have to
// exist yet; a missing root surfaces as apperr.ErrDirectoryNotFound on use.
func NewLoader(dir string, opts ...Option) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("content: resolve root: %w", err)
	}
	l := &Loader{
		root:        abs,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Root returns the absolute content root.
func (l *Loader) Root() string {
	return l.root
}

// Check reports whether the content root is an existing directory.
func (l *Loader) Check() error {
	info, err := os.Stat(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("content: %s: %w", l.root, apperr.ErrDirectoryNotFound)
		}
		return fmt.Errorf("content: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content: %s is not a directory: %w", l.root, apperr.ErrDirectoryNotFound)
	}
	return nil
}

// ValidateSlug returns apperr.ErrInvalidSlug for slugs that are empty or
// could escape the content root.
func ValidateSlug(slug string) error {
	if err := validation.Validate(slug, validation.Required, validation.Match(slugRe)); err != nil {
		return fmt.Errorf("%w: %q: %v", apperr.ErrInvalidSlug, slug, err)
	}
	return nil
}

// SlugFromFilename strips the content extension from name.
func SlugFromFilename(name string) string {
	return strings.TrimSuffix(name, Ext)
}

// ListFiles returns the names of all content files in the root directory,
// sorted by filename. Subdirectories are not descended into.
func (l *Loader) ListFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.Check(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("content: list %s: %w", l.root, apperr.ErrDirectoryNotFound)
		}
		return nil, fmt.Errorf("content: list: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsContentName(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// LoadOne reads and parses the document for slug. Any read or decode
// failure is reported as apperr.ErrDocumentNotFound with the cause attached.
func (l *Loader) LoadOne(ctx context.Context, slug string) (*models.Document, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	doc, err := l.loadFile(ctx, slug+Ext)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Unreadable or undecodable files are as absent as missing ones.
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrDocumentNotFound, slug, err)
	}
	return doc, nil
}

// LoadAll reads every content file concurrently. A file that cannot be read
// or decoded is logged and skipped; only a directory-level failure or a
// cancelled context fails the whole batch. Results are in filename order.
func (l *Loader) LoadAll(ctx context.Context) ([]models.Document, error) {
	names, err := l.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*models.Document, len(names))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, name := range names {
		g.Go(func() error {
			doc, err := l.loadFile(gCtx, name)
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				l.logger.Warn("content: document skipped",
					slog.String("file", name),
					slog.String("error", fmt.Errorf("%w: %w", apperr.ErrParseSkipped, err).Error()))
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// IsContentName reports whether name is a listable content file. Hidden
// files are skipped because their slugs would fail ValidateSlug.
func IsContentName(name string) bool {
	return strings.HasSuffix(name, Ext) && !strings.HasPrefix(name, ".")
}

func (l *Loader) loadFile(ctx context.Context, name string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", name, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("content: decode %s: %w", name, errInvalidUTF8)
	}
	res := frontmatter.Parse(data)
	return &models.Document{
		Slug:     SlugFromFilename(name),
		Metadata: res.Metadata,
		Body:     res.Body,
	}, nil
}
