// Package recipes projects content documents into the recipe shapes served
// to the web front end.
package recipes

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/opskrifter/internal/models"
)

// Canonical defaults for fields a recipe file leaves out.
const (
	DefaultTime       = 30
	DefaultDifficulty = "Nem"
	DefaultServings   = 4
	DefaultURLPrefix  = "/opskrifter"
)

// Front-matter keys read by the projections.
const (
	keyTitle       = "title"
	keyDescription = "description"
	keyImage       = "image"
	keyTime        = "time"
	keyDifficulty  = "difficulty"
	keyServings    = "servings"
	keyCategories  = "categories"
)

// DefaultLanguage is the collation language for title ordering.
var DefaultLanguage = language.Danish

// Source is the subset of the content loader the service depends on.
type Source interface {
	LoadAll(ctx context.Context) ([]models.Document, error)
	LoadOne(ctx context.Context, slug string) (*models.Document, error)
}

// Service builds recipe summaries and details from a Source. It keeps no
// state between calls.
type Service struct {
	src       Source
	urlPrefix string
	lang      language.Tag
}

// Option configures a Service.
type Option func(*Service)

// WithURLPrefix sets the path prefix used for each recipe's front-end path.
func WithURLPrefix(prefix string) Option {
	return func(s *Service) {
		s.urlPrefix = strings.TrimRight(prefix, "/")
	}
}

// WithLanguage sets the collation language used to order listings.
func WithLanguage(tag language.Tag) Option {
	return func(s *Service) {
		s.lang = tag
	}
}

// NewService creates a recipe service reading from src.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src:       src,
		urlPrefix: DefaultURLPrefix,
		lang:      DefaultLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns summaries of every recipe that has a title, ordered by title
// under the service's collation language.
func (s *Service) List(ctx context.Context) ([]models.RecipeSummary, error) {
	docs, err := s.src.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.RecipeSummary, 0, len(docs))
	for _, d := range docs {
		if !d.Metadata.Has(keyTitle) {
			continue
		}
		out = append(out, s.summary(d))
	}
	s.sortByTitle(out)
	return out, nil
}

// Get returns the full recipe for slug. A file without a title is still
// returned, titled by its slug.
func (s *Service) Get(ctx context.Context, slug string) (*models.RecipeDetail, error) {
	doc, err := s.src.LoadOne(ctx, slug)
	if err != nil {
		return nil, err
	}
	d := s.detail(*doc)
	return &d, nil
}

func (s *Service) summary(d models.Document) models.RecipeSummary {
	m := d.Metadata
	return models.RecipeSummary{
		Title:       m.String(keyTitle),
		Description: m.String(keyDescription),
		Slug:        d.Slug,
		Path:        s.Path(d.Slug),
		Image:       m.String(keyImage),
		Time:        numberOr(m.String(keyTime), DefaultTime),
		Difficulty:  stringOr(m.String(keyDifficulty), DefaultDifficulty),
		Servings:    numberOr(m.String(keyServings), DefaultServings),
		Categories:  nonNilSlice(m.Strings(keyCategories)),
	}
}

func (s *Service) detail(d models.Document) models.RecipeDetail {
	m := d.Metadata
	return models.RecipeDetail{
		Title:       stringOr(m.String(keyTitle), d.Slug),
		Description: m.String(keyDescription),
		Slug:        d.Slug,
		Path:        s.Path(d.Slug),
		Image:       m.String(keyImage),
		Time:        numberOr(m.String(keyTime), nil),
		Difficulty:  stringOr(m.String(keyDifficulty), DefaultDifficulty),
		Servings:    numberOr(m.String(keyServings), DefaultServings),
		Categories:  nonNilSlice(m.Strings(keyCategories)),
		Body:        d.Body,
	}
}

// Path returns the front-end path for slug.
func (s *Service) Path(slug string) string {
	return s.urlPrefix + "/" + slug
}

// sortByTitle orders items with a locale-aware collator; equal titles fall
// back to slug order so the result is deterministic. A Collator is not safe
// for concurrent use, so one is built per call.
func (s *Service) sortByTitle(items []models.RecipeSummary) {
	c := collate.New(s.lang)
	slices.SortFunc(items, func(a, b models.RecipeSummary) int {
		if r := c.CompareString(a.Title, b.Title); r != 0 {
			return r
		}
		return strings.Compare(a.Slug, b.Slug)
	})
}

// numberOr returns raw as an int when it is one, raw itself otherwise, and
// def when raw is empty. A zero is treated as unset when def is non-nil.
func numberOr(raw string, def any) any {
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n == 0 && def != nil {
			return def
		}
		return n
	}
	return raw
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
