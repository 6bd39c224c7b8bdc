package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/starford/opskrifter/internal/apperr"
	"github.com/starford/opskrifter/internal/models"
	"github.com/starford/opskrifter/internal/recipes"
)

// Handler holds API route handlers.
type Handler struct {
	svc *recipes.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *recipes.Service) *Handler {
	return &Handler{svc: svc}
}

// ListRecipes handles GET /api/recipes.
//
// A missing content directory is not an error for the front end: it gets an
// empty list. Other directory-level failures return a 500 error object.
//
//	@Summary		List all recipes ordered by title
//	@Tags			recipes
//	@Produce		json
//	@Success		200	{array}		RecipeSummary
//	@Failure		500	{object}	errResponse
//	@Router			/recipes [get]
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrDirectoryNotFound) {
			slog.Warn("list recipes: content directory missing", slog.String("error", err.Error()))
			writeJSON(w, http.StatusOK, []models.RecipeSummary{})
			return
		}
		slog.Error("list recipes failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not load recipes", "internal error")
		return
	}
	slog.Debug("recipes listed", slog.Int("count", len(items)))
	writeJSON(w, http.StatusOK, items)
}

// GetRecipe handles GET /api/recipe?name=<slug>.
//
//	@Summary		Get a single recipe by slug
//	@Tags			recipes
//	@Produce		json
//	@Param			name	query		string	true	"Recipe slug"
//	@Success		200		{object}	RecipeDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/recipe [get]
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	h.getRecipe(w, r, r.URL.Query().Get("name"))
}

// GetRecipeBySlug handles GET /api/recipes/{slug}.
//
//	@Summary		Get a single recipe by slug (path form)
//	@Tags			recipes
//	@Produce		json
//	@Param			slug	path		string	true	"Recipe slug"
//	@Success		200		{object}	RecipeDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/recipes/{slug} [get]
func (h *Handler) GetRecipeBySlug(w http.ResponseWriter, r *http.Request) {
	h.getRecipe(w, r, slugParam(r))
}

// slugParam decodes the {slug} URL parameter. chi matches on the raw path
// when it carries escapes, so non-ASCII slugs may arrive percent-encoded.
func slugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing recipe name", apperr.ErrMissingParameter.Error()+": name")
		return
	}
	recipe, err := h.svc.Get(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidSlug):
			writeError(w, http.StatusBadRequest, "invalid recipe name", err.Error())
		case errors.Is(err, apperr.ErrDocumentNotFound):
			writeError(w, http.StatusNotFound, "recipe not found", err.Error())
		default:
			slog.Error("get recipe failed", slog.String("name", name), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "could not load recipe", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}
