package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/opskrifter/internal/recipes"
)

// NewRouter creates a chi router with all API routes mounted.
// allowedOrigin feeds the CORS middleware; empty disables it.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *recipes.Service, allowedOrigin string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(allowedOrigin))

	r.Get("/recipes", h.ListRecipes)
	r.Get("/recipes/{slug}", h.GetRecipeBySlug)
	r.Get("/recipe", h.GetRecipe)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
