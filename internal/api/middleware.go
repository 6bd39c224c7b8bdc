// Package api implements the opskrifter read-only REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsMaxAge is how long browsers may cache a preflight answer, in seconds.
const corsMaxAge = 300

// CORSMiddleware allows the web front end at origin to call the API.
// An empty origin disables CORS headers entirely; "*" allows any origin.
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         corsMaxAge,
	})
}
