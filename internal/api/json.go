package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// errResponse is the error object returned by every endpoint. Status mirrors
// the HTTP status code so clients that only look at the body still see it.
type errResponse struct {
	Error   string `json:"error" validate:"required"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status" validate:"required"`
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errResponse{Error: msg, Message: detail, Status: status})
}
