// Package response writes JSON bodies and the error envelope shared by all handlers.
package response

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
)

// Envelope is the body of every error response.
type Envelope struct {
	Error *appErrors.Error `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error converts err to the common error envelope.
func Error(w http.ResponseWriter, err error) {
	appErr := appErrors.FromError(err)
	JSON(w, appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
