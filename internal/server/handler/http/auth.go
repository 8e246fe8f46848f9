// Package http provides the HTTP handlers of the tutor store and identity API.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/middleware"
	"github.com/atinyakov/LearnLingo/internal/response"
	"github.com/atinyakov/LearnLingo/internal/service"
)

// AuthService defines the authentication operations required by the handlers.
type AuthService interface {
	// Register creates an account and returns its first token.
	Register(ctx context.Context, in service.Credentials) (*service.AuthResult, error)
	// Login opens a session for existing credentials.
	Login(ctx context.Context, in service.Credentials) (*service.AuthResult, error)
	// Logout revokes the session.
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

var errBadBody = appErrors.Clone(appErrors.ErrValidation, "invalid request body")

// Register handles POST /api/register with {"name","email","password"}.
// On success it responds 201 with the token and identity.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, errBadBody)
		return
	}

	res, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, res)
}

// Login handles POST /api/login with {"email","password"}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, errBadBody)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// Logout handles POST /api/logout. It must run behind middleware.Auth.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		response.Error(w, appErrors.ErrUnauthorized)
		return
	}
	if err := h.AuthService.Logout(r.Context(), sid); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
