package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/response"
	"github.com/atinyakov/LearnLingo/internal/service"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	sessionIDKey contextKey = "sessionID"
)

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*service.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the
// token subject and session id in the request context.
func Auth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Error(w, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
				return
			}
			claims, err := v.ValidateToken(r.Context(), token)
			if err != nil {
				response.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present but never blocks.
func OptionalAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := v.ValidateToken(r.Context(), token); err == nil {
					r = r.WithContext(withClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner allows the request only when the URL parameter param equals
// the authenticated user id. It must run after Auth.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := GetUserIDFromContext(r.Context())
			if !ok || uid != chi.URLParam(r, param) {
				response.Error(w, appErrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the authenticated user id.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

// GetSessionIDFromContext returns the session id of the access token.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}

func withClaims(ctx context.Context, claims *service.Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.Subject)
	return context.WithValue(ctx, sessionIDKey, claims.ID)
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
