package gateway

import (
	"context"
	"net/http"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// HTTPIdentity implements Identity against the API's auth endpoints.
type HTTPIdentity struct {
	api     *apiClient
	session *Session
}

// NewHTTPIdentity creates an HTTPIdentity that signs session in and out.
func NewHTTPIdentity(cfg Config, session *Session) *HTTPIdentity {
	return &HTTPIdentity{api: newAPIClient(cfg, session), session: session}
}

type authRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// Register implements Identity. On success the new account is signed in.
func (i *HTTPIdentity) Register(ctx context.Context, name, email, password string) (models.Identity, error) {
	return i.authenticate(ctx, "/api/register", authRequest{Name: name, Email: email, Password: password})
}

// Login implements Identity.
func (i *HTTPIdentity) Login(ctx context.Context, email, password string) (models.Identity, error) {
	return i.authenticate(ctx, "/api/login", authRequest{Email: email, Password: password})
}

// Logout implements Identity. The local session is signed out even when the
// server cannot be reached; the server error is still returned.
func (i *HTTPIdentity) Logout(ctx context.Context) error {
	if i.session.Token() == "" {
		return nil
	}
	err := i.api.do(ctx, http.MethodPost, "/api/logout", nil, nil, authRequired)
	i.session.Clear()
	return err
}

// OnIdentityChange implements Identity.
func (i *HTTPIdentity) OnIdentityChange(fn func(*models.Identity)) Disposer {
	return i.session.Subscribe(fn)
}

func (i *HTTPIdentity) authenticate(ctx context.Context, path string, req authRequest) (models.Identity, error) {
	var res authResponse
	if err := i.api.do(ctx, http.MethodPost, path, req, &res, authNone); err != nil {
		return models.Identity{}, err
	}
	i.session.Set(res.Token, res.Identity)
	return res.Identity, nil
}
