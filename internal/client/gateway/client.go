package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config configures the HTTP gateways.
type Config struct {
	// BaseURL is the API root, e.g. "https://localhost:8080".
	BaseURL string
	// HTTPClient performs the REST calls. Defaults to a client with a 10s timeout.
	HTTPClient *http.Client
	// TLS is used by the favorites websocket stream.
	TLS *tls.Config
	// RetryInterval is the pause before the favorites stream reconnects.
	RetryInterval time.Duration
	Logger        *zap.Logger
}

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

type apiClient struct {
	baseURL string
	http    *http.Client
	session *Session
}

func newAPIClient(cfg Config, session *Session) *apiClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &apiClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		session: session,
	}
}

// do sends in as JSON and decodes the answer into out. Unless auth is
// authNone the bearer token is attached, and a 401 answer to an
// authenticated request signs the session out.
func (c *apiClient) do(ctx context.Context, method, path string, in, out any, auth authMode) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	sentToken := false
	if auth != authNone {
		token := c.session.Token()
		switch {
		case token != "":
			req.Header.Set("Authorization", "Bearer "+token)
			sentToken = true
		case auth == authRequired:
			return ErrUnauthenticated
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeAPIError(resp)
		if sentToken && resp.StatusCode == http.StatusUnauthorized {
			c.session.Clear()
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
