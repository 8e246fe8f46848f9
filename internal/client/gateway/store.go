package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/atinyakov/LearnLingo/internal/models"
)

const defaultRetryInterval = 2 * time.Second

var errStreamRejected = errors.New("favorites stream rejected")

// HTTPStore implements Store over the REST API and the favorites websocket.
type HTTPStore struct {
	api    *apiClient
	dialer *websocket.Dialer
	retry  time.Duration
	logger *zap.Logger
}

// NewHTTPStore creates an HTTPStore sharing session with the identity gateway.
func NewHTTPStore(cfg Config, session *Session) *HTTPStore {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = defaultRetryInterval
	}
	return &HTTPStore{
		api: newAPIClient(cfg, session),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
			TLSClientConfig:  cfg.TLS,
		},
		retry:  retry,
		logger: logger,
	}
}

// FetchPage implements Store.
func (s *HTTPStore) FetchPage(ctx context.Context, pageSize int, after string) (models.PageResult, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(pageSize))
	if after != "" {
		q.Set("after", after)
	}

	var page models.PageResult
	if err := s.api.do(ctx, http.MethodGet, "/api/tutors?"+q.Encode(), nil, &page, authNone); err != nil {
		return models.PageResult{}, err
	}
	return page, nil
}

// FetchByIDs implements Store.
func (s *HTTPStore) FetchByIDs(ctx context.Context, ids []string) ([]models.Tutor, error) {
	if len(ids) == 0 {
		return []models.Tutor{}, nil
	}
	var res struct {
		Items []models.Tutor `json:"items"`
	}
	if err := s.api.do(ctx, http.MethodPost, "/api/tutors/batch", map[string][]string{"ids": ids}, &res, authNone); err != nil {
		return nil, err
	}
	return res.Items, nil
}

// SetFavorite implements Store.
func (s *HTTPStore) SetFavorite(ctx context.Context, userID, tutorID string) error {
	return s.api.do(ctx, http.MethodPut, favoritePath(userID, tutorID), nil, nil, authRequired)
}

// RemoveFavorite implements Store.
func (s *HTTPStore) RemoveFavorite(ctx context.Context, userID, tutorID string) error {
	return s.api.do(ctx, http.MethodDelete, favoritePath(userID, tutorID), nil, nil, authRequired)
}

// BookTrial requests a trial lesson with tutorID. The booking is linked to
// the signed-in user, if any.
func (s *HTTPStore) BookTrial(ctx context.Context, tutorID string, b models.TrialBooking) (models.TrialBooking, error) {
	var res models.TrialBooking
	path := "/api/tutors/" + url.PathEscape(tutorID) + "/trial"
	if err := s.api.do(ctx, http.MethodPost, path, b, &res, authOptional); err != nil {
		return models.TrialBooking{}, err
	}
	return res, nil
}

// SubscribeFavorites implements Store. The stream reconnects after network
// failures and stops for good when the server rejects the session.
func (s *HTTPStore) SubscribeFavorites(userID string, fn func(ids []string)) Disposer {
	ctx, cancel := context.WithCancel(context.Background())
	go s.streamFavorites(ctx, userID, fn)

	var once sync.Once
	return func() { once.Do(cancel) }
}

func (s *HTTPStore) streamFavorites(ctx context.Context, userID string, fn func([]string)) {
	log := s.logger.With(zap.String("user_id", userID))
	for {
		err := s.readFavorites(ctx, userID, fn)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, errStreamRejected) || errors.Is(err, ErrUnauthenticated) {
			log.Warn("favorites stream closed", zap.Error(err))
			return
		}
		log.Warn("favorites stream interrupted, reconnecting", zap.Error(err), zap.Duration("retry", s.retry))

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retry):
		}
	}
}

func (s *HTTPStore) readFavorites(ctx context.Context, userID string, fn func([]string)) error {
	token := s.api.session.Token()
	if token == "" {
		return ErrUnauthenticated
	}
	streamURL, err := s.streamURL(userID)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := s.dialer.DialContext(ctx, streamURL, header)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				s.api.session.Clear()
				return fmt.Errorf("%w: %s", errStreamRejected, resp.Status)
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", errStreamRejected, resp.Status)
			}
		}
		return fmt.Errorf("dial favorites stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var snap models.FavoritesSnapshot
		if err := conn.ReadJSON(&snap); err != nil {
			return fmt.Errorf("read favorites snapshot: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fn(snap.IDs)
	}
}

func (s *HTTPStore) streamURL(userID string) (string, error) {
	u, err := url.Parse(s.api.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	// RawPath carries the escaped id so String does not escape it again.
	raw := strings.TrimRight(u.EscapedPath(), "/") + "/api/users/" + url.PathEscape(userID) + "/favorites/stream"
	if u.Path, err = url.PathUnescape(raw); err != nil {
		return "", fmt.Errorf("stream path: %w", err)
	}
	u.RawPath = raw
	return u.String(), nil
}

func favoritePath(userID, tutorID string) string {
	return "/api/users/" + url.PathEscape(userID) + "/favorites/" + url.PathEscape(tutorID)
}
