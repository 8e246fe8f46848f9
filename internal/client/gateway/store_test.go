package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/LearnLingo/internal/models"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newFakeStore(session *Session, rt roundTripperFunc) *HTTPStore {
	return NewHTTPStore(Config{BaseURL: "http://api.test/", HTTPClient: &http.Client{Transport: rt}}, session)
}

func TestFetchPage(t *testing.T) {
	var gotURL string
	store := newFakeStore(NewSession(nil, nil), func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(200, `{"items":[{"id":"t5"},{"id":"t6"}],"next_cursor":"t6"}`), nil
	})

	page, err := store.FetchPage(context.Background(), 2, "t4")
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/api/tutors?after=t4&limit=2", gotURL)
	assert.Equal(t, "t6", page.NextCursor)
	assert.Len(t, page.Items, 2)
}

func TestFetchPage_ServerError(t *testing.T) {
	store := newFakeStore(NewSession(nil, nil), func(r *http.Request) (*http.Response, error) {
		return jsonResponse(500, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`), nil
	})

	_, err := store.FetchPage(context.Background(), 4, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
}

func TestFetchByIDs(t *testing.T) {
	calls := 0
	store := newFakeStore(NewSession(nil, nil), func(r *http.Request) (*http.Response, error) {
		calls++
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"t1", "gone"}, body["ids"])
		return jsonResponse(200, `{"items":[{"id":"t1"}]}`), nil
	})

	items, err := store.FetchByIDs(context.Background(), []string{"t1", "gone"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = store.FetchByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, calls, "empty batch must not hit the network")
}

func TestSetRemoveFavorite(t *testing.T) {
	session := NewSession(nil, nil)
	var got []string
	store := newFakeStore(session, func(r *http.Request) (*http.Response, error) {
		got = append(got, r.Method+" "+r.URL.Path+" "+r.Header.Get("Authorization"))
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	assert.ErrorIs(t, store.SetFavorite(context.Background(), "u1", "t1"), ErrUnauthenticated)

	session.Set("tok", models.Identity{ID: "u1"})
	require.NoError(t, store.SetFavorite(context.Background(), "u1", "t1"))
	require.NoError(t, store.RemoveFavorite(context.Background(), "u1", "t1"))

	assert.Equal(t, []string{
		"PUT /api/users/u1/favorites/t1 Bearer tok",
		"DELETE /api/users/u1/favorites/t1 Bearer tok",
	}, got)
}

func TestUnauthorizedSignsOut(t *testing.T) {
	session := NewSession(nil, nil)
	session.Set("expired", models.Identity{ID: "u1"})
	store := newFakeStore(session, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"error":{"code":"UNAUTHORIZED","message":"session expired"}}`), nil
	})

	err := store.SetFavorite(context.Background(), "u1", "t1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, session.Identity())
}

func TestStreamURL(t *testing.T) {
	cases := []struct {
		name, base, userID, want string
	}{
		{"plain http", "http://localhost:8080", "u1", "ws://localhost:8080/api/users/u1/favorites/stream"},
		{"https", "https://api.example.com", "u1", "wss://api.example.com/api/users/u1/favorites/stream"},
		{"space escaped once", "http://localhost:8080", "u 1", "ws://localhost:8080/api/users/u%201/favorites/stream"},
		{"slash stays in segment", "http://localhost:8080", "a/b", "ws://localhost:8080/api/users/a%2Fb/favorites/stream"},
		{"percent escaped once", "http://localhost:8080", "a%b", "ws://localhost:8080/api/users/a%25b/favorites/stream"},
		{"base path kept", "https://example.com/learn/", "u 1", "wss://example.com/learn/api/users/u%201/favorites/stream"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewHTTPStore(Config{BaseURL: tc.base}, NewSession(nil, nil))
			got, err := s.streamURL(tc.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStreamURL_MatchesFavoritePath(t *testing.T) {
	s := NewHTTPStore(Config{BaseURL: "http://localhost:8080"}, NewSession(nil, nil))
	for _, id := range []string{"u1", "u 1", "a/b", "a%b"} {
		got, err := s.streamURL(id)
		require.NoError(t, err)
		want := "ws://localhost:8080" + strings.TrimSuffix(favoritePath(id, "x"), "/x") + "/stream"
		assert.Equal(t, want, got, id)
	}
}

// favoritesServer pushes whatever is sent on snapshots to every connected stream.
type favoritesServer struct {
	*httptest.Server
	snapshots chan []string
	mu        sync.Mutex
	dials     int
}

func newFavoritesServer(t *testing.T, dropFirst bool) *favoritesServer {
	fs := &favoritesServer{snapshots: make(chan []string, 8)}
	upgrader := websocket.Upgrader{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fs.mu.Lock()
		fs.dials++
		n := fs.dials
		fs.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if dropFirst && n == 1 {
			return
		}
		for ids := range fs.snapshots {
			if err := conn.WriteJSON(models.FavoritesSnapshot{IDs: ids}); err != nil {
				return
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func receive(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case ids := <-ch:
		return ids
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func TestSubscribeFavorites_ReconnectsAndDelivers(t *testing.T) {
	srv := newFavoritesServer(t, true)
	session := NewSession(nil, nil)
	session.Set("tok", models.Identity{ID: "u1"})
	store := NewHTTPStore(Config{BaseURL: srv.URL, RetryInterval: 10 * time.Millisecond}, session)

	got := make(chan []string, 8)
	dispose := store.SubscribeFavorites("u1", func(ids []string) { got <- ids })
	defer dispose()

	srv.snapshots <- []string{"t3", "t7"}
	assert.Equal(t, []string{"t3", "t7"}, receive(t, got))

	srv.snapshots <- []string{}
	assert.Empty(t, receive(t, got))
}

func TestSubscribeFavorites_RejectedSignsOut(t *testing.T) {
	srv := newFavoritesServer(t, false)
	session := NewSession(nil, nil)
	session.Set("stale", models.Identity{ID: "u1"})

	signedOut := make(chan struct{})
	session.Subscribe(func(id *models.Identity) {
		if id == nil {
			close(signedOut)
		}
	})

	store := NewHTTPStore(Config{BaseURL: srv.URL, RetryInterval: 10 * time.Millisecond}, session)
	dispose := store.SubscribeFavorites("u1", func([]string) { t.Error("unexpected snapshot") })
	defer dispose()

	select {
	case <-signedOut:
	case <-time.After(5 * time.Second):
		t.Fatal("session was not cleared")
	}
}

func TestReadFavorites_NoToken(t *testing.T) {
	store := NewHTTPStore(Config{BaseURL: "http://unused"}, NewSession(nil, nil))
	err := store.readFavorites(context.Background(), "u1", func([]string) {})
	assert.True(t, errors.Is(err, ErrUnauthenticated))
}

func TestBookTrial(t *testing.T) {
	session := NewSession(nil, nil)
	var auth []string
	store := newFakeStore(session, func(r *http.Request) (*http.Response, error) {
		auth = append(auth, r.Header.Get("Authorization"))
		assert.Equal(t, "/api/tutors/t1/trial", r.URL.Path)
		var b models.TrialBooking
		require.NoError(t, json.NewDecoder(r.Body).Decode(&b))
		b.ID = "b1"
		out, _ := json.Marshal(b)
		return jsonResponse(http.StatusCreated, string(out)), nil
	})

	booking := models.TrialBooking{Reason: models.ReasonKids, FullName: "Jane", Email: "j@x.io", Phone: "123456"}
	got, err := store.BookTrial(context.Background(), "t1", booking)
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)

	session.Set("tok", models.Identity{ID: "u1"})
	_, err = store.BookTrial(context.Background(), "t1", booking)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer tok"}, auth)
}

func TestBookTrial_Validation(t *testing.T) {
	store := newFakeStore(NewSession(nil, nil), func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"code":"VALIDATION_ERROR","message":"Invalid email"}}`), nil
	})
	_, err := store.BookTrial(context.Background(), "t1", models.TrialBooking{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email", apiErr.Message)
}
