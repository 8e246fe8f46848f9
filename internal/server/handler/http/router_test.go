package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/middleware"
	"github.com/atinyakov/LearnLingo/internal/models"
	handler "github.com/atinyakov/LearnLingo/internal/server/handler/http"
	"github.com/atinyakov/LearnLingo/internal/service"
)

type testAPI struct {
	router    http.Handler
	auth      *fakeAuthService
	tutors    *fakeTutorService
	bookings  *fakeBookingService
	favorites *service.FavoriteService
}

func newTestAPI() *testAPI {
	api := &testAPI{
		auth:      &fakeAuthService{},
		tutors:    &fakeTutorService{},
		bookings:  &fakeBookingService{},
		favorites: service.NewFavoriteService(newMemFavorites(), service.NewHub(), nil),
	}
	api.router = handler.NewRouter(handler.Handlers{
		Auth:      &handler.AuthHandler{AuthService: api.auth},
		Tutors:    &handler.TutorHandler{TutorService: api.tutors},
		Favorites: &handler.FavoritesHandler{FavoriteService: api.favorites, Metrics: middleware.NewMetrics()},
		Bookings:  &handler.BookingHandler{BookingService: api.bookings},
	}, fakeTokens{}, middleware.NewMetrics(), zap.NewNop())
	return api
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error.Code
}

func TestRegister(t *testing.T) {
	api := newTestAPI()
	api.auth.result = &service.AuthResult{Token: "tok", Identity: models.Identity{ID: "u1", Name: "Ann", Email: "a@b.io"}}

	rec := api.do(http.MethodPost, "/api/register", "", `{"name":"Ann","email":"a@b.io","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ann", api.auth.got.Name)

	var res service.AuthResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "u1", res.Identity.ID)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"bad json", `not a json`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"duplicate", `{"name":"a","email":"a@b.io","password":"secret1"}`, appErrors.ErrEmailInUse, http.StatusConflict, "auth/email-already-in-use"},
		{"weak password", `{"name":"a","email":"a@b.io","password":"1"}`, appErrors.ErrWeakPassword, http.StatusBadRequest, "auth/weak-password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.auth.err = tt.err
			rec := api.do(http.MethodPost, "/api/register", "", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, errorCode(t, rec))
		})
	}
}

func TestRegister_RejectsNonJSON(t *testing.T) {
	api := newTestAPI()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("name=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	api := newTestAPI()
	api.auth.err = appErrors.ErrWrongPassword
	rec := api.do(http.MethodPost, "/api/login", "", `{"email":"a@b.io","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth/wrong-password", errorCode(t, rec))
}

func TestLogout(t *testing.T) {
	api := newTestAPI()

	rec := api.do(http.MethodPost, "/api/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/api/logout", "token-u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sess-u1", api.auth.loggedOut)
}

func TestTutorsList(t *testing.T) {
	api := newTestAPI()
	api.tutors.page = models.PageResult{Items: []models.Tutor{{ID: "t5"}}, NextCursor: "t5"}

	rec := api.do(http.MethodGet, "/api/tutors?limit=4&after=t4", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, api.tutors.gotLimit)
	assert.Equal(t, "t4", api.tutors.gotAfter)

	var page models.PageResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, "t5", page.NextCursor)
	assert.Len(t, page.Items, 1)
}

func TestTutorsList_EmptyPageHasItemsArray(t *testing.T) {
	api := newTestAPI()
	rec := api.do(http.MethodGet, "/api/tutors", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestTutorsList_BadLimit(t *testing.T) {
	api := newTestAPI()
	rec := api.do(http.MethodGet, "/api/tutors?limit=four", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTutorsBatch(t *testing.T) {
	api := newTestAPI()
	api.tutors.items = []models.Tutor{{ID: "t2"}}

	rec := api.do(http.MethodPost, "/api/tutors/batch", "", `{"ids":["t2","gone"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"t2", "gone"}, api.tutors.gotIDs)

	var res handler.BatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Len(t, res.Items, 1)
	assert.Equal(t, "t2", res.Items[0].ID)
}

func TestBookTrial(t *testing.T) {
	body := `{"reason":"career","full_name":"Jane","email":"j@x.io","phone":"123456"}`

	api := newTestAPI()
	rec := api.do(http.MethodPost, "/api/tutors/t1/trial", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "t1", api.bookings.gotTutor)
	assert.Equal(t, "", api.bookings.gotUser)

	rec = api.do(http.MethodPost, "/api/tutors/t1/trial", "token-u1", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", api.bookings.gotUser)
}

func TestFavorites_OwnerOnly(t *testing.T) {
	api := newTestAPI()

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPut, "/api/users/u1/favorites/t1", "", "").Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, "/api/users/u1/favorites/t1", "token-u2", "").Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/users/u1/favorites", "token-u2", "").Code)
}

func TestFavorites_PutDeleteList(t *testing.T) {
	api := newTestAPI()

	for _, id := range []string{"t2", "t1", "t2"} {
		require.Equal(t, http.StatusNoContent, api.do(http.MethodPut, "/api/users/u1/favorites/"+id, "token-u1", "").Code)
	}
	rec := api.do(http.MethodGet, "/api/users/u1/favorites", "token-u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ids":["t1","t2"]}`, rec.Body.String())

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/users/u1/favorites/t1", "token-u1", "").Code)
	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/users/u1/favorites/t1", "token-u1", "").Code)

	rec = api.do(http.MethodGet, "/api/users/u1/favorites", "token-u1", "")
	assert.JSONEq(t, `{"ids":["t2"]}`, rec.Body.String())
}

func TestFavorites_Stream(t *testing.T) {
	api := newTestAPI()
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/users/u1/favorites/stream"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{"Authorization": []string{"Bearer token-u1"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	read := func() models.FavoritesSnapshot {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var snap models.FavoritesSnapshot
		require.NoError(t, conn.ReadJSON(&snap))
		return snap
	}

	assert.Empty(t, read().IDs)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodPut, "/api/users/u1/favorites/t3", "token-u1", "").Code)
	assert.Equal(t, []string{"t3"}, read().IDs)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/users/u1/favorites/t3", "token-u1", "").Code)
	assert.Empty(t, read().IDs)
}
