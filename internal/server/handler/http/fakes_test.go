package http_test

import (
	"context"
	"sort"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/service"
)

// fakeTokens accepts "token-<uid>" as a bearer token for uid.
type fakeTokens struct{}

func (fakeTokens) ValidateToken(ctx context.Context, token string) (*service.Claims, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, appErrors.ErrUnauthorized
	}
	uid := token[len(prefix):]
	return &service.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uid, ID: "sess-" + uid}}, nil
}

type fakeAuthService struct {
	result    *service.AuthResult
	err       error
	got       service.Credentials
	loggedOut string
}

func (f *fakeAuthService) Register(ctx context.Context, in service.Credentials) (*service.AuthResult, error) {
	f.got = in
	return f.result, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, in service.Credentials) (*service.AuthResult, error) {
	f.got = in
	return f.result, f.err
}

func (f *fakeAuthService) Logout(ctx context.Context, sessionID string) error {
	f.loggedOut = sessionID
	return f.err
}

type fakeTutorService struct {
	gotLimit int
	gotAfter string
	gotIDs   []string
	page     models.PageResult
	items    []models.Tutor
	err      error
}

func (f *fakeTutorService) Page(ctx context.Context, limit int, after string) (models.PageResult, error) {
	f.gotLimit, f.gotAfter = limit, after
	return f.page, f.err
}

func (f *fakeTutorService) ByIDs(ctx context.Context, ids []string) ([]models.Tutor, error) {
	f.gotIDs = ids
	return f.items, f.err
}

type fakeBookingService struct {
	gotTutor string
	gotUser  string
	err      error
}

func (f *fakeBookingService) Book(ctx context.Context, tutorID, userID string, b models.TrialBooking) (*models.TrialBooking, error) {
	f.gotTutor, f.gotUser = tutorID, userID
	if f.err != nil {
		return nil, f.err
	}
	b.ID, b.TutorID, b.UserID = "b1", tutorID, userID
	return &b, nil
}

// memFavorites is an in-memory FavoriteRepository for service.FavoriteService.
type memFavorites struct {
	mu  sync.Mutex
	set map[string]map[string]struct{}
}

func newMemFavorites() *memFavorites {
	return &memFavorites{set: map[string]map[string]struct{}{}}
}

func (m *memFavorites) SetFavorite(ctx context.Context, userID, tutorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set[userID] == nil {
		m.set[userID] = map[string]struct{}{}
	}
	m.set[userID][tutorID] = struct{}{}
	return nil
}

func (m *memFavorites) RemoveFavorite(ctx context.Context, userID, tutorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.set[userID], tutorID)
	return nil
}

func (m *memFavorites) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for id := range m.set[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
