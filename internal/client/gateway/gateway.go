// Package gateway defines the remote capabilities the client core consumes
// (the paged tutor store and the identity provider) and their HTTP
// implementations against the LearnLingo API.
package gateway

import (
	"context"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// Disposer releases a subscription. Calling it more than once is a no-op.
type Disposer func()

// Store is the remote tutor store.
type Store interface {
	// FetchPage returns up to pageSize tutors with keys after the cursor in
	// ascending key order. NextCursor is set iff the page is full.
	FetchPage(ctx context.Context, pageSize int, after string) (models.PageResult, error)
	// FetchByIDs returns the tutors that exist among ids; unknown ids are omitted.
	FetchByIDs(ctx context.Context, ids []string) ([]models.Tutor, error)
	// SetFavorite and RemoveFavorite are idempotent key writes.
	SetFavorite(ctx context.Context, userID, tutorID string) error
	RemoveFavorite(ctx context.Context, userID, tutorID string) error
	// SubscribeFavorites pushes a full snapshot of the user's favorite keys
	// after every change until disposed.
	SubscribeFavorites(userID string, fn func(ids []string)) Disposer
}

// Identity is the identity provider.
type Identity interface {
	Register(ctx context.Context, name, email, password string) (models.Identity, error)
	Login(ctx context.Context, email, password string) (models.Identity, error)
	Logout(ctx context.Context) error
	// OnIdentityChange calls fn with the current identity (nil when signed
	// out) right away and again after every change.
	OnIdentityChange(fn func(*models.Identity)) Disposer
}
