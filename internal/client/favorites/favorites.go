// Package favorites mirrors the signed-in user's favorite tutor keys.
//
// The remote store is the only source of truth: the local set changes only
// when a snapshot arrives, and Toggle writes through without touching it.
package favorites

import (
	"context"
	"slices"
	"sync"

	"github.com/atinyakov/LearnLingo/internal/client/gateway"
	"github.com/atinyakov/LearnLingo/internal/models"
)

// State is the synchronization state.
type State int

const (
	// Unauthenticated means nobody is signed in and the set is empty.
	Unauthenticated State = iota
	// Loading means a user signed in and the first snapshot has not arrived.
	Loading
	// Synced means the set equals the latest snapshot.
	Synced
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Synced:
		return "synced"
	default:
		return "unauthenticated"
	}
}

// Store is the part of gateway.Store the synchronizer writes to and observes.
type Store interface {
	SetFavorite(ctx context.Context, userID, tutorID string) error
	RemoveFavorite(ctx context.Context, userID, tutorID string) error
	SubscribeFavorites(userID string, fn func(ids []string)) gateway.Disposer
}

// IdentitySource reports identity changes.
type IdentitySource interface {
	OnIdentityChange(fn func(*models.Identity)) gateway.Disposer
}

// Synchronizer keeps one favorites subscription per signed-in identity.
type Synchronizer struct {
	store Store

	mu       sync.Mutex
	state    State
	identity *models.Identity
	set      map[string]struct{}
	epoch    uint64
	release  gateway.Disposer
	closed   bool

	stopIdentity gateway.Disposer
	onChange     func(State)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithOnChange registers fn to run after every state or set change.
func WithOnChange(fn func(State)) Option {
	return func(s *Synchronizer) { s.onChange = fn }
}

// New starts following identity changes. The current identity is applied
// before New returns.
func New(store Store, identities IdentitySource, opts ...Option) *Synchronizer {
	s := &Synchronizer{store: store, set: map[string]struct{}{}}
	for _, opt := range opts {
		opt(s)
	}
	stop := identities.OnIdentityChange(s.onIdentity)

	s.mu.Lock()
	s.stopIdentity = stop
	s.mu.Unlock()
	return s
}

// State returns the synchronization state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the identity the set belongs to, or nil.
func (s *Synchronizer) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// IsFavorite reports whether tutorID is in the set.
func (s *Synchronizer) IsFavorite(tutorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[tutorID]
	return ok
}

// Favorites returns the set as a sorted slice.
func (s *Synchronizer) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.set))
	for id := range s.set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Toggle removes tutorID from the remote favorites if it is in the set and
// adds it otherwise. It does nothing when nobody is signed in. The local set
// follows once the store delivers the resulting snapshot.
func (s *Synchronizer) Toggle(ctx context.Context, tutorID string) error {
	s.mu.Lock()
	if s.identity == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	uid := s.identity.ID
	_, member := s.set[tutorID]
	s.mu.Unlock()

	if member {
		return s.store.RemoveFavorite(ctx, uid, tutorID)
	}
	return s.store.SetFavorite(ctx, uid, tutorID)
}

// Close releases the identity and favorites subscriptions.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.epoch++
	release, stop := s.release, s.stopIdentity
	s.release, s.stopIdentity = nil, nil
	s.identity = nil
	s.set = map[string]struct{}{}
	s.state = Unauthenticated
	s.mu.Unlock()

	if release != nil {
		release()
	}
	if stop != nil {
		stop()
	}
}

func (s *Synchronizer) onIdentity(id *models.Identity) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	previous := s.release
	s.release = nil
	s.epoch++
	epoch := s.epoch
	s.set = map[string]struct{}{}

	if id == nil {
		s.identity = nil
		s.state = Unauthenticated
		s.mu.Unlock()
		if previous != nil {
			previous()
		}
		s.changed(Unauthenticated)
		return
	}

	current := *id
	s.identity = &current
	s.state = Loading
	s.mu.Unlock()

	if previous != nil {
		previous()
	}
	s.changed(Loading)

	release := s.store.SubscribeFavorites(current.ID, func(ids []string) {
		s.applySnapshot(epoch, ids)
	})

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		// Superseded while subscribing.
		s.mu.Unlock()
		release()
		return
	}
	s.release = release
	s.mu.Unlock()
}

func (s *Synchronizer) applySnapshot(epoch uint64, ids []string) {
	s.mu.Lock()
	if s.closed || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.set = set
	s.state = Synced
	s.mu.Unlock()

	s.changed(Synced)
}

func (s *Synchronizer) changed(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
