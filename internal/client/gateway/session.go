package gateway

import (
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	Save(token string, identity models.Identity) error
	Clear() error
}

// Session holds the bearer token and the identity it belongs to, and
// notifies listeners whenever the identity changes.
type Session struct {
	mu        sync.Mutex
	token     string
	identity  *models.Identity
	listeners map[int]func(*models.Identity)
	nextID    int

	store  SessionStore
	logger *zap.Logger
}

// NewSession creates a signed-out session. store may be nil.
func NewSession(store SessionStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		listeners: make(map[int]func(*models.Identity)),
		store:     store,
		logger:    logger,
	}
}

// Restore installs a previously persisted session without saving it again.
func (s *Session) Restore(token string, identity models.Identity) {
	s.update(token, &identity, false)
}

// Set signs the session in.
func (s *Session) Set(token string, identity models.Identity) {
	s.update(token, &identity, true)
}

// Clear signs the session out. Clearing a signed-out session does nothing.
func (s *Session) Clear() {
	s.mu.Lock()
	signedIn := s.token != ""
	s.mu.Unlock()
	if signedIn {
		s.update("", nil, true)
	}
}

// Token returns the bearer token or "".
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns a copy of the current identity or nil.
func (s *Session) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.identity)
}

// Subscribe calls fn with the current identity and after every change.
func (s *Session) Subscribe(fn func(*models.Identity)) Disposer {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := copyIdentity(s.identity)
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) update(token string, identity *models.Identity, persist bool) {
	s.mu.Lock()
	s.token = token
	s.identity = copyIdentity(identity)
	listeners := make([]func(*models.Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if persist && s.store != nil {
		var err error
		if identity == nil {
			err = s.store.Clear()
		} else {
			err = s.store.Save(token, *identity)
		}
		if err != nil {
			s.logger.Warn("failed to persist session", zap.Error(err))
		}
	}

	// Listeners run without the lock so they may call back into the session.
	for _, fn := range listeners {
		fn(copyIdentity(identity))
	}
}

func copyIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
