package service

import (
	"context"
	"sync"
)

// Notifier fans out "favorites of user changed" signals.
//
// A signal carries no payload: receivers re-read the favorites snapshot.
// Signals may coalesce, so a receiver that is slow to drain sees at least one
// signal after the last change.
type Notifier interface {
	// Publish signals that the favorites of userID changed.
	Publish(ctx context.Context, userID string) error
	// Subscribe returns a signal channel for userID and a cancel func that
	// must be called exactly once to release it.
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// Hub is an in-process Notifier.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Publish implements Notifier.
func (h *Hub) Publish(_ context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		signal(ch)
	}
	return nil
}

// Subscribe implements Notifier.
func (h *Hub) Subscribe(_ context.Context, userID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan struct{}]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// signal performs a non-blocking send; a pending signal already covers this one.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
