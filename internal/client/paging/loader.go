package paging

import (
	"context"
	"sync"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// BatchFetcher fetches tutors by key.
type BatchFetcher interface {
	FetchByIDs(ctx context.Context, ids []string) ([]models.Tutor, error)
}

// LoaderState is a read-only view of a Loader.
type LoaderState struct {
	Items   []models.Tutor
	Loading bool
	Err     error
}

// Loader resolves a set of tutor keys, as the favorites view needs. Only the
// most recent Load is applied, and nothing is applied after Dispose.
type Loader struct {
	fetcher BatchFetcher

	mu       sync.Mutex
	items    []models.Tutor
	loading  bool
	err      error
	gen      uint64
	disposed bool
	cancel   context.CancelFunc
}

// NewLoader creates a Loader.
func NewLoader(fetcher BatchFetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load fetches ids and replaces the loaded items. An empty set clears the
// items without a request. Unknown ids are simply absent from the result.
func (l *Loader) Load(ctx context.Context, ids []string) {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return
	}
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.err = nil
	if len(ids) == 0 {
		l.items = nil
		l.loading = false
		l.mu.Unlock()
		return
	}
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.loading = true
	l.mu.Unlock()

	items, err := l.fetcher.FetchByIDs(ctx, append([]string(nil), ids...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed || gen != l.gen {
		return
	}
	l.loading = false
	l.cancel = nil
	cancel()
	if err != nil {
		l.err = err
		return
	}
	l.items = items
}

// Dispose drops any in-flight result.
func (l *Loader) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disposed = true
	l.gen++
	l.loading = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() LoaderState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoaderState{
		Items:   append([]models.Tutor(nil), l.items...),
		Loading: l.loading,
		Err:     l.err,
	}
}
