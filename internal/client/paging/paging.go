// Package paging accumulates a cursor-paged remote list of tutors.
//
// A Controller appends pages in store-key order and never refetches once the
// store reports exhaustion. Results that arrive after the controller was
// disposed, or after a newer load superseded them, are discarded.
package paging

import (
	"context"
	"errors"
	"sync"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// ErrInvalidPageSize is recorded when a load is asked for a non-positive page.
var ErrInvalidPageSize = errors.New("page size must be positive")

// Fetcher fetches one page after a cursor.
type Fetcher interface {
	FetchPage(ctx context.Context, pageSize int, after string) (models.PageResult, error)
}

// State is a read-only view of a Controller.
type State struct {
	Items   []models.Tutor
	Cursor  string
	HasMore bool
	Loading bool
	Err     error
}

// Controller owns the cumulative tutor list.
type Controller struct {
	fetcher Fetcher

	mu       sync.Mutex
	items    []models.Tutor
	cursor   string
	hasMore  bool
	inFlight bool
	err      error
	gen      uint64
	disposed bool
	cancel   context.CancelFunc
}

// NewController creates an empty controller. Nothing is fetched until LoadFirstPage.
func NewController(fetcher Fetcher) *Controller {
	return &Controller{fetcher: fetcher}
}

// LoadFirstPage fetches the first page and replaces the list with it.
// A load already in flight is superseded. On failure the error is recorded
// and the list is left as it was.
func (c *Controller) LoadFirstPage(ctx context.Context, pageSize int) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if pageSize < 1 {
		c.err = ErrInvalidPageSize
		c.mu.Unlock()
		return
	}
	c.gen++
	if c.cancel != nil {
		c.cancel()
	}
	ctx, gen := c.begin(ctx)
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, pageSize, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(gen) {
		return
	}
	if err != nil {
		c.err = err
		return
	}
	c.items = append([]models.Tutor(nil), page.Items...)
	c.advance(page, pageSize)
}

// LoadNextPage appends the page after the current cursor. It does nothing
// unless more items remain and no load is in flight. On failure the error is
// recorded and both list and cursor keep their previous values.
func (c *Controller) LoadNextPage(ctx context.Context, pageSize int) {
	c.mu.Lock()
	if c.disposed || !c.hasMore || c.inFlight {
		c.mu.Unlock()
		return
	}
	if pageSize < 1 {
		c.err = ErrInvalidPageSize
		c.mu.Unlock()
		return
	}
	cursor := c.cursor
	ctx, gen := c.begin(ctx)
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, pageSize, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(gen) {
		return
	}
	if err != nil {
		c.err = err
		return
	}
	c.items = append(c.items, page.Items...)
	c.advance(page, pageSize)
}

// Dispose tears the controller down. An in-flight request is cancelled and
// its result dropped; later loads are no-ops.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	c.gen++
	c.inFlight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Items:   append([]models.Tutor(nil), c.items...),
		Cursor:  c.cursor,
		HasMore: c.hasMore,
		Loading: c.inFlight,
		Err:     c.err,
	}
}

// begin marks a load as started. c.mu must be held.
func (c *Controller) begin(ctx context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inFlight = true
	c.err = nil
	return ctx, c.gen
}

// finish reports whether the load started under gen may be applied. c.mu must be held.
func (c *Controller) finish(gen uint64) bool {
	if c.disposed || gen != c.gen {
		return false
	}
	c.inFlight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return true
}

// advance stores the continuation. A short page or a missing cursor exhausts the list.
func (c *Controller) advance(page models.PageResult, pageSize int) {
	c.cursor = page.NextCursor
	c.hasMore = page.NextCursor != "" && len(page.Items) >= pageSize
}
