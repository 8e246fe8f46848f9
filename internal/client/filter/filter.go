// Package filter derives filter options from loaded tutors and selects the
// tutors matching a language, level and price.
package filter

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// All is the "no constraint" value of every selection field.
const All = "All"

// Selection is the current filter. Fields hold All or an option value.
type Selection struct {
	Language string
	Level    string
	Price    string
}

// NoConstraint is the selection matching every tutor.
func NoConstraint() Selection {
	return Selection{Language: All, Level: All, Price: All}
}

// Active reports whether any field constrains the result.
func (s Selection) Active() bool {
	return !isAll(s.Language) || !isAll(s.Level) || !isAll(s.Price)
}

// OptionSet lists the values each field may take for the loaded tutors.
type OptionSet struct {
	Languages []string
	Levels    []string
	Prices    []string
}

// Options collects the distinct languages and levels in ascending order and
// the distinct prices in ascending numeric order rendered as "<value>$".
func Options(items []models.Tutor) OptionSet {
	langs := map[string]struct{}{}
	levels := map[string]struct{}{}
	prices := map[float64]struct{}{}
	for _, t := range items {
		for _, l := range t.Languages {
			langs[l] = struct{}{}
		}
		for _, l := range t.Levels {
			levels[l] = struct{}{}
		}
		prices[t.PricePerHour] = struct{}{}
	}

	sortedPrices := make([]float64, 0, len(prices))
	for p := range prices {
		sortedPrices = append(sortedPrices, p)
	}
	slices.Sort(sortedPrices)
	rendered := make([]string, len(sortedPrices))
	for i, p := range sortedPrices {
		rendered[i] = FormatPrice(p)
	}

	return OptionSet{
		Languages: sortedKeys(langs),
		Levels:    sortedKeys(levels),
		Prices:    rendered,
	}
}

// FormatPrice renders a price option, e.g. 30 as "30$" and 27.5 as "27.5$".
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "$"
}

// ParsePrice parses a price option back to its value.
func ParsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "$"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Match reports whether t passes every constrained field of sel.
// A price that does not parse matches nothing.
func Match(t models.Tutor, sel Selection) bool {
	if !isAll(sel.Language) && !slices.Contains(t.Languages, sel.Language) {
		return false
	}
	if !isAll(sel.Level) && !slices.Contains(t.Levels, sel.Level) {
		return false
	}
	if !isAll(sel.Price) {
		p, ok := ParsePrice(sel.Price)
		if !ok || t.PricePerHour != p {
			return false
		}
	}
	return true
}

// Apply returns the tutors matching sel in their original order.
func Apply(items []models.Tutor, sel Selection) []models.Tutor {
	out := make([]models.Tutor, 0, len(items))
	for _, t := range items {
		if Match(t, sel) {
			out = append(out, t)
		}
	}
	return out
}

// ShowLoadMore decides whether to offer loading another page. With an
// active filter it is offered only while fewer than a page of tutors match.
func ShowLoadMore(hasMore bool, sel Selection, filteredCount, pageSize int) bool {
	if !hasMore {
		return false
	}
	if !sel.Active() {
		return true
	}
	return filteredCount < pageSize
}

// Engine holds the selection of one view. Every change, Reset included, is
// published as a single transition.
type Engine struct {
	mu        sync.Mutex
	sel       Selection
	listeners map[int]func(Selection)
	nextID    int
}

// NewEngine creates an engine with no constraint.
func NewEngine() *Engine {
	return &Engine{sel: NoConstraint(), listeners: map[int]func(Selection){}}
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// SetLanguage selects a language; "" or All clears it.
func (e *Engine) SetLanguage(v string) { e.update(func(s *Selection) { s.Language = normalize(v) }) }

// SetLevel selects a level; "" or All clears it.
func (e *Engine) SetLevel(v string) { e.update(func(s *Selection) { s.Level = normalize(v) }) }

// SetPrice selects a price option; "" or All clears it.
func (e *Engine) SetPrice(v string) { e.update(func(s *Selection) { s.Price = normalize(v) }) }

// Reset clears all three fields at once.
func (e *Engine) Reset() { e.update(func(s *Selection) { *s = NoConstraint() }) }

// Subscribe calls fn with every new selection until the returned func is called.
func (e *Engine) Subscribe(fn func(Selection)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Engine) update(change func(*Selection)) {
	e.mu.Lock()
	prev := e.sel
	change(&e.sel)
	next := e.sel
	listeners := make([]func(Selection), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	if next == prev {
		return
	}
	for _, fn := range listeners {
		fn(next)
	}
}

func isAll(v string) bool {
	return v == "" || v == All
}

func normalize(v string) string {
	if isAll(v) {
		return All
	}
	return v
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
