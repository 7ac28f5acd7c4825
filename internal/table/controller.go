// Package table pages and filters a list fetched from the API. Filtering never
// touches the backing rows; a fresh fetch replaces them wholesale.
package table

import (
	"strings"
	"sync"
)

const DefaultPageSize = 10

// Row is a record plus its zero-based position in the filtered set.
type Row[T any] struct {
	Index int
	Value T
}

// Number is the 1-based display number.
func (r Row[T]) Number() int {
	return r.Index + 1
}

// Predicate decides whether a record is visible for one column.
type Predicate[T any] func(T) bool

// Contains matches when the column value contains needle, ignoring case.
// An empty needle matches everything.
func Contains[T any](column func(T) string, needle string) Predicate[T] {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return func(v T) bool {
		return needle == "" || strings.Contains(strings.ToLower(column(v)), needle)
	}
}

// Equals matches when the column value equals want, ignoring case.
func Equals[T any](column func(T) string, want string) Predicate[T] {
	return func(v T) bool {
		return strings.EqualFold(column(v), want)
	}
}

// Controller holds the rows of one list page. It is safe for concurrent use.
type Controller[T any] struct {
	mu       sync.RWMutex
	rows     []T
	filters  map[string]Predicate[T]
	visible  []T
	page     int
	pageSize int
}

// NewController returns an empty controller; pageSize <= 0 means DefaultPageSize.
func NewController[T any](pageSize int) *Controller[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller[T]{
		filters:  make(map[string]Predicate[T]),
		pageSize: pageSize,
	}
}

// SetRows replaces the backing rows and returns to the first page. Registered filters stay.
func (c *Controller[T]) SetRows(rows []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = append([]T(nil), rows...)
	c.page = 0
	c.applyLocked()
}

func (c *Controller[T]) SetFilter(column string, p Predicate[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filters[column] = p
	c.applyLocked()
}

func (c *Controller[T]) ClearFilter(column string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.filters, column)
	c.applyLocked()
}

func (c *Controller[T]) applyLocked() {
	c.visible = c.visible[:0]
	for _, row := range c.rows {
		if c.matchLocked(row) {
			c.visible = append(c.visible, row)
		}
	}
	c.page = c.clampLocked(c.page)
}

func (c *Controller[T]) matchLocked(row T) bool {
	for _, p := range c.filters {
		if !p(row) {
			return false
		}
	}
	return true
}

func (c *Controller[T]) clampLocked(n int) int {
	last := c.pageCountLocked() - 1
	switch {
	case n < 0:
		return 0
	case n > last:
		return last
	default:
		return n
	}
}

// SetPage moves to page n, clamped to the available pages, and returns the page selected.
func (c *Controller[T]) SetPage(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.page = c.clampLocked(n)
	return c.page
}

func (c *Controller[T]) CurrentPage() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// PageCount is never less than one, so an empty table still has a first page.
func (c *Controller[T]) PageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageCountLocked()
}

func (c *Controller[T]) pageCountLocked() int {
	if len(c.visible) == 0 {
		return 1
	}
	return (len(c.visible) + c.pageSize - 1) / c.pageSize
}

// Len is the size of the filtered set.
func (c *Controller[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.visible)
}

// Total is the size of the backing set.
func (c *Controller[T]) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Page returns the visible rows of the current page in API order.
func (c *Controller[T]) Page() []Row[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := c.page * c.pageSize
	end := min(start+c.pageSize, len(c.visible))
	if start >= end {
		return nil
	}

	out := make([]Row[T], 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, Row[T]{Index: i, Value: c.visible[i]})
	}
	return out
}
