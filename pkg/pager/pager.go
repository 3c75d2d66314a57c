// Package pager drives cursor-paginated searches with backward navigation
// and per-cursor caching, so revisited pages never hit the network twice.
package pager

import (
	"context"
	"sync"

	"igviral/pkg/logger"
	"igviral/pkg/models"
)

// FetchFunc loads one page of normalized posts for a cursor. The empty
// cursor means the first page.
type FetchFunc func(ctx context.Context, cursor string) (*models.CachedPage, error)

// Pager owns the pagination state of one search context. Cursor keys use
// the empty string as the first-page sentinel. All methods are safe for
// concurrent use, though callers are expected to sequence navigation.
type Pager struct {
	mu    sync.Mutex
	fetch FetchFunc
	log   logger.Logger

	currentCursor string
	nextCursor    string
	prevStack     []string
	cache         map[string]*models.CachedPage
	results       []models.Post

	// generation identifies the current search context; cancelled marks the
	// active operation sequence as abandoned. A late fetch commits only when
	// both still match what it captured.
	generation uint64
	cancelled  bool
}

// New builds a pager around a fetch function
func New(fetch FetchFunc, log logger.Logger) *Pager {
	return &Pager{
		fetch: fetch,
		log:   log,
		cache: make(map[string]*models.CachedPage),
	}
}

// FetchPage loads the page at cursor, serving from cache when possible.
// Network errors propagate and leave all state untouched. A fetch that
// completes after Cancel or Reset is discarded without error.
func (p *Pager) FetchPage(ctx context.Context, cursor string) ([]models.Post, error) {
	p.mu.Lock()
	p.cancelled = false

	if page, ok := p.cache[cursor]; ok {
		p.apply(cursor, page)
		results := p.results
		p.mu.Unlock()
		p.log.DebugWithFields("page served from cache", map[string]interface{}{
			"cursor": cursor,
		})
		return results, nil
	}

	gen := p.generation
	p.mu.Unlock()

	page, err := p.fetch(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.generation != gen || p.cancelled {
		p.log.DebugWithFields("discarding stale page fetch", map[string]interface{}{
			"cursor": cursor,
		})
		return p.results, nil
	}
	if err != nil {
		return nil, err
	}

	p.cache[cursor] = page
	p.apply(cursor, page)
	return p.results, nil
}

// Next advances to the next page, pushing the current cursor for Prev.
// No-op when there is no next page.
func (p *Pager) Next(ctx context.Context) ([]models.Post, error) {
	p.mu.Lock()
	if p.nextCursor == "" {
		results := p.results
		p.mu.Unlock()
		return results, nil
	}
	p.prevStack = append(p.prevStack, p.currentCursor)
	cursor := p.nextCursor
	p.mu.Unlock()

	return p.FetchPage(ctx, cursor)
}

// Prev returns to the most recently visited page. No-op when there is no
// history.
func (p *Pager) Prev(ctx context.Context) ([]models.Post, error) {
	p.mu.Lock()
	if len(p.prevStack) == 0 {
		results := p.results
		p.mu.Unlock()
		return results, nil
	}
	cursor := p.prevStack[len(p.prevStack)-1]
	p.prevStack = p.prevStack[:len(p.prevStack)-1]
	p.mu.Unlock()

	return p.FetchPage(ctx, cursor)
}

// Reset clears cursors, history, cache, and visible results. Called whenever
// the search subject or mode changes, since cached pages are meaningless
// outside their originating context.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.cancelled = false
	p.currentCursor = ""
	p.nextCursor = ""
	p.prevStack = nil
	p.cache = make(map[string]*models.CachedPage)
	p.results = nil
}

// Cancel abandons the in-flight operation, if any. The transport request is
// not aborted; its result is discarded when it lands.
func (p *Pager) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = true
}

// Results returns the currently visible page
func (p *Pager) Results() []models.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// HasNext reports whether Next would fetch a page
func (p *Pager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextCursor != ""
}

// HasPrev reports whether Prev would fetch a page
func (p *Pager) HasPrev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prevStack) > 0
}

// NextCursor returns the cursor Next would fetch, empty when exhausted
func (p *Pager) NextCursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextCursor
}

// apply commits a page as the visible state. Caller holds the lock.
func (p *Pager) apply(cursor string, page *models.CachedPage) {
	p.currentCursor = cursor
	p.nextCursor = page.NextCursor
	p.results = page.Posts
}
