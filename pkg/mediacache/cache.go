// Package mediacache translates short-lived upstream media URLs into stable
// local references through a caching proxy fetch.
package mediacache

import (
	"bytes"
	"container/list"
	"context"
	"strings"
	"sync"

	"igviral/pkg/logger"
)

// Unavailable is the sentinel reference returned when a proxy fetch fails.
// Callers render a placeholder; the original upstream URL is never handed
// back because it may already be revoked.
const Unavailable = "unavailable"

// RefPrefix is the path prefix local references are served under
const RefPrefix = "/media/"

// Fetcher retrieves a media payload through the proxy endpoint
type Fetcher interface {
	ProxyImage(ctx context.Context, sourceURL string) ([]byte, string, error)
}

type entry struct {
	key string
	ref string
}

// Cache memoizes proxy resolutions keyed by original URL, bounded by an LRU
// cap. Entries otherwise live for the process lifetime.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	cap     int

	store   *BlobStore
	fetcher Fetcher
	log     logger.Logger
}

// New builds a cache over a blob store and proxy fetcher. maxEntries <= 0
// disables the cap.
func New(store *BlobStore, fetcher Fetcher, maxEntries int, log logger.Logger) *Cache {
	return &Cache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		cap:     maxEntries,
		store:   store,
		fetcher: fetcher,
		log:     log,
	}
}

// Resolve returns a local reference for an upstream media URL. Cache hits
// return without network I/O. Failures return Unavailable and are not
// cached, so a later resolve may retry. Concurrent resolutions of the same
// URL may both fetch; the last insert wins.
func (c *Cache) Resolve(ctx context.Context, originalURL string) string {
	if originalURL == "" {
		return Unavailable
	}

	if ref, ok := c.lookup(originalURL); ok {
		logger.LogMediaResolve(c.log, originalURL, true, nil)
		return ref
	}

	payload, contentType, err := c.fetcher.ProxyImage(ctx, originalURL)
	if err != nil {
		logger.LogMediaResolve(c.log, originalURL, false, err)
		return Unavailable
	}

	name, err := c.store.Save(Key(originalURL), bytes.NewReader(payload), contentType)
	if err != nil {
		logger.LogMediaResolve(c.log, originalURL, false, err)
		return Unavailable
	}

	ref := RefPrefix + name
	c.insert(originalURL, ref)
	logger.LogMediaResolve(c.log, originalURL, false, nil)
	return ref
}

// lookup finds a cached reference by exact key, falling back to any key
// contained in the URL. Signed upstream URLs vary their query string between
// payloads while keeping the base path.
func (c *Cache) lookup(originalURL string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[originalURL]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry).ref, true
	}

	for key, el := range c.entries {
		if strings.Contains(originalURL, key) {
			c.order.MoveToFront(el)
			return el.Value.(*entry).ref, true
		}
	}
	return "", false
}

func (c *Cache) insert(key, ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).ref = ref
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, ref: ref})

	if c.cap > 0 && c.order.Len() > c.cap {
		oldest := c.order.Back()
		if oldest != nil {
			evicted := oldest.Value.(*entry)
			c.order.Remove(oldest)
			delete(c.entries, evicted.key)
			c.store.Remove(Key(evicted.key))
			c.log.DebugWithFields("evicted media cache entry", map[string]interface{}{
				"key": evicted.key,
			})
		}
	}
}

// Len returns the number of cached resolutions
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
