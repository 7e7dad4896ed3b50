package cache

import (
	"context"
	"sync"
	"time"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
)

type memoryEntry struct {
	view      contracts.PriceView
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryPriceCache is an in-process PriceCache used when Redis is not
// configured. Entries expire after the TTL or at the promotion end,
// whichever comes first. Expired entries are dropped on read and swept
// once the writes since the last sweep reach half the map size.
type MemoryPriceCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	clock   clock.Clock
	writes  int
}

// NewMemoryPriceCache creates an empty cache. A non-positive ttl uses DefaultTTL.
func NewMemoryPriceCache(ttl time.Duration, clk clock.Clock) *MemoryPriceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryPriceCache{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		clock:   clk,
	}
}

func (c *MemoryPriceCache) Get(_ context.Context, productID string) (*contracts.PriceView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[productID]
	if !ok {
		return nil, nil
	}
	if e.expired(c.clock.Now()) {
		delete(c.entries, productID)
		return nil, nil
	}
	view := e.view
	return &view, nil
}

func (c *MemoryPriceCache) Set(_ context.Context, view *contracts.PriceView) error {
	if view == nil {
		return nil
	}
	now := c.clock.Now()
	ttl := entryTTL(c.ttl, view, now)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, view.ProductID)
		return nil
	}
	c.entries[view.ProductID] = &memoryEntry{view: *view, expiresAt: now.Add(ttl)}

	c.writes++
	if c.writes >= len(c.entries)/2 {
		c.sweep(now)
	}
	return nil
}

func (c *MemoryPriceCache) Invalidate(_ context.Context, productIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range productIDs {
		delete(c.entries, id)
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryPriceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryPriceCache) sweep(now time.Time) {
	for id, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, id)
		}
	}
	c.writes = 0
}
