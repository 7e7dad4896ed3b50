// Package fakes holds in-memory implementations of the promotion ports
// for unit tests.
package fakes

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// Catalog is an in-memory CatalogRepository.
type Catalog struct {
	mu       sync.Mutex
	products map[string]domain.ProductPricing

	ScopeQueries int
	ReadCalls    int
	ApplyCalls   int
	BatchSizes   []int

	// FailApplyAt makes the n-th ApplySnapshots call (1-based) fail.
	FailApplyAt int
	ReadErr     error
	ScopeErr    error
}

// NewCatalog seeds a catalog.
func NewCatalog(products ...domain.ProductPricing) *Catalog {
	c := &Catalog{products: make(map[string]domain.ProductPricing)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put inserts or replaces a product.
func (c *Catalog) Put(p domain.ProductPricing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// Snapshot returns the stored snapshot of a product.
func (c *Catalog) Snapshot(productID string) *domain.PriceSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok || p.Snapshot == nil {
		return nil
	}
	s := *p.Snapshot
	return &s
}

func (c *Catalog) ProductIDsInScope(_ context.Context, scope domain.Scope) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ScopeQueries++
	if c.ScopeErr != nil {
		return nil, c.ScopeErr
	}

	var ids []string
	for id, p := range c.products {
		if scope.Matches(p.Ref()) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (c *Catalog) GetPricingByIDs(_ context.Context, productIDs []string) ([]domain.ProductPricing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReadCalls++
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}

	out := make([]domain.ProductPricing, 0, len(productIDs))
	for _, id := range productIDs {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) GetPricing(_ context.Context, productID string) (*domain.ProductPricing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReadCalls++
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	p, ok := c.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (c *Catalog) ProductIDsWithStaleSnapshot(_ context.Context, liveIDs []string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []string
	for id, p := range c.products {
		if p.Snapshot != nil && !slices.Contains(liveIDs, p.Snapshot.PromotionID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (c *Catalog) ApplySnapshots(_ context.Context, writes []contracts.SnapshotWrite) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ApplyCalls++
	if c.FailApplyAt > 0 && c.ApplyCalls == c.FailApplyAt {
		return ErrApply
	}

	c.BatchSizes = append(c.BatchSizes, len(writes))
	for _, w := range writes {
		p, ok := c.products[w.ProductID]
		if !ok {
			continue
		}
		if w.Snapshot != nil {
			s := *w.Snapshot
			p.Snapshot = &s
		} else {
			p.Snapshot = nil
		}
		c.products[w.ProductID] = p
	}
	return nil
}

// Promotions serves ListEligible from a slice.
type Promotions struct {
	mu    sync.Mutex
	items map[string]domain.PromotionSnapshot
	Err   error
	Loads int
}

// NewPromotions seeds the source.
func NewPromotions(items ...domain.PromotionSnapshot) *Promotions {
	p := &Promotions{items: make(map[string]domain.PromotionSnapshot)}
	for _, it := range items {
		p.items[it.ID] = it
	}
	return p
}

// Put inserts or replaces a promotion.
func (p *Promotions) Put(s domain.PromotionSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[s.ID] = s
}

// Delete removes a promotion.
func (p *Promotions) Delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, id)
}

func (p *Promotions) ListEligible(_ context.Context, t time.Time) ([]domain.PromotionSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Loads++
	if p.Err != nil {
		return nil, p.Err
	}

	var out []domain.PromotionSnapshot
	for _, s := range p.items {
		if s.IsEligibleAt(t) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.PromotionSnapshot) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// Orders is an OrderRepository with a fixed pending count.
type Orders struct {
	Pending int64
	Err     error
}

func (o *Orders) CountPending(context.Context) (int64, error) {
	return o.Pending, o.Err
}

// History records appended entries.
type History struct {
	mu      sync.Mutex
	Entries []domain.HistoryEntry
	Err     error
}

func (h *History) Append(_ context.Context, entry *domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.Entries = append(h.Entries, *entry)
	return nil
}

// Scheduler records enqueued jobs.
type Scheduler struct {
	mu   sync.Mutex
	Jobs []contracts.RecalcJob
	Err  error
}

func (s *Scheduler) Enqueue(_ context.Context, job contracts.RecalcJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Jobs = append(s.Jobs, job)
	return nil
}

// Len returns the number of recorded jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Jobs)
}
