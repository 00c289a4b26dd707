// Package catalog owns the product records, their live stock counters,
// and the per-product lock registry.
package catalog

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Product is one sellable item. Stock is the only mutable field: it is
// stored atomically so snapshots read it without a lock, but every
// check-then-act sequence must run under the product's registry lock.
type Product struct {
	Name        string
	Price       float64
	Description string

	stock atomic.Int64
}

func (p *Product) Stock() int64 { return p.stock.Load() }

// Adjust adds delta to the stock counter and returns the new value.
// The caller must hold the product's registry lock.
func (p *Product) Adjust(delta int64) int64 { return p.stock.Add(delta) }

// Item is an immutable snapshot row of one product.
type Item struct {
	Name        string
	Price       float64
	Stock       int64
	Description string
}

// Key normalizes a product name into its catalog key.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Store maps product keys to products and to their dedicated locks.
// Both maps are populated once at load time and never change shape
// afterward, so lookups need no synchronization.
type Store struct {
	products map[string]*Product
	locks    map[string]*sync.Mutex
	order    []string
}

func newStore() *Store {
	return &Store{
		products: make(map[string]*Product),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Store) add(p *Product) {
	k := Key(p.Name)
	if _, ok := s.products[k]; !ok {
		s.order = append(s.order, k)
		s.locks[k] = &sync.Mutex{}
	}
	s.products[k] = p
}

// Get returns the product for a normalized key.
func (s *Store) Get(key string) (*Product, bool) {
	p, ok := s.products[key]
	return p, ok
}

// LockFor returns the registry lock for key. Callers holding more than
// one lock at a time must acquire them in ascending key order.
func (s *Store) LockFor(key string) *sync.Mutex {
	return s.locks[key]
}

func (s *Store) Len() int { return len(s.products) }

// Snapshot returns every product in catalog-file order with its stock
// as read at call time.
func (s *Store) Snapshot() []Item {
	out := make([]Item, 0, len(s.order))
	for _, k := range s.order {
		p := s.products[k]
		out = append(out, Item{
			Name:        p.Name,
			Price:       p.Price,
			Stock:       p.Stock(),
			Description: p.Description,
		})
	}
	return out
}
