package server

import "sync"

// cart is one session's pending order, keyed by normalized product
// key. It is never shared between sessions, but the payment worker
// clears it on a successful outcome, so it carries its own mutex.
type cart struct {
	mu    sync.Mutex
	items map[string]int
}

func newCart() *cart {
	return &cart{items: make(map[string]int)}
}

func (c *cart) add(key string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] += qty
}

// snapshot returns a copy of the cart's contents.
func (c *cart) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int, len(c.items))
	for k, v := range c.items {
		out[k] = v
	}
	return out
}

func (c *cart) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]int)
}
