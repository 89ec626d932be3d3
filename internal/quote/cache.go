package quote

import (
	"context"
	"sync"

	"main/internal/bus"
	"main/internal/model"
	"main/pkg/exception"
)

// Cache keeps the latest quote per company, last write wins. The map is
// owned exclusively by the cache; readers receive copies.
type Cache struct {
	mu     sync.RWMutex
	quotes map[string]model.Quote
}

// NewCache allocates an empty cache.
func NewCache() *Cache {
	return &Cache{quotes: make(map[string]model.Quote)}
}

// Apply overwrites the cached entry for the quote's company.
func (c *Cache) Apply(q model.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[q.Name] = q
}

// Get returns the latest quote for the company name.
func (c *Cache) Get(name string) (model.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[name]
	if !ok {
		return model.Quote{}, exception.ErrQuoteNotFound
	}
	return q, nil
}

// All returns a copy of the full name to quote mapping.
func (c *Cache) All() map[string]model.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]model.Quote, len(c.quotes))
	for name, q := range c.quotes {
		out[name] = q
	}
	return out
}

// Run drains market quotes from the subscription into the cache.
func (c *Cache) Run(ctx context.Context, sub *bus.Subscription) {
	sub.Run(ctx, func(msg bus.Message) {
		if q, ok := msg.Payload.(model.Quote); ok {
			c.Apply(q)
		}
	})
}
