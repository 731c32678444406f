package memory

import (
	"context"
	"sync"

	"github.com/aretw0/teamwork/pkg/domain"
)

// Cache implements ports.ResultCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]domain.ValidationResult
	mu   sync.RWMutex
}

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]domain.ValidationResult),
	}
}

// Get returns a copy of the cached result.
func (c *Cache) Get(_ context.Context, key string) (domain.ValidationResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res, ok := c.data[key]
	if !ok {
		return domain.ValidationResult{}, false, nil
	}
	return clone(res), true, nil
}

// Put stores a copy of result.
func (c *Cache) Put(_ context.Context, key string, result domain.ValidationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = clone(result)
	return nil
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Purge drops every cached result.
func (c *Cache) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]domain.ValidationResult)
	return nil
}

func clone(res domain.ValidationResult) domain.ValidationResult {
	if res.Violations != nil {
		res.Violations = append([]domain.Violation(nil), res.Violations...)
	}
	return res
}
