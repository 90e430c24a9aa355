package catalog

import (
	"context"
	"sync"

	"excel-interview-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Cache wraps a Source and loads it at most once per process. The catalog is
// immutable at runtime, so a successful load is kept for the process
// lifetime; failed loads are not cached and the next call retries.
type Cache struct {
	source Source
	sf     singleflight.Group

	mu     sync.RWMutex
	tasks  []domain.Task
	loaded bool
}

func NewCache(source Source) *Cache {
	return &Cache{source: source}
}

func (c *Cache) Load(ctx context.Context) ([]domain.Task, error) {
	c.mu.RLock()
	if c.loaded {
		tasks := c.tasks
		c.mu.RUnlock()
		return snapshot(tasks), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		c.mu.RLock()
		if c.loaded {
			tasks := c.tasks
			c.mu.RUnlock()
			return tasks, nil
		}
		c.mu.RUnlock()

		tasks, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.tasks = tasks
		c.loaded = true
		c.mu.Unlock()
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot(result.([]domain.Task)), nil
}

// snapshot copies the slice so callers appending or reordering cannot touch
// the cached catalog. Task contents are treated as read-only by convention.
func snapshot(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	return out
}
