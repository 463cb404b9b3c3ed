package store

import (
	"context"
	"sync"
	"time"
)

// Entity is anything a Collection can hold.
type Entity interface {
	Key() string
}

// Snapshot is an immutable view of a collection. Items must not be modified
// by callers; every mutation publishes a fresh slice.
type Snapshot[T Entity] struct {
	Items     []T       `json:"items"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Snapshot[T]) Find(key string) (T, bool) {
	for _, item := range s.Items {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

type Collection[T Entity] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
	now      func() time.Time
}

func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{now: time.Now}
}

func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Load marks the collection as loading, calls fetch and replaces the items on
// success. On failure the previous items are kept and the error is recorded.
func (c *Collection[T]) Load(ctx context.Context, fetch func(ctx context.Context) ([]T, error)) (Snapshot[T], error) {
	c.mu.Lock()
	loading := c.snapshot
	loading.Loading = true
	c.snapshot = loading
	c.mu.Unlock()

	items, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	next := Snapshot[T]{Items: c.snapshot.Items, UpdatedAt: c.now()}
	if err != nil {
		next.Error = err.Error()
		c.snapshot = next
		return next, err
	}
	next.Items = append([]T(nil), items...)
	c.snapshot = next

	return next, nil
}

// Upsert replaces the item with the same key or appends it.
func (c *Collection[T]) Upsert(item T) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, 0, len(c.snapshot.Items)+1)
	replaced := false
	for _, existing := range c.snapshot.Items {
		if existing.Key() == item.Key() {
			items = append(items, item)
			replaced = true
			continue
		}
		items = append(items, existing)
	}
	if !replaced {
		items = append(items, item)
	}

	c.snapshot = Snapshot[T]{Items: items, UpdatedAt: c.now()}
	return c.snapshot
}

func (c *Collection[T]) Remove(key string) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, 0, len(c.snapshot.Items))
	for _, existing := range c.snapshot.Items {
		if existing.Key() != key {
			items = append(items, existing)
		}
	}

	c.snapshot = Snapshot[T]{Items: items, UpdatedAt: c.now()}
	return c.snapshot
}
