package depot

import "github.com/rotisserie/eris"

// Cache assigns dense indices to keys, up to a fixed capacity.
type Cache[K comparable, T any] interface {
	GetIndex(K) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(K, T) (int, error)
	Len() int
}

var _ Cache[string, any] = &SimpleCache[string, any]{}

type SimpleCache[K comparable, T any] struct {
	items       []T
	itemIndices map[K]int
	maxCapacity int
}

func (c *SimpleCache[K, T]) GetIndex(key K) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[K, T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[K, T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

func (c *SimpleCache[K, T]) Register(key K, item T) (int, error) {
	if len(c.items) >= c.maxCapacity {
		return -1, eris.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

func (c *SimpleCache[K, T]) Len() int {
	return len(c.items)
}

func (c *SimpleCache[K, T]) Clear() {
	c.items = c.items[:0]
	clear(c.itemIndices)
}
