package geo

import (
	"sync"

	"routeopt/internal/model"
)

// Point is a coordinate with a stable identity used as a memo key.
type Point struct {
	ID     string
	Coords model.Coordinates
}

type pairKey struct{ a, b string }

// canonical orders the pair so (a,b) and (b,a) share one slot.
func canonical(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Cache memoizes pairwise distances. It is safe for concurrent use, but an
// engine normally owns one per optimization call.
type Cache struct {
	mu     sync.Mutex
	dist   map[pairKey]float64
	hits   int
	misses int
}

func NewCache() *Cache {
	return &Cache{dist: map[pairKey]float64{}}
}

// Distance returns the km distance between two identified points.
func (c *Cache) Distance(a, b Point) float64 {
	if a.ID == b.ID {
		return 0
	}
	k := canonical(a.ID, b.ID)
	c.mu.Lock()
	if d, ok := c.dist[k]; ok {
		c.hits++
		c.mu.Unlock()
		return d
	}
	c.mu.Unlock()
	d := Distance(a.Coords, b.Coords)
	c.mu.Lock()
	c.dist[k] = d
	c.misses++
	c.mu.Unlock()
	return d
}

// Len returns the number of memoized pairs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dist)
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
