package simplify

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
)

// Cache keeps simplifiers for recently drawn polylines.
//
// Redraws of unchanged geometry (a hover, a minimap repaint) reuse the
// precomputed importances. Entries are keyed by the polyline's content.
type Cache struct {
	entries *lru.Cache
}

// NewCache returns a cache holding up to size polylines.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Simplify simplifies points at the given tolerance.
//
// A nil Cache simplifies without caching.
func (c *Cache) Simplify(points []Point, delta float64) []Point {
	if delta <= 0 {
		return points
	}
	return c.simplifier(points).Simplify(delta)
}

// Keep returns the indices of the points kept at the given tolerance.
func (c *Cache) Keep(points []Point, delta float64) []int {
	if delta <= 0 {
		kept := make([]int, len(points))
		for i := range kept {
			kept[i] = i
		}
		return kept
	}
	return c.simplifier(points).Keep(delta)
}

func (c *Cache) simplifier(points []Point) *Simplifier {
	if c == nil {
		return New(points)
	}

	key := fingerprint(points)
	if cached, ok := c.entries.Get(key); ok {
		return cached.(*Simplifier)
	}

	s := New(points)
	c.entries.Add(key, s)
	return s
}

// Len returns the number of cached polylines.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func fingerprint(points []Point) uint64 {
	digest := xxhash.New()
	var buf [16]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64()
}
