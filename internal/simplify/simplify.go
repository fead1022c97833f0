// Package simplify reduces long polylines with the Douglas–Peucker
// algorithm.
//
// The subdivision is computed once per polyline: every point gets an
// importance, the largest tolerance at which Douglas–Peucker would still
// keep it. Simplifying for any tolerance is then a linear filter, and the
// result for a larger tolerance is always a subset of the result for a
// smaller one.
package simplify

import (
	"math"
)

// Point is a pixel position.
type Point struct {
	X, Y float64
}

// segment is a node of the subdivision tree, stored in a flat arena.
type segment struct {
	from, to int32

	// limit is the importance of the segment's parent split; no point
	// inside the segment can be more important than that.
	limit float64
}

// Simplifier holds a polyline and the importance of each of its points.
type Simplifier struct {
	points     []Point
	importance []float64
}

// New precomputes point importances for the polyline.
func New(points []Point) *Simplifier {
	s := &Simplifier{
		points:     points,
		importance: make([]float64, len(points)),
	}
	if len(points) == 0 {
		return s
	}

	last := len(points) - 1
	s.importance[0] = math.Inf(1)
	s.importance[last] = math.Inf(1)

	arena := make([]segment, 0, 64)
	arena = append(arena, segment{from: 0, to: int32(last), limit: math.Inf(1)})

	for len(arena) > 0 {
		seg := arena[len(arena)-1]
		arena = arena[:len(arena)-1]

		if seg.to-seg.from < 2 {
			continue
		}

		split, dist := farthest(points, int(seg.from), int(seg.to))
		weight := math.Min(dist, seg.limit)
		s.importance[split] = weight

		arena = append(arena,
			segment{from: seg.from, to: int32(split), limit: weight},
			segment{from: int32(split), to: seg.to, limit: weight},
		)
	}

	return s
}

// Simplify returns the points kept at the given tolerance in pixels.
//
// The endpoints are always kept. A non-positive tolerance returns the
// input unchanged. Whether a chart is long enough to be simplified at all
// is decided by the caller's tolerance.
func (s *Simplifier) Simplify(delta float64) []Point {
	if delta <= 0 {
		return s.points
	}

	result := make([]Point, 0, len(s.points)/4)
	for i, p := range s.points {
		if s.importance[i] > delta {
			result = append(result, p)
		}
	}
	return result
}

// Keep returns the indices of the points kept at the given tolerance, in
// order.
func (s *Simplifier) Keep(delta float64) []int {
	kept := make([]int, 0, len(s.points))
	for i := range s.points {
		if delta <= 0 || s.importance[i] > delta {
			kept = append(kept, i)
		}
	}
	return kept
}

// Len returns the number of points in the original polyline.
func (s *Simplifier) Len() int {
	return len(s.points)
}

// farthest returns the point strictly between from and to with the largest
// distance to the segment joining them.
func farthest(points []Point, from, to int) (int, float64) {
	a, b := points[from], points[to]
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)

	best, bestDist := from+1, -1.0
	for i := from + 1; i < to; i++ {
		p := points[i]

		var dist float64
		if length == 0 {
			dist = math.Hypot(p.X-a.X, p.Y-a.Y)
		} else {
			dist = math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
		}

		if dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best, bestDist
}
