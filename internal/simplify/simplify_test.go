package simplify_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/simplify"
)

func wave(n int) []simplify.Point {
	pts := make([]simplify.Point, n)
	for i := range pts {
		x := float64(i) * 0.5
		pts[i] = simplify.Point{X: x, Y: 40*math.Sin(x/15) + 3*math.Sin(x*1.7)}
	}
	return pts
}

func TestSimplify_ZeroDeltaReturnsInput(t *testing.T) {
	pts := wave(2000)
	got := simplify.New(pts).Simplify(0)
	assert.Equal(t, pts, got)
}

func TestSimplify_ShortInputIsSimplified(t *testing.T) {
	pts := wave(formulas.SimplifierMinPoints / 2)
	got := simplify.New(pts).Simplify(10)

	assert.Less(t, len(got), len(pts))
	assert.Equal(t, pts[0], got[0])
	assert.Equal(t, pts[len(pts)-1], got[len(got)-1])
}

func TestSimplify_KeepMatchesSimplify(t *testing.T) {
	pts := wave(3000)
	s := simplify.New(pts)

	for _, delta := range []float64{0, 1, 4} {
		kept := s.Keep(delta)
		got := make([]simplify.Point, len(kept))
		for i, idx := range kept {
			got[i] = pts[idx]
		}
		assert.Equal(t, s.Simplify(delta), got, "delta=%v", delta)
	}
}

func TestSimplify_KeepsEndpoints(t *testing.T) {
	pts := wave(3000)
	got := simplify.New(pts).Simplify(1000)

	require.Len(t, got, 2)
	assert.Equal(t, pts[0], got[0])
	assert.Equal(t, pts[len(pts)-1], got[1])
}

func TestSimplify_CollinearCollapses(t *testing.T) {
	pts := make([]simplify.Point, 1500)
	for i := range pts {
		pts[i] = simplify.Point{X: float64(i), Y: 2 * float64(i)}
	}

	got := simplify.New(pts).Simplify(0.01)
	assert.Equal(t, []simplify.Point{pts[0], pts[len(pts)-1]}, got)
}

func TestSimplify_MonotonicInDelta(t *testing.T) {
	pts := wave(4000)
	s := simplify.New(pts)

	prev := s.Simplify(2)
	assert.Less(t, len(prev), len(pts))

	for _, delta := range []float64{3, 5, 8, 16} {
		cur := s.Simplify(delta)

		kept := make(map[simplify.Point]bool, len(prev))
		for _, p := range prev {
			kept[p] = true
		}
		for _, p := range cur {
			require.True(t, kept[p], "point %v appears at delta %v only", p, delta)
		}
		require.LessOrEqual(t, len(cur), len(prev))
		prev = cur
	}
}

func TestSimplify_StaysWithinTolerance(t *testing.T) {
	pts := wave(2500)
	delta := 1.5
	got := simplify.New(pts).Simplify(delta)

	// Every dropped point lies within delta of the kept polyline's
	// segment that spans it.
	j := 0
	for _, p := range pts {
		for j+1 < len(got) && got[j+1].X < p.X {
			j++
		}
		if j+1 >= len(got) {
			break
		}
		a, b := got[j], got[j+1]
		dist := math.Abs((b.Y-a.Y)*p.X-(b.X-a.X)*p.Y+b.X*a.Y-b.Y*a.X) /
			math.Hypot(b.X-a.X, b.Y-a.Y)
		require.LessOrEqual(t, dist, delta+1e-9)
	}
}

func TestCache_ReusesTrees(t *testing.T) {
	cache, err := simplify.NewCache(4)
	require.NoError(t, err)

	pts := wave(2000)
	first := cache.Simplify(pts, 1)
	second := cache.Simplify(pts, 1)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	assert.Equal(t, pts, cache.Simplify(pts, 0))
	assert.Len(t, cache.Keep(pts, 0), len(pts))
	assert.Equal(t, 1, cache.Len())

	assert.Len(t, cache.Keep(pts, 1), len(first))
	assert.Equal(t, 1, cache.Len(), "Keep shares the cached tree")
}

func TestCache_NilSimplifiesWithoutCaching(t *testing.T) {
	var cache *simplify.Cache
	pts := wave(2000)
	assert.Equal(t, simplify.New(pts).Simplify(2), cache.Simplify(pts, 2))
}
