package formulas_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wandb/lovely-chart/internal/formulas"
)

func TestYStepToScaleLevel(t *testing.T) {
	tests := []struct {
		needed float64
		want   float64
	}{
		{0, 0},
		{1, 0},
		{1.5, 1},
		{10, 3},
		{18, 3},
		{19, 4},
		{1e12, 25},
	}

	for _, tt := range tests {
		got := formulas.YStepToScaleLevel(tt.needed)
		assert.Equal(t, tt.want, got, "needed %v", tt.needed)
	}
	assert.Equal(t, 18.0, formulas.YScaleLevelToStep(3))
	assert.Equal(t, 18.0, formulas.YScaleLevelToStep(3.7))
	assert.Equal(t, 1.0, formulas.YScaleLevelToStep(-2))
}

func TestXScale(t *testing.T) {
	assert.Equal(t, 0.0, formulas.XStepToScaleLevel(0))
	assert.Equal(t, 0.0, formulas.XStepToScaleLevel(0.5))
	assert.Equal(t, 0.0, formulas.XStepToScaleLevel(1))
	assert.Equal(t, 2.0, formulas.XStepToScaleLevel(3))
	assert.Equal(t, 2.0, formulas.XStepToScaleLevel(4))
	assert.Equal(t, 8.0, formulas.XScaleLevelToStep(3))
}

func TestSimplificationDelta(t *testing.T) {
	assert.Zero(t, formulas.SimplificationDelta(formulas.SimplifierMinPoints-1))
	assert.Equal(t, 1.0, formulas.SimplificationDelta(formulas.SimplifierMinPoints))
}

func TestEdgeOpacity(t *testing.T) {
	assert.Equal(t, 1.0, formulas.EdgeOpacity(1, 100, 200))
	assert.Equal(t, 0.5, formulas.EdgeOpacity(1, 10, 200))
	assert.Zero(t, formulas.EdgeOpacity(1, 0, 200))
	assert.Zero(t, formulas.EdgeOpacity(1, 210, 200))

	assert.Equal(t, 0.5, formulas.TopEdgeOpacity(1, 10))
	assert.Equal(t, 1.0, formulas.TopEdgeOpacity(1, 5000))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, formulas.IsFinite(1))
	assert.False(t, formulas.IsFinite(math.NaN()))
	assert.False(t, formulas.IsFinite(math.Inf(-1)))
}
