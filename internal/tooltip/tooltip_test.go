package tooltip_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/framelooptest"
	"github.com/wandb/lovely-chart/internal/tooltip"
)

func compute(
	t *testing.T,
	raw *chartdata.RawChart,
	rng chartdata.Range,
) (*chartdata.ChartData, *chartstate.RenderState) {
	t.Helper()
	data, err := chartdata.Analyze(raw, false)
	require.NoError(t, err)

	state := chartstate.Compute(chartstate.Input{
		Data:     data,
		Viewport: chartstate.Size{Width: 600, Height: 320},
		Range:    rng,
		Filter:   data.AllVisible(),
		Layout:   chartstate.DefaultLayout(),
	}, nil)
	return data, state
}

var everything = chartdata.Range{Begin: 0, End: 1}

func twoLines() *chartdata.RawChart {
	return &chartdata.RawChart{
		Labels: chartdata.Sequence(5),
		Datasets: []chartdata.RawDataset{
			{Name: "Joined", Color: "#3DC23F", Values: []float64{1, 2, 1000, 4, 5}},
			{Name: "Left", Color: "#F34C44", Values: []float64{5, 4, 3000, 2, 1}},
		},
	}
}

func TestBuild_Lines(t *testing.T) {
	data, state := compute(t, twoLines(), everything)

	content, ok := tooltip.Build(data, state, 2, nil, 0)
	require.True(t, ok)

	assert.Equal(t, "2", content.Title)
	require.Len(t, content.Items, 2)
	assert.Equal(t, "Joined", content.Items[0].Name)
	assert.Equal(t, "1,000", content.Items[0].Text)
	assert.Equal(t, "#F34C44", content.Items[1].Color)
	assert.Equal(t, "3,000", content.Items[1].Text)
	assert.Empty(t, content.Items[0].Percent)
	assert.Nil(t, content.Total)
	assert.False(t, content.Zoomable)
}

func TestBuild_HiddenDatasets(t *testing.T) {
	data, state := compute(t, twoLines(), everything)

	state.Filter = chartdata.Filter{"y0": false, "y1": true}
	content, ok := tooltip.Build(data, state, 0, nil, 0)
	require.True(t, ok)
	require.Len(t, content.Items, 1)
	assert.Equal(t, "y1", content.Items[0].Key)

	state.Filter = chartdata.Filter{"y0": false, "y1": false}
	_, ok = tooltip.Build(data, state, 0, nil, 0)
	assert.False(t, ok)
}

func TestBuild_OutsideWindow(t *testing.T) {
	data, state := compute(t, twoLines(), chartdata.Range{Begin: 0.5, End: 1})

	_, ok := tooltip.Build(data, state, 0, nil, 0)
	assert.False(t, ok)

	_, ok = tooltip.Build(data, state, 1, nil, 0)
	assert.True(t, ok, "overscan label")
}

func TestBuild_Percentage(t *testing.T) {
	raw := twoLines()
	raw.Type = chartdata.TypeArea
	raw.IsPercentage = true
	data, state := compute(t, raw, everything)

	content, ok := tooltip.Build(data, state, 2, nil, 0)
	require.True(t, ok)
	assert.Equal(t, "25%", content.Items[0].Percent)
	assert.Equal(t, "75%", content.Items[1].Percent)
	assert.True(t, content.Zoomable)
}

func TestBuild_StackedBarsTotal(t *testing.T) {
	raw := twoLines()
	raw.Type = chartdata.TypeBar
	raw.IsStacked = true
	data, state := compute(t, raw, everything)

	content, ok := tooltip.Build(data, state, 2, nil, 0)
	require.True(t, ok)
	require.NotNil(t, content.Total)
	assert.Equal(t, "All", content.Total.Name)
	assert.Equal(t, "4,000", content.Total.Text)
}

func TestBuild_Currency(t *testing.T) {
	raw := &chartdata.RawChart{
		Type:           chartdata.TypeBar,
		Labels:         chartdata.Sequence(2),
		Datasets:       []chartdata.RawDataset{{Name: "Fees", Values: []float64{2e9, 5e8}}},
		IsCurrency:     true,
		CurrencyRate:   3,
		LabelFormatter: "",
	}
	data, state := compute(t, raw, everything)

	content, ok := tooltip.Build(data, state, 0, nil, 0)
	require.True(t, ok)
	assert.Equal(t, "2", content.Items[0].Text)
	require.NotNil(t, content.Total)
	assert.Equal(t, "$6", content.Total.Text)
}

func TestBuild_PieSelectsSector(t *testing.T) {
	raw := &chartdata.RawChart{
		Type:   chartdata.TypePie,
		Labels: chartdata.Sequence(2),
		Datasets: []chartdata.RawDataset{
			{Name: "Small", Values: []float64{0.5, 0.5}},
			{Name: "Large", Values: []float64{1, 2}},
		},
	}
	data, state := compute(t, raw, everything)

	above := tooltip.PointerVector(50, 40, 100, 100)
	content, ok := tooltip.Build(data, state, 0, &above, 30)
	require.True(t, ok)
	require.Len(t, content.Items, 1)
	assert.Equal(t, "Small", content.Items[0].Name)
	assert.Empty(t, content.Title)

	right := tooltip.PointerVector(60, 50, 100, 100)
	content, ok = tooltip.Build(data, state, 0, &right, 30)
	require.True(t, ok)
	assert.Equal(t, "Large", content.Items[0].Name)
	assert.Equal(t, 3.0, content.Items[0].Value)

	outside := tooltip.PointerVector(95, 50, 100, 100)
	_, ok = tooltip.Build(data, state, 0, &outside, 30)
	assert.False(t, ok)

	_, ok = tooltip.Build(data, state, 0, nil, 30)
	assert.False(t, ok)
}

func TestPointerVector(t *testing.T) {
	testCases := []struct {
		name  string
		x, y  float64
		angle float64
	}{
		{"above", 50, 0, 0},
		{"right", 100, 50, math.Pi / 2},
		{"below", 50, 100, math.Pi},
		{"left", 0, 50, 3 * math.Pi / 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := tooltip.PointerVector(tc.x, tc.y, 100, 100)
			assert.InDelta(t, tc.angle, v.Angle, 1e-9)
			assert.InDelta(t, 50, v.Distance, 1e-9)
		})
	}
}

func TestSelectedSector(t *testing.T) {
	values := []float64{1, 1, 2}
	at := func(angle float64) chartstate.PointerVector {
		return chartstate.PointerVector{Angle: angle, Distance: 1}
	}

	assert.Equal(t, 0, tooltip.SelectedSector(values, at(0.1), 10))
	assert.Equal(t, 1, tooltip.SelectedSector(values, at(math.Pi/2+0.1), 10))
	assert.Equal(t, 2, tooltip.SelectedSector(values, at(math.Pi+0.1), 10))
	assert.Equal(t, -1, tooltip.SelectedSector(values, at(0.1), 0.5))
	assert.Equal(t, -1, tooltip.SelectedSector([]float64{0, 0}, at(0.1), 10))
}

func TestBalloon_ThrottlesContent(t *testing.T) {
	q, clock := framelooptest.NewQueue()
	balloon := tooltip.NewBalloon(q, nil)

	_, shown := balloon.Content()
	assert.False(t, shown)

	balloon.Show(tooltip.Content{LabelIndex: 1}, false)
	content, shown := balloon.Content()
	assert.True(t, shown)
	assert.Equal(t, 1, content.LabelIndex)

	balloon.Show(tooltip.Content{LabelIndex: 2}, false)
	balloon.Show(tooltip.Content{LabelIndex: 3}, false)
	content, _ = balloon.Content()
	assert.Equal(t, 1, content.LabelIndex)

	clock.Advance(tooltip.ContentUpdateInterval)
	q.Step()
	content, _ = balloon.Content()
	assert.Equal(t, 3, content.LabelIndex)

	balloon.Show(tooltip.Content{LabelIndex: 4}, true)
	content, _ = balloon.Content()
	assert.Equal(t, 4, content.LabelIndex)
}

func TestBalloon_HideDropsPending(t *testing.T) {
	q, clock := framelooptest.NewQueue()
	balloon := tooltip.NewBalloon(q, nil)

	balloon.Show(tooltip.Content{LabelIndex: 1}, false)
	balloon.Show(tooltip.Content{LabelIndex: 2}, false)
	balloon.Hide()

	clock.Advance(time.Second)
	q.Step()

	content, shown := balloon.Content()
	assert.False(t, shown)
	assert.Equal(t, 1, content.LabelIndex)

	balloon.SetLoading(true)
	assert.True(t, balloon.IsLoading())
	balloon.Show(tooltip.Content{LabelIndex: 5}, true)
	balloon.SetLoading(false)
	_, shown = balloon.Content()
	assert.False(t, shown)
}
