package points_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/points"
)

func analyze(t *testing.T, raw *chartdata.RawChart) *chartdata.ChartData {
	t.Helper()
	data, err := chartdata.Analyze(raw, false)
	require.NoError(t, err)
	return data
}

func threeSeries(chartType chartdata.ChartType, stacked, percentage bool) *chartdata.RawChart {
	return &chartdata.RawChart{
		Type:         chartType,
		Labels:       chartdata.Sequence(4),
		IsStacked:    stacked,
		IsPercentage: percentage,
		Datasets: []chartdata.RawDataset{
			{Values: []float64{1, 2, 3, 4}},
			{Values: []float64{10, 0, 5, 0}},
			{Values: []float64{4, 0, 2, 0}},
		},
	}
}

func TestPrepare_PlainKeepsValues(t *testing.T) {
	data := analyze(t, threeSeries(chartdata.TypeLine, false, false))

	result := points.Prepare(data, data.Datasets,
		points.Window{From: 1, To: 2}, []float64{0, 1, 1},
		points.Bounds{YMax: 10}, false)

	require.Len(t, result, 3)
	require.Len(t, result[0], 2)
	assert.Equal(t, points.Point{
		LabelIndex: 1, Value: 2, VisibleValue: 2, StackValue: 2,
	}, result[0][0])
	assert.Equal(t, 2, result[1][1].LabelIndex)
}

func TestPrepare_StackingConservesSums(t *testing.T) {
	data := analyze(t, threeSeries(chartdata.TypeBar, true, false))
	visibilities := []float64{1, 0.5, 1}

	result := points.Prepare(data, data.Datasets,
		points.Window{From: 0, To: 3}, visibilities,
		points.Bounds{YMax: 20}, false)

	for j := 0; j < 4; j++ {
		sum := 0.0
		for i := range result {
			p := result[i][j]
			assert.InDelta(t, p.VisibleValue, p.StackValue-p.StackOffset, 1e-9)
			assert.InDelta(t, data.Datasets[i].Values[j]*visibilities[i], p.VisibleValue, 1e-9)
			sum += p.VisibleValue
		}
		assert.InDelta(t, sum, result[len(result)-1][j].StackValue, 1e-9)
	}

	assert.Equal(t, 1.0, result[1][0].StackOffset)
	assert.Equal(t, 6.0, result[1][0].StackValue)
}

func TestPrepare_PercentagesSumToOne(t *testing.T) {
	data := analyze(t, threeSeries(chartdata.TypeArea, false, true))

	result := points.Prepare(data, data.Datasets,
		points.Window{From: 0, To: 3}, []float64{1, 1, 1},
		points.Bounds{YMax: 100}, false)

	for j := 0; j < 4; j++ {
		total := 0.0
		for i := range result {
			total += result[i][j].Percent
		}
		assert.InDelta(t, 1, total, 1e-9, "label %d", j)
		assert.InDelta(t, 100, result[2][j].StackValue, 1e-9)
	}
}

func TestPrepare_PercentageOfHiddenLabelIsZero(t *testing.T) {
	data := analyze(t, threeSeries(chartdata.TypeArea, false, true))

	result := points.Prepare(data, data.Datasets,
		points.Window{From: 1, To: 1}, []float64{0, 1, 1},
		points.Bounds{YMax: 100}, false)

	for i := range result {
		assert.Zero(t, result[i][0].Percent)
		assert.Zero(t, result[i][0].VisibleValue)
	}
}

func TestPrepare_PieCollapsesToSums(t *testing.T) {
	data := analyze(t, threeSeries(chartdata.TypePie, false, true))

	result := points.Prepare(data, data.Datasets,
		points.Window{From: 0, To: 1}, []float64{1, 1, 1},
		points.Bounds{YMax: 100}, false)

	require.Len(t, result[0], 1)
	assert.Equal(t, 3.0, result[0][0].Value)
	assert.Equal(t, 10.0, result[1][0].Value)
	assert.Equal(t, 4.0, result[2][0].Value)
	assert.InDelta(t, 10.0/17, result[1][0].Percent, 1e-9)

	asArea := points.Prepare(data, data.Datasets,
		points.Window{From: 0, To: 1}, []float64{1, 1, 1},
		points.Bounds{YMax: 100}, true)
	assert.Len(t, asArea[0], 2)
}

func TestVisibilities(t *testing.T) {
	data := analyze(t, threeSeries(chartdata.TypeLine, false, false))

	got := points.Visibilities(data.Datasets, map[string]float64{"y0": 1, "y2": 0.25})
	assert.Equal(t, []float64{1, 0, 0.25}, got)
}
