package zoomer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/framelooptest"
	"github.com/wandb/lovely-chart/internal/observabilitytest"
	"github.com/wandb/lovely-chart/internal/zoomer"
	"github.com/wandb/lovely-chart/internal/zoomertest"
)

const (
	day  = 24 * 60 * 60 * 1000.0
	hour = 60 * 60 * 1000.0
)

// fakeChart is a zoomer.Target backed by a real state manager.
type fakeChart struct {
	q       *frameloop.Queue
	manager *chartstate.Manager
	loading bool
	zoomed  bool
}

func newFakeChart(q *frameloop.Queue, data *chartdata.ChartData) *fakeChart {
	c := &fakeChart{q: q}
	c.manager = chartstate.NewManager(chartstate.ManagerParams{
		Data:     data,
		Viewport: chartstate.Size{Width: 600, Height: 320},
		Loop:     q,
	})
	return c
}

func (c *fakeChart) Data() *chartdata.ChartData      { return c.manager.Data() }
func (c *fakeChart) Static() *chartstate.RenderState { return c.manager.Static() }
func (c *fakeChart) IsFast() bool                    { return c.manager.IsFast() }
func (c *fakeChart) SetLoading(loading bool)         { c.loading = loading }
func (c *fakeChart) SetZoomed(zoomed bool)           { c.zoomed = zoomed }

func (c *fakeChart) Update(u chartstate.Update, noTransition bool) {
	c.manager.Update(u, noTransition)
}

func (c *fakeChart) SwapData(data *chartdata.ChartData, initial chartstate.Update) {
	c.manager.Stop()

	var delta float64
	if initial.MinimapDelta != nil {
		delta = *initial.MinimapDelta
	}
	c.manager = chartstate.NewManager(chartstate.ManagerParams{
		Data:         data,
		Viewport:     chartstate.Size{Width: 600, Height: 320},
		Loop:         c.q,
		Range:        initial.Range,
		Filter:       initial.Filter,
		MinimapDelta: delta,
	})
}

func dailyLines(t *testing.T, days, lines int) *chartdata.ChartData {
	t.Helper()

	labels := make([]float64, days)
	for i := range labels {
		labels[i] = float64(i) * day
	}

	raw := &chartdata.RawChart{
		Labels:         chartdata.NumericLabels(labels...),
		LabelFormatter: "day",
	}
	for l := 0; l < lines; l++ {
		values := make([]float64, days)
		for i := range values {
			values[i] = float64(l + i + 1)
		}
		raw.Datasets = append(raw.Datasets, chartdata.RawDataset{Values: values})
	}

	data, err := chartdata.Analyze(raw, true)
	require.NoError(t, err)
	return data
}

// hourlyPercentage covers the 48 hours around the start of a day.
func hourlyPercentage(dayValue float64) *chartdata.RawChart {
	labels := make([]float64, 48)
	values := make([]float64, 48)
	for i := range labels {
		labels[i] = dayValue - 12*hour + float64(i)*hour
		values[i] = float64(i%5 + 1)
	}
	return &chartdata.RawChart{
		Type:           chartdata.TypeArea,
		Labels:         chartdata.NumericLabels(labels...),
		Datasets:       []chartdata.RawDataset{{Name: "Share", Values: values}},
		IsPercentage:   true,
		LabelFormatter: "hour",
	}
}

type fixture struct {
	q      *frameloop.Queue
	clock  *framelooptest.FakeClock
	chart  *fakeChart
	zoomer *zoomer.Zoomer
	source *zoomertest.MockDataSource
	done   []error
}

func newFixture(t *testing.T, data *chartdata.ChartData, withSource bool) *fixture {
	t.Helper()

	f := &fixture{}
	f.q, f.clock = framelooptest.NewQueue()
	f.chart = newFakeChart(f.q, data)

	params := zoomer.Params{
		Target: f.chart,
		Loop:   f.q,
		Logger: observabilitytest.NewTestLogger(t),
		OnDone: func(_ zoomer.Direction, err error) { f.done = append(f.done, err) },
	}
	if withSource {
		f.source = zoomertest.NewMockDataSource(gomock.NewController(t))
		params.Source = f.source
	}
	f.zoomer = zoomer.New(params)

	framelooptest.Settle(f.q, f.clock, time.Second)
	return f
}

func (f *fixture) settle() {
	framelooptest.Settle(f.q, f.clock, 5*time.Second)
}

func TestZoom_RoundTripRestoresRangeAndFilter(t *testing.T) {
	overview := dailyLines(t, 30, 24)
	f := newFixture(t, overview, true)

	filter := overview.AllVisible()
	filter["y3"] = false
	filter["y17"] = false
	before := chartdata.Range{Begin: 0.2, End: 0.8}
	f.chart.Update(chartstate.Update{Range: &before, Filter: filter}, true)
	f.settle()

	clicked := overview.XLabels[10].Value
	f.source.EXPECT().
		Fetch(gomock.Any(), clicked).
		Return(hourlyPercentage(clicked), nil)

	require.NoError(t, f.zoomer.ZoomIn(context.Background(), 10))
	assert.True(t, f.zoomer.IsBusy())
	f.settle()

	require.True(t, f.zoomer.IsZoomed())
	assert.False(t, f.zoomer.IsBusy())
	assert.True(t, f.chart.zoomed)
	assert.False(t, f.chart.loading)
	assert.Len(t, f.chart.Data().Datasets, 1)

	zoomed := f.chart.Static()
	assert.Equal(t, chartdata.Filter{"y0": true}, zoomed.Filter)
	assert.InDelta(t, 12.0/47, zoomed.Begin, 1e-9)
	assert.InDelta(t, 35.0/47, zoomed.End, 1e-9)

	require.NoError(t, f.zoomer.ZoomOut())
	f.settle()

	assert.False(t, f.zoomer.IsZoomed())
	assert.False(t, f.chart.zoomed)
	assert.Same(t, overview, f.chart.Data())

	restored := f.chart.Static()
	assert.Equal(t, before, restored.Range())
	assert.Equal(t, filter, restored.Filter)
	assert.Equal(t, 0.0, restored.MinimapDelta)
	assert.Equal(t, []error{nil, nil}, f.done)
}

func TestZoomIn_RejectsReentry(t *testing.T) {
	overview := dailyLines(t, 5, 2)
	f := newFixture(t, overview, true)

	f.source.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(&chartdata.RawChart{
			Labels:   chartdata.Sequence(3),
			Datasets: []chartdata.RawDataset{{Values: []float64{1, 2, 3}}, {Values: []float64{3, 2, 1}}},
		}, nil)

	require.NoError(t, f.zoomer.ZoomIn(context.Background(), 1))
	assert.ErrorIs(t, f.zoomer.ZoomIn(context.Background(), 2), zoomer.ErrZoomInProgress)
	assert.ErrorIs(t, f.zoomer.ZoomOut(), zoomer.ErrZoomInProgress)

	f.settle()
	assert.ErrorIs(t, f.zoomer.ZoomIn(context.Background(), 2), zoomer.ErrAlreadyZoomed)

	// Same dataset count: the filter carries over.
	assert.Equal(t, overview.AllVisible(), f.chart.Static().Filter)
}

func TestZoomOut_NotZoomed(t *testing.T) {
	f := newFixture(t, dailyLines(t, 5, 2), true)
	assert.ErrorIs(t, f.zoomer.ZoomOut(), zoomer.ErrNotZoomed)
}

func TestZoomIn_LabelOutOfRange(t *testing.T) {
	f := newFixture(t, dailyLines(t, 5, 2), true)
	assert.Error(t, f.zoomer.ZoomIn(context.Background(), 5))
	assert.False(t, f.zoomer.IsBusy())
}

func TestZoomIn_NotZoomable(t *testing.T) {
	data, err := chartdata.Analyze(&chartdata.RawChart{
		Labels:   chartdata.Sequence(3),
		Datasets: []chartdata.RawDataset{{Values: []float64{1, 2, 3}}},
	}, false)
	require.NoError(t, err)

	f := newFixture(t, data, false)
	assert.ErrorIs(t, f.zoomer.ZoomIn(context.Background(), 1), zoomer.ErrNotZoomable)
}

func TestZoomIn_FetchFailureAborts(t *testing.T) {
	overview := dailyLines(t, 5, 2)

	f := &fixture{}
	f.q, f.clock = framelooptest.NewQueue()
	f.chart = newFakeChart(f.q, overview)
	f.source = zoomertest.NewMockDataSource(gomock.NewController(t))
	logger, logs := observabilitytest.NewRecordingTestLogger(t)
	f.zoomer = zoomer.New(zoomer.Params{
		Target: f.chart,
		Loop:   f.q,
		Source: f.source,
		Logger: logger,
		OnDone: func(_ zoomer.Direction, err error) { f.done = append(f.done, err) },
	})
	f.settle()
	before := f.chart.Static()

	f.source.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	require.NoError(t, f.zoomer.ZoomIn(context.Background(), 2))
	assert.True(t, f.chart.loading)
	f.settle()

	assert.False(t, f.chart.loading)
	assert.False(t, f.zoomer.IsBusy())
	assert.False(t, f.zoomer.IsZoomed())
	assert.Same(t, before, f.chart.Static())
	require.Len(t, f.done, 1)
	assert.ErrorContains(t, f.done[0], "connection refused")

	records := observabilitytest.ExtractLogs(t, logs)
	require.NotEmpty(t, records)
	assert.Equal(t, "WARN", records[len(records)-1]["level"])
	assert.Equal(t, "zoomer: zoom aborted", records[len(records)-1]["msg"])
}

func TestZoomIn_NoDataAborts(t *testing.T) {
	f := newFixture(t, dailyLines(t, 5, 2), true)
	f.source.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, nil)

	require.NoError(t, f.zoomer.ZoomIn(context.Background(), 0))
	f.settle()

	require.Len(t, f.done, 1)
	assert.ErrorIs(t, f.done[0], zoomer.ErrNoData)
	assert.False(t, f.zoomer.IsZoomed())

	// The chart can zoom again after an abort.
	f.source.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, nil)
	assert.NoError(t, f.zoomer.ZoomIn(context.Background(), 0))
}

func TestZoomIn_PercentageToPie(t *testing.T) {
	raw := hourlyPercentage(0)
	raw.Datasets = append(raw.Datasets, chartdata.RawDataset{
		Name:   "Rest",
		Values: raw.Datasets[0].Values,
	})
	data, err := chartdata.Analyze(raw, false)
	require.NoError(t, err)
	require.True(t, data.ShouldZoomToPie)

	f := newFixture(t, data, false)
	filter := chartdata.Filter{"y0": true, "y1": false}
	f.chart.Update(chartstate.Update{Filter: filter}, true)
	f.settle()

	require.NoError(t, f.zoomer.ZoomIn(context.Background(), 20))
	f.settle()

	pie := f.chart.Data()
	require.True(t, pie.IsPie)
	require.Len(t, pie.XLabels, 7)
	assert.Equal(t, data.XLabels[17], pie.XLabels[0])

	state := f.chart.Static()
	assert.InDelta(t, 3.0/7, state.Begin, 1e-9)
	assert.InDelta(t, 4.0/7, state.End, 1e-9)
	assert.InDelta(t, 1.0/7, state.MinimapDelta, 1e-9)
	assert.Equal(t, filter, state.Filter)
	assert.Equal(t, 3.0, state.LabelFromIndex)
	assert.Equal(t, 3.0, state.LabelToIndex)

	require.NoError(t, f.zoomer.ZoomOut())
	f.settle()
	assert.Same(t, data, f.chart.Data())
	assert.Equal(t, filter, f.chart.Static().Filter)
}

func TestZoomer_StopCancelsPendingPhases(t *testing.T) {
	overview := dailyLines(t, 5, 2)
	f := newFixture(t, overview, true)
	f.source.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(&chartdata.RawChart{
			Labels:   chartdata.Sequence(3),
			Datasets: []chartdata.RawDataset{{Values: []float64{1, 2, 3}}, {Values: []float64{3, 2, 1}}},
		}, nil)

	require.NoError(t, f.zoomer.ZoomIn(context.Background(), 1))
	f.q.Step()
	f.zoomer.Stop()
	f.settle()

	assert.False(t, f.zoomer.IsZoomed())
	assert.Same(t, overview, f.chart.Data())
}
