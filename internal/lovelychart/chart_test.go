package lovelychart_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/framelooptest"
	"github.com/wandb/lovely-chart/internal/lovelychart"
	"github.com/wandb/lovely-chart/internal/observabilitytest"
	"github.com/wandb/lovely-chart/internal/render"
	"github.com/wandb/lovely-chart/internal/theme"
	"github.com/wandb/lovely-chart/internal/zoomer"
	"github.com/wandb/lovely-chart/internal/zoomertest"
)

const day = 24 * 60 * 60 * 1000.0

var (
	plotSize    = chartstate.Size{Width: 600, Height: 320}
	minimapSize = chartstate.Size{Width: 600, Height: 40}
)

type themedDrawer struct {
	frames []render.Frame
	theme  theme.Theme
}

func (d *themedDrawer) Draw(frame render.Frame) { d.frames = append(d.frames, frame) }
func (d *themedDrawer) SetTheme(th theme.Theme) { d.theme = th }

func (d *themedDrawer) last(t *testing.T) render.Frame {
	t.Helper()
	require.NotEmpty(t, d.frames)
	return d.frames[len(d.frames)-1]
}

type fixture struct {
	q        *frameloop.Queue
	clock    *framelooptest.FakeClock
	registry *prometheus.Registry
	plot     *themedDrawer
	minimap  *themedDrawer
	chart    *lovelychart.Chart
}

func newFixture(t *testing.T, raw *chartdata.RawChart, opts ...lovelychart.ChartOption) *fixture {
	t.Helper()

	f := &fixture{
		registry: prometheus.NewRegistry(),
		plot:     &themedDrawer{},
		minimap:  &themedDrawer{},
	}
	f.q, f.clock = framelooptest.NewQueue()

	opts = append([]lovelychart.ChartOption{
		lovelychart.WithLoop(f.q),
		lovelychart.WithDrawers(f.plot, f.minimap),
		lovelychart.WithRegisterer(f.registry),
		lovelychart.WithLogger(observabilitytest.NewTestLogger(t)),
		lovelychart.WithSize(plotSize, minimapSize),
	}, opts...)

	chart, err := lovelychart.New(raw, opts...)
	require.NoError(t, err)
	f.chart = chart

	f.settle()
	return f
}

func (f *fixture) settle() {
	framelooptest.Settle(f.q, f.clock, 5*time.Second)
}

func constant(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

func twoLines() *chartdata.RawChart {
	return &chartdata.RawChart{
		Title:  "Members",
		Labels: chartdata.Sequence(20),
		Datasets: []chartdata.RawDataset{
			{Name: "Joined", Values: constant(20, 10)},
			{Name: "Left", Values: constant(20, 30)},
		},
	}
}

func TestNew_InvalidChart(t *testing.T) {
	_, err := lovelychart.New(&chartdata.RawChart{})
	assert.ErrorIs(t, err, chartdata.ErrInvalidChart)

	_, err = lovelychart.New(twoLines(), lovelychart.WithTheme("sepia"))
	assert.ErrorIs(t, err, theme.ErrUnknownTheme)
}

func TestNew_DrawsBothSurfaces(t *testing.T) {
	f := newFixture(t, twoLines())

	assert.NotEmpty(t, f.chart.ID())
	require.Len(t, f.plot.frames, 1)
	require.Len(t, f.minimap.frames, 1)

	plot := f.plot.last(t)
	assert.False(t, plot.Pass.Minimap)
	assert.NotEmpty(t, plot.XTicks)
	assert.NotEmpty(t, plot.YScales)
	assert.Nil(t, plot.Ruler)

	minimap := f.minimap.last(t)
	assert.True(t, minimap.Pass.Minimap)
	require.NotNil(t, minimap.Ruler)
	assert.Equal(t, 600.0, minimap.Ruler.End)

	assert.Equal(t, 1.0,
		counterValue(t, f.registry, "lovely_chart_frames_drawn_total", "plot"))
}

func TestConstantSeries(t *testing.T) {
	f := newFixture(t, &chartdata.RawChart{
		Labels:   chartdata.Sequence(100),
		Datasets: []chartdata.RawDataset{{Values: constant(100, 50)}},
	})

	state := f.chart.State()
	require.NotNil(t, state)
	assert.Equal(t, 0.0, state.YMinViewport)
	assert.Equal(t, 50.0, state.YMaxViewport)
}

func TestSetRange_AnimatesPlotAndRuler(t *testing.T) {
	f := newFixture(t, twoLines())

	f.chart.SetRange(chartdata.Range{Begin: 0.5, End: 1})
	assert.Equal(t, 0.5, f.chart.Static().Begin)

	f.clock.Advance(framelooptest.FrameInterval)
	f.q.Step()
	mid := f.chart.State().Begin
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 0.5)

	f.settle()
	assert.Equal(t, 0.5, f.chart.State().Begin)
	assert.Equal(t, chartdata.Range{Begin: 0.5, End: 1}, f.chart.Minimap().Range())
	assert.InDelta(t, 300.0, f.minimap.last(t).Ruler.Begin, 1e-9)
}

func TestWithoutAnimations_Jumps(t *testing.T) {
	f := newFixture(t, twoLines(), lovelychart.WithAnimations(false))

	f.chart.SetRange(chartdata.Range{Begin: 0.5, End: 1})
	f.q.Step()
	assert.Equal(t, 0.5, f.chart.State().Begin)
	assert.False(t, f.chart.HasAnimations())
	assert.False(t, f.chart.IsFast())
}

func TestToggleDataset(t *testing.T) {
	f := newFixture(t, twoLines())

	err := f.chart.ToggleDataset("y9")
	assert.ErrorIs(t, err, lovelychart.ErrUnknownDataset)

	require.NoError(t, f.chart.ToggleDataset("y1"))
	f.settle()
	assert.Equal(t, chartdata.Filter{"y0": true, "y1": false}, f.chart.Filter())
	assert.Equal(t, 0.0, f.chart.State().Opacity["y1"])

	require.NoError(t, f.chart.ShowOnly("y1"))
	f.settle()
	assert.Equal(t, chartdata.Filter{"y0": false, "y1": true}, f.chart.Filter())
}

func TestMinimapDragMovesRange(t *testing.T) {
	f := newFixture(t, twoLines())
	f.chart.SetRange(chartdata.Range{Begin: 0, End: 0.5})
	f.settle()

	mm := f.chart.Minimap()
	require.True(t, mm.PointerDown(150))
	mm.PointerMove(300)
	mm.PointerUp()

	assert.InDelta(t, 0.25, f.chart.Static().Begin, 1e-9)
	assert.InDelta(t, 0.75, f.chart.Static().End, 1e-9)
}

func TestSetFocus_ShowsTooltip(t *testing.T) {
	f := newFixture(t, twoLines())

	f.chart.SetFocus(300, 100)
	f.settle()

	index, ok := f.chart.Focus()
	require.True(t, ok)
	assert.InDelta(t, 10, index, 1)

	content, ok := f.chart.Tooltip()
	require.True(t, ok)
	assert.Equal(t, index, content.LabelIndex)
	assert.Len(t, content.Items, 2)

	frame := f.plot.last(t)
	require.NotNil(t, frame.FocusX)
	assert.InDelta(t, 300, *frame.FocusX, 600.0/19)

	f.chart.ClearFocus()
	f.settle()
	_, ok = f.chart.Focus()
	assert.False(t, ok)
	_, ok = f.chart.Tooltip()
	assert.False(t, ok)
}

func TestZoom_RoundTripThroughDataSource(t *testing.T) {
	labels := make([]float64, 10)
	for i := range labels {
		labels[i] = float64(i) * day
	}
	raw := &chartdata.RawChart{
		Labels:         chartdata.NumericLabels(labels...),
		LabelFormatter: "day",
		Datasets: []chartdata.RawDataset{
			{Values: constant(10, 5)},
			{Values: constant(10, 7)},
		},
	}

	source := zoomertest.NewMockDataSource(gomock.NewController(t))
	source.EXPECT().
		Fetch(gomock.Any(), labels[4]).
		Return(&chartdata.RawChart{
			Labels:   chartdata.NumericLabels(labels[4], labels[4]+day/2, labels[5]),
			Datasets: []chartdata.RawDataset{{Values: []float64{1, 2, 3}}},
		}, nil)

	var done []zoomer.Direction
	f := newFixture(t, raw,
		lovelychart.WithDataSource(source),
		lovelychart.WithZoomCallback(func(dir zoomer.Direction, err error) {
			assert.NoError(t, err)
			done = append(done, dir)
		}))

	before := chartdata.Range{Begin: 0.2, End: 0.8}
	f.chart.SetRange(before)
	f.settle()

	_, ok := f.chart.ZoomOutLabel()
	assert.False(t, ok)

	require.NoError(t, f.chart.ZoomIn(context.Background(), 4))
	assert.ErrorIs(t, f.chart.ZoomIn(context.Background(), 4), zoomer.ErrZoomInProgress)
	f.settle()

	require.True(t, f.chart.IsZoomed())
	assert.Len(t, f.chart.Data().Datasets, 1)
	label, ok := f.chart.ZoomOutLabel()
	assert.True(t, ok)
	assert.Equal(t, "Zoom out", label)

	require.NoError(t, f.chart.ZoomOut())
	f.settle()

	assert.False(t, f.chart.IsZoomed())
	assert.Equal(t, before, f.chart.Static().Range())
	assert.Equal(t, []zoomer.Direction{zoomer.In, zoomer.Out}, done)

	expected := `
# HELP lovely_chart_zooms_total Zoom attempts partitioned by direction and outcome.
# TYPE lovely_chart_zooms_total counter
lovely_chart_zooms_total{direction="in",outcome="done"} 1
lovely_chart_zooms_total{direction="in",outcome="rejected"} 1
lovely_chart_zooms_total{direction="out",outcome="done"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(
		f.registry, strings.NewReader(expected), "lovely_chart_zooms_total"))
}

func TestZoomOut_NotZoomed(t *testing.T) {
	f := newFixture(t, twoLines())
	assert.ErrorIs(t, f.chart.ZoomOut(), zoomer.ErrNotZoomed)
}

func TestResize_IsDebounced(t *testing.T) {
	f := newFixture(t, twoLines())
	drawn := len(f.minimap.frames)

	f.chart.Resize(chartstate.Size{Width: 300, Height: 200}, chartstate.Size{Width: 300, Height: 20})
	f.chart.Resize(chartstate.Size{Width: 200, Height: 100}, chartstate.Size{Width: 200, Height: 20})

	plot, _ := f.chart.Size()
	assert.Equal(t, plotSize, plot)

	f.clock.Advance(lovelychart.DefaultResizeDelay)
	f.settle()

	plot, mm := f.chart.Size()
	assert.Equal(t, chartstate.Size{Width: 200, Height: 100}, plot)
	assert.Equal(t, 200.0, mm.Width)
	assert.Greater(t, len(f.minimap.frames), drawn)
	assert.Equal(t, 200.0, f.minimap.last(t).Ruler.End)
}

func TestSetData_KeepsRangeForSameDatasets(t *testing.T) {
	f := newFixture(t, twoLines())
	f.chart.SetRange(chartdata.Range{Begin: 0.25, End: 0.75})
	f.settle()

	next := twoLines()
	next.Datasets[0].Values = constant(20, 15)
	require.NoError(t, f.chart.SetData(next))
	f.settle()
	assert.Equal(t, chartdata.Range{Begin: 0.25, End: 0.75}, f.chart.State().Range())

	other := twoLines()
	other.Datasets = other.Datasets[:1]
	require.NoError(t, f.chart.SetData(other))
	f.settle()
	assert.Equal(t, chartdata.Range{Begin: 0, End: 1}, f.chart.State().Range())

	assert.Error(t, f.chart.SetData(&chartdata.RawChart{}))
}

func TestSetTheme_Redraws(t *testing.T) {
	f := newFixture(t, twoLines())
	assert.Equal(t, theme.Day, f.plot.theme.Name)
	drawn := len(f.plot.frames)

	require.NoError(t, f.chart.SetTheme(theme.Night))
	assert.Equal(t, theme.Night, f.chart.Theme().Name)
	assert.Equal(t, theme.Night, f.minimap.theme.Name)
	assert.Len(t, f.plot.frames, drawn+1)

	assert.ErrorIs(t, f.chart.SetTheme("sepia"), theme.ErrUnknownTheme)
}

func TestCaption(t *testing.T) {
	labels := make([]float64, 31)
	for i := range labels {
		labels[i] = float64(i) * day
	}
	raw := &chartdata.RawChart{
		Labels:         chartdata.NumericLabels(labels...),
		LabelFormatter: "day",
		Datasets:       []chartdata.RawDataset{{Values: constant(31, 1)}},
	}
	f := newFixture(t, raw)
	assert.Equal(t, "1 January 1970 - 31 January 1970", f.chart.Caption())

	raw.HideCaption = true
	require.NoError(t, f.chart.SetData(raw))
	assert.Empty(t, f.chart.Caption())
}

// counterValue reads a counter with the given label value from the
// registry.
func counterValue(
	t *testing.T,
	registry *prometheus.Registry,
	name, labelValue string,
) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("no %s with label value %q", name, labelValue)
	return 0
}
