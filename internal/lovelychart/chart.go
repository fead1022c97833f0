// Package lovelychart is a chart instance: it wires the state manager,
// the zoomer, the minimap and the tooltip of one chart to the surfaces
// it is drawn on.
package lovelychart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wandb/lovely-chart/internal/axes"
	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/debounce"
	"github.com/wandb/lovely-chart/internal/format"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/minimap"
	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/points"
	"github.com/wandb/lovely-chart/internal/projection"
	"github.com/wandb/lovely-chart/internal/render"
	"github.com/wandb/lovely-chart/internal/theme"
	"github.com/wandb/lovely-chart/internal/tooltip"
	"github.com/wandb/lovely-chart/internal/zoomer"
)

// ErrUnknownDataset is returned for a dataset key the chart doesn't have.
var ErrUnknownDataset = errors.New("lovelychart: unknown dataset")

// themer is implemented by drawers that follow the chart's theme.
type themer interface {
	SetTheme(th theme.Theme)
}

// Chart is one chart instance.
//
// A chart is not safe for concurrent use: every method must be called
// on the goroutine that steps its loop.
type Chart struct {
	id     string
	logger *observability.CoreLogger

	loop          frameloop.Loop
	plotDrawer    render.Drawer
	minimapDrawer render.Drawer
	source        zoomer.DataSource
	registerer    prometheus.Registerer
	onZoom        func(zoomer.Direction, error)

	themeName     theme.Name
	theme         theme.Theme
	layout        chartstate.Layout
	animations    bool
	minFPS        float64
	zoomTimeout   time.Duration
	resizeDelay   time.Duration
	plotFactor    float64
	minimapFactor float64
	earWidth      float64

	plotSize    chartstate.Size
	minimapSize chartstate.Size

	data    *chartdata.ChartData
	manager *chartstate.Manager
	zoomer  *zoomer.Zoomer
	minimap *minimap.Minimap
	balloon *tooltip.Balloon
	resizer *debounce.Trailing
	metrics *metrics

	// state is the last state drawn.
	state *chartstate.RenderState

	// plotProjection is the projection of the last plot drawn.
	plotProjection *projection.Projection

	lastRuler render.Ruler
	isZoomed  bool
}

// New analyzes the raw chart and starts drawing it.
func New(raw *chartdata.RawChart, opts ...ChartOption) (*Chart, error) {
	c := &Chart{}
	defaults(c)
	for _, opt := range opts {
		opt(c)
	}

	data, err := chartdata.Analyze(raw, c.source != nil)
	if err != nil {
		return nil, fmt.Errorf("lovelychart: %w", err)
	}

	th, err := theme.Get(c.themeName)
	if err != nil {
		return nil, fmt.Errorf("lovelychart: %w", err)
	}
	c.theme = th

	if c.loop == nil {
		c.loop = frameloop.NewQueue()
	}
	if c.plotDrawer == nil {
		c.plotDrawer = render.DrawerFunc(func(render.Frame) {})
	}
	if c.minimapDrawer == nil {
		c.minimapDrawer = render.DrawerFunc(func(render.Frame) {})
	}
	if c.registerer == nil {
		c.registerer = prometheus.NewRegistry()
	}
	if c.logger == nil {
		c.logger = observability.NewNoOpLogger()
	}

	c.id = uuid.NewString()
	c.logger = c.logger.With("chart_id", c.id)
	c.metrics = newMetrics(c.registerer)
	c.balloon = tooltip.NewBalloon(c.loop, c.logger)
	c.resizer = debounce.NewTrailing(c.loop, c.resizeDelay)
	c.zoomer = c.newZoomer()
	c.applyTheme()

	c.start(data, chartstate.Update{})
	c.logger.Debug("lovelychart: created",
		"type", data.Type, "datasets", len(data.Datasets), "labels", len(data.XLabels))
	return c, nil
}

// ID identifies the chart in logs.
func (c *Chart) ID() string {
	return c.id
}

// Loop returns the loop the chart runs on.
func (c *Chart) Loop() frameloop.Loop {
	return c.loop
}

func (c *Chart) newZoomer() *zoomer.Zoomer {
	return zoomer.New(zoomer.Params{
		Target:  c,
		Loop:    c.loop,
		Source:  c.source,
		Logger:  c.logger,
		Timeout: c.zoomTimeout,
		OnDone:  c.onZoomDone,
	})
}

// start replaces the chart's data and state manager.
func (c *Chart) start(data *chartdata.ChartData, initial chartstate.Update) {
	if c.manager != nil {
		c.manager.Stop()
	}

	var minimapDelta float64
	if initial.MinimapDelta != nil {
		minimapDelta = *initial.MinimapDelta
	}

	c.data = data
	c.state = nil
	c.plotProjection = nil
	c.balloon.Hide()

	c.minimap = minimap.New(minimap.Params{
		Data:                 data,
		Width:                c.minimapSize.Width,
		EarWidth:             c.earWidth,
		SimplificationFactor: c.minimapFactor,
		OnRange:              c.onMinimapRange,
	})
	c.manager = chartstate.NewManager(chartstate.ManagerParams{
		Data:         data,
		Viewport:     c.plotSize,
		Layout:       c.layout,
		Loop:         c.loop,
		Callback:     c.onState,
		Logger:       c.logger,
		Range:        initial.Range,
		Filter:       initial.Filter,
		MinimapDelta: minimapDelta,
		MinFPS:       c.minFPS,
	})
}

// Data returns the data shown, detailed data while zoomed in.
func (c *Chart) Data() *chartdata.ChartData {
	return c.data
}

// Static returns the state the chart is animating towards.
func (c *Chart) Static() *chartstate.RenderState {
	return c.manager.Static()
}

// State returns the last state drawn, or nil before the first frame.
func (c *Chart) State() *chartstate.RenderState {
	return c.state
}

// IsFast reports whether transitions are being animated.
func (c *Chart) IsFast() bool {
	return c.animations && c.manager.IsFast()
}

// HasAnimations reports whether anything is in flight.
func (c *Chart) HasAnimations() bool {
	return c.manager.HasAnimations()
}

// Update changes the chart's inputs.
func (c *Chart) Update(u chartstate.Update, noTransition bool) {
	c.manager.Update(u, noTransition || !c.animations)
}

// SwapData replaces the data shown, starting from the given inputs.
func (c *Chart) SwapData(data *chartdata.ChartData, initial chartstate.Update) {
	c.start(data, initial)
}

// SetLoading marks the chart as waiting for zoom data.
func (c *Chart) SetLoading(loading bool) {
	c.balloon.SetLoading(loading)
}

// IsLoading reports whether zoom data is being fetched.
func (c *Chart) IsLoading() bool {
	return c.balloon.IsLoading()
}

func (c *Chart) SetZoomed(zoomed bool) {
	c.isZoomed = zoomed
}

// IsZoomed reports whether the chart shows detailed data.
func (c *Chart) IsZoomed() bool {
	return c.isZoomed
}

// SetRange selects the part of the x extent shown on the plot.
func (c *Chart) SetRange(rng chartdata.Range) {
	c.Update(chartstate.Update{Range: &rng}, false)
}

// ToggleDataset shows or hides a dataset.
func (c *Chart) ToggleDataset(key string) error {
	if _, ok := c.data.Dataset(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDataset, key)
	}
	filter := c.manager.Static().Filter.Clone()
	filter[key] = !filter[key]
	c.Update(chartstate.Update{Filter: filter}, false)
	return nil
}

// ShowOnly shows a single dataset and hides all others.
func (c *Chart) ShowOnly(key string) error {
	if _, ok := c.data.Dataset(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDataset, key)
	}
	filter := c.data.AllVisible()
	for k := range filter {
		filter[k] = k == key
	}
	c.Update(chartstate.Update{Filter: filter}, false)
	return nil
}

// Filter returns the datasets the chart is showing.
func (c *Chart) Filter() chartdata.Filter {
	return c.manager.Static().Filter.Clone()
}

// SetFocus hovers the plot at pixel (x, y) and updates the tooltip.
func (c *Chart) SetFocus(x, y float64) {
	width, height := c.plotArea()
	static := c.manager.Static()

	var focus chartstate.Focus
	if c.data.IsPie {
		vector := tooltip.PointerVector(x, y, width, height)
		focus = chartstate.Focus{LabelIndex: int(static.LabelFromIndex), Pointer: &vector}
	} else {
		proj := c.plotProjection
		if proj == nil {
			proj = c.projection(static)
		}
		index := proj.FindClosestLabelIndex(x)
		index = min(max(index, int(math.Ceil(static.LabelFromIndex))), int(static.LabelToIndex))
		focus = chartstate.Focus{LabelIndex: index}
	}

	content, ok := tooltip.Build(c.data, static, focus.LabelIndex, focus.Pointer,
		formulas.PieRadius(width, height))
	if !ok {
		c.ClearFocus()
		return
	}

	c.Update(chartstate.Update{Focus: &focus}, false)
	c.balloon.Show(content, c.data.IsPie)
}

// FocusLabel hovers a label directly and updates the tooltip.
func (c *Chart) FocusLabel(labelIndex int) bool {
	static := c.manager.Static()
	width, height := c.plotArea()
	content, ok := tooltip.Build(c.data, static, labelIndex, nil, formulas.PieRadius(width, height))
	if !ok {
		return false
	}

	c.Update(chartstate.Update{Focus: &chartstate.Focus{LabelIndex: labelIndex}}, false)
	c.balloon.Show(content, c.data.IsPie)
	return true
}

// ClearFocus removes the hover and hides the tooltip.
func (c *Chart) ClearFocus() {
	c.balloon.Hide()
	if c.manager.Static().FocusOn != nil {
		c.Update(chartstate.Update{ClearFocus: true}, false)
	}
}

// Focus returns the hovered label.
func (c *Chart) Focus() (int, bool) {
	focus := c.manager.Static().FocusOn
	if focus == nil {
		return 0, false
	}
	return focus.LabelIndex, true
}

// Tooltip returns the tooltip shown, if any.
func (c *Chart) Tooltip() (tooltip.Content, bool) {
	return c.balloon.Content()
}

// ZoomIn drills down into the label.
func (c *Chart) ZoomIn(ctx context.Context, labelIndex int) error {
	c.ClearFocus()
	if err := c.zoomer.ZoomIn(ctx, labelIndex); err != nil {
		c.metrics.zooms.WithLabelValues(string(zoomer.In), zoomRejected).Inc()
		return err
	}
	return nil
}

// ZoomOut restores the overview.
func (c *Chart) ZoomOut() error {
	c.ClearFocus()
	if err := c.zoomer.ZoomOut(); err != nil {
		c.metrics.zooms.WithLabelValues(string(zoomer.Out), zoomRejected).Inc()
		return err
	}
	return nil
}

// IsZoomBusy reports whether a zoom is being fetched or animated.
func (c *Chart) IsZoomBusy() bool {
	return c.zoomer.IsBusy()
}

func (c *Chart) onZoomDone(dir zoomer.Direction, err error) {
	outcome := zoomDone
	if err != nil {
		outcome = zoomAborted
	}
	c.metrics.zooms.WithLabelValues(string(dir), outcome).Inc()

	if c.onZoom != nil {
		c.onZoom(dir, err)
	}
}

// Resize changes the plot and minimap sizes in pixels once resizing
// stops.
func (c *Chart) Resize(plot, minimapSize chartstate.Size) {
	c.resizer.Call(func() {
		c.plotSize = plot
		c.minimapSize = minimapSize
		c.plotProjection = nil
		c.minimap.Resize(minimapSize.Width)
		c.manager.Resize(plot)
		c.logger.Debug("lovelychart: resized",
			"width", plot.Width, "height", plot.Height)
	})
}

// Size returns the plot and minimap sizes in pixels.
func (c *Chart) Size() (plot, minimapSize chartstate.Size) {
	return c.plotSize, c.minimapSize
}

// SetData replaces the chart's data. The range and filter are kept when
// the new data has the same datasets.
func (c *Chart) SetData(raw *chartdata.RawChart) error {
	data, err := chartdata.Analyze(raw, c.source != nil)
	if err != nil {
		return fmt.Errorf("lovelychart: %w", err)
	}

	var initial chartstate.Update
	if !c.isZoomed && slices.Equal(c.data.Keys(), data.Keys()) {
		static := c.manager.Static()
		rng := static.Range()
		initial.Range = &rng
		initial.Filter = static.Filter.Clone()
	}

	c.zoomer.Stop()
	c.zoomer = c.newZoomer()
	c.isZoomed = false
	c.balloon.SetLoading(false)

	c.start(data, initial)
	c.logger.Debug("lovelychart: data replaced", "labels", len(data.XLabels))
	return nil
}

// SetTheme changes the colors the chart is drawn with.
func (c *Chart) SetTheme(name theme.Name) error {
	th, err := theme.Get(name)
	if err != nil {
		return fmt.Errorf("lovelychart: %w", err)
	}
	c.themeName = name
	c.theme = th
	c.applyTheme()

	if c.state != nil {
		c.drawPlot()
		c.drawMinimap()
	}
	return nil
}

// Theme returns the colors the chart is drawn with.
func (c *Chart) Theme() theme.Theme {
	return c.theme
}

func (c *Chart) applyTheme() {
	for _, d := range []render.Drawer{c.plotDrawer, c.minimapDrawer} {
		if t, ok := d.(themer); ok {
			t.SetTheme(c.theme)
		}
	}
}

// Minimap returns the chart's minimap for pointer handling.
func (c *Chart) Minimap() *minimap.Minimap {
	return c.minimap
}

// Title returns the chart's title.
func (c *Chart) Title() string {
	return c.data.Title
}

// ZoomOutLabel returns the label of the zoom out control while zoomed in.
func (c *Chart) ZoomOutLabel() (string, bool) {
	if !c.isZoomed {
		return "", false
	}
	return c.data.ZoomOutLabel, true
}

// Caption describes the visible range, or is empty when the data hides
// it.
func (c *Chart) Caption() string {
	labels := c.data.XLabels
	if c.data.HideCaption || len(labels) == 0 {
		return ""
	}

	static := c.manager.Static()
	var from, to int
	if c.data.IsPie {
		from, to = int(static.LabelFromIndex), int(static.LabelToIndex)
	} else {
		total := float64(c.data.TotalXWidth())
		from = int(math.Round(static.Begin * total))
		to = int(math.Round(static.End * total))
	}
	from = min(max(from, 0), len(labels)-1)
	to = min(max(to, from), len(labels)-1)

	return format.Caption(labels[from].Value, labels[to].Value, c.data.LabelFormatter)
}

// Stop cancels pending work. The chart draws nothing afterwards.
func (c *Chart) Stop() {
	c.manager.Stop()
	c.zoomer.Stop()
	c.resizer.Stop()
	c.balloon.Hide()
}

func (c *Chart) onMinimapRange(rng chartdata.Range) {
	c.SetRange(rng)
}

func (c *Chart) onState(state *chartstate.RenderState) {
	c.state = state
	c.metrics.setFast(c.IsFast())

	c.drawPlot()
	if c.minimap.Update(state) || c.minimap.Ruler() != c.lastRuler {
		c.drawMinimap()
	}
}

// plotArea is the plot size without the x axis, in pixels.
func (c *Chart) plotArea() (float64, float64) {
	return c.plotSize.Width, math.Max(c.plotSize.Height-c.layout.XAxisHeight, 1)
}

func (c *Chart) passParams(state *chartstate.RenderState) render.PassParams {
	width, height := c.plotArea()
	return render.PassParams{
		Data:       c.data,
		State:      state,
		Width:      width,
		Height:     height,
		Begin:      state.Begin,
		End:        state.End,
		YMin:       state.YMinViewport,
		YMax:       state.YMaxViewport,
		YMinSecond: state.YMinViewportSecond,
		YMaxSecond: state.YMaxViewportSecond,
		Window: points.Window{
			From: int(state.LabelFromIndex),
			To:   int(state.LabelToIndex),
		},
		SimplificationFactor: c.plotFactor,
		LineWidth:            1,
	}
}

func (c *Chart) projection(state *chartstate.RenderState) *projection.Projection {
	return render.Prepare(c.passParams(state)).Projection
}

func (c *Chart) drawPlot() {
	state := c.state
	pass := render.Prepare(c.passParams(state))
	c.plotProjection = pass.Projection

	frame := render.Frame{
		Pass:    pass,
		XTicks:  axes.XTicks(c.data, state, pass.Projection),
		YScales: axes.YScales(c.data, state, pass.Projection, pass.SecondaryProjection),
	}
	if state.FocusOn != nil && !c.data.IsPie {
		x, _ := pass.Projection.ToPixels(float64(state.FocusOn.LabelIndex), 0)
		frame.FocusX = &x
	}

	c.plotDrawer.Draw(frame)
	c.metrics.frames.WithLabelValues("plot").Inc()
}

func (c *Chart) drawMinimap() {
	pass, ok := c.minimap.Pass(c.minimapSize.Height)
	if !ok {
		return
	}
	ruler := c.minimap.Ruler()
	c.lastRuler = ruler

	c.minimapDrawer.Draw(render.Frame{Pass: pass, Ruler: &ruler})
	c.metrics.frames.WithLabelValues("minimap").Inc()
}
