// Package tui shows a chart in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/lovelychart"
	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/render"
	"github.com/wandb/lovely-chart/internal/simplify"
	"github.com/wandb/lovely-chart/internal/theme"
	"github.com/wandb/lovely-chart/internal/zoomer"
)

// Layout constants, in terminal cells.
const (
	HeaderHeight     = 1
	StatusBarHeight  = 1
	SidebarWidth     = 30
	MinSidebarLayout = 70
	MinPlotRows      = 4

	// DefaultMinimapRows is the minimap height when Params leaves it unset.
	DefaultMinimapRows = 3

	simplifyCacheSize = 256
)

const (
	panFraction   = 0.1
	narrowFactor  = 0.8
	minRangeWidth = 2
)

// Params configures a Model.
type Params struct {
	Raw    *chartdata.RawChart
	Logger *observability.CoreLogger

	// Options configure the chart. The loop and drawers are set by the
	// model.
	Options []lovelychart.ChartOption

	// Queue is the loop the chart runs on. Defaults to a new queue on the
	// wall clock.
	Queue *frameloop.Queue

	// Context bounds zoom requests.
	Context context.Context

	MinimapRows int
}

// Model is the bubbletea model of the chart view.
type Model struct {
	ctx    context.Context
	logger *observability.CoreLogger

	queue   *frameloop.Queue
	chart   *lovelychart.Chart
	plot    *render.Canvas
	minimap *render.Canvas

	keyMap map[string]func(*Model, tea.KeyMsg) tea.Cmd

	width, height int
	plotCols      int
	plotRows      int
	minimapRows   int
	sidebar       bool

	ticking  bool
	showHelp bool
	status   string
}

// NewModel creates the chart and the canvases it is drawn on.
func NewModel(params Params) (*Model, error) {
	if params.Logger == nil {
		params.Logger = observability.NewNoOpLogger()
	}
	if params.Queue == nil {
		params.Queue = frameloop.NewQueue()
	}
	if params.Context == nil {
		params.Context = context.Background()
	}
	if params.MinimapRows <= 0 {
		params.MinimapRows = DefaultMinimapRows
	}

	cache, err := simplify.NewCache(simplifyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("tui: %v", err)
	}

	m := &Model{
		ctx:         params.Context,
		logger:      params.Logger,
		queue:       params.Queue,
		keyMap:      buildKeyMap(KeyBindings()),
		minimapRows: params.MinimapRows,
	}

	// The canvases are sized on the first WindowSizeMsg.
	m.plot = render.NewCanvas(1, 1, theme.Theme{}, cache)
	m.minimap = render.NewCanvas(1, params.MinimapRows, theme.Theme{}, cache)

	opts := append([]lovelychart.ChartOption{lovelychart.WithLogger(params.Logger)}, params.Options...)
	opts = append(opts,
		lovelychart.WithLoop(params.Queue),
		lovelychart.WithDrawers(m.plot, m.minimap),
		lovelychart.WithZoomCallback(m.onZoom),
	)

	chart, err := lovelychart.New(params.Raw, opts...)
	if err != nil {
		return nil, err
	}
	m.chart = chart
	return m, nil
}

// Chart returns the chart shown.
func (m *Model) Chart() *lovelychart.Chart {
	return m.chart
}

// Status returns the message on the status line.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) Init() tea.Cmd {
	m.ticking = true
	return frameCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case FrameMsg:
		m.queue.Step()
		m.ticking = m.queue.Pending()
		if m.ticking {
			return m, frameCmd()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if handler, ok := m.keyMap[msg.String()]; ok {
			cmd = handler(m, msg)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case ChartReloadedMsg:
		if err := m.chart.SetData(msg.Raw); err != nil {
			m.setError(err)
		} else {
			m.status = "Reloaded"
		}

	case ErrorMsg:
		m.setError(msg.Err)
	}

	return m, tea.Batch(cmd, m.ensureTicking())
}

// ensureTicking restarts the frame ticks when the loop has work.
func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking || !m.queue.Pending() {
		return nil
	}
	m.ticking = true
	return frameCmd()
}

func (m *Model) setError(err error) {
	m.logger.Warn("tui: action failed", "error", err)
	m.status = err.Error()
}

func (m *Model) onZoom(_ zoomer.Direction, err error) {
	if err != nil {
		m.setError(err)
		return
	}
	m.status = ""
}

func (m *Model) handleResize(width, height int) {
	m.width, m.height = width, height
	m.sidebar = width >= MinSidebarLayout

	m.plotCols = width
	if m.sidebar {
		m.plotCols -= SidebarWidth
	}
	m.plotCols = max(m.plotCols, 1)
	m.plotRows = max(height-HeaderHeight-StatusBarHeight-m.minimapRows, MinPlotRows)

	m.plot.Resize(m.plotCols, m.plotRows)
	m.minimap.Resize(m.plotCols, m.minimapRows)

	plotWidth, plotHeight := m.plot.PixelSize()
	minimapWidth, minimapHeight := m.minimap.PixelSize()
	m.chart.Resize(
		chartstate.Size{Width: plotWidth, Height: plotHeight},
		chartstate.Size{Width: minimapWidth, Height: minimapHeight},
	)
}

// surface is the part of the screen a mouse event falls on.
type surface int

const (
	offChart surface = iota
	onPlot
	onMinimap
)

// locate converts a cell position to the surface under it and the
// pixel at the cell's center.
func (m *Model) locate(col, row int) (surface, float64, float64) {
	if col < 0 || col >= m.plotCols {
		return offChart, 0, 0
	}

	x := float64(col)*2 + 1
	row -= HeaderHeight
	switch {
	case row >= 0 && row < m.plotRows:
		return onPlot, x, float64(row)*4 + 2
	case row >= m.plotRows && row < m.plotRows+m.minimapRows:
		return onMinimap, x, float64(row-m.plotRows)*4 + 2
	}
	return offChart, 0, 0
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	where, x, y := m.locate(msg.X, msg.Y)
	mm := m.chart.Minimap()

	if mm.IsDragging() {
		switch msg.Action {
		case tea.MouseActionMotion:
			mm.PointerMove(x)
		case tea.MouseActionRelease:
			mm.PointerUp()
		}
		return
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp && where == onPlot:
		m.scale(narrowFactor)
	case msg.Button == tea.MouseButtonWheelDown && where == onPlot:
		m.scale(1 / narrowFactor)

	case msg.Action == tea.MouseActionMotion && where == onPlot:
		m.chart.SetFocus(x, y)
	case msg.Action == tea.MouseActionMotion:
		m.chart.ClearFocus()

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		switch where {
		case onMinimap:
			mm.PointerDown(x)
		case onPlot:
			m.chart.SetFocus(x, y)
			m.zoomInFocused()
		}
	}
}

func (m *Model) currentRange() chartdata.Range {
	return m.chart.Static().Range()
}

func (m *Model) minWidth() float64 {
	total := m.chart.Data().TotalXWidth()
	if total <= 0 {
		return 1
	}
	return math.Min(minRangeWidth/float64(total), 1)
}

func (m *Model) scale(factor float64) {
	if m.chart.Data().IsPie {
		return
	}
	m.chart.SetRange(scaleRange(m.currentRange(), factor, m.minWidth()))
}

func (m *Model) pan(fraction float64) {
	if m.chart.Data().IsPie {
		return
	}
	m.chart.SetRange(panRange(m.currentRange(), fraction))
}

func (m *Model) zoomInFocused() {
	index, ok := m.chart.Focus()
	if !ok {
		return
	}
	if err := m.chart.ZoomIn(m.ctx, index); err != nil && !errors.Is(err, zoomer.ErrZoomInProgress) {
		m.setError(err)
	}
}

func (m *Model) handleToggleHelp(tea.KeyMsg) tea.Cmd {
	m.showHelp = !m.showHelp
	return nil
}

func (m *Model) handleQuit(tea.KeyMsg) tea.Cmd {
	m.logger.Debug("tui: quit requested")
	m.chart.Stop()
	return tea.Quit
}

func (m *Model) handleToggleTheme(tea.KeyMsg) tea.Cmd {
	next := theme.Night
	if m.chart.Theme().Name == theme.Night {
		next = theme.Day
	}
	if err := m.chart.SetTheme(next); err != nil {
		m.setError(err)
	}
	return nil
}

func (m *Model) handlePanLeft(tea.KeyMsg) tea.Cmd {
	m.pan(-panFraction)
	return nil
}

func (m *Model) handlePanRight(tea.KeyMsg) tea.Cmd {
	m.pan(panFraction)
	return nil
}

func (m *Model) handleNarrow(tea.KeyMsg) tea.Cmd {
	m.scale(narrowFactor)
	return nil
}

func (m *Model) handleWiden(tea.KeyMsg) tea.Cmd {
	m.scale(1 / narrowFactor)
	return nil
}

func (m *Model) handleResetRange(tea.KeyMsg) tea.Cmd {
	if !m.chart.Data().IsPie {
		m.chart.SetRange(chartdata.Range{Begin: 0, End: 1})
	}
	return nil
}

// datasetKey maps a digit key to the key of the dataset at that
// position.
func (m *Model) datasetKey(msg tea.KeyMsg) (string, bool) {
	digit := strings.TrimPrefix(msg.String(), "alt+")
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 || n > len(m.chart.Data().Datasets) {
		return "", false
	}
	return m.chart.Data().Datasets[n-1].Key, true
}

func (m *Model) handleToggleDataset(msg tea.KeyMsg) tea.Cmd {
	if key, ok := m.datasetKey(msg); ok {
		if err := m.chart.ToggleDataset(key); err != nil {
			m.setError(err)
		}
	}
	return nil
}

func (m *Model) handleShowOnly(msg tea.KeyMsg) tea.Cmd {
	if key, ok := m.datasetKey(msg); ok {
		if err := m.chart.ShowOnly(key); err != nil {
			m.setError(err)
		}
	}
	return nil
}

func (m *Model) moveFocus(step int) {
	static := m.chart.Static()
	from := int(math.Ceil(static.LabelFromIndex))
	to := int(math.Floor(static.LabelToIndex))
	if to < from {
		return
	}

	index, ok := m.chart.Focus()
	switch {
	case !ok && step > 0:
		index = from
	case !ok:
		index = to
	default:
		index = min(max(index+step, from), to)
	}
	m.chart.FocusLabel(index)
}

func (m *Model) handleFocusNext(tea.KeyMsg) tea.Cmd {
	m.moveFocus(1)
	return nil
}

func (m *Model) handleFocusPrev(tea.KeyMsg) tea.Cmd {
	m.moveFocus(-1)
	return nil
}

func (m *Model) handleZoomIn(tea.KeyMsg) tea.Cmd {
	m.zoomInFocused()
	return nil
}

func (m *Model) handleZoomOut(tea.KeyMsg) tea.Cmd {
	if !m.chart.IsZoomed() {
		m.chart.ClearFocus()
		return nil
	}
	if err := m.chart.ZoomOut(); err != nil && !errors.Is(err, zoomer.ErrZoomInProgress) {
		m.setError(err)
	}
	return nil
}
