// Package zoomer drills a chart down into detailed data for one label and
// back up to the overview.
package zoomer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/observability"
)

//go:generate mockgen -package=zoomertest -destination=../zoomertest/mock_datasource.go . DataSource

var (
	ErrZoomInProgress = errors.New("zoomer: zoom in progress")
	ErrAlreadyZoomed  = errors.New("zoomer: already zoomed")
	ErrNotZoomed      = errors.New("zoomer: not zoomed")
	ErrNotZoomable    = errors.New("zoomer: chart is not zoomable")

	// ErrNoData is reported when a data source has nothing for a label.
	ErrNoData = errors.New("zoomer: no data for label")
)

// DataSource provides the detailed chart for a label of the overview.
//
// Fetch returns a nil chart without error if there is no detailed data.
type DataSource interface {
	Fetch(ctx context.Context, labelValue float64) (*chartdata.RawChart, error)
}

// Target is the chart being zoomed.
type Target interface {
	Data() *chartdata.ChartData

	// Static returns the chart's target render state.
	Static() *chartstate.RenderState

	// IsFast reports whether transitions are being animated.
	IsFast() bool

	Update(u chartstate.Update, noTransition bool)

	// SwapData replaces the chart's data, starting from the given inputs
	// without animation.
	SwapData(data *chartdata.ChartData, initial chartstate.Update)

	SetLoading(loading bool)
	SetZoomed(zoomed bool)
}

// Direction is the direction of a zoom.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// snapshot is the part of a render state restored on zoom out.
type snapshot struct {
	rng    chartdata.Range
	filter chartdata.Filter
}

type Params struct {
	Target Target
	Loop   frameloop.Loop

	// Source fetches detailed data. It may be nil, in which case only
	// percentage charts can zoom, into a pie.
	Source DataSource

	Logger *observability.CoreLogger

	// Timeout separates the phases of a zoom. Defaults to
	// formulas.ZoomTimeout.
	Timeout time.Duration

	// OnDone is called when a zoom completes or is aborted.
	OnDone func(dir Direction, err error)
}

// Zoomer is the Overview / Zoomed state machine.
//
// It is not safe for concurrent use; all calls happen on the loop.
type Zoomer struct {
	target  Target
	loop    frameloop.Loop
	source  DataSource
	logger  *observability.CoreLogger
	timeout time.Duration
	onDone  func(Direction, error)

	isZoomed bool
	isBusy   bool

	overview          *chartdata.ChartData
	zoomedLabel       int
	stateBeforeZoomIn snapshot

	cancelTimer func()
	stopped     bool
}

func New(params Params) *Zoomer {
	logger := params.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = formulas.ZoomTimeout
	}

	return &Zoomer{
		target:  params.Target,
		loop:    params.Loop,
		source:  params.Source,
		logger:  logger,
		timeout: timeout,
		onDone:  params.OnDone,
	}
}

// IsZoomed reports whether the chart shows detailed data.
func (z *Zoomer) IsZoomed() bool {
	return z.isZoomed
}

// IsBusy reports whether a zoom is being fetched or animated.
func (z *Zoomer) IsBusy() bool {
	return z.isBusy
}

// Stop cancels pending phases. A fetch in flight is ignored on arrival.
func (z *Zoomer) Stop() {
	z.stopped = true
	if z.cancelTimer != nil {
		z.cancelTimer()
		z.cancelTimer = nil
	}
}

// ZoomIn replaces the overview with detailed data for the label.
//
// The data arrives asynchronously; errors from the data source are
// logged and reported to OnDone rather than returned.
func (z *Zoomer) ZoomIn(ctx context.Context, labelIndex int) error {
	switch {
	case z.isBusy:
		return ErrZoomInProgress
	case z.isZoomed:
		return ErrAlreadyZoomed
	}

	data := z.target.Data()
	if !data.IsZoomable {
		return ErrNotZoomable
	}
	if labelIndex < 0 || labelIndex >= len(data.XLabels) {
		return fmt.Errorf(
			"zoomer: label index %d out of range [0, %d)",
			labelIndex, len(data.XLabels))
	}

	static := z.target.Static()
	z.isBusy = true
	z.overview = data
	z.zoomedLabel = labelIndex
	z.stateBeforeZoomIn = snapshot{
		rng:    static.Range(),
		filter: static.Filter.Clone(),
	}

	if data.ShouldZoomToPie {
		z.applyZoomIn(toPie(data, labelIndex), labelIndex, true)
		return nil
	}

	if z.source == nil {
		z.isBusy = false
		return ErrNotZoomable
	}

	z.target.SetLoading(true)
	labelValue := data.XLabels[labelIndex].Value

	var raw *chartdata.RawChart
	var err error
	z.loop.Go(
		func() { raw, err = z.source.Fetch(ctx, labelValue) },
		func() { z.onZoomInData(raw, err, labelIndex) },
	)
	return nil
}

func (z *Zoomer) onZoomInData(raw *chartdata.RawChart, err error, labelIndex int) {
	if z.stopped {
		return
	}
	z.target.SetLoading(false)

	labelValue := z.overview.XLabels[labelIndex].Value
	switch {
	case err != nil:
		z.abort(fmt.Errorf("zoomer: fetching label %v: %w", labelValue, err))
		return
	case raw == nil:
		z.abort(fmt.Errorf("zoomer: label %v: %w", labelValue, ErrNoData))
		return
	}

	data, err := chartdata.Analyze(raw, false)
	if err != nil {
		z.abort(fmt.Errorf("zoomer: label %v: %w", labelValue, err))
		return
	}

	z.applyZoomIn(data, labelIndex, false)
}

func (z *Zoomer) abort(err error) {
	z.isBusy = false
	z.logger.CaptureWarn("zoomer: zoom aborted", "error", err)
	z.done(In, err)
}

// applyZoomIn runs the animated part of a zoom in: narrow the overview
// onto the label, swap in the detailed data, then reveal it.
func (z *Zoomer) applyZoomIn(zoomed *chartdata.ChartData, labelIndex int, isPie bool) {
	overview := z.overview
	shouldZoomToLines := len(zoomed.Datasets) != len(overview.Datasets)

	narrow := labelWindow(labelIndex, overview.TotalXWidth())
	phase1 := chartstate.Update{Range: &narrow}
	if shouldZoomToLines {
		phase1.Filter = hideAll(overview)
	}
	z.target.Update(phase1, false)

	final := z.stateBeforeZoomIn.filter
	if shouldZoomToLines {
		final = zoomed.AllVisible()
	}

	var rng chartdata.Range
	var minimapDelta float64
	if isPie {
		rng, minimapDelta = pieBin(zoomed, labelIndex-pieWindowStart(overview, labelIndex))
	} else {
		rng = zoomInRange(overview, zoomed, labelIndex)
	}

	initialFilter := final
	if shouldZoomToLines {
		initialFilter = hideAll(zoomed)
	}

	z.after(func() {
		z.target.SwapData(zoomed, chartstate.Update{
			Range:        &rng,
			Filter:       initialFilter,
			MinimapDelta: &minimapDelta,
		})
		z.target.SetZoomed(true)
		z.isZoomed = true

		z.after(func() {
			z.target.Update(chartstate.Update{Range: &rng, Filter: final}, false)
			z.isBusy = false
			z.logger.Debug("zoomer: zoomed in",
				"label", labelIndex, "pie", isPie, "lines", shouldZoomToLines)
			z.done(In, nil)
		})
	})
}

// ZoomOut restores the overview with the range and filter it had before
// zooming in.
func (z *Zoomer) ZoomOut() error {
	switch {
	case z.isBusy:
		return ErrZoomInProgress
	case !z.isZoomed:
		return ErrNotZoomed
	}
	z.isBusy = true

	zoomed := z.target.Data()
	overview := z.overview
	before := z.stateBeforeZoomIn
	shouldZoomToLines := len(zoomed.Datasets) != len(overview.Datasets)

	if shouldZoomToLines {
		z.target.Update(chartstate.Update{Filter: hideAll(zoomed)}, false)
	}

	narrow := labelWindow(z.zoomedLabel, overview.TotalXWidth())
	initialFilter := before.filter
	if shouldZoomToLines {
		initialFilter = hideAll(overview)
	}

	z.after(func() {
		noDelta := 0.0
		z.target.SwapData(overview, chartstate.Update{
			Range:        &narrow,
			Filter:       initialFilter,
			MinimapDelta: &noDelta,
		})
		z.target.SetZoomed(false)
		z.isZoomed = false

		z.after(func() {
			rng := before.rng
			z.target.Update(chartstate.Update{Range: &rng, Filter: before.filter}, false)
			z.isBusy = false
			z.overview = nil
			z.logger.Debug("zoomer: zoomed out", "lines", shouldZoomToLines)
			z.done(Out, nil)
		})
	})
	return nil
}

func (z *Zoomer) after(fn func()) {
	timeout := z.timeout
	if !z.target.IsFast() {
		timeout = 0
	}
	z.cancelTimer = z.loop.AfterFunc(timeout, func() {
		z.cancelTimer = nil
		if !z.stopped {
			fn()
		}
	})
}

func (z *Zoomer) done(dir Direction, err error) {
	if z.onDone != nil {
		z.onDone(dir, err)
	}
}

func hideAll(data *chartdata.ChartData) chartdata.Filter {
	filter := data.AllVisible()
	for key := range filter {
		filter[key] = false
	}
	return filter
}

// labelWindow returns the range one label wide centered on the label.
func labelWindow(labelIndex, totalXWidth int) chartdata.Range {
	if totalXWidth == 0 {
		return chartdata.Range{Begin: 0, End: 1}
	}
	total := float64(totalXWidth)
	return windowAround(float64(labelIndex)/total, 1/total)
}

// windowAround returns a range of the given width centered on center,
// shifted to stay inside [0, 1].
func windowAround(center, width float64) chartdata.Range {
	width = math.Min(width, 1)
	begin := center - width/2
	begin = math.Max(0, math.Min(begin, 1-width))
	return chartdata.Range{Begin: begin, End: begin + width}
}

// zoomInRange picks the part of the detailed data covering the clicked
// label: every detailed label from the clicked label's value up to the
// next overview label. Without such labels it falls back to a window
// around the detailed label closest to the clicked value.
func zoomInRange(overview, zoomed *chartdata.ChartData, labelIndex int) chartdata.Range {
	total := zoomed.TotalXWidth()
	if total == 0 {
		return chartdata.Range{Begin: 0, End: 1}
	}

	from := overview.XLabels[labelIndex].Value
	to := math.Inf(1)
	if labelIndex+1 < len(overview.XLabels) {
		to = overview.XLabels[labelIndex+1].Value
	}

	first, last := -1, -1
	closest, closestDist := 0, math.Inf(1)
	for i, label := range zoomed.XLabels {
		if label.Value >= from && label.Value < to {
			if first < 0 {
				first = i
			}
			last = i
		}
		if d := math.Abs(label.Value - from); d < closestDist {
			closest, closestDist = i, d
		}
	}

	if first >= 0 && last > first {
		return chartdata.Range{
			Begin: float64(first) / float64(total),
			End:   float64(last) / float64(total),
		}
	}
	if first >= 0 {
		closest = first
	}
	return windowAround(float64(closest)/float64(total), formulas.ZoomRangeDelta)
}
