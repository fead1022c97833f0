// Package axes computes the labels and grid lines of a chart's axes.
//
// The result is a list of ticks with pixel positions and opacities; the
// renderer decides how to draw them.
package axes

import (
	"fmt"
	"math"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/format"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/projection"
)

// xShiftStart is the label index the x axis steps are aligned to.
const xShiftStart = 1

// Tick is a label on an axis.
type Tick struct {
	// Pos is the x pixel of an x tick or the y pixel of a y tick.
	Pos float64

	Value   float64
	Text    string
	Opacity float64

	// AltText is drawn at the opposite edge of the plot. Currency charts
	// use it for the USD value.
	AltText string
}

// Scale is one set of horizontal grid lines with their labels.
type Scale struct {
	Ticks []Tick

	// Secondary is set for the scale of the second y axis, drawn on the
	// right edge.
	Secondary bool

	// DatasetKey, when set, names the dataset whose color the labels use.
	DatasetKey string
}

// XTicks returns the labels of the x axis for a state. Pie charts have
// no x axis.
func XTicks(
	data *chartdata.ChartData,
	state *chartstate.RenderState,
	proj *projection.Projection,
) []Tick {
	if data.IsPie || len(data.XLabels) == 0 {
		return nil
	}

	level := math.Floor(state.XAxisScale)
	step := int(formulas.XScaleLevelToStep(level))
	fading := 1 - (state.XAxisScale - level)
	width, _ := proj.Size()

	from := max(int(state.LabelFromIndex), 0)
	to := min(int(math.Ceil(state.LabelToIndex)), len(data.XLabels)-1)

	var ticks []Tick
	for i := from; i <= to; i++ {
		shifted := i - xShiftStart
		if shifted%step != 0 {
			continue
		}

		x, _ := proj.ToPixels(float64(i), 0)
		opacity := fading
		if shifted%(step*2) == 0 {
			opacity = 1
		}
		opacity = formulas.EdgeOpacity(opacity, x, width)
		if opacity <= 0 {
			continue
		}

		label := data.XLabels[i]
		ticks = append(ticks, Tick{
			Pos:     x,
			Value:   label.Value,
			Text:    label.Text,
			Opacity: opacity,
		})
	}
	return ticks
}

// YScales returns the grid of the y axis and, with a secondary
// projection, of the second y axis.
//
// While the scale is changing, each axis yields two scales: the target
// one fading in and the outgoing one fading out.
func YScales(
	data *chartdata.ChartData,
	state *chartstate.RenderState,
	proj *projection.Projection,
	secondary *projection.Projection,
) []Scale {
	if data.IsPie {
		return nil
	}

	switch {
	case data.IsPercentage:
		return []Scale{{Ticks: percentTicks(proj)}}
	case data.IsCurrency:
		return []Scale{{Ticks: currencyTicks(data, proj)}}
	}

	var primaryKey string
	if secondary != nil && len(data.Datasets) > 0 {
		primaryKey = data.Datasets[0].Key
	}

	scales := animatedScales(state, proj, axisProps{
		scale: "yAxisScale",
		yMin:  "yMinViewport",
		yMax:  "yMaxViewport",
	}, state.YAxisScale, state.YMinViewport, state.YMaxViewport)
	for i := range scales {
		scales[i].DatasetKey = primaryKey
	}

	if secondary == nil || len(data.Datasets) == 0 {
		return scales
	}

	second := animatedScales(state, secondary, axisProps{
		scale: "yAxisScaleSecond",
		yMin:  "yMinViewportSecond",
		yMax:  "yMaxViewportSecond",
	}, state.YAxisScaleSecond, state.YMinViewportSecond, state.YMaxViewportSecond)
	for i := range second {
		second[i].Secondary = true
		second[i].DatasetKey = data.Datasets[len(data.Datasets)-1].Key
	}
	return append(scales, second...)
}

// axisProps names the animated properties of one y axis.
type axisProps struct {
	scale, yMin, yMax string
}

func animatedScales(
	state *chartstate.RenderState,
	proj *projection.Projection,
	props axisProps,
	scale, yMin, yMax float64,
) []Scale {
	scaleSnap, scaleMoving := state.Transitions[props.scale]
	minSnap, minMoving := state.Transitions[props.yMin]
	maxSnap, maxMoving := state.Transitions[props.yMax]

	target := struct{ level, yMin, yMax, opacity float64 }{scale, yMin, yMax, 1}
	if scaleMoving {
		target.level = scaleSnap.To
		target.opacity = scaleSnap.Progress
	}
	if minMoving {
		target.yMin = minSnap.To
	}
	if maxMoving {
		target.yMax = maxSnap.To
	}

	scales := []Scale{{
		Ticks: scaledTicks(proj, math.Round(target.level), target.yMin, target.yMax, target.opacity),
	}}

	if scaleMoving && scaleSnap.Progress > 0 && (minMoving || maxMoving) {
		outMin, outMax := yMin, yMax
		if minMoving {
			outMin = minSnap.From
		}
		if maxMoving {
			outMax = maxSnap.From
		}
		scales = append(scales, Scale{
			Ticks: scaledTicks(proj, math.Round(scaleSnap.From), outMin, outMax, 1-scaleSnap.Progress),
		})
	}
	return scales
}

func scaledTicks(
	proj *projection.Projection,
	level, yMin, yMax, opacity float64,
) []Tick {
	step := formulas.YScaleLevelToStep(level)
	first := math.Ceil(yMin/step) * step
	last := math.Floor(yMax/step) * step
	if !formulas.IsFinite(first) || !formulas.IsFinite(last) {
		return nil
	}

	var ticks []Tick
	for n := 0; ; n++ {
		value := first + float64(n)*step
		if value > last {
			break
		}
		_, y := proj.ToPixels(0, value)
		ticks = append(ticks, Tick{
			Pos:     y,
			Value:   value,
			Text:    format.Humanize(value, 1),
			Opacity: formulas.TopEdgeOpacity(opacity, y),
		})
	}
	return ticks
}

var percentValues = []float64{0, 0.25, 0.5, 0.75, 1}

func percentTicks(proj *projection.Projection) []Tick {
	params := proj.Params()
	ticks := make([]Tick, 0, len(percentValues))
	for _, share := range percentValues {
		_, y := proj.ToPixels(0, params.YMin+share*(params.YMax-params.YMin))
		ticks = append(ticks, Tick{
			Pos:     y,
			Value:   share,
			Text:    fmt.Sprintf("%d%%", int(share*100)),
			Opacity: 1,
		})
	}
	return ticks
}

// currencyTicks draws the zero line and multiples of the first dataset's
// mean, in TON on the left and USD on the right.
func currencyTicks(data *chartdata.ChartData, proj *projection.Projection) []Tick {
	if len(data.Datasets) == 0 || len(data.Datasets[0].Values) == 0 {
		return nil
	}

	values := data.Datasets[0].Values
	total, peak := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		total += v
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		return nil
	}
	mean := total / float64(len(values))

	params := proj.Params()
	var ticks []Tick
	for n := range 4 {
		value := mean * float64(n)
		share := value / peak
		if share > 1 {
			break
		}
		_, y := proj.ToPixels(0, params.YMin+share*(params.YMax-params.YMin))
		ticks = append(ticks, Tick{
			Pos:     y,
			Value:   value,
			Text:    format.Crypto(value) + " TON",
			AltText: format.Currency(value, data.CurrencyRate),
			Opacity: 1,
		})
	}
	return ticks
}
