package chartdata

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wandb/lovely-chart/internal/format"
)

// Analyze validates raw input and builds the immutable chart model.
//
// hasZoomSource tells whether zooming can fetch detailed data; charts
// without one can still zoom percentage data into a pie.
func Analyze(raw *RawChart, hasZoomSource bool) (*ChartData, error) {
	if raw == nil {
		return nil, fmt.Errorf("chartdata: nil chart: %w", ErrInvalidChart)
	}

	chartType := raw.Type
	if chartType == "" {
		chartType = TypeLine
	}
	if !chartType.valid() {
		return nil, fmt.Errorf(
			"chartdata: unknown chart type %q: %w", raw.Type, ErrInvalidChart)
	}
	if len(raw.Labels) == 0 {
		return nil, fmt.Errorf("chartdata: no labels: %w", ErrInvalidChart)
	}
	if len(raw.Datasets) == 0 {
		return nil, fmt.Errorf("chartdata: no datasets: %w", ErrInvalidChart)
	}
	if raw.MinimapRange != nil {
		r := *raw.MinimapRange
		if !(r.Begin >= 0 && r.Begin < r.End && r.End <= 1) {
			return nil, fmt.Errorf(
				"chartdata: minimap range %v is out of bounds: %w",
				r, ErrInvalidChart)
		}
	}

	labels, err := analyzeLabels(raw.Labels, raw.LabelFormatter)
	if err != nil {
		return nil, err
	}

	data := &ChartData{
		Title:            raw.Title,
		Type:             chartType,
		XLabels:          labels,
		IsPercentage:     raw.IsPercentage,
		IsStacked:        raw.IsStacked || raw.IsPercentage,
		IsCurrency:       raw.IsCurrency,
		HasSecondYAxis:   raw.HasSecondYAxis && len(raw.Datasets) > 1,
		IsLines:          chartType == TypeLine,
		IsBars:           chartType == TypeBar,
		IsSteps:          chartType == TypeStep,
		IsAreas:          chartType == TypeArea,
		IsPie:            chartType == TypePie,
		CurrencyRate:     raw.CurrencyRate,
		LabelFormatter:   raw.LabelFormatter,
		TooltipFormatter: raw.TooltipFormatter,
		MinimapRange:     raw.MinimapRange,
		ZoomOutLabel:     raw.ZoomOutLabel,
		HideCaption:      raw.HideCaption,
		YMin:             math.Inf(1),
		YMax:             math.Inf(-1),
	}
	if data.TooltipFormatter == "" {
		data.TooltipFormatter = data.LabelFormatter
	}
	if data.ZoomOutLabel == "" {
		data.ZoomOutLabel = "Zoom out"
	}

	for i, rd := range raw.Datasets {
		if len(rd.Values) != len(labels) {
			return nil, fmt.Errorf(
				"chartdata: dataset %d has %d values for %d labels: %w",
				i, len(rd.Values), len(labels), ErrInvalidChart)
		}

		yMin, yMax := MinMax(rd.Values)
		data.YMin = math.Min(data.YMin, yMin)
		data.YMax = math.Max(data.YMax, yMax)

		name := rd.Name
		if name == "" {
			name = DatasetKey(i)
		}

		data.Datasets = append(data.Datasets, Dataset{
			Key:         DatasetKey(i),
			Name:        name,
			Color:       rd.Color,
			Type:        chartType,
			Values:      rd.Values,
			YMin:        yMin,
			YMax:        yMax,
			HasOwnYAxis: data.HasSecondYAxis && i == len(raw.Datasets)-1,
		})
	}

	if math.IsInf(data.YMin, 0) {
		data.YMin, data.YMax = 0, 0
	}

	data.ShouldZoomToPie = !hasZoomSource && data.IsPercentage && !data.IsPie
	data.IsZoomable = hasZoomSource || data.ShouldZoomToPie

	return data, nil
}

// MinMax returns the bounds of the finite values, or (+Inf, -Inf) if
// there are none.
func MinMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func analyzeLabels(raw []any, formatter string) ([]Label, error) {
	labels := make([]Label, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			labels[i] = Label{Value: float64(i), Text: v}
		default:
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf(
					"chartdata: label %d has unexpected type %T: %w",
					i, item, ErrInvalidChart)
			}
			labels[i] = Label{Value: f, Text: format.Label(f, formatter)}
		}
	}
	return labels, nil
}

// NumericLabels is a convenience for building raw labels from numbers.
func NumericLabels(values ...float64) []any {
	labels := make([]any, len(values))
	for i, v := range values {
		labels[i] = v
	}
	return labels
}

// TextLabels is a convenience for building raw labels from strings.
func TextLabels(texts ...string) []any {
	labels := make([]any, len(texts))
	for i, text := range texts {
		labels[i] = text
	}
	return labels
}

// Sequence returns n numeric labels 0, 1, ..., n-1.
func Sequence(n int) []any {
	labels := make([]any, n)
	for i := range labels {
		labels[i] = float64(i)
	}
	return labels
}

func (r Range) String() string {
	return "[" + strconv.FormatFloat(r.Begin, 'g', -1, 64) +
		", " + strconv.FormatFloat(r.End, 'g', -1, 64) + "]"
}
