// Package points turns dataset values in a label window into drawable
// points, applying stacking, percentage normalization and pie collapsing.
package points

import (
	"github.com/wandb/lovely-chart/internal/chartdata"
)

// Point is a prepared value at one label.
type Point struct {
	LabelIndex int

	// Value is the raw dataset value.
	Value float64

	// VisibleValue is the value that is drawn: scaled by the dataset's
	// opacity for stacked charts and normalized for percentage charts.
	VisibleValue float64

	// StackOffset and StackValue are the bottom and top of the point in a
	// stacked chart. For other charts StackValue equals VisibleValue.
	StackOffset float64
	StackValue  float64

	// Percent is the point's share of its label's sum, for percentage
	// charts only.
	Percent float64
}

// Window is an inclusive range of label indices.
type Window struct {
	From, To int
}

// Bounds are the y bounds the points will be projected with.
type Bounds struct {
	YMin, YMax float64
}

// Prepare builds the points of the given datasets over the window.
//
// visibilities holds one opacity per dataset. If pieToArea is false,
// each dataset of a pie chart collapses into a single summed point.
func Prepare(
	data *chartdata.ChartData,
	datasets []chartdata.Dataset,
	window Window,
	visibilities []float64,
	bounds Bounds,
	pieToArea bool,
) [][]Point {
	from := max(window.From, 0)

	values := make([][]float64, len(datasets))
	for i, ds := range datasets {
		to := min(window.To, len(ds.Values)-1)
		if to < from {
			continue
		}
		values[i] = ds.Values[from : to+1]
	}

	if data.IsPie && !pieToArea {
		for i, datasetValues := range values {
			sum := 0.0
			for _, v := range datasetValues {
				sum += v
			}
			values[i] = []float64{sum}
		}
	}

	result := make([][]Point, len(values))
	for i, datasetValues := range values {
		opacity := 1.0
		if i < len(visibilities) {
			opacity = visibilities[i]
		}

		result[i] = make([]Point, len(datasetValues))
		for j, value := range datasetValues {
			visibleValue := value
			if data.IsStacked {
				visibleValue *= opacity
			}
			result[i][j] = Point{
				LabelIndex:   from + j,
				Value:        value,
				VisibleValue: visibleValue,
				StackValue:   visibleValue,
			}
		}
	}

	if data.IsPercentage {
		preparePercentage(result, bounds)
	}
	if data.IsStacked {
		prepareStacked(result)
	}

	return result
}

func preparePercentage(points [][]Point, bounds Bounds) {
	sums := labelSums(points)
	for _, datasetPoints := range points {
		for j := range datasetPoints {
			p := &datasetPoints[j]
			if sums[j] != 0 {
				p.Percent = p.VisibleValue / sums[j]
			} else {
				p.Percent = 0
			}
			p.VisibleValue = p.Percent * bounds.YMax
			p.StackValue = p.VisibleValue
		}
	}
}

func prepareStacked(points [][]Point) {
	var accum []float64
	for _, datasetPoints := range points {
		for j := range datasetPoints {
			if j >= len(accum) {
				accum = append(accum, 0)
			}
			p := &datasetPoints[j]
			p.StackOffset = accum[j]
			accum[j] += p.VisibleValue
			p.StackValue = accum[j]
		}
	}
}

func labelSums(points [][]Point) []float64 {
	var sums []float64
	for _, datasetPoints := range points {
		for j, p := range datasetPoints {
			if j >= len(sums) {
				sums = append(sums, 0)
			}
			sums[j] += p.VisibleValue
		}
	}
	return sums
}

// Visibilities returns the opacity of each dataset from a state's
// opacity table.
func Visibilities(datasets []chartdata.Dataset, opacity map[string]float64) []float64 {
	result := make([]float64, len(datasets))
	for i, ds := range datasets {
		result[i] = opacity[ds.Key]
	}
	return result
}
