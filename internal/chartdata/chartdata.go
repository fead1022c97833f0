// Package chartdata holds the analyzed, immutable chart model and the
// analyzer that builds it from raw input.
package chartdata

import (
	"errors"
	"maps"
	"strconv"
)

// ErrInvalidChart is wrapped by every error returned for malformed input.
var ErrInvalidChart = errors.New("invalid chart")

// ChartType is the kind of plot used to draw a chart.
type ChartType string

const (
	TypeLine ChartType = "line"
	TypeBar  ChartType = "bar"
	TypeStep ChartType = "step"
	TypeArea ChartType = "area"
	TypePie  ChartType = "pie"
)

func (t ChartType) valid() bool {
	switch t {
	case TypeLine, TypeBar, TypeStep, TypeArea, TypePie:
		return true
	}
	return false
}

// Label is a point on the x axis.
type Label struct {
	// Value is the raw label: a Unix timestamp in milliseconds for time
	// series or the label's position for text labels.
	Value float64

	// Text is the formatted label.
	Text string
}

// Range is the visible window as fractions of the full x extent.
type Range struct {
	Begin float64 `yaml:"begin"`
	End   float64 `yaml:"end"`
}

// Clamp returns the range restricted to [0, 1] with Begin before End.
func (r Range) Clamp() Range {
	r.Begin = min(max(r.Begin, 0), 1)
	r.End = min(max(r.End, 0), 1)
	if r.End < r.Begin {
		r.Begin, r.End = r.End, r.Begin
	}
	return r
}

// IsEmpty reports whether the range selects nothing. Clamped ranges can be
// empty when both ends land on the same value.
func (r Range) IsEmpty() bool {
	return !(r.End > r.Begin)
}

// Filter maps dataset keys to their visibility.
type Filter map[string]bool

// Clone returns a copy of the filter.
func (f Filter) Clone() Filter {
	return maps.Clone(f)
}

// Visible reports whether the dataset is shown. Unknown keys are hidden.
func (f Filter) Visible(key string) bool {
	return f[key]
}

// Dataset is one analyzed series.
type Dataset struct {
	Key    string
	Name   string
	Color  string
	Type   ChartType
	Values []float64
	YMin   float64
	YMax   float64

	// HasOwnYAxis is set for the last dataset of a chart with a second
	// y axis.
	HasOwnYAxis bool
}

// ChartData is the analyzed chart. It is never modified after Analyze.
type ChartData struct {
	Title    string
	Type     ChartType
	Datasets []Dataset
	XLabels  []Label

	IsStacked      bool
	IsPercentage   bool
	IsCurrency     bool
	HasSecondYAxis bool

	IsLines bool
	IsBars  bool
	IsSteps bool
	IsAreas bool
	IsPie   bool

	YMin float64
	YMax float64

	IsZoomable      bool
	ShouldZoomToPie bool

	CurrencyRate     float64
	LabelFormatter   string
	TooltipFormatter string
	MinimapRange     *Range
	ZoomOutLabel     string
	HideCaption      bool
}

// Keys returns the dataset keys in input order.
func (d *ChartData) Keys() []string {
	keys := make([]string, len(d.Datasets))
	for i, ds := range d.Datasets {
		keys[i] = ds.Key
	}
	return keys
}

// AllVisible returns a filter showing every dataset.
func (d *ChartData) AllVisible() Filter {
	filter := make(Filter, len(d.Datasets))
	for _, ds := range d.Datasets {
		filter[ds.Key] = true
	}
	return filter
}

// TotalXWidth is the number of intervals between the first and last label.
func (d *ChartData) TotalXWidth() int {
	return max(len(d.XLabels)-1, 0)
}

// Dataset returns the dataset with the given key.
func (d *ChartData) Dataset(key string) (Dataset, bool) {
	for _, ds := range d.Datasets {
		if ds.Key == key {
			return ds, true
		}
	}
	return Dataset{}, false
}

// DatasetKey returns the key assigned to the dataset at index i.
func DatasetKey(i int) string {
	return "y" + strconv.Itoa(i)
}
