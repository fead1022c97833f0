// Package tooltip computes what the tooltip shows for the hovered label.
package tooltip

import (
	"math"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/format"
)

// Item is one line of the tooltip.
type Item struct {
	Key   string
	Name  string
	Color string
	Value float64

	// Text is the formatted value.
	Text string

	// Percent is the item's share of the label, for percentage charts.
	Percent string

	HasOwnYAxis bool
}

// Content is the tooltip for one label.
type Content struct {
	LabelIndex int

	// Title is the formatted label. Pie charts have none.
	Title string

	Items []Item

	// Total is the "All" line of stacked bars and steps, or the USD line
	// of currency charts.
	Total *Item

	// Zoomable is set when clicking the label zooms in.
	Zoomable bool
}

// PointerVector returns the pointer position relative to the center of a
// plot of the given size.
func PointerVector(x, y, width, height float64) chartstate.PointerVector {
	dx, dy := x-width/2, y-height/2

	// Clockwise from 12 o'clock, with y growing downwards.
	angle := math.Atan2(dx, -dy)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return chartstate.PointerVector{
		Angle:    angle,
		Distance: math.Hypot(dx, dy),
	}
}

// SelectedSector returns the index of the pie sector under the pointer,
// or -1. Sectors are laid out clockwise from 12 o'clock in value order.
func SelectedSector(
	values []float64,
	pointer chartstate.PointerVector,
	radius float64,
) int {
	if pointer.Distance > radius {
		return -1
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return -1
	}

	offset := 0.0
	for i, v := range values {
		begin := offset / total * 2 * math.Pi
		end := (offset + v) / total * 2 * math.Pi
		if begin <= pointer.Angle && pointer.Angle < end {
			return i
		}
		offset += v
	}
	return -1
}

// Build returns the tooltip for a label, or false if there is nothing to
// show: the label is outside the drawn window, every dataset is hidden,
// or, for pies, the pointer is outside the pie.
func Build(
	data *chartdata.ChartData,
	state *chartstate.RenderState,
	labelIndex int,
	pointer *chartstate.PointerVector,
	pieRadius float64,
) (Content, bool) {
	if float64(labelIndex) < state.LabelFromIndex ||
		float64(labelIndex) > state.LabelToIndex ||
		labelIndex >= len(data.XLabels) {
		return Content{}, false
	}

	from := int(state.LabelFromIndex)
	to := min(int(state.LabelToIndex), len(data.XLabels)-1)

	var items []Item
	for _, ds := range data.Datasets {
		if !state.Filter.Visible(ds.Key) {
			continue
		}

		value := ds.Values[labelIndex]
		if data.IsPie {
			value = 0
			for _, v := range ds.Values[from : to+1] {
				if !math.IsNaN(v) {
					value += v
				}
			}
		}

		items = append(items, Item{
			Key:         ds.Key,
			Name:        ds.Name,
			Color:       ds.Color,
			Value:       value,
			HasOwnYAxis: ds.HasOwnYAxis,
		})
	}
	if len(items) == 0 {
		return Content{}, false
	}

	total := 0.0
	for _, item := range items {
		if !math.IsNaN(item.Value) {
			total += item.Value
		}
	}

	content := Content{
		LabelIndex: labelIndex,
		Zoomable:   data.IsZoomable,
	}

	if data.IsPie {
		if pointer == nil {
			return Content{}, false
		}
		values := make([]float64, len(items))
		for i, item := range items {
			values[i] = item.Value
		}
		selected := SelectedSector(values, *pointer, pieRadius)
		if selected < 0 {
			return Content{}, false
		}
		items = items[selected : selected+1]
	} else {
		label := data.XLabels[labelIndex]
		content.Title = format.Title(label.Value, data.TooltipFormatter)
		if data.TooltipFormatter == "" {
			content.Title = label.Text
		}
	}

	for i := range items {
		items[i].Text = valueText(data, items[i].Value)
		if data.IsPercentage && !data.IsPie {
			share := 0.0
			if total != 0 {
				share = items[i].Value / total
			}
			items[i].Percent = format.Percent(share)
		}
	}
	content.Items = items

	switch {
	case data.IsCurrency:
		content.Total = &Item{
			Name:  "USD ≈",
			Value: total,
			Text:  format.Currency(total, data.CurrencyRate),
		}
	case (data.IsBars || data.IsSteps) && data.IsStacked:
		content.Total = &Item{
			Name:  "All",
			Value: total,
			Text:  format.Integer(total),
		}
	}

	return content, true
}

func valueText(data *chartdata.ChartData, value float64) string {
	if data.IsCurrency {
		return format.Crypto(value)
	}
	return format.Integer(value)
}
