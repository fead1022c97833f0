package zoomer

import (
	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/formulas"
)

// pieWindowStart is the first overview label of the pie window around
// labelIndex.
func pieWindowStart(data *chartdata.ChartData, labelIndex int) int {
	n := len(data.XLabels)
	size := min(formulas.ZoomPieLabels, n)
	start := labelIndex - size/2
	return max(0, min(start, n-size))
}

// toPie builds a pie chart from the labels around labelIndex. Each label
// of the window becomes one bin of the pie's minimap.
func toPie(data *chartdata.ChartData, labelIndex int) *chartdata.ChartData {
	start := pieWindowStart(data, labelIndex)
	end := start + min(formulas.ZoomPieLabels, len(data.XLabels))

	pie := *data
	pie.Type = chartdata.TypePie
	pie.IsLines, pie.IsBars, pie.IsSteps, pie.IsAreas = false, false, false, false
	pie.IsPie = true
	pie.IsZoomable = false
	pie.ShouldZoomToPie = false
	pie.MinimapRange = nil
	pie.XLabels = data.XLabels[start:end:end]

	pie.Datasets = make([]chartdata.Dataset, len(data.Datasets))
	for i, ds := range data.Datasets {
		ds.Type = chartdata.TypePie
		ds.Values = ds.Values[start:end:end]
		ds.YMin, ds.YMax = chartdata.MinMax(ds.Values)
		pie.Datasets[i] = ds
	}

	return &pie
}

// pieBin returns the range selecting one label of a pie, and the delta
// its minimap snaps to.
func pieBin(pie *chartdata.ChartData, bin int) (chartdata.Range, float64) {
	n := float64(len(pie.XLabels))
	delta := 1 / n
	return chartdata.Range{
		Begin: float64(bin) * delta,
		End:   float64(bin+1) * delta,
	}, delta
}
