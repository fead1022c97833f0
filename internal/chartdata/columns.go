package chartdata

import "fmt"

// fromColumns converts a chart in the Telegram contest format:
//
//	{
//	  "columns": [["x", 1542412800000, ...], ["y0", 37, ...]],
//	  "types": {"x": "x", "y0": "line"},
//	  "names": {"y0": "#0"},
//	  "colors": {"y0": "#3DC23F"},
//	  "y_scaled": false, "stacked": false, "percentage": false
//	}
func fromColumns(obj map[string]any) (*RawChart, error) {
	d := decoder{}

	columns, _ := obj["columns"].([]any)
	types, _ := obj["types"].(map[string]any)
	names, _ := obj["names"].(map[string]any)
	colors, _ := obj["colors"].(map[string]any)

	raw := &RawChart{
		Title:          d.str(obj, "title"),
		Type:           TypeLine,
		IsStacked:      d.boolean(obj, "stacked"),
		IsPercentage:   d.boolean(obj, "percentage"),
		HasSecondYAxis: d.boolean(obj, "y_scaled"),
		LabelFormatter: "day",
	}
	raw.TooltipFormatter = raw.LabelFormatter

	for i, item := range columns {
		column, ok := item.([]any)
		if !ok || len(column) == 0 {
			return nil, fmt.Errorf(
				"chartdata: column %d is malformed: %w", i, ErrInvalidChart)
		}

		key, ok := column[0].(string)
		if !ok {
			return nil, fmt.Errorf(
				"chartdata: column %d has no key: %w", i, ErrInvalidChart)
		}

		kind := d.str(types, key)
		if kind == "x" {
			raw.Labels = column[1:]
			continue
		}

		if t := ChartType(kind); t.valid() {
			raw.Type = t
		}

		name := d.str(names, key)
		if name == "" {
			name = key
		}
		raw.Datasets = append(raw.Datasets, RawDataset{
			Name:   name,
			Color:  d.str(colors, key),
			Values: d.numbers(column[1:]),
		})
	}

	if raw.IsPercentage {
		raw.Type = TypeArea
	}

	if d.err != nil {
		return nil, d.err
	}
	return raw, nil
}
