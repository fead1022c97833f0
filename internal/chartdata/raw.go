package chartdata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/wandb/simplejsonext"
	"gopkg.in/yaml.v3"
)

// RawChart is the chart input before analysis.
type RawChart struct {
	Title    string
	Type     ChartType
	Labels   []any // numbers or strings
	Datasets []RawDataset

	IsStacked      bool
	IsPercentage   bool
	IsCurrency     bool
	HasSecondYAxis bool

	CurrencyRate     float64
	LabelFormatter   string
	TooltipFormatter string
	MinimapRange     *Range
	ZoomOutLabel     string
	HideCaption      bool
}

// RawDataset is one series of a RawChart.
type RawDataset struct {
	Name   string
	Color  string
	Values []float64
}

// ParseJSON parses a chart from JSON. NaN and Infinity are accepted.
func ParseJSON(data []byte) (*RawChart, error) {
	obj, err := simplejsonext.UnmarshalObject(data)
	if err != nil {
		return nil, fmt.Errorf("chartdata: parsing JSON: %v: %w", err, ErrInvalidChart)
	}
	return FromMap(obj)
}

// ParseYAML parses a chart from YAML.
func ParseYAML(data []byte) (*RawChart, error) {
	var obj map[string]any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("chartdata: parsing YAML: %v: %w", err, ErrInvalidChart)
	}
	return FromMap(obj)
}

// ParseFile reads and parses a chart file, choosing the format by extension.
func ParseFile(fs afero.Fs, path string) (*RawChart, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("chartdata: reading %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// FromMap converts a decoded JSON or YAML document into a RawChart.
//
// Documents in the Telegram contest format (with a "columns" key) are
// converted as well.
func FromMap(obj map[string]any) (*RawChart, error) {
	if obj == nil {
		return nil, fmt.Errorf("chartdata: empty document: %w", ErrInvalidChart)
	}
	if _, ok := obj["columns"]; ok {
		return fromColumns(obj)
	}

	d := decoder{}
	raw := &RawChart{
		Title:            d.str(obj, "title"),
		Type:             ChartType(d.str(obj, "type")),
		IsStacked:        d.boolean(obj, "isStacked"),
		IsPercentage:     d.boolean(obj, "isPercentage"),
		IsCurrency:       d.boolean(obj, "isCurrency"),
		HasSecondYAxis:   d.boolean(obj, "hasSecondYAxis"),
		CurrencyRate:     d.number(obj, "currencyRate"),
		LabelFormatter:   d.str(obj, "labelFormatter"),
		TooltipFormatter: d.str(obj, "tooltipFormatter"),
		ZoomOutLabel:     d.str(obj, "zoomOutLabel"),
		HideCaption:      d.boolean(obj, "hideCaption"),
	}
	if raw.Type == "" {
		raw.Type = TypeLine
	}

	if labels, ok := obj["labels"].([]any); ok {
		raw.Labels = labels
	}

	if r, ok := obj["minimapRange"].(map[string]any); ok {
		raw.MinimapRange = &Range{
			Begin: d.number(r, "begin"),
			End:   d.number(r, "end"),
		}
	}

	datasets, _ := obj["datasets"].([]any)
	for i, item := range datasets {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf(
				"chartdata: dataset %d is not an object: %w", i, ErrInvalidChart)
		}
		raw.Datasets = append(raw.Datasets, RawDataset{
			Name:   d.str(m, "name"),
			Color:  d.str(m, "color"),
			Values: d.numbers(m["values"]),
		})
	}

	if d.err != nil {
		return nil, d.err
	}
	return raw, nil
}

// decoder reads loosely typed document fields, remembering the first
// type mismatch.
type decoder struct {
	err error
}

func (d *decoder) fail(key string, v any) {
	if d.err == nil {
		d.err = fmt.Errorf(
			"chartdata: field %q has unexpected type %T: %w",
			key, v, ErrInvalidChart)
	}
}

func (d *decoder) str(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		d.fail(key, v)
		return ""
	}
}

func (d *decoder) boolean(obj map[string]any, key string) bool {
	switch v := obj[key].(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		d.fail(key, v)
		return false
	}
}

func (d *decoder) number(obj map[string]any, key string) float64 {
	if obj[key] == nil {
		return 0
	}
	f, ok := toFloat(obj[key])
	if !ok {
		d.fail(key, obj[key])
	}
	return f
}

func (d *decoder) numbers(v any) []float64 {
	items, _ := v.([]any)
	values := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			d.fail("values", item)
		}
		values[i] = f
	}
	return values
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
