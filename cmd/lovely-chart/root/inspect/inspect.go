package inspect

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/cliutil"
)

// Dataset describes one analyzed series.
type Dataset struct {
	Key         string  `json:"key" yaml:"key"`
	Name        string  `json:"name" yaml:"name"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
	Type        string  `json:"type" yaml:"type"`
	YMin        float64 `json:"yMin" yaml:"yMin"`
	YMax        float64 `json:"yMax" yaml:"yMax"`
	HasOwnYAxis bool    `json:"hasOwnYAxis,omitempty" yaml:"hasOwnYAxis,omitempty"`
}

// Summary is what inspect prints.
type Summary struct {
	Title       string    `json:"title" yaml:"title"`
	Type        string    `json:"type" yaml:"type"`
	Labels      int       `json:"labels" yaml:"labels"`
	FirstLabel  string    `json:"firstLabel" yaml:"firstLabel"`
	LastLabel   string    `json:"lastLabel" yaml:"lastLabel"`
	YMin        float64   `json:"yMin" yaml:"yMin"`
	YMax        float64   `json:"yMax" yaml:"yMax"`
	Stacked     bool      `json:"stacked" yaml:"stacked"`
	Percentage  bool      `json:"percentage" yaml:"percentage"`
	Currency    bool      `json:"currency" yaml:"currency"`
	SecondYAxis bool      `json:"secondYAxis" yaml:"secondYAxis"`
	Zoomable    bool      `json:"zoomable" yaml:"zoomable"`
	ZoomsToPie  bool      `json:"zoomsToPie" yaml:"zoomsToPie"`
	Datasets    []Dataset `json:"datasets" yaml:"datasets"`
}

// Summarize describes analyzed data.
func Summarize(data *chartdata.ChartData) Summary {
	s := Summary{
		Title:       data.Title,
		Type:        string(data.Type),
		Labels:      len(data.XLabels),
		YMin:        data.YMin,
		YMax:        data.YMax,
		Stacked:     data.IsStacked,
		Percentage:  data.IsPercentage,
		Currency:    data.IsCurrency,
		SecondYAxis: data.HasSecondYAxis,
		Zoomable:    data.IsZoomable,
		ZoomsToPie:  data.ShouldZoomToPie,
	}
	if n := len(data.XLabels); n > 0 {
		s.FirstLabel = data.XLabels[0].Text
		s.LastLabel = data.XLabels[n-1].Text
	}
	for _, ds := range data.Datasets {
		s.Datasets = append(s.Datasets, Dataset{
			Key:         ds.Key,
			Name:        ds.Name,
			Color:       ds.Color,
			Type:        string(ds.Type),
			YMin:        ds.YMin,
			YMax:        ds.YMax,
			HasOwnYAxis: ds.HasOwnYAxis,
		})
	}
	return s
}

func NewInspectCmd(fs afero.Fs) *cobra.Command {
	var zoomable bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe a chart",
		Long:  `Analyze a chart file and print what was inferred from it.`,
		Example: heredoc.Doc(`
			$ lovely-chart inspect views.json
			$ lovely-chart inspect --format yaml views.yaml
			$ lovely-chart inspect --template '{{.Type}} with {{len .Datasets}} datasets' views.json
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := chartdata.ParseFile(fs, args[0])
			if err != nil {
				return err
			}
			data, err := chartdata.Analyze(raw, zoomable)
			if err != nil {
				return err
			}
			return cliutil.HandleOutput(cmd, Summarize(data))
		},
	}

	cmd.Flags().BoolVar(&zoomable, "zoomable", false, "Analyze as if a zoom source were configured")
	cliutil.AddOutputFlags(cmd)

	return cmd
}
