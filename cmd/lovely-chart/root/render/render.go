package render

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/setup"
	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/lovelychart"
	chartrender "github.com/wandb/lovely-chart/internal/render"
	"github.com/wandb/lovely-chart/internal/simplify"
	"github.com/wandb/lovely-chart/internal/theme"
)

// maxSteps bounds the frames stepped before printing.
const maxSteps = 64

// Params sizes a snapshot in terminal cells.
type Params struct {
	Cols, Rows  int
	MinimapRows int
	Options     []lovelychart.ChartOption
}

func NewRenderCmd(fs afero.Fs, v *viper.Viper) *cobra.Command {
	var params Params
	var rangeFlag []float64

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print a chart once",
		Long:  `Draw a chart with its minimap and print it, without animations.`,
		Example: heredoc.Doc(`
			$ lovely-chart render views.json
			$ lovely-chart render --width 120 --height 40 --theme night views.yaml
			$ lovely-chart render --range 0.5,1 views.json
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup.Load(v, os.Stderr)
			if err != nil {
				return err
			}
			defer s.Close()

			raw, err := chartdata.ParseFile(fs, args[0])
			if err != nil {
				return err
			}
			if len(rangeFlag) > 0 {
				if len(rangeFlag) != 2 {
					return errors.New("--range takes begin,end")
				}
				raw.MinimapRange = &chartdata.Range{Begin: rangeFlag[0], End: rangeFlag[1]}
			}

			if params.MinimapRows == 0 {
				params.MinimapRows = s.Config.Layout.MinimapRows
			}
			params.Options = s.ChartOptions()
			return Render(cmd.OutOrStdout(), raw, params)
		},
	}

	cmd.Flags().IntVar(&params.Cols, "width", 80, "Width in columns")
	cmd.Flags().IntVar(&params.Rows, "height", 24, "Height in rows, minimap included")
	cmd.Flags().IntVar(&params.MinimapRows, "minimap-rows", 0, "Minimap height in rows (0 uses the config)")
	cmd.Flags().Float64SliceVar(&rangeFlag, "range", nil, "Visible range as begin,end between 0 and 1")

	return cmd
}

// Render draws the chart's first settled frame to w.
func Render(w io.Writer, raw *chartdata.RawChart, params Params) error {
	cols := max(params.Cols, 1)
	minimapRows := max(params.MinimapRows, 0)
	plotRows := max(params.Rows-minimapRows-2, 1)

	cache, err := simplify.NewCache(16)
	if err != nil {
		return err
	}
	plot := chartrender.NewCanvas(cols, plotRows, theme.Theme{}, cache)
	minimap := chartrender.NewCanvas(cols, max(minimapRows, 1), theme.Theme{}, cache)
	plotWidth, plotHeight := plot.PixelSize()
	minimapWidth, minimapHeight := minimap.PixelSize()

	q := frameloop.NewQueue()
	opts := append(params.Options[:len(params.Options):len(params.Options)],
		lovelychart.WithLoop(q),
		lovelychart.WithDrawers(plot, minimap),
		lovelychart.WithSize(
			chartstate.Size{Width: plotWidth, Height: plotHeight},
			chartstate.Size{Width: minimapWidth, Height: minimapHeight},
		),
		lovelychart.WithAnimations(false),
	)

	chart, err := lovelychart.New(raw, opts...)
	if err != nil {
		return err
	}
	defer chart.Stop()

	q.Step()
	for i := 0; i < maxSteps && q.HasFrames(); i++ {
		q.Step()
	}

	th := chart.Theme()
	parts := []string{
		th.TitleStyle().Render(chart.Title()),
		th.CaptionStyle().Render(chart.Caption()),
		plot.View(),
	}
	if minimapRows > 0 {
		parts = append(parts, minimap.View())
	}

	_, err = fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, parts...))
	return err
}
