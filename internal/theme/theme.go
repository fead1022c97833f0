// Package theme holds the day and night color schemes of a chart.
package theme

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/wandb/lovely-chart/internal/chartdata"
)

// ErrUnknownTheme is returned by Get for names other than Day and Night.
var ErrUnknownTheme = errors.New("theme: unknown theme")

type Name string

const (
	Day   Name = "day"
	Night Name = "night"
)

// Theme is the color table a chart is drawn with.
type Theme struct {
	Name Name

	Background lipgloss.Color
	Text       lipgloss.Color
	XAxisText  lipgloss.Color
	YAxisText  lipgloss.Color
	GridLines  lipgloss.Color

	MinimapMask   lipgloss.Color
	MinimapSlider lipgloss.Color

	TooltipBackground lipgloss.Color
	TooltipText       lipgloss.Color
	TooltipBorder     lipgloss.Color

	// Palette colors datasets that do not specify their own color.
	Palette []lipgloss.Color
}

var palette = []lipgloss.Color{
	"#3DC23F",
	"#F34C44",
	"#3497ED",
	"#F5BD25",
	"#64ADED",
	"#558DED",
	"#4BD964",
	"#E65850",
	"#9ED448",
	"#5FB641",
}

var themes = map[Name]Theme{
	Day: {
		Name:              Day,
		Background:        "#FFFFFF",
		Text:              "#222222",
		XAxisText:         "#8E8E93",
		YAxisText:         "#8E8E93",
		GridLines:         "#E7E8EA",
		MinimapMask:       "#E2EEF9",
		MinimapSlider:     "#C0D1E1",
		TooltipBackground: "#FFFFFF",
		TooltipText:       "#222222",
		TooltipBorder:     "#D2D5D7",
		Palette:           palette,
	},
	Night: {
		Name:              Night,
		Background:        "#242F3E",
		Text:              "#FFFFFF",
		XAxisText:         "#A3B1C2",
		YAxisText:         "#A3B1C2",
		GridLines:         "#344658",
		MinimapMask:       "#304259",
		MinimapSlider:     "#56626D",
		TooltipBackground: "#1C2533",
		TooltipText:       "#FFFFFF",
		TooltipBorder:     "#4A5A6C",
		Palette:           palette,
	},
}

// Get returns the theme with the given name.
func Get(name Name) (Theme, error) {
	t, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return t, nil
}

// Detect picks the theme matching the terminal's background.
func Detect(out *termenv.Output) Name {
	if out.HasDarkBackground() {
		return Night
	}
	return Day
}

// DatasetColor returns the color of a dataset: its own if it has one,
// otherwise a palette color picked by its position.
func (t Theme) DatasetColor(data *chartdata.ChartData, key string) lipgloss.Color {
	for i, ds := range data.Datasets {
		if ds.Key != key {
			continue
		}
		if ds.Color != "" {
			return lipgloss.Color(ds.Color)
		}
		return t.Palette[i%len(t.Palette)]
	}
	return t.Text
}

// Fade blends a color towards the background. Opacity 1 keeps the color
// and 0 gives the background. Colors that are not hex codes are returned
// unchanged for any positive opacity.
func (t Theme) Fade(c lipgloss.Color, opacity float64) lipgloss.Color {
	if opacity >= 1 {
		return c
	}
	if opacity <= 0 {
		return t.Background
	}

	fg, err := colorful.Hex(string(c))
	if err != nil {
		return c
	}
	bg, err := colorful.Hex(string(t.Background))
	if err != nil {
		return c
	}
	return lipgloss.Color(bg.BlendRgb(fg, opacity).Clamped().Hex())
}

// Foreground returns a style drawing text in c faded to opacity.
func (t Theme) Foreground(c lipgloss.Color, opacity float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Fade(c, opacity))
}

func (t Theme) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)
}

func (t Theme) CaptionStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.XAxisText)
}

func (t Theme) TooltipStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.TooltipBorder).
		Foreground(t.TooltipText).
		Padding(0, 1)
}
