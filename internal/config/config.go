// Package config loads the settings of the lovely-chart command.
//
// Settings come, in increasing priority, from defaults, the config file
// ($HOME/.lovely-chart.yaml unless another file is given), environment
// variables prefixed with LOVELY_CHART_ and command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/wandb/lovely-chart/internal/chartstate"
	"github.com/wandb/lovely-chart/internal/cliutil"
	"github.com/wandb/lovely-chart/internal/formulas"
	"github.com/wandb/lovely-chart/internal/lovelychart"
	"github.com/wandb/lovely-chart/internal/theme"
)

const (
	// EnvPrefix prefixes the environment variables read.
	EnvPrefix = "LOVELY_CHART"

	// FileName is the config file looked up in the home directory.
	FileName = ".lovely-chart.yaml"
)

// Theme values besides the theme names.
const ThemeAuto = "auto"

var ErrInvalidConfig = errors.New("config: invalid config")

// Keys lists the settings that can be set.
var Keys = []string{
	"theme",
	"animations",
	"min_fps",
	"zoom_timeout",
	"resize_delay",
	"simplifier.plot_factor",
	"simplifier.minimap_factor",
	"layout.axes_max_column_width",
	"layout.axes_max_row_height",
	"layout.x_axis_height",
	"layout.minimap_rows",
	"zoom_source",
	"metrics",
	"log_level",
}

// Config is the command's configuration.
type Config struct {
	// Theme is "day", "night" or "auto" to follow the terminal.
	Theme string `mapstructure:"theme"`

	Animations  bool          `mapstructure:"animations"`
	MinFPS      float64       `mapstructure:"min_fps"`
	ZoomTimeout time.Duration `mapstructure:"zoom_timeout"`
	ResizeDelay time.Duration `mapstructure:"resize_delay"`

	Simplifier Simplifier `mapstructure:"simplifier"`
	Layout     Layout     `mapstructure:"layout"`

	// ZoomSource is the URL detailed data is fetched from when zooming
	// in. Empty disables zooming except into pies.
	ZoomSource string `mapstructure:"zoom_source"`

	// Metrics is the address Prometheus metrics are served on. Empty
	// disables the endpoint.
	Metrics string `mapstructure:"metrics"`

	LogLevel string `mapstructure:"log_level"`
}

type Simplifier struct {
	PlotFactor    float64 `mapstructure:"plot_factor"`
	MinimapFactor float64 `mapstructure:"minimap_factor"`
}

// Layout holds the axis metrics in Braille dots, two per column and
// four per row of the terminal.
type Layout struct {
	AxesMaxColumnWidth float64 `mapstructure:"axes_max_column_width"`
	AxesMaxRowHeight   float64 `mapstructure:"axes_max_row_height"`
	XAxisHeight        float64 `mapstructure:"x_axis_height"`

	// MinimapRows is the height of the minimap in terminal rows.
	MinimapRows int `mapstructure:"minimap_rows"`
}

// New returns a viper instance with the defaults set, reading files from
// fs and the environment.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")

	v.SetDefault("theme", ThemeAuto)
	v.SetDefault("animations", true)
	v.SetDefault("min_fps", 30)
	v.SetDefault("zoom_timeout", formulas.ZoomTimeout)
	v.SetDefault("resize_delay", lovelychart.DefaultResizeDelay)
	v.SetDefault("simplifier.plot_factor", formulas.SimplifierPlotFactor)
	v.SetDefault("simplifier.minimap_factor", formulas.SimplifierMinimapFactor)
	v.SetDefault("layout.axes_max_column_width", 28)
	v.SetDefault("layout.axes_max_row_height", 12)
	v.SetDefault("layout.x_axis_height", 4)
	v.SetDefault("layout.minimap_rows", 3)
	v.SetDefault("zoom_source", "")
	v.SetDefault("metrics", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath is the config file in the home directory.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("config: finding home directory: %v", err)
	}
	return filepath.Join(home, FileName), nil
}

// ReadFile reads the config file at path. With an empty path the default
// file is read if it exists.
func ReadFile(v *viper.Viper, fs afero.Fs, path string) error {
	optional := path == ""
	if optional {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	exists, err := afero.Exists(fs, path)
	switch {
	case err != nil:
		return fmt.Errorf("config: %v", err)
	case !exists && optional:
		return nil
	case !exists:
		return fmt.Errorf("config: %s does not exist", path)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %v", path, err)
	}
	return nil
}

// Load decodes and validates the settings.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Theme != ThemeAuto {
		if _, err := theme.Get(theme.Name(c.Theme)); err != nil {
			errs = append(errs, fmt.Errorf("theme %q: %w", c.Theme, err))
		}
	}
	if c.MinFPS < 0 {
		errs = append(errs, errors.New("min_fps must not be negative"))
	}
	if c.ZoomTimeout < 0 || c.ResizeDelay < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.Simplifier.PlotFactor < 0 || c.Simplifier.MinimapFactor < 0 {
		errs = append(errs, errors.New("simplifier factors must not be negative"))
	}
	if c.Layout.AxesMaxColumnWidth <= 0 || c.Layout.AxesMaxRowHeight <= 0 {
		errs = append(errs, errors.New("layout axes sizes must be positive"))
	}
	if c.Layout.MinimapRows < 0 {
		errs = append(errs, errors.New("layout.minimap_rows must not be negative"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Level is the log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %v", c.LogLevel, err)
	}
	return level, nil
}

// ChartLayout returns the layout charts are computed with.
func (c *Config) ChartLayout() chartstate.Layout {
	return chartstate.Layout{
		AxesMaxColumnWidth: c.Layout.AxesMaxColumnWidth,
		AxesMaxRowHeight:   c.Layout.AxesMaxRowHeight,
		XAxisHeight:        c.Layout.XAxisHeight,
	}
}

// ChartOptions returns the chart options the settings translate to.
// The theme is left to the caller when it follows the terminal.
func (c *Config) ChartOptions() []lovelychart.ChartOption {
	opts := []lovelychart.ChartOption{
		lovelychart.WithLayout(c.ChartLayout()),
		lovelychart.WithAnimations(c.Animations),
		lovelychart.WithMinFPS(c.MinFPS),
		lovelychart.WithZoomTimeout(c.ZoomTimeout),
		lovelychart.WithResizeDelay(c.ResizeDelay),
		lovelychart.WithSimplification(c.Simplifier.PlotFactor, c.Simplifier.MinimapFactor),
	}
	if c.Theme != ThemeAuto {
		opts = append(opts, lovelychart.WithTheme(theme.Name(c.Theme)))
	}
	return opts
}

// Set validates and stores one setting in the config file at path.
func Set(v *viper.Viper, path, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: unknown key %q, valid keys are %v",
			ErrInvalidConfig, key, Keys)
	}

	v.Set(key, value)
	if _, err := Load(v); err != nil {
		return err
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: writing %s: %v", path, err)
	}
	return nil
}

// Override merges "key=value" settings over the config file. Environment
// variables and flags still take precedence.
func Override(v *viper.Viper, settings []string) error {
	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		key, value, ok := strings.Cut(setting, "=")
		if !ok {
			return fmt.Errorf("%w: expected key=value, got %q", ErrInvalidConfig, setting)
		}
		if !slices.Contains(Keys, key) {
			return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
		}
		values[key] = value
	}

	if err := v.MergeConfigMap(cliutil.ToNestedMap(values)); err != nil {
		return fmt.Errorf("config: %v", err)
	}
	return nil
}
