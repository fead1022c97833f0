// Package setup loads what the chart commands share.
package setup

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/viper"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/version"
	"github.com/wandb/lovely-chart/internal/cliutil"
	"github.com/wandb/lovely-chart/internal/config"
	"github.com/wandb/lovely-chart/internal/lovelychart"
	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/theme"
)

// SentryDSNEnv enables error reporting.
const SentryDSNEnv = config.EnvPrefix + "_SENTRY_DSN"

// Setup is the loaded configuration of one command.
type Setup struct {
	Config *config.Config
	Logger *observability.CoreLogger
	Theme  theme.Name

	flush func()
}

// Load reads the settings and creates a logger writing to logOut.
func Load(v *viper.Viper, logOut io.Writer) (*Setup, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	level, _ := cfg.Level()
	logger, flush, err := cliutil.NewLogger(cliutil.LoggerParams{
		Out:       logOut,
		Level:     level,
		SentryDSN: os.Getenv(SentryDSNEnv),
		Release:   version.Version,
	})
	if err != nil {
		return nil, err
	}

	name := theme.Name(cfg.Theme)
	if cfg.Theme == config.ThemeAuto {
		name = theme.Detect(termenv.NewOutput(os.Stdout))
	}

	return &Setup{Config: cfg, Logger: logger, Theme: name, flush: flush}, nil
}

// ChartOptions are the options every chart of the command is created
// with.
func (s *Setup) ChartOptions() []lovelychart.ChartOption {
	return append(s.Config.ChartOptions(),
		lovelychart.WithTheme(s.Theme),
		lovelychart.WithLogger(s.Logger),
	)
}

// Close flushes pending error reports.
func (s *Setup) Close() {
	s.flush()
}
