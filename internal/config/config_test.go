package config_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/internal/config"
	"github.com/wandb/lovely-chart/internal/formulas"
)

func TestLoad_Defaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := config.New(fs)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, config.ThemeAuto, cfg.Theme)
	assert.True(t, cfg.Animations)
	assert.Equal(t, formulas.ZoomTimeout, cfg.ZoomTimeout)
	assert.Equal(t, 3, cfg.Layout.MinimapRows)
	assert.Len(t, cfg.ChartOptions(), 6, "auto theme is left to the caller")
}

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/chart.yaml", []byte(`
theme: night
min_fps: 20
resize_delay: 50ms
simplifier:
  plot_factor: 0.5
`), 0o644))

	v := config.New(fs)
	require.NoError(t, config.ReadFile(v, fs, "/etc/chart.yaml"))
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "night", cfg.Theme)
	assert.Equal(t, 20.0, cfg.MinFPS)
	assert.Equal(t, 50*time.Millisecond, cfg.ResizeDelay)
	assert.Equal(t, 0.5, cfg.Simplifier.PlotFactor)
	assert.Equal(t, formulas.SimplifierMinimapFactor, cfg.Simplifier.MinimapFactor)
	assert.Len(t, cfg.ChartOptions(), 7)
}

func TestReadFile_MissingExplicitFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := config.New(fs)

	assert.Error(t, config.ReadFile(v, fs, "/nope.yaml"))
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("min_fps: 20\n"), 0o644))
	t.Setenv("LOVELY_CHART_MIN_FPS", "45")
	t.Setenv("LOVELY_CHART_LAYOUT_MINIMAP_ROWS", "5")

	v := config.New(fs)
	require.NoError(t, config.ReadFile(v, fs, "/c.yaml"))
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, 45.0, cfg.MinFPS)
	assert.Equal(t, 5, cfg.Layout.MinimapRows)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"theme", "theme", "sepia"},
		{"log level", "log_level", "loud"},
		{"negative fps", "min_fps", -1},
		{"negative delay", "resize_delay", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := config.New(afero.NewMemMapFs())
			v.Set(tt.key, tt.val)

			_, err := config.Load(v)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestOverride(t *testing.T) {
	v := config.New(afero.NewMemMapFs())

	require.NoError(t, config.Override(v, []string{
		"animations=false",
		"layout.minimap_rows=2",
		"zoom_timeout=1s",
	}))
	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.False(t, cfg.Animations)
	assert.Equal(t, 2, cfg.Layout.MinimapRows)
	assert.Equal(t, time.Second, cfg.ZoomTimeout)

	assert.ErrorIs(t, config.Override(v, []string{"animations"}), config.ErrInvalidConfig)
	assert.ErrorIs(t, config.Override(v, []string{"colour=red"}), config.ErrInvalidConfig)
}

func TestSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := config.New(fs)

	require.NoError(t, config.Set(v, "/home/me/.lovely-chart.yaml", "theme", "night"))
	written, err := afero.ReadFile(fs, "/home/me/.lovely-chart.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(written), "theme: night")

	reread := config.New(fs)
	require.NoError(t, config.ReadFile(reread, fs, "/home/me/.lovely-chart.yaml"))
	cfg, err := config.Load(reread)
	require.NoError(t, err)
	assert.Equal(t, "night", cfg.Theme)
}

func TestSet_Rejects(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := config.New(fs)

	assert.ErrorIs(t, config.Set(v, "/c.yaml", "colour", "red"), config.ErrInvalidConfig)
	assert.ErrorIs(t, config.Set(v, "/c.yaml", "theme", "sepia"), config.ErrInvalidConfig)

	exists, err := afero.Exists(fs, "/c.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}
