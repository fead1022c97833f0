package set_test

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/config/set"
	"github.com/wandb/lovely-chart/internal/config"
)

func run(fs afero.Fs, args ...string) (string, error) {
	root := &cobra.Command{Use: "lovely-chart"}
	root.PersistentFlags().String("config", "", "")
	root.AddCommand(set.NewSetCmd(fs))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"set"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSet_KeepsExistingSettings(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("min_fps: 20\n"), 0o644))

	out, err := run(fs, "theme", "night", "--config", "/c.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully set theme = night")

	v := config.New(fs)
	require.NoError(t, config.ReadFile(v, fs, "/c.yaml"))
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "night", cfg.Theme)
	assert.Equal(t, 20.0, cfg.MinFPS)
}

func TestSet_InvalidKey(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := run(fs, "colour", "red", "--config", "/c.yaml")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
