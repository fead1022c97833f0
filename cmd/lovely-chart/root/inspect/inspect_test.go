package inspect_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandb/lovely-chart/cmd/lovely-chart/root/inspect"
)

const chart = `
title: Shares
type: area
isPercentage: true
labels: [0, 86400000, 172800000]
datasets:
  - name: Apples
    values: [1, 2, 3]
  - name: Pears
    values: [3, 2, 1]
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/shares.yaml", []byte(chart), 0o644))

	cmd := inspect.NewInspectCmd(fs)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect_JSON(t *testing.T) {
	out, err := run(t, "/shares.yaml")
	require.NoError(t, err)

	var summary inspect.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Shares", summary.Title)
	assert.Equal(t, "area", summary.Type)
	assert.Equal(t, 3, summary.Labels)
	assert.True(t, summary.Stacked)
	assert.True(t, summary.ZoomsToPie)
	require.Len(t, summary.Datasets, 2)
	assert.Equal(t, "y1", summary.Datasets[1].Key)
}

func TestInspect_ZoomableSourceDisablesPie(t *testing.T) {
	out, err := run(t, "--zoomable", "--template", "{{.ZoomsToPie}}", "/shares.yaml")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestInspect_MissingFile(t *testing.T) {
	_, err := run(t, "/nope.json")
	assert.Error(t, err)
}
