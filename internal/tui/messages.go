package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wandb/lovely-chart/internal/chartdata"
)

// FrameInterval is the time between animation frames.
const FrameInterval = 16 * time.Millisecond

// FrameMsg steps the chart's loop.
type FrameMsg struct{}

// ChartReloadedMsg replaces the chart's data, for example after the
// chart file was rewritten.
type ChartReloadedMsg struct {
	Raw *chartdata.RawChart
}

// ErrorMsg is shown on the status line.
type ErrorMsg struct {
	Err error
}

func frameCmd() tea.Cmd {
	return tea.Tick(FrameInterval, func(time.Time) tea.Msg {
		return FrameMsg{}
	})
}
