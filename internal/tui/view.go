package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/wandb/lovely-chart/internal/theme"
	"github.com/wandb/lovely-chart/internal/tooltip"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	th := m.chart.Theme()
	if m.showHelp {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Render(m.helpView(th))
	}

	chart := lipgloss.JoinVertical(lipgloss.Left, m.plot.View(), m.minimap.View())
	if m.sidebar {
		chart = lipgloss.JoinHorizontal(lipgloss.Top, chart, m.sidebarView(th))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(th),
		chart,
		m.statusView(th),
	)
}

func (m *Model) headerView(th theme.Theme) string {
	title := th.TitleStyle().Render(runewidth.Truncate(m.chart.Title(), m.width/2, "…"))
	caption := th.CaptionStyle().Render(m.chart.Caption())

	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(caption), 1)
	return title + strings.Repeat(" ", gap) + caption
}

func (m *Model) sidebarView(th theme.Theme) string {
	inner := SidebarWidth - 4
	sections := []string{m.legendView(th, inner)}

	if content, ok := m.chart.Tooltip(); ok {
		sections = append(sections, "", tooltipView(th, content, inner))
	} else if m.chart.IsLoading() {
		sections = append(sections, "", "Loading...")
	}

	return th.TooltipStyle().
		Width(SidebarWidth - 2).
		Height(m.plotRows + m.minimapRows - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) legendView(th theme.Theme, width int) string {
	data := m.chart.Data()
	filter := m.chart.Filter()

	lines := make([]string, 0, len(data.Datasets))
	for i, ds := range data.Datasets {
		mark := "●"
		if !filter.Visible(ds.Key) {
			mark = "○"
		}
		line := fmt.Sprintf("%s %d %s", mark, i+1, ds.Name)
		style := th.Foreground(th.DatasetColor(data, ds.Key), 1)
		lines = append(lines, style.Render(runewidth.Truncate(line, width, "…")))
	}
	return strings.Join(lines, "\n")
}

func tooltipView(th theme.Theme, content tooltip.Content, width int) string {
	var lines []string
	if content.Title != "" {
		lines = append(lines, th.TitleStyle().Render(content.Title))
	}

	items := content.Items
	if content.Total != nil {
		items = append(items[:len(items):len(items)], *content.Total)
	}
	for _, item := range items {
		value := item.Text
		if item.Percent != "" {
			value = item.Percent + " " + value
		}
		name := runewidth.Truncate(item.Name, max(width-runewidth.StringWidth(value)-1, 1), "…")
		gap := max(width-runewidth.StringWidth(name)-runewidth.StringWidth(value), 1)

		style := th.Foreground(th.Text, 1)
		if item.Color != "" {
			style = th.Foreground(lipgloss.Color(item.Color), 1)
		}
		lines = append(lines, name+strings.Repeat(" ", gap)+style.Render(value))
	}

	if content.Zoomable {
		lines = append(lines, th.CaptionStyle().Render("enter to zoom in"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) statusView(th theme.Theme) string {
	parts := []string{"? help"}
	if label, ok := m.chart.ZoomOutLabel(); ok {
		parts = append(parts, "esc "+label)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return th.CaptionStyle().Render(runewidth.Truncate(strings.Join(parts, "  ·  "), m.width, "…"))
}

func (m *Model) helpView(th theme.Theme) string {
	keyStyle := th.TitleStyle().Width(22)
	var b strings.Builder

	for _, category := range KeyBindings() {
		b.WriteString(th.CaptionStyle().Render(category.Name))
		b.WriteString("\n")
		for _, binding := range category.Bindings {
			keys := strings.Join(binding.Keys, ", ")
			if len(binding.Keys) > 3 {
				keys = binding.Keys[0] + "…" + binding.Keys[len(binding.Keys)-1]
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(keys), binding.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
