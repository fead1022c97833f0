package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding binds keys to a handler.
//
// Bindings without a handler are listed in the help but handled
// elsewhere.
type KeyBinding struct {
	Keys        []string
	Description string
	Handler     func(*Model, tea.KeyMsg) tea.Cmd
}

// BindingCategory groups bindings in the help.
type BindingCategory struct {
	Name     string
	Bindings []KeyBinding
}

// KeyBindings returns the bindings of the chart view.
func KeyBindings() []BindingCategory {
	return []BindingCategory{
		{
			Name: "General",
			Bindings: []KeyBinding{
				{
					Keys:        []string{"?"},
					Description: "Toggle this help",
					Handler:     (*Model).handleToggleHelp,
				},
				{
					Keys:        []string{"q", "ctrl+c"},
					Description: "Quit",
					Handler:     (*Model).handleQuit,
				},
				{
					Keys:        []string{"t"},
					Description: "Switch between day and night themes",
					Handler:     (*Model).handleToggleTheme,
				},
			},
		},
		{
			Name: "Range",
			Bindings: []KeyBinding{
				{
					Keys:        []string{"left", "h"},
					Description: "Move the range left",
					Handler:     (*Model).handlePanLeft,
				},
				{
					Keys:        []string{"right", "l"},
					Description: "Move the range right",
					Handler:     (*Model).handlePanRight,
				},
				{
					Keys:        []string{"up", "+", "="},
					Description: "Narrow the range",
					Handler:     (*Model).handleNarrow,
				},
				{
					Keys:        []string{"down", "-"},
					Description: "Widen the range",
					Handler:     (*Model).handleWiden,
				},
				{
					Keys:        []string{"0"},
					Description: "Show everything",
					Handler:     (*Model).handleResetRange,
				},
			},
		},
		{
			Name: "Datasets",
			Bindings: []KeyBinding{
				{
					Keys:        []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
					Description: "Show or hide a dataset",
					Handler:     (*Model).handleToggleDataset,
				},
				{
					Keys: []string{
						"alt+1", "alt+2", "alt+3", "alt+4", "alt+5",
						"alt+6", "alt+7", "alt+8", "alt+9",
					},
					Description: "Show only a dataset",
					Handler:     (*Model).handleShowOnly,
				},
			},
		},
		{
			Name: "Labels",
			Bindings: []KeyBinding{
				{
					Keys:        []string{"tab"},
					Description: "Focus the next label",
					Handler:     (*Model).handleFocusNext,
				},
				{
					Keys:        []string{"shift+tab"},
					Description: "Focus the previous label",
					Handler:     (*Model).handleFocusPrev,
				},
				{
					Keys:        []string{"enter"},
					Description: "Zoom into the focused label",
					Handler:     (*Model).handleZoomIn,
				},
				{
					Keys:        []string{"esc", "backspace"},
					Description: "Zoom out, or clear the focus",
					Handler:     (*Model).handleZoomOut,
				},
			},
		},
		{
			Name: "Mouse",
			Bindings: []KeyBinding{
				{
					Keys:        []string{"hover"},
					Description: "Show the tooltip of a label",
				},
				{
					Keys:        []string{"click"},
					Description: "Zoom into the hovered label",
				},
				{
					Keys:        []string{"wheel"},
					Description: "Narrow or widen the range",
				},
				{
					Keys:        []string{"drag minimap"},
					Description: "Move or resize the range",
				},
			},
		},
	}
}

// buildKeyMap builds a lookup from key string to handler.
func buildKeyMap(categories []BindingCategory) map[string]func(*Model, tea.KeyMsg) tea.Cmd {
	keyMap := make(map[string]func(*Model, tea.KeyMsg) tea.Cmd)
	for _, category := range categories {
		for _, binding := range category.Bindings {
			if binding.Handler == nil {
				continue
			}
			for _, key := range binding.Keys {
				keyMap[key] = binding.Handler
			}
		}
	}
	return keyMap
}
