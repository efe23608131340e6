package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/snipgen/internal/config"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// List view styles
	Key      lipgloss.Style
	Prefix   lipgloss.Style
	Desc     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style

	// Preview styles
	PreviewKey    lipgloss.Style
	PreviewPrefix lipgloss.Style
	PreviewBody   lipgloss.Style

	// Chrome styles
	Divider lipgloss.Style

	// Report styles, used outside the TUI
	Error   lipgloss.Style
	Success lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Key:           lipgloss.NewStyle().Bold(true),
		Prefix:        lipgloss.NewStyle(),
		Desc:          lipgloss.NewStyle(),
		Selected:      lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:        lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		PreviewKey:    lipgloss.NewStyle().Bold(true),
		PreviewPrefix: lipgloss.NewStyle(),
		PreviewBody:   lipgloss.NewStyle(),
		Divider:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Error:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Success:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		SelectedBg:    lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	keyColor := parseANSIColor(config.GetColorKey())
	prefixColor := parseANSIColor(config.GetColorPrefix())
	descColor := parseANSIColor(config.GetColorDesc())
	bodyColor := parseANSIColor(config.GetColorBody())
	borderColor := lipgloss.Color(config.GetColorBorder())
	cursorColor := lipgloss.Color(config.GetColorCursor())
	selectedBg := lipgloss.Color(config.GetColorSelected())
	dimColor := lipgloss.Color(config.GetColorDim())

	s.Key = lipgloss.NewStyle().Foreground(keyColor)
	s.Prefix = lipgloss.NewStyle().Foreground(prefixColor)
	s.Desc = lipgloss.NewStyle().Foreground(descColor)
	s.Selected = lipgloss.NewStyle().Background(selectedBg)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	s.PreviewKey = lipgloss.NewStyle().Bold(true).Foreground(keyColor)
	s.PreviewPrefix = lipgloss.NewStyle().Foreground(prefixColor)
	s.PreviewBody = lipgloss.NewStyle().Foreground(bodyColor)

	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.SelectedBg = selectedBg
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
