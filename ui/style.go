package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"launcher-sync/registry"
)

// Brand colors of the two registries.
const (
	modrinthGreen    = 0x00AF5C
	curseforgeOrange = 0xF16436
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AF5C"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// Title renders a bold heading.
func Title(text string) string { return titleStyle.Render(text) }

// Ok renders text in the success color.
func Ok(text string) string { return okStyle.Render(text) }

// Warn renders text in the warning color.
func Warn(text string) string { return warnStyle.Render(text) }

// Err renders text in the error color.
func Err(text string) string { return errStyle.Render(text) }

// Faint renders de-emphasized text.
func Faint(text string) string { return faintStyle.Render(text) }

// Colorize applies the given color to the text using lipgloss.
// color is an integer RGB value, e.g. 0x00AF5C.
func Colorize(text string, color int) string {
	// Convert color int to hex string
	hexColor := fmt.Sprintf("#%06x", color)

	// Create a lipgloss style with the foreground color
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))

	// Render the text with the style
	return style.Render(text)
}

// ProviderBadge renders a registry name in its brand color. Items without a
// known provider get a faint "Manual" tag instead.
func ProviderBadge(p registry.Provider) string {
	switch p {
	case registry.Modrinth:
		return Colorize(p.Display(), modrinthGreen)
	case registry.CurseForge:
		return Colorize(p.Display(), curseforgeOrange)
	default:
		return Faint(p.Display())
	}
}

// Truncate shortens s to at most width runes, marking cut text with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
