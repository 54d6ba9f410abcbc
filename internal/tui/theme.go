package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The viewer must remain readable on both light and dark terminal
// backgrounds, so everything uses lipgloss.AdaptiveColor and "faint" styling
// is applied only on dark backgrounds (faint text on light terminals often
// becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted lipgloss.TerminalColor = ac("240", "243")

	colorSurfaceBg lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg lipgloss.TerminalColor = ac("235", "252")

	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")

	colorControlBg lipgloss.TerminalColor = ac("252", "235")
	colorInputBg   lipgloss.TerminalColor = ac("254", "234")

	colorAccent  lipgloss.TerminalColor = ac("27", "62") // blue
	colorError   lipgloss.TerminalColor = ac("196", "160")
	colorSuccess lipgloss.TerminalColor = ac("28", "77")
	colorWarn    lipgloss.TerminalColor = ac("130", "178")
)

// groupPalette is the fixed highlight cycle for animation groups. Group
// color indexes wrap modulo its length, so two groups six apart share a
// color on purpose.
var groupPalette = []lipgloss.AdaptiveColor{
	ac("27", "75"),   // blue
	ac("28", "77"),   // green
	ac("130", "214"), // orange
	ac("127", "176"), // purple
	ac("31", "80"),   // teal
	ac("161", "211"), // pink
}

func groupColor(colorIndex int) lipgloss.AdaptiveColor {
	if colorIndex < 0 {
		colorIndex = 0
	}
	return groupPalette[colorIndex%len(groupPalette)]
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

// applyColorProfilePreference honors NO_COLOR and the deck's configured
// theme. termenv.EnvColorProfile also reads CLICOLOR, which is useful for
// plain CLI output but can accidentally disable colors in a TUI; here we
// only honor NO_COLOR and otherwise trust the terminal.
func applyColorProfilePreference(theme string) {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}
