// Package present maps engine output to display tokens: colors, icons and
// short human-readable strings. It renders nothing itself; every screen
// of a client shares these helpers instead of keeping its own copies.
package present

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/game-guardian/internal/alerts"
)

// Palette is the color triple used for an alert badge or card.
type Palette struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
	Border     string `json:"border"`
}

var (
	paletteHigh    = Palette{Background: "#FEE2E2", Text: "#991B1B", Border: "#FCA5A5"}
	paletteMedium  = Palette{Background: "#FED7AA", Text: "#9A3412", Border: "#FDBA74"}
	paletteLow     = Palette{Background: "#FEF3C7", Text: "#854D0E", Border: "#FDE047"}
	paletteDefault = Palette{Background: "#F3F4F6", Text: "#374151", Border: "#D1D5DB"}
)

// SeverityPalette returns the colors for a severity. Unknown severities
// get the neutral palette.
func SeverityPalette(s alerts.Severity) Palette {
	switch s {
	case alerts.SeverityHigh:
		return paletteHigh
	case alerts.SeverityMedium:
		return paletteMedium
	case alerts.SeverityLow:
		return paletteLow
	default:
		return paletteDefault
	}
}

// Style turns a palette into a terminal style with a rounded border.
func (p Palette) Style() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(p.Background)).
		Foreground(lipgloss.Color(p.Text)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Border)).
		Padding(0, 1)
}

// SeverityStyle is shorthand for SeverityPalette(s).Style().
func SeverityStyle(s alerts.Severity) lipgloss.Style {
	return SeverityPalette(s).Style()
}

// BadgeStyle is the compact, borderless severity label.
func BadgeStyle(s alerts.Severity) lipgloss.Style {
	p := SeverityPalette(s)
	return lipgloss.NewStyle().
		Bold(true).
		Background(lipgloss.Color(p.Background)).
		Foreground(lipgloss.Color(p.Text)).
		Padding(0, 1)
}

// AlertIcon returns the glyph shown next to an alert of type t.
func AlertIcon(t alerts.Type) string {
	switch t {
	case alerts.TypeLateNightGaming:
		return "⏰"
	case alerts.TypeRapidFriends:
		return "👥"
	case alerts.TypeRiskyGroup:
		return "🛡️"
	default:
		return "⚠️"
	}
}
