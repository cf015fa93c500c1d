// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/leadr/internal/core/lead"
)

// Tokyo Night color palette.
var (
	ColorRed    = lipgloss.Color("#f7768e")
	ColorOrange = lipgloss.Color("#ff9e64")
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorCyan   = lipgloss.Color("#7dcfff")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner ASCII art for the header.
const Banner = `
 ╦  ╔═╗╔═╗╔╦╗╦═╗
 ║  ║╣ ╠═╣ ║║╠╦╝
 ╩═╝╚═╝╩ ╩═╩╝╩╚═`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// TitleStyle styles view titles.
var TitleStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true).
	MarginBottom(1)

// HelpStyle styles the key help line.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ErrorStyle styles inline error messages.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// StatusStyle styles transient status messages.
var StatusStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ModalStyle frames confirmation dialogs.
var ModalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorYellow).
	Padding(1, 3)

// CardStyle frames entries in the external feed.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(ColorGray).
	Padding(0, 1).
	MarginBottom(1)

// LevelStyle returns the style used for a lead level badge.
func LevelStyle(l lead.Level) lipgloss.Style {
	switch l {
	case lead.LevelVeryHot:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	case lead.LevelHot:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	case lead.LevelCold:
		return lipgloss.NewStyle().Foreground(ColorCyan)
	default:
		return lipgloss.NewStyle().Foreground(ColorWhite)
	}
}
