// Package tui implements the Bubble Tea TUI for leadr.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/leadr/internal/styles"
)

// Styles used for rendering the TUI.
var (
	// Title style for view headers.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	// Subtle text such as counts and hints.
	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// Status line after a successful operation.
	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen).
			PaddingLeft(1)

	// Error line under the content.
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed).
			PaddingLeft(1)

	// Frame around the notes preview.
	notesStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorGray).
			Padding(0, 1)

	// Frame around forms.
	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	bannerStyle = styles.BannerStyle.
			PaddingLeft(1).
			PaddingBottom(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorYellow).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("#3b4261")).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(lipgloss.Color("#1a1b26")).
					Bold(true)
)
