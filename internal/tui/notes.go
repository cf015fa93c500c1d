package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// notesRenderer renders lead notes as markdown. The glamour renderer is
// rebuilt only when the wrap width changes.
type notesRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// Render returns md rendered for width. Rendering failures fall back to the
// raw text.
func (n *notesRenderer) Render(md string, width int) string {
	if width < 10 {
		width = 10
	}

	if n.renderer == nil || n.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("tokyo-night"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		n.renderer = r
		n.width = width
	}

	out, err := n.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
