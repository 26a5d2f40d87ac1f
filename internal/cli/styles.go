package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// maxValueWidth bounds the cells printed by show.
const maxValueWidth = 72

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	pending lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("245")),
		pending: r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:     r.NewStyle().Faint(true),
	}
}

type row struct {
	label string
	value string
}

// writeRows prints label/value pairs with the values aligned.
func (s styles) writeRows(w io.Writer, indent string, rows []row) {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.label))
	}
	for _, r := range rows {
		label := s.label.Render(runewidth.FillRight(r.label, width))
		fmt.Fprintf(w, "%s%s  %s\n", indent, label, truncate(r.value, maxValueWidth))
	}
}

// truncate shortens s to width cells and flattens line breaks.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return ansi.Truncate(s, width, "…")
}
