package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/view"
)

// Styles holds the lipgloss styles of the chrome around the view.
type Styles struct {
	Status lipgloss.Style
	Help   lipgloss.Style
	Event  lipgloss.Style
}

// DefaultStyles returns the demo's styles.
func DefaultStyles() Styles {
	return Styles{
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECEFF4")).
			Background(lipgloss.Color("#4C566A")).
			Padding(0, 1),
		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7B88A1")),
		Event: lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C")).Italic(true),
	}
}

// RenderLine returns row y of g. With color set, runs of cells sharing
// colors are styled with lipgloss.
func RenderLine(g *view.Grid, y int, color bool) string {
	if !color {
		return g.Line(y)
	}
	var sb strings.Builder
	var run strings.Builder
	var fg, bg graphics.Color
	flush := func() {
		if run.Len() == 0 {
			return
		}
		sb.WriteString(cellStyle(fg, bg).Render(run.String()))
		run.Reset()
	}
	for x := 0; x < g.Width; x++ {
		c := g.At(x, y)
		if c.Rune == 0 {
			continue
		}
		if c.FG != fg || c.BG != bg {
			flush()
			fg, bg = c.FG, c.BG
		}
		run.WriteRune(c.Rune)
	}
	flush()
	return sb.String()
}

func cellStyle(fg, bg graphics.Color) lipgloss.Style {
	s := lipgloss.NewStyle()
	if fg.A() != 0 {
		s = s.Foreground(lipgloss.Color(fg.Hex()))
	}
	if bg.A() != 0 {
		s = s.Background(lipgloss.Color(bg.Hex()))
	}
	return s
}
