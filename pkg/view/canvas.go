package view

import (
	"strings"

	"github.com/go-drift/litho/pkg/graphics"
	"github.com/mattn/go-runewidth"
)

// Canvas receives drawing operations in absolute cell coordinates.
type Canvas interface {
	FillRect(r graphics.Rect, c graphics.Color)
	DrawText(x, y int, text string, c graphics.Color)
}

// Cell is one character cell of a Grid.
type Cell struct {
	Rune rune
	FG   graphics.Color
	BG   graphics.Color
}

// Grid is a fixed-size cell canvas. Wide runes occupy two cells; the second
// cell holds rune 0.
type Grid struct {
	Width, Height int
	Cells         []Cell
}

// NewGrid returns a blank grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height, Cells: make([]Cell, width*height)}
	for i := range g.Cells {
		g.Cells[i].Rune = ' '
	}
	return g
}

// At returns the cell at (x, y).
func (g *Grid) At(x, y int) Cell {
	return g.Cells[y*g.Width+x]
}

func (g *Grid) FillRect(r graphics.Rect, c graphics.Color) {
	r = r.Intersect(graphics.NewRect(0, 0, g.Width, g.Height))
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			g.Cells[y*g.Width+x].BG = c
		}
	}
}

func (g *Grid) DrawText(x, y int, text string, c graphics.Color) {
	if y < 0 || y >= g.Height {
		return
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x >= 0 && x+w <= g.Width {
			cell := &g.Cells[y*g.Width+x]
			cell.Rune, cell.FG = r, c
			if w == 2 {
				g.Cells[y*g.Width+x+1].Rune = 0
			}
		}
		x += w
	}
}

// Line returns row y as text, skipping continuation cells of wide runes.
func (g *Grid) Line(y int) string {
	var sb strings.Builder
	for x := 0; x < g.Width; x++ {
		if r := g.At(x, y).Rune; r != 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (g *Grid) String() string {
	lines := make([]string, g.Height)
	for y := range lines {
		lines[y] = strings.TrimRight(g.Line(y), " ")
	}
	return strings.Join(lines, "\n")
}
