package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"corkboard/internal/domain"
	"corkboard/internal/interaction"
	"corkboard/internal/render"
)

// Board pixels per terminal cell. cellW matches the renderer's glyph width
// so wrapped note text lines up with the estimated item heights.
const (
	cellW = 8.0
	cellH = 16.0
)

// viewport is the pan offset in cells.
type viewport struct {
	panX, panY int
}

// toBoard maps a cell to the board point at its center.
func (v viewport) toBoard(col, row int) domain.Point {
	return domain.Point{
		X: float64(col+v.panX)*cellW + cellW/2,
		Y: float64(row+v.panY)*cellH + cellH/2,
	}
}

func (v viewport) toCell(p domain.Point) (int, int) {
	return int(math.Floor(p.X/cellW)) - v.panX, int(math.Floor(p.Y/cellH)) - v.panY
}

// box is an item frame snapped to cells, inclusive on both ends.
type box struct {
	left, top, right, bottom int
}

func (v viewport) boxFor(f render.Rect) box {
	l, t := v.toCell(domain.Point{X: f.X, Y: f.Y})
	r, b := v.toCell(domain.Point{X: f.X + f.W, Y: f.Y + f.H})
	if r < l+4 {
		r = l + 4
	}
	if b < t+2 {
		b = t + 2
	}
	return box{left: l, top: t, right: r, bottom: b}
}

func (b box) contains(col, row int) bool {
	return col >= b.left && col <= b.right && row >= b.top && row <= b.bottom
}

// hitTest finds the topmost item under a cell and which part of it was hit.
// The top-right corner is the rotate handle; note interiors are editable
// text; everything else on an item drags it.
func hitTest(sc render.Scene, v viewport, col, row int) (interaction.Target, string) {
	for i := len(sc.Items) - 1; i >= 0; i-- {
		iv := sc.Items[i]
		b := v.boxFor(iv.Frame)
		if !b.contains(col, row) {
			continue
		}
		switch {
		case col == b.right && row == b.top:
			return interaction.TargetRotateHandle, iv.Item.ID
		case iv.Item.Type == domain.ItemTypeNote &&
			col > b.left && col < b.right && row > b.top && row < b.bottom:
			return interaction.TargetEditableText, iv.Item.ID
		default:
			return interaction.TargetBody, iv.Item.ID
		}
	}
	return interaction.TargetBackground, ""
}

// ── grid ──────────────────────────────────────────────────

type cellKind uint8

const (
	kindCork cellKind = iota
	kindString
	kindNote
	kindPhoto
	kindSelected
	kindHandle
)

type grid struct {
	w, h  int
	runes [][]rune
	kinds [][]cellKind
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), kinds: make([][]cellKind, h)}
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.kinds[y] = make([]cellKind, w)
	}
	return g
}

func (g *grid) set(col, row int, r rune, k cellKind) {
	if col < 0 || row < 0 || col >= g.w || row >= g.h {
		return
	}
	g.runes[row][col] = r
	g.kinds[row][col] = k
}

func (g *grid) text(col, row int, s string, k cellKind, limit int) {
	for i, r := range []rune(s) {
		if i >= limit {
			return
		}
		g.set(col+i, row, r, k)
	}
}

// drawScene paints strings first and items on top in stacking order.
func drawScene(sc render.Scene, v viewport, w, h int) *grid {
	g := newGrid(w, h)
	for _, p := range sc.Paths {
		drawPath(g, v, p)
	}
	for _, iv := range sc.Items {
		drawItem(g, v, iv)
	}
	return g
}

func drawPath(g *grid, v viewport, p render.Path) {
	glyph := '·'
	if p.Type == domain.ConnectionCurved {
		glyph = '•'
	}
	n := int(render.Distance(p.Start, p.End)/cellW) + 2
	for _, pt := range p.Sample(n) {
		col, row := v.toCell(pt)
		g.set(col, row, glyph, kindString)
	}
}

func drawItem(g *grid, v viewport, iv render.ItemView) {
	b := v.boxFor(iv.Frame)
	kind := kindNote
	if iv.Item.Type == domain.ItemTypePhoto {
		kind = kindPhoto
	}
	border := kind
	if iv.Selected {
		border = kindSelected
	}

	for row := b.top; row <= b.bottom; row++ {
		for col := b.left; col <= b.right; col++ {
			g.set(col, row, ' ', kind)
		}
	}
	for col := b.left + 1; col < b.right; col++ {
		g.set(col, b.top, '─', border)
		g.set(col, b.bottom, '─', border)
	}
	for row := b.top + 1; row < b.bottom; row++ {
		g.set(b.left, row, '│', border)
		g.set(b.right, row, '│', border)
	}
	g.set(b.left, b.top, '┌', border)
	g.set(b.left, b.bottom, '└', border)
	g.set(b.right, b.bottom, '┘', border)
	g.set(b.right, b.top, '↻', kindHandle)

	inner := b.right - b.left - 1
	if tilt := tiltLabel(iv.Item.Rotation); tilt != "" {
		g.text(b.left+2, b.top, tilt, border, inner-2)
	}

	lines := render.Wrap(iv.Text, inner-1)
	if iv.Item.Type == domain.ItemTypePhoto {
		// The picture itself cannot be drawn in a cell grid.
		lines = append([]string{photoLabel(iv.Item.Image)}, lines...)
	}
	for i, line := range lines {
		row := b.top + 1 + i
		if row >= b.bottom {
			break
		}
		g.text(b.left+1, row, line, kind, inner)
	}
}

func tiltLabel(deg float64) string {
	r := math.Round(deg)
	if r == 0 {
		return ""
	}
	return " " + formatDegrees(r) + " "
}

func formatDegrees(d float64) string {
	return strconv.FormatFloat(d, 'f', 0, 64) + "°"
}

func photoLabel(image string) string {
	switch {
	case strings.HasPrefix(image, "data:"):
		return "[photo]"
	case image != "":
		return "[photo " + image + "]"
	}
	return "[photo]"
}

// ── styling ───────────────────────────────────────────────

var kindStyles = map[cellKind]lipgloss.Style{
	kindCork:     lipgloss.NewStyle().Background(lipgloss.Color("#8d6e47")),
	kindString:   lipgloss.NewStyle().Background(lipgloss.Color("#8d6e47")).Foreground(lipgloss.Color("#d32f2f")).Bold(true),
	kindNote:     lipgloss.NewStyle().Background(lipgloss.Color("#fff59d")).Foreground(lipgloss.Color("#212121")),
	kindPhoto:    lipgloss.NewStyle().Background(lipgloss.Color("#fafafa")).Foreground(lipgloss.Color("#424242")),
	kindSelected: lipgloss.NewStyle().Background(lipgloss.Color("#fff59d")).Foreground(lipgloss.Color("#1e88e5")).Bold(true),
	kindHandle:   lipgloss.NewStyle().Background(lipgloss.Color("#8d6e47")).Foreground(lipgloss.Color("#ffffff")),
}

// lines renders the grid, one styled run per stretch of equal kinds.
func (g *grid) lines() []string {
	out := make([]string, g.h)
	for y := 0; y < g.h; y++ {
		var sb strings.Builder
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.kinds[y][x] == g.kinds[y][start] {
				continue
			}
			sb.WriteString(kindStyles[g.kinds[y][start]].Render(string(g.runes[y][start:x])))
			start = x
		}
		out[y] = sb.String()
	}
	return out
}

// plain returns the grid without styling, for tests and text export.
func (g *grid) plain() []string {
	out := make([]string, g.h)
	for y := range g.runes {
		out[y] = string(g.runes[y])
	}
	return out
}
