// Package render projects the board into drawable form: item frames,
// connection paths, and SVG/PNG output.
package render

import (
	"math"

	"corkboard/internal/domain"
)

// GeometryProvider resolves where an item currently sits on screen.
// Hosts with a live layout engine report measured geometry; tests and
// headless exports use LayoutGeometry.
type GeometryProvider interface {
	Center(id string) (domain.Point, bool)
}

// HeightFunc derives an item's rendered height from its content.
type HeightFunc func(domain.Item) float64

// Rect is an axis-aligned rectangle in board coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() domain.Point {
	return domain.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.W == 0 && r.H == 0 {
		return o
	}
	x1, y1 := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	x2, y2 := math.Max(r.X+r.W, o.X+o.W), math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// LayoutGeometry computes geometry from the stored fields alone.
// Items rotate about their center, so the visual center is the frame center.
type LayoutGeometry struct {
	items  map[string]domain.Item
	height HeightFunc
}

func NewLayoutGeometry(items []domain.Item, height HeightFunc) *LayoutGeometry {
	if height == nil {
		height = EstimateHeight
	}
	m := make(map[string]domain.Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return &LayoutGeometry{items: m, height: height}
}

func (g *LayoutGeometry) Center(id string) (domain.Point, bool) {
	f, ok := g.Frame(id)
	if !ok {
		return domain.Point{}, false
	}
	return f.Center(), true
}

// Frame returns the unrotated frame of the item.
func (g *LayoutGeometry) Frame(id string) (Rect, bool) {
	it, ok := g.items[id]
	if !ok {
		return Rect{}, false
	}
	return Rect{X: it.X, Y: it.Y, W: it.Width, H: g.height(it)}, true
}

// Bounds returns the axis-aligned box around the rotated frame.
func (g *LayoutGeometry) Bounds(id string) (Rect, bool) {
	f, ok := g.Frame(id)
	if !ok {
		return Rect{}, false
	}
	return RotatedBounds(f, g.items[id].Rotation), true
}

// RotatedBounds returns the bounding box of r rotated by deg about its center.
func RotatedBounds(r Rect, deg float64) Rect {
	rad := Radians(deg)
	cos, sin := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	w := r.W*cos + r.H*sin
	h := r.W*sin + r.H*cos
	c := r.Center()
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// ── text metrics ──────────────────────────────────────────

const (
	charWidth   = 8.0
	lineHeight  = 20.0
	notePadding = 20.0
	photoAspect = 0.75
)

// EstimateHeight approximates how tall an item renders at its width:
// wrapped caption lines for notes, a 4:3 image plus caption for photos.
func EstimateHeight(it domain.Item) float64 {
	lines := float64(WrapCount(PlainText(it.Content), it.Width-notePadding))
	if it.Type == domain.ItemTypePhoto {
		return it.Width*photoAspect + notePadding + lines*lineHeight
	}
	if lines < 1 {
		lines = 1
	}
	return notePadding*2 + lines*lineHeight
}

// WrapCount returns how many lines text occupies at the given pixel width.
func WrapCount(text string, width float64) int {
	if text == "" {
		return 0
	}
	perLine := int(width / charWidth)
	if perLine < 1 {
		perLine = 1
	}
	n := 0
	for _, line := range splitLines(text) {
		l := len([]rune(line))
		if l == 0 {
			n++
			continue
		}
		n += 1 + (l-1)/perLine
	}
	return n
}

// ── angles ────────────────────────────────────────────────

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Angle returns the direction from center to p in radians.
func Angle(center, p domain.Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

func Distance(a, b domain.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
