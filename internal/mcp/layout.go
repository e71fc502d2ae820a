package mcpserver

import (
	"math"
	"sort"

	"corkboard/internal/domain"
	"corkboard/internal/render"
)

const (
	GridSize = 20.0
	Padding  = 40.0 // clears the ±15px placement jitter on both sides
	MaxRowW  = 1600.0
)

// LayoutEngine picks free spots on the board so that items pinned by an
// agent without coordinates don't land on top of existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

func intersects(a, b render.Rect) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X &&
		a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// occupied returns the rotated bounds of every item.
func occupied(items []domain.Item) []render.Rect {
	geo := render.NewLayoutGeometry(items, nil)
	rects := make([]render.Rect, 0, len(items))
	for _, it := range items {
		if r, ok := geo.Bounds(it.ID); ok {
			rects = append(rects, r)
		}
	}
	return rects
}

// NextPosition finds the first grid position, scanning rows top to bottom,
// where a w×h item clears every existing item by the padding.
func (le *LayoutEngine) NextPosition(items []domain.Item, w, h float64) domain.Point {
	taken := occupied(items)
	if len(taken) == 0 {
		return domain.Point{X: le.padding, Y: le.padding}
	}

	candidate := render.Rect{W: w, H: h}
	for y := le.padding; y < 100000; y += le.gridSize {
		for x := le.padding; x+w <= le.maxRowW; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			overlaps := false
			for _, occ := range taken {
				padded := render.Rect{
					X: occ.X - le.padding,
					Y: occ.Y - le.padding,
					W: occ.W + le.padding*2,
					H: occ.H + le.padding*2,
				}
				if intersects(candidate, padded) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return domain.Point{X: candidate.X, Y: candidate.Y}
			}
		}
	}

	// Fallback: below everything.
	maxY := 0.0
	for _, r := range taken {
		maxY = math.Max(maxY, r.Y+r.H)
	}
	return domain.Point{X: le.padding, Y: le.snap(maxY + le.padding)}
}

// Arrange lays items out in rows starting at (startX, startY), in stacking
// order, and returns the new top-left corner of each item by id.
func (le *LayoutEngine) Arrange(items []domain.Item, startX, startY float64) map[string]domain.Point {
	sorted := append([]domain.Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ZIndex < sorted[j].ZIndex })

	out := make(map[string]domain.Point, len(sorted))
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	for _, it := range sorted {
		h := render.EstimateHeight(it)
		if x > le.snap(startX) && x+it.Width > le.maxRowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out[it.ID] = domain.Point{X: x, Y: y}
		rowHeight = math.Max(rowHeight, h)
		x += le.snap(it.Width + le.padding)
	}
	return out
}
