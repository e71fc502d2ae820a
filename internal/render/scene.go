package render

import (
	"math"
	"sort"

	"corkboard/internal/domain"
)

// ItemView is an item positioned for drawing.
type ItemView struct {
	Item     domain.Item
	Frame    Rect
	Text     string
	Selected bool
}

// Scene is a full projection of the board, items in stacking order.
type Scene struct {
	Items  []ItemView
	Paths  []Path
	Bounds Rect
}

// Project lays out the board. Items are sorted by zIndex (stable, so ties
// keep insertion order) and connections are resolved through geo. When geo
// is nil the stored fields are used.
func Project(state domain.BoardState, geo GeometryProvider, selected map[string]bool) Scene {
	layout := NewLayoutGeometry(state.Items, nil)
	if geo == nil {
		geo = layout
	}

	sc := Scene{Items: make([]ItemView, 0, len(state.Items))}
	for _, it := range state.Items {
		frame, _ := layout.Frame(it.ID)
		sc.Items = append(sc.Items, ItemView{
			Item:     it,
			Frame:    frame,
			Text:     PlainText(it.Content),
			Selected: selected[it.ID],
		})
		sc.Bounds = sc.Bounds.Union(RotatedBounds(frame, it.Rotation))
	}
	sort.SliceStable(sc.Items, func(i, j int) bool {
		return sc.Items[i].Item.ZIndex < sc.Items[j].Item.ZIndex
	})

	sc.Paths = ConnectionPaths(state.Connections, geo)
	for _, p := range sc.Paths {
		sc.Bounds = sc.Bounds.Union(pathBounds(p))
	}
	return sc
}

func pathBounds(p Path) Rect {
	minX, minY := p.Start.X, p.Start.Y
	maxX, maxY := minX, minY
	for _, pt := range p.Sample(16) {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
