package render

import (
	"fmt"

	"corkboard/internal/domain"
)

const (
	baseDrop  = 50.0
	dropRatio = 0.2
)

// Path is the drawable shape of one connection.
// Control is only meaningful for curved connections.
type Path struct {
	ConnectionID string                `json:"connectionId,omitempty"`
	From         string                `json:"from"`
	To           string                `json:"to"`
	Type         domain.ConnectionType `json:"type"`
	Start        domain.Point          `json:"start"`
	End          domain.Point          `json:"end"`
	Control      domain.Point          `json:"control"`
}

// Drop is the sag of a curved string spanning a to b.
func Drop(a, b domain.Point) float64 {
	return baseDrop + dropRatio*Distance(a, b)
}

// PathFor resolves a single connection. It returns false when either end
// no longer resolves to an item.
func PathFor(c domain.Connection, geo GeometryProvider) (Path, bool) {
	a, ok := geo.Center(c.From)
	if !ok {
		return Path{}, false
	}
	b, ok := geo.Center(c.To)
	if !ok {
		return Path{}, false
	}
	p := Path{ConnectionID: c.ID, From: c.From, To: c.To, Type: c.Type, Start: a, End: b}
	if c.Type == domain.ConnectionCurved {
		p.Control = domain.Point{X: (a.X + b.X) / 2, Y: (a.Y+b.Y)/2 + Drop(a, b)}
	}
	return p, true
}

// ConnectionPaths resolves every connection, silently skipping dangling ones.
func ConnectionPaths(conns []domain.Connection, geo GeometryProvider) []Path {
	paths := make([]Path, 0, len(conns))
	for _, c := range conns {
		if p, ok := PathFor(c, geo); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// PathsTouching resolves only the connections attached to id, for live
// redraw while that item is dragged or rotated.
func PathsTouching(conns []domain.Connection, geo GeometryProvider, id string) []Path {
	var paths []Path
	for _, c := range conns {
		if !c.Touches(id) {
			continue
		}
		if p, ok := PathFor(c, geo); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// SVG returns the path data attribute for the connection.
func (p Path) SVG() string {
	if p.Type == domain.ConnectionCurved {
		return fmt.Sprintf("M %s %s Q %s %s %s %s",
			num(p.Start.X), num(p.Start.Y), num(p.Control.X), num(p.Control.Y), num(p.End.X), num(p.End.Y))
	}
	return fmt.Sprintf("M %s %s L %s %s", num(p.Start.X), num(p.Start.Y), num(p.End.X), num(p.End.Y))
}

// Sample returns n+1 evenly spaced points along the path, endpoints included.
func (p Path) Sample(n int) []domain.Point {
	if n < 1 {
		n = 1
	}
	pts := make([]domain.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, p.At(t))
	}
	return pts
}

// At evaluates the path at t in [0, 1].
func (p Path) At(t float64) domain.Point {
	if p.Type != domain.ConnectionCurved {
		return domain.Point{
			X: p.Start.X + (p.End.X-p.Start.X)*t,
			Y: p.Start.Y + (p.End.Y-p.Start.Y)*t,
		}
	}
	u := 1 - t
	return domain.Point{
		X: u*u*p.Start.X + 2*u*t*p.Control.X + t*t*p.End.X,
		Y: u*u*p.Start.Y + 2*u*t*p.Control.Y + t*t*p.End.Y,
	}
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
