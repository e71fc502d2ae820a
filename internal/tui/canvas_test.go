package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corkboard/internal/domain"
	"corkboard/internal/interaction"
	"corkboard/internal/render"
)

func TestViewport_RoundTrip(t *testing.T) {
	for _, vp := range []viewport{{}, {panX: 7, panY: -3}} {
		for _, c := range [][2]int{{0, 0}, {12, 5}, {79, 22}} {
			col, row := vp.toCell(vp.toBoard(c[0], c[1]))
			assert.Equal(t, c[0], col)
			assert.Equal(t, c[1], row)
		}
	}
}

func TestBoxFor_MinimumSize(t *testing.T) {
	b := viewport{}.boxFor(render.Rect{X: 16, Y: 16, W: 1, H: 1})
	assert.Equal(t, box{left: 2, top: 1, right: 6, bottom: 3}, b)
}

func testScene() render.Scene {
	state := domain.BoardState{Items: []domain.Item{
		{ID: "note", Type: domain.ItemTypeNote, X: 80, Y: 64, Width: 200, ZIndex: 1, Content: "suspect"},
		{ID: "photo", Type: domain.ItemTypePhoto, X: 400, Y: 64, Width: 160, ZIndex: 2, Image: "https://example.com/a.png"},
	}}
	return render.Project(state, render.NewLayoutGeometry(state.Items, nil), nil)
}

func TestHitTest(t *testing.T) {
	sc := testScene()
	vp := viewport{}
	nb := vp.boxFor(sc.Items[0].Frame)
	pb := vp.boxFor(sc.Items[1].Frame)

	cases := []struct {
		name     string
		col, row int
		target   interaction.Target
		id       string
	}{
		{"rotate handle", nb.right, nb.top, interaction.TargetRotateHandle, "note"},
		{"note text", nb.left + 2, nb.top + 1, interaction.TargetEditableText, "note"},
		{"note border", nb.left, nb.top + 1, interaction.TargetBody, "note"},
		{"photo interior", pb.left + 2, pb.top + 1, interaction.TargetBody, "photo"},
		{"background", 0, 0, interaction.TargetBackground, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, id := hitTest(sc, vp, tc.col, tc.row)
			assert.Equal(t, tc.target, target)
			assert.Equal(t, tc.id, id)
		})
	}
}

func TestDrawScene(t *testing.T) {
	sc := testScene()
	g := drawScene(sc, viewport{}, 80, 20)
	out := strings.Join(g.plain(), "\n")

	assert.Contains(t, out, "suspect")
	assert.Contains(t, out, "↻")
	assert.Contains(t, out, "┌")

	require.Len(t, g.lines(), 20)
}

func TestDrawScene_ClipsOffscreen(t *testing.T) {
	g := drawScene(testScene(), viewport{panX: 500, panY: 500}, 10, 4)
	for _, line := range g.plain() {
		assert.Equal(t, 10, len([]rune(line)))
		assert.Empty(t, strings.TrimSpace(line))
	}
}
