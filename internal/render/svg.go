package render

import (
	"fmt"
	"html"
	"strings"

	"corkboard/internal/domain"
)

const (
	stringColor = "#b03a2e"
	noteColor   = "#fff59d"
	photoColor  = "#fdfdfd"
	corkColor   = "#c8a26b"
)

// SVG renders the scene as a standalone SVG document.
func SVG(sc Scene, padding float64) []byte {
	b := sc.Bounds
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`,
		num(b.X-padding), num(b.Y-padding), num(b.W+2*padding), num(b.H+2*padding))
	fmt.Fprintf(&sb, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
		num(b.X-padding), num(b.Y-padding), num(b.W+2*padding), num(b.H+2*padding), corkColor)

	for _, v := range sc.Items {
		writeItem(&sb, v)
	}
	for _, p := range sc.Paths {
		fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`, p.SVG(), stringColor)
	}
	sb.WriteString("</svg>")
	return []byte(sb.String())
}

func writeItem(sb *strings.Builder, v ItemView) {
	f := v.Frame
	c := f.Center()
	fill := noteColor
	if v.Item.Type == domain.ItemTypePhoto {
		fill = photoColor
	}
	stroke := "none"
	if v.Selected {
		stroke = "#1e88e5"
	}
	fmt.Fprintf(sb, `<g data-id="%s" transform="rotate(%s %s %s)">`,
		html.EscapeString(v.Item.ID), num(v.Item.Rotation), num(c.X), num(c.Y))
	fmt.Fprintf(sb, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s"/>`,
		num(f.X), num(f.Y), num(f.W), num(f.H), fill, stroke)

	textY := f.Y + notePadding
	if v.Item.Type == domain.ItemTypePhoto {
		imgH := f.W * photoAspect
		if v.Item.Image != "" {
			fmt.Fprintf(sb, `<image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid slice"/>`,
				html.EscapeString(v.Item.Image), num(f.X+notePadding/2), num(f.Y+notePadding/2), num(f.W-notePadding), num(imgH-notePadding))
		}
		textY = f.Y + imgH + notePadding/2
	}
	for i, line := range Wrap(v.Text, int((f.W-notePadding)/charWidth)) {
		fmt.Fprintf(sb, `<text x="%s" y="%s" font-family="monospace" font-size="13">%s</text>`,
			num(f.X+notePadding/2), num(textY+float64(i)*lineHeight+lineHeight/2), html.EscapeString(line))
	}
	sb.WriteString("</g>")
}
