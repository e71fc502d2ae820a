package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"corkboard/internal/domain"
)

var (
	cork      = color.RGBA{R: 200, G: 162, B: 107, A: 255}
	noteFill  = color.RGBA{R: 255, G: 245, B: 157, A: 255}
	photoFill = color.RGBA{R: 253, G: 253, B: 253, A: 255}
	yarn      = color.RGBA{R: 176, G: 58, B: 46, A: 255}
	ink       = color.RGBA{R: 33, G: 33, B: 33, A: 255}
	highlight = color.RGBA{R: 30, G: 136, B: 229, A: 255}
)

// ErrEmptyScene is returned when there is nothing on the board to draw.
var ErrEmptyScene = errors.New("nothing to export")

// PNG rasterizes the scene and writes it to w.
func PNG(w io.Writer, sc Scene, padding float64) error {
	if len(sc.Items) == 0 && len(sc.Paths) == 0 {
		return ErrEmptyScene
	}
	b := sc.Bounds
	width := int(b.W + 2*padding)
	height := int(b.H + 2*padding)
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(cork)
	dc.Clear()
	dc.Translate(padding-b.X, padding-b.Y)

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, v := range sc.Items {
		drawItemPNG(dc, v)
	}
	for _, p := range sc.Paths {
		drawPathPNG(dc, p)
	}
	return dc.EncodePNG(w)
}

func drawItemPNG(dc *gg.Context, v ItemView) {
	f := v.Frame
	c := f.Center()

	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(Radians(v.Item.Rotation), c.X, c.Y)

	dc.DrawRectangle(f.X, f.Y, f.W, f.H)
	if v.Item.Type == domain.ItemTypePhoto {
		dc.SetColor(photoFill)
	} else {
		dc.SetColor(noteFill)
	}
	dc.FillPreserve()
	if v.Selected {
		dc.SetColor(highlight)
		dc.SetLineWidth(2)
	} else {
		dc.SetColor(ink)
		dc.SetLineWidth(0.5)
	}
	dc.Stroke()

	textY := f.Y + notePadding/2
	if v.Item.Type == domain.ItemTypePhoto {
		imgH := f.W * photoAspect
		if img, err := decodeDataURI(v.Item.Image); err == nil {
			drawImageFit(dc, img, f.X+notePadding/2, f.Y+notePadding/2, f.W-notePadding, imgH-notePadding)
		}
		textY = f.Y + imgH
	}
	dc.SetColor(ink)
	dc.DrawStringWrapped(v.Text, f.X+notePadding/2, textY, 0, 0, f.W-notePadding, 1.4, gg.AlignLeft)
}

func drawPathPNG(dc *gg.Context, p Path) {
	dc.SetColor(yarn)
	dc.SetLineWidth(2)
	dc.MoveTo(p.Start.X, p.Start.Y)
	if p.Type == domain.ConnectionCurved {
		dc.QuadraticTo(p.Control.X, p.Control.Y, p.End.X, p.End.Y)
	} else {
		dc.LineTo(p.End.X, p.End.Y)
	}
	dc.Stroke()

	dc.SetColor(ink)
	dc.DrawCircle(p.Start.X, p.Start.Y, 4)
	dc.DrawCircle(p.End.X, p.End.Y, 4)
	dc.Fill()
}

func drawImageFit(dc *gg.Context, img image.Image, x, y, w, h float64) {
	ib := img.Bounds()
	if ib.Dx() == 0 || ib.Dy() == 0 {
		return
	}
	sx := w / float64(ib.Dx())
	sy := h / float64(ib.Dy())
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(sx, sy)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

// decodeDataURI decodes an inline base64 image. Remote URLs are not fetched.
func decodeDataURI(uri string) (image.Image, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data uri")
	}
	idx := strings.Index(uri, ";base64,")
	if idx < 0 {
		return nil, fmt.Errorf("data uri is not base64")
	}
	raw, err := base64.StdEncoding.DecodeString(uri[idx+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	return img, err
}
