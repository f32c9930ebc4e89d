// Package preview produces derived preview assets for a document. It is a
// deliberately naive compositor — enough for list-view thumbnails — and is
// not the renderer that draws documents to screen.
package preview

import (
	"image"
	"image/draw"

	"designpad/core"
	"designpad/raster"

	"github.com/anthonynsimon/bild/transform"
)

// ThumbnailSize bounds the longest edge of a generated thumbnail.
const ThumbnailSize = 256

// Compose flattens a document onto an opaque canvas of the given size. Layers
// are painted in sequence order; hidden layers are skipped. Raster-backed
// layers (image, texture, fill) are drawn at their position; vector layers
// other than rect are left to the real renderer and skipped here.
func Compose(doc core.Document, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(canvas, canvas.Bounds(), doc.BaseColor)

	for _, l := range doc.Layers {
		if !l.Visible || l.Opacity <= 0 {
			continue
		}
		switch l.Type {
		case core.LayerBackground:
			if l.Background != nil {
				fillRect(canvas, canvas.Bounds(), l.Background.Color)
			}
		case core.LayerImage, core.LayerTexture:
			if l.Image != nil {
				drawSource(canvas, l.Image.Source, l.X, l.Y)
			}
		case core.LayerFill:
			if l.Fill != nil {
				drawSource(canvas, l.Fill.Source, l.X, l.Y)
			}
		case core.LayerRect:
			if l.Shape != nil {
				r := image.Rect(int(l.X), int(l.Y), int(l.X+l.Shape.Width), int(l.Y+l.Shape.Height))
				fillRect(canvas, r.Intersect(canvas.Bounds()), l.Shape.Fill)
			}
		}
	}
	return canvas
}

// Thumbnail composites the document and scales it down so the longest edge is
// at most ThumbnailSize, returning an inline PNG data URI for the design's
// list-view metadata.
func Thumbnail(doc core.Document, width, height int) (string, error) {
	img := Compose(doc, width, height)

	tw, th := width, height
	if tw >= th && tw > ThumbnailSize {
		th = th * ThumbnailSize / tw
		tw = ThumbnailSize
	} else if th > tw && th > ThumbnailSize {
		tw = tw * ThumbnailSize / th
		th = ThumbnailSize
	}
	scaled := transform.Resize(img, tw, th, transform.Linear)

	data, err := raster.EncodePNG(scaled)
	if err != nil {
		return "", err
	}
	return raster.ToDataURI(data), nil
}

func fillRect(dst *image.RGBA, r image.Rectangle, hex string) {
	c, err := raster.ParseHexColor(hex)
	if err != nil {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func drawSource(dst *image.RGBA, source string, x, y float64) {
	data, err := raster.FromDataURI(source)
	if err != nil {
		return // remote or path reference, nothing to composite locally
	}
	img, err := raster.DecodePNG(data)
	if err != nil {
		return
	}
	at := image.Pt(int(x), int(y))
	draw.Draw(dst, img.Bounds().Add(at.Sub(img.Bounds().Min)), img, img.Bounds().Min, draw.Over)
}
