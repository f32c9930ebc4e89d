package fill

import (
	"image"

	"designpad/raster"
)

// RenderMask rasterizes a region as a bounding-box-sized RGBA image: every
// masked pixel gets the fill color at full opacity, every other pixel stays
// fully transparent. The result is returned as an inline PNG data URI, ready
// to be stored on a fill layer or regenerated for a recolor.
func RenderMask(r Region, fillColor string) (string, error) {
	c, err := raster.ParseHexColor(fillColor)
	if err != nil {
		return "", err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Bounds.Dx(), r.Bounds.Dy()))
	for _, off := range r.Mask {
		img.Pix[off+0] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = 0xff
	}
	data, err := raster.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return raster.ToDataURI(data), nil
}

// Recolor re-renders an existing mask in a new color without re-running
// segmentation. The caller applies the result to the layer through a
// FillPatch.
func Recolor(bounds image.Rectangle, mask []int, fillColor string) (string, error) {
	return RenderMask(Region{Bounds: bounds, Mask: mask}, fillColor)
}
