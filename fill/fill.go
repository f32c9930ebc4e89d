// Package fill turns one pointer click on a template raster into a bounded,
// re-colorable fill layer. It segments the 4-connected region of non-
// transparent pixels around the seed, rasterizes it in the requested color,
// and records the region's pixel mask so the color can be changed later
// without re-running segmentation.
package fill

import (
	"image"

	"designpad/core"
)

// Threshold is the minimal alpha for a pixel to join a region. Any nonzero
// alpha qualifies, so anti-aliased edge pixels are included.
const Threshold = 1

// Region is a connected set of raster pixels. Bounds is the tight bounding
// box in canvas coordinates; Mask holds the byte offset of every region pixel
// relative to the bounding box's local frame (row-major index times 4).
type Region struct {
	Bounds image.Rectangle
	Mask   []int
}

// Empty reports whether the region contains no pixels.
func (r Region) Empty() bool { return len(r.Mask) == 0 }

// Trace flood-fills the 4-connected region around the seed in an RGBA raster
// of width w and height h (row-major, 4 bytes per pixel). A pixel joins the
// region iff its alpha is at least Threshold. Diagonal neighbors never
// connect. Seeding a pixel below the threshold, or outside the raster,
// returns an empty region.
func Trace(rgba []byte, w, h, seedX, seedY int) Region {
	if w <= 0 || h <= 0 || seedX < 0 || seedX >= w || seedY < 0 || seedY >= h {
		return Region{}
	}
	if alphaAt(rgba, w, seedX, seedY) < Threshold {
		return Region{}
	}

	// Iterative, stack-based traversal: large regions must not blow the call
	// stack. Visited is tracked per byte offset, separately from membership.
	visited := make(map[int]struct{}, 64)
	var pixels []int // canvas-frame byte offsets of region pixels

	type point struct{ x, y int }
	stack := []point{{seedX, seedY}}
	visited[(seedY*w+seedX)*4] = struct{}{}

	minX, minY := seedX, seedY
	maxX, maxY := seedX, seedY

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pixels = append(pixels, (p.y*w+p.x)*4)
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}

		// Cardinal neighbors only.
		for _, n := range [4]point{{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1}} {
			if n.x < 0 || n.x >= w || n.y < 0 || n.y >= h {
				continue
			}
			off := (n.y*w + n.x) * 4
			if _, seen := visited[off]; seen {
				continue
			}
			visited[off] = struct{}{}
			if rgba[off+3] >= Threshold {
				stack = append(stack, n)
			}
		}
	}

	bounds := image.Rect(minX, minY, maxX+1, maxY+1)
	bw := bounds.Dx()

	// Re-index every pixel offset into the bounding box's local frame.
	mask := make([]int, len(pixels))
	for i, off := range pixels {
		px := off / 4
		x := px%w - minX
		y := px/w - minY
		mask[i] = (y*bw + x) * 4
	}
	return Region{Bounds: bounds, Mask: mask}
}

func alphaAt(rgba []byte, w, x, y int) byte {
	return rgba[(y*w+x)*4+3]
}

// NewLayer rasterizes a region in the given fill color and wraps it in a fill
// layer positioned at the region's bounding box origin. Returns false when
// the region is empty: clicking outside any template region produces no
// layer.
func NewLayer(r Region, color string) (core.Layer, bool) {
	if r.Empty() {
		return core.Layer{}, false
	}
	src, err := RenderMask(r, color)
	if err != nil {
		return core.Layer{}, false
	}
	bounds := r.Bounds
	return core.Layer{
		Type:    core.LayerFill,
		Name:    "Fill",
		Visible: true,
		Opacity: 1,
		X:       float64(bounds.Min.X),
		Y:       float64(bounds.Min.Y),
		ScaleX:  1,
		ScaleY:  1,
		Fill: &core.FillProps{
			Color: color,
			Path: [4]float64{
				float64(bounds.Min.X), float64(bounds.Min.Y),
				float64(bounds.Dx()), float64(bounds.Dy()),
			},
			Source:    src,
			PixelMask: r.Mask,
		},
	}, true
}
