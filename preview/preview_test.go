package preview

import (
	"testing"

	"designpad/core"
	"designpad/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePaintsBaseColor(t *testing.T) {
	doc := core.Document{BaseColor: "#ff0000"}
	img := Compose(doc, 8, 8)

	r, g, b, a := img.At(4, 4).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestComposeSkipsHiddenLayers(t *testing.T) {
	doc := core.Document{
		BaseColor: "#ffffff",
		Layers: []core.Layer{
			{Type: core.LayerRect, Visible: false, Opacity: 1, Shape: &core.ShapeProps{Width: 8, Height: 8, Fill: "#000000"}},
		},
	}
	img := Compose(doc, 8, 8)
	r, _, _, _ := img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r, "hidden layers are not painted")
}

func TestComposeRectLayer(t *testing.T) {
	doc := core.Document{
		BaseColor: "#ffffff",
		Layers: []core.Layer{
			{Type: core.LayerRect, Visible: true, Opacity: 1, X: 2, Y: 2, Shape: &core.ShapeProps{Width: 4, Height: 4, Fill: "#0000ff"}},
		},
	}
	img := Compose(doc, 8, 8)

	r, _, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0), r)

	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "outside the rect stays base color")
}

func TestThumbnailBoundsLongestEdge(t *testing.T) {
	doc := core.Document{BaseColor: "#336699"}

	uri, err := Thumbnail(doc, 1080, 540)
	require.NoError(t, err)

	data, err := raster.FromDataURI(uri)
	require.NoError(t, err)
	img, err := raster.DecodePNG(data)
	require.NoError(t, err)

	assert.Equal(t, ThumbnailSize, img.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, img.Bounds().Dy())
}

func TestThumbnailSmallCanvasKeepsSize(t *testing.T) {
	doc := core.Document{BaseColor: "#336699"}
	uri, err := Thumbnail(doc, 64, 64)
	require.NoError(t, err)

	data, err := raster.FromDataURI(uri)
	require.NoError(t, err)
	img, err := raster.DecodePNG(data)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}
