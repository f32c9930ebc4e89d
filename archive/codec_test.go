package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"io"
	"testing"
	"time"

	"designpad/core"
	"designpad/fill"
	"designpad/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURI(t *testing.T, c [4]uint8, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c[0]
		img.Pix[i+1] = c[1]
		img.Pix[i+2] = c[2]
		img.Pix[i+3] = c[3]
	}
	data, err := raster.EncodePNG(img)
	require.NoError(t, err)
	return raster.ToDataURI(data)
}

// fullDocument builds a document containing every layer type, with inline
// rasters on the image, texture and fill layers.
func fullDocument(t *testing.T) core.Document {
	t.Helper()

	region := fill.Trace(func() []byte {
		buf := make([]byte, 2*2*4)
		for i := 3; i < len(buf); i += 4 {
			buf[i] = 0xff
		}
		return buf
	}(), 2, 2, 0, 0)
	fillLayer, ok := fill.NewLayer(region, "#00ffff")
	require.True(t, ok)
	fillLayer.ID = "l-fill"

	return core.Document{
		Name:      "round trip",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		BaseColor: "#ffffff",
		ModelID:   "tmpl-tote-bag",
		Layers: []core.Layer{
			{ID: "l-bg", Type: core.LayerBackground, Name: "Background", Visible: true, Opacity: 1, Background: &core.BackgroundProps{Color: "#fafafa"}},
			{ID: "l-text", Type: core.LayerText, Name: "Title", Visible: true, Opacity: 1, Text: &core.TextProps{Content: "hello", FontFamily: "Inter", FontSize: 32, Align: "center", Color: "#222222"}},
			{ID: "l-img", Type: core.LayerImage, Name: "Photo", Visible: true, Opacity: 0.9, X: 10, Y: 12, Image: &core.ImageProps{Source: pngDataURI(t, [4]uint8{255, 0, 0, 255}, 3, 3), Crop: &core.Rect{X: 0, Y: 0, W: 2, H: 2}}},
			{ID: "l-tex", Type: core.LayerTexture, Name: "Texture", Visible: true, Opacity: 1, Image: &core.ImageProps{Source: pngDataURI(t, [4]uint8{0, 0, 255, 255}, 2, 2), ClipToTemplate: true}},
			{ID: "l-remote", Type: core.LayerImage, Name: "Remote", Visible: true, Opacity: 1, Image: &core.ImageProps{Source: "https://cdn.example.com/a.png"}},
			{ID: "l-rect", Type: core.LayerRect, Name: "Rect", Visible: true, Opacity: 1, Shape: &core.ShapeProps{Width: 40, Height: 20, Fill: "#00ff00", CornerRadius: 4}},
			{ID: "l-circle", Type: core.LayerCircle, Name: "Circle", Visible: true, Opacity: 1, Shape: &core.ShapeProps{Width: 30, Height: 30, Fill: "#0000ff"}},
			{ID: "l-star", Type: core.LayerStar, Name: "Star", Visible: true, Opacity: 1, Shape: &core.ShapeProps{Width: 30, Height: 30, Fill: "#ffff00", Points: 5, InnerRatio: 0.5}},
			{ID: "l-line", Type: core.LayerLine, Name: "Line", Visible: true, Opacity: 1, Line: &core.LineProps{Points: []float64{0, 0, 50, 50}, Stroke: "#000000", StrokeWidth: 2, Dash: []float64{4, 2}, ArrowEnd: true}},
			{ID: "l-brush", Type: core.LayerBrush, Name: "Paint", Visible: true, Opacity: 1, Brush: &core.BrushProps{Strokes: []core.BrushStroke{
				{Points: []float64{1, 1, 2, 2}, Size: 6, Color: "#333333", Hardness: 0.7, Opacity: 1, Flow: 0.9, BlendMode: "normal"},
			}}},
			fillLayer,
		},
	}
}

func decodedPixels(t *testing.T, dataURI string) []byte {
	t.Helper()
	data, err := raster.FromDataURI(dataURI)
	require.NoError(t, err)
	img, err := raster.DecodePNG(data)
	require.NoError(t, err)
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}
	return rgba.Pix
}

func TestPackUnpackRoundTrip(t *testing.T) {
	doc := fullDocument(t)

	data, err := Pack(doc)
	require.NoError(t, err)

	got, err := Unpack(data)
	require.NoError(t, err)

	assert.Equal(t, doc.Name, got.Name)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
	assert.False(t, got.ModifiedAt.IsZero(), "pack refreshes the modification timestamp")
	assert.Equal(t, doc.BaseColor, got.BaseColor)
	assert.Equal(t, doc.ModelID, got.ModelID)
	require.Len(t, got.Layers, len(doc.Layers))

	for i, want := range doc.Layers {
		l := got.Layers[i]
		assert.Equal(t, want.ID, l.ID)
		assert.Equal(t, want.Type, l.Type)
		switch want.Type {
		case core.LayerImage, core.LayerTexture:
			if raster.IsDataURI(want.Image.Source) {
				assert.Equal(t, decodedPixels(t, want.Image.Source), decodedPixels(t, l.Image.Source),
					"layer %s raster content survives the round trip", want.ID)
			} else {
				assert.Equal(t, want.Image.Source, l.Image.Source, "remote references pass through untouched")
			}
		case core.LayerFill:
			assert.Equal(t, want.Fill.Color, l.Fill.Color)
			assert.Equal(t, want.Fill.Path, l.Fill.Path)
			assert.Equal(t, want.Fill.PixelMask, l.Fill.PixelMask)
			assert.Equal(t, decodedPixels(t, want.Fill.Source), decodedPixels(t, l.Fill.Source))
		default:
			assert.Equal(t, want, l)
		}
	}
}

func TestPackExtractsRastersUnderDeterministicPaths(t *testing.T) {
	doc := fullDocument(t)
	data, err := Pack(doc)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["manifest.json"])
	assert.True(t, names["images/l-img.png"])
	assert.True(t, names["images/l-tex.png"])
	assert.True(t, names["images/fill-l-fill.png"])
	assert.False(t, names["images/l-remote.png"], "remote references are not extracted")

	// The manifest must reference the entries by path, with no inline rasters left.
	var m struct {
		Layers []core.Layer `json:"layers"`
	}
	for _, f := range zr.File {
		if f.Name != "manifest.json" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(rc).Decode(&m))
		rc.Close()
	}
	for _, l := range m.Layers {
		switch l.ID {
		case "l-img":
			assert.Equal(t, "images/l-img.png", l.Image.Source)
		case "l-fill":
			assert.Equal(t, "images/fill-l-fill.png", l.Fill.Source)
		case "l-remote":
			assert.Equal(t, "https://cdn.example.com/a.png", l.Image.Source)
		}
	}
}

func TestPackDoesNotMutateInput(t *testing.T) {
	doc := fullDocument(t)
	src := doc.Layers[2].Image.Source
	_, err := Pack(doc)
	require.NoError(t, err)
	assert.Equal(t, src, doc.Layers[2].Image.Source)
}

func TestUnpackLegacyFlatDocument(t *testing.T) {
	doc := fullDocument(t)
	legacy, err := json.Marshal(map[string]any{
		"version":    Version,
		"name":       doc.Name,
		"createdAt":  doc.CreatedAt,
		"modifiedAt": doc.CreatedAt,
		"modelId":    doc.ModelID,
		"baseColor":  doc.BaseColor,
		"layers":     doc.Layers,
	})
	require.NoError(t, err)

	got, err := Unpack(legacy)
	require.NoError(t, err)
	assert.Equal(t, doc.ModelID, got.ModelID)
	require.Len(t, got.Layers, len(doc.Layers))
	// Legacy rasters are inlined already and stay that way.
	assert.Equal(t, doc.Layers[2].Image.Source, got.Layers[2].Image.Source)
}

func TestUnpackLegacyMissingFields(t *testing.T) {
	cases := map[string]map[string]any{
		"no version": {"modelId": "m", "layers": []core.Layer{}},
		"no modelId": {"version": Version, "layers": []core.Layer{}},
		"no layers":  {"version": Version, "modelId": "m"},
	}
	for name, m := range cases {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		_, err = Unpack(data)
		assert.ErrorIs(t, err, ErrInvalidManifest, "case %q", name)
	}
}

func TestUnpackGarbageIsNotArchive(t *testing.T) {
	_, err := Unpack([]byte("not a container and not json"))
	assert.ErrorIs(t, err, ErrNotArchive)
}

func TestUnpackContainerWithoutManifest(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("images/orphan.png")
	require.NoError(t, err)
	_, err = w.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Unpack(buf.Bytes())
	assert.ErrorIs(t, err, ErrInvalidManifest)
	assert.NotErrorIs(t, err, ErrNotArchive, "a recognized container must not be reported as unrecognized")
}

func TestUnpackContainerWithMissingImageEntry(t *testing.T) {
	doc := fullDocument(t)
	data, err := Pack(doc)
	require.NoError(t, err)

	// Rebuild the container without one referenced image entry.
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if f.Name == "images/l-img.png" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		_, err = io.Copy(w, rc)
		require.NoError(t, err)
		rc.Close()
	}
	require.NoError(t, zw.Close())

	_, err = Unpack(buf.Bytes())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotArchive)
}
