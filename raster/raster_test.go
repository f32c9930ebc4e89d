package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, c)

	c, err = ParseHexColor("0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0xff}, c)

	c, err = ParseHexColor("#f00")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}, c)

	for _, bad := range []string{"", "#12345", "#gggggg", "red"} {
		_, err := ParseHexColor(bad)
		assert.ErrorIs(t, err, ErrBadColor, "input %q", bad)
	}
}

func TestDataURIRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Pix[3] = 0xff

	data, err := EncodePNG(img)
	require.NoError(t, err)

	uri := ToDataURI(data)
	assert.True(t, IsDataURI(uri))

	got, err := FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFromDataURIRejectsOtherSources(t *testing.T) {
	for _, s := range []string{"https://cdn.example.com/a.png", "images/l1.png", ""} {
		_, err := FromDataURI(s)
		assert.ErrorIs(t, err, ErrNotDataURI, "input %q", s)
	}
}
