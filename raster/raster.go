// Package raster holds the small PNG and color plumbing shared by the fill,
// archive and preview packages. Rasters travel through the system either as
// raw bytes or as data URIs embedded in layer fields.
package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
)

const pngURIPrefix = "data:image/png;base64,"

var (
	// ErrNotDataURI is returned when a layer source is not an inline raster.
	ErrNotDataURI = errors.New("raster: not a data URI")

	// ErrBadColor is returned for colors that are not #rgb or #rrggbb hex.
	ErrBadColor = errors.New("raster: invalid hex color")
)

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG bytes into an image.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: decode png: %w", err)
	}
	return img, nil
}

// ToDataURI wraps PNG bytes in an inline data URI.
func ToDataURI(data []byte) string {
	return pngURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether a layer source field is an inline raster.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// FromDataURI extracts the raw bytes of an inline raster.
func FromDataURI(s string) ([]byte, error) {
	if !IsDataURI(s) {
		return nil, ErrNotDataURI
	}
	i := strings.Index(s, ",")
	if i < 0 {
		return nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(s[i+1:])
	if err != nil {
		return nil, fmt.Errorf("raster: decode data URI: %w", err)
	}
	return data, nil
}

// ParseHexColor parses #rgb or #rrggbb into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.RGBA{}, ErrBadColor
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, ErrBadColor
		}
	default:
		return color.RGBA{}, ErrBadColor
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
