package editor

import "designpad/core"

// LayerPatch is a typed partial update against one layer. Each patch kind
// names the layer variant it applies to; applying a patch to a layer of a
// different variant is a no-op, reported by the false return.
//
// Fields are pointers so that the zero value of a patch changes nothing.
type LayerPatch interface {
	apply(l *core.Layer) bool
}

// BasePatch updates the attributes shared by every layer variant.
type BasePatch struct {
	Name     *string
	Visible  *bool
	Locked   *bool
	Opacity  *float64
	X        *float64
	Y        *float64
	Rotation *float64
	ScaleX   *float64
	ScaleY   *float64
}

func (p BasePatch) apply(l *core.Layer) bool {
	setString(&l.Name, p.Name)
	setBool(&l.Visible, p.Visible)
	setBool(&l.Locked, p.Locked)
	setFloat(&l.Opacity, p.Opacity)
	setFloat(&l.X, p.X)
	setFloat(&l.Y, p.Y)
	setFloat(&l.Rotation, p.Rotation)
	setFloat(&l.ScaleX, p.ScaleX)
	setFloat(&l.ScaleY, p.ScaleY)
	return true
}

type BackgroundPatch struct {
	Color *string
}

func (p BackgroundPatch) apply(l *core.Layer) bool {
	if l.Type != core.LayerBackground || l.Background == nil {
		return false
	}
	setString(&l.Background.Color, p.Color)
	return true
}

type TextPatch struct {
	Content    *string
	FontFamily *string
	FontSize   *float64
	FontWeight *string
	Align      *string
	Decoration *string
	Color      *string
}

func (p TextPatch) apply(l *core.Layer) bool {
	if l.Type != core.LayerText || l.Text == nil {
		return false
	}
	setString(&l.Text.Content, p.Content)
	setString(&l.Text.FontFamily, p.FontFamily)
	setFloat(&l.Text.FontSize, p.FontSize)
	setString(&l.Text.FontWeight, p.FontWeight)
	setString(&l.Text.Align, p.Align)
	setString(&l.Text.Decoration, p.Decoration)
	setString(&l.Text.Color, p.Color)
	return true
}

// ImagePatch applies to both image and texture layers.
type ImagePatch struct {
	Source         *string
	Crop           *core.Rect
	ClipToTemplate *bool
}

func (p ImagePatch) apply(l *core.Layer) bool {
	if (l.Type != core.LayerImage && l.Type != core.LayerTexture) || l.Image == nil {
		return false
	}
	setString(&l.Image.Source, p.Source)
	if p.Crop != nil {
		crop := *p.Crop
		l.Image.Crop = &crop
	}
	setBool(&l.Image.ClipToTemplate, p.ClipToTemplate)
	return true
}

// ShapePatch applies to rect, circle and star layers.
type ShapePatch struct {
	Width        *float64
	Height       *float64
	Fill         *string
	Stroke       *string
	StrokeWidth  *float64
	CornerRadius *float64
	Points       *int
	InnerRatio   *float64
}

func (p ShapePatch) apply(l *core.Layer) bool {
	switch l.Type {
	case core.LayerRect, core.LayerCircle, core.LayerStar:
	default:
		return false
	}
	if l.Shape == nil {
		return false
	}
	setFloat(&l.Shape.Width, p.Width)
	setFloat(&l.Shape.Height, p.Height)
	setString(&l.Shape.Fill, p.Fill)
	setString(&l.Shape.Stroke, p.Stroke)
	setFloat(&l.Shape.StrokeWidth, p.StrokeWidth)
	setFloat(&l.Shape.CornerRadius, p.CornerRadius)
	if p.Points != nil {
		l.Shape.Points = *p.Points
	}
	setFloat(&l.Shape.InnerRatio, p.InnerRatio)
	return true
}

type LinePatch struct {
	Points      []float64
	Stroke      *string
	StrokeWidth *float64
	Dash        []float64
	ArrowStart  *bool
	ArrowEnd    *bool
}

func (p LinePatch) apply(l *core.Layer) bool {
	if l.Type != core.LayerLine || l.Line == nil {
		return false
	}
	if p.Points != nil {
		l.Line.Points = append([]float64(nil), p.Points...)
	}
	setString(&l.Line.Stroke, p.Stroke)
	setFloat(&l.Line.StrokeWidth, p.StrokeWidth)
	if p.Dash != nil {
		l.Line.Dash = append([]float64(nil), p.Dash...)
	}
	setBool(&l.Line.ArrowStart, p.ArrowStart)
	setBool(&l.Line.ArrowEnd, p.ArrowEnd)
	return true
}

// FillPatch recolors a fill layer. Source carries the re-rendered raster for
// the new color; the pixel mask itself never changes.
type FillPatch struct {
	Color  *string
	Source *string
}

func (p FillPatch) apply(l *core.Layer) bool {
	if l.Type != core.LayerFill || l.Fill == nil {
		return false
	}
	setString(&l.Fill.Color, p.Color)
	setString(&l.Fill.Source, p.Source)
	return true
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
