package core

// LayerType discriminates the Layer tagged union.
type LayerType string

const (
	LayerBackground LayerType = "background"
	LayerText       LayerType = "text"
	LayerImage      LayerType = "image"
	LayerTexture    LayerType = "texture"
	LayerRect       LayerType = "rect"
	LayerCircle     LayerType = "circle"
	LayerStar       LayerType = "star"
	LayerLine       LayerType = "line"
	LayerBrush      LayerType = "brush"
	LayerFill       LayerType = "fill"
)

type (
	// Layer is one visually composited element of a design. Exactly one of the
	// variant payload pointers is set, matching Type. Paint order is the
	// position in Document.Layers (first = bottom).
	Layer struct {
		ID       string    `json:"id"`
		Type     LayerType `json:"type"`
		Name     string    `json:"name"`
		Visible  bool      `json:"visible"`
		Locked   bool      `json:"locked"`
		Opacity  float64   `json:"opacity"`
		X        float64   `json:"x"`
		Y        float64   `json:"y"`
		Rotation float64   `json:"rotation"`
		ScaleX   float64   `json:"scaleX"`
		ScaleY   float64   `json:"scaleY"`

		Background *BackgroundProps `json:"background,omitempty"`
		Text       *TextProps       `json:"text,omitempty"`
		Image      *ImageProps      `json:"image,omitempty"`
		Shape      *ShapeProps      `json:"shape,omitempty"`
		Line       *LineProps       `json:"line,omitempty"`
		Brush      *BrushProps      `json:"brush,omitempty"`
		Fill       *FillProps       `json:"fill,omitempty"`
	}

	// BackgroundProps is a solid fill covering the whole canvas.
	BackgroundProps struct {
		Color string `json:"color"`
	}

	TextProps struct {
		Content    string  `json:"content"`
		FontFamily string  `json:"fontFamily"`
		FontSize   float64 `json:"fontSize"`
		FontWeight string  `json:"fontWeight,omitempty"`
		Align      string  `json:"align,omitempty"`
		Decoration string  `json:"decoration,omitempty"`
		Color      string  `json:"color"`
	}

	// ImageProps backs both the image and texture layer types. Source is either
	// an inline data URI, a remote URL, or (inside an archive) an images/ path.
	ImageProps struct {
		Source         string `json:"source"`
		Crop           *Rect  `json:"crop,omitempty"`
		ClipToTemplate bool   `json:"clipToTemplate,omitempty"`
	}

	// ShapeProps backs the rect, circle and star layer types.
	ShapeProps struct {
		Width        float64 `json:"width"`
		Height       float64 `json:"height"`
		Fill         string  `json:"fill"`
		Stroke       string  `json:"stroke,omitempty"`
		StrokeWidth  float64 `json:"strokeWidth,omitempty"`
		CornerRadius float64 `json:"cornerRadius,omitempty"` // rect only
		Points       int     `json:"points,omitempty"`       // star only
		InnerRatio   float64 `json:"innerRatio,omitempty"`   // star only
	}

	LineProps struct {
		Points      []float64 `json:"points"` // flattened x0,y0,x1,y1,...
		Stroke      string    `json:"stroke"`
		StrokeWidth float64   `json:"strokeWidth"`
		Dash        []float64 `json:"dash,omitempty"`
		ArrowStart  bool      `json:"arrowStart,omitempty"`
		ArrowEnd    bool      `json:"arrowEnd,omitempty"`
	}

	BrushProps struct {
		Strokes []BrushStroke `json:"strokes"`
	}

	// BrushStroke captures the brush settings at the time of drawing. Strokes
	// are immutable once recorded.
	BrushStroke struct {
		Points    []float64 `json:"points"`
		Size      float64   `json:"size"`
		Color     string    `json:"color"`
		Hardness  float64   `json:"hardness"`
		Opacity   float64   `json:"opacity"`
		Flow      float64   `json:"flow"`
		BlendMode string    `json:"blendMode"`
	}

	// FillProps is the output of a flood fill. Path is the bounding box
	// [x, y, w, h] in canvas space; Source is the rendered raster cropped to
	// that box; PixelMask holds the byte offsets, relative to the box's local
	// frame, of every pixel in the region.
	FillProps struct {
		Color     string     `json:"color"`
		Path      [4]float64 `json:"path"`
		Source    string     `json:"source"`
		PixelMask []int      `json:"pixelMask"`
	}

	Rect struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		W float64 `json:"w"`
		H float64 `json:"h"`
	}
)

// Clone returns a deep copy of the layer. Snapshots and archive round-trips
// rely on the copy sharing no slices or pointers with the original.
func (l Layer) Clone() Layer {
	c := l
	if l.Background != nil {
		b := *l.Background
		c.Background = &b
	}
	if l.Text != nil {
		t := *l.Text
		c.Text = &t
	}
	if l.Image != nil {
		img := *l.Image
		if l.Image.Crop != nil {
			crop := *l.Image.Crop
			img.Crop = &crop
		}
		c.Image = &img
	}
	if l.Shape != nil {
		s := *l.Shape
		c.Shape = &s
	}
	if l.Line != nil {
		ln := *l.Line
		ln.Points = append([]float64(nil), l.Line.Points...)
		ln.Dash = append([]float64(nil), l.Line.Dash...)
		c.Line = &ln
	}
	if l.Brush != nil {
		b := BrushProps{Strokes: make([]BrushStroke, len(l.Brush.Strokes))}
		for i, s := range l.Brush.Strokes {
			s.Points = append([]float64(nil), s.Points...)
			b.Strokes[i] = s
		}
		c.Brush = &b
	}
	if l.Fill != nil {
		f := *l.Fill
		f.PixelMask = append([]int(nil), l.Fill.PixelMask...)
		c.Fill = &f
	}
	return c
}

// CloneLayers deep-copies an ordered layer sequence.
func CloneLayers(layers []Layer) []Layer {
	out := make([]Layer, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}
