package designs

import (
	"encoding/json"
	"image"
	"image/draw"
	"net/http"

	"designpad/fill"
	"designpad/raster"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type fillRequest struct {
	// Template is the alpha-masked raster defining the paintable area,
	// as an inline PNG data URI.
	Template string `json:"template"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Color    string `json:"color"`
}

// HandleFill runs the flood-fill tool over a template raster and returns the
// resulting fill layer. Clicking outside any paintable region is not an
// error: it returns 204 and no layer.
func HandleFill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Request body is not a fill request"})
			return
		}
		defer r.Body.Close()

		data, err := raster.FromDataURI(req.Template)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Template must be an inline PNG"})
			return
		}
		img, err := raster.DecodePNG(data)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Template is not a valid PNG"})
			return
		}

		rgba := toRGBA(img)
		bounds := rgba.Bounds()
		region := fill.Trace(rgba.Pix, bounds.Dx(), bounds.Dy(), req.X, req.Y)
		layer, ok := fill.NewLayer(region, req.Color)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		logrus.WithFields(logrus.Fields{
			"seed_x":     req.X,
			"seed_y":     req.Y,
			"mask_size":  len(region.Mask),
			"fill_color": req.Color,
		}).Debug("Fill region traced")
		render.JSON(w, r, layer)
	}
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
