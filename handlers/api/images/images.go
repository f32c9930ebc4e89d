// Package images exposes the generative-image collaborator over HTTP: a
// prompt comes in, ready-to-add image layers come out. The caller appends
// them to its session; nothing here touches a document.
package images

import (
	"encoding/json"
	"errors"
	"net/http"

	"designpad/core"
	"designpad/generate"
	"designpad/raster"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

func HandleGenerate(src generate.ImageSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Request body is not a generate request"})
			return
		}
		defer r.Body.Close()

		if req.Prompt == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Prompt is required"})
			return
		}
		if req.Count <= 0 {
			req.Count = 1
		}

		rasters, err := src.Generate(r.Context(), req.Prompt, req.Count)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err}).Error("Image generation failed")
			status := http.StatusBadGateway
			if errors.Is(err, generate.ErrTimedOut) {
				status = http.StatusGatewayTimeout
			}
			render.Status(r, status)
			render.JSON(w, r, map[string]string{"error": "Image generation failed"})
			return
		}

		layers := make([]core.Layer, 0, len(rasters))
		for _, data := range rasters {
			layers = append(layers, core.Layer{
				Type:    core.LayerTexture,
				Name:    req.Prompt,
				Visible: true,
				Opacity: 1,
				ScaleX:  1,
				ScaleY:  1,
				Image: &core.ImageProps{
					Source:         raster.ToDataURI(data),
					ClipToTemplate: true,
				},
			})
		}
		render.JSON(w, r, layers)
	}
}
