// Package share handles anonymous one-shot sharing of packed archives: POST
// the bytes, get back an id anyone can fetch them with. No auth, no listing.
package share

import (
	"io"
	"net/http"

	"designpad/archive"
	"designpad/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

func HandleCreate(store core.ShareStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to read request body"})
			return
		}
		defer r.Body.Close()

		// Only store what we can read back. Accepts both the archive container
		// and the legacy flat format.
		if _, err := archive.Unpack(data); err != nil {
			logrus.WithError(err).Warn("Rejected unreadable shared design")
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]string{"error": "Body is not a readable design"})
			return
		}

		id, err := store.Create(r.Context(), &core.SharedDesign{Data: data})
		if err != nil {
			logrus.WithError(err).Error("Failed to create shared design")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to share design"})
			return
		}
		render.JSON(w, r, map[string]string{"id": id})
	}
}

func HandleGet(store core.ShareStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Share id is required"})
			return
		}

		shared, err := store.FindID(r.Context(), id)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Shared design not found"})
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="shared`+archive.Ext+`"`)
		w.Write(shared.Data)
	}
}
