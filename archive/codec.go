// Package archive packs a document and its embedded rasters into a single
// portable container, and restores one back. The container is a zip holding a
// manifest.json plus every extracted raster under images/; a pre-archive
// legacy format (one flat JSON record with rasters still inlined) is accepted
// on the way in for compatibility.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"designpad/core"
	"designpad/raster"
)

const (
	// Version tags the archive manifest format.
	Version = "1"

	// Ext is the file extension for packed archives; LegacyExt is the
	// pre-archive flat-document extension. Loaders accept either; Unpack
	// sniffs the bytes rather than trusting the name.
	Ext       = ".design"
	LegacyExt = ".json"

	manifestName = "manifest.json"
	imagesPrefix = "images/"
)

var (
	// ErrNotArchive means the bytes are neither a container nor a legacy flat
	// document. Callers seeing ErrInvalidManifest instead know the format was
	// recognized and a legacy retry is pointless.
	ErrNotArchive = errors.New("archive: unrecognized format")

	// ErrInvalidManifest means a recognized container or legacy record is
	// missing required manifest fields.
	ErrInvalidManifest = errors.New("archive: invalid manifest")
)

// manifest is the structured-text entry of the container. The legacy flat
// format is the same record with rasters still inlined in layer fields.
type manifest struct {
	Version    string       `json:"version"`
	Name       string       `json:"name"`
	CreatedAt  time.Time    `json:"createdAt"`
	ModifiedAt time.Time    `json:"modifiedAt"`
	ModelID    string       `json:"modelId"`
	BaseColor  string       `json:"baseColor"`
	Layers     []core.Layer `json:"layers"`
}

// required mirrors manifest for presence validation: absent fields stay nil.
type required struct {
	Version *string            `json:"version"`
	ModelID *string            `json:"modelId"`
	Layers  *[]json.RawMessage `json:"layers"`
}

func validate(data []byte) error {
	var req required
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrNotArchive, err)
	}
	switch {
	case req.Version == nil || *req.Version == "":
		return fmt.Errorf("%w: missing version", ErrInvalidManifest)
	case req.ModelID == nil || *req.ModelID == "":
		return fmt.Errorf("%w: missing modelId", ErrInvalidManifest)
	case req.Layers == nil:
		return fmt.Errorf("%w: missing layers", ErrInvalidManifest)
	}
	return nil
}

// Pack serializes a document into archive bytes. Inline rasters are pulled
// out of image, texture and fill layers into images/ entries and their layer
// fields replaced with the entry path; remote references are left as they
// are. The manifest's modification timestamp is refreshed. The input document
// is not mutated.
func Pack(doc core.Document) ([]byte, error) {
	doc = doc.Clone()

	type asset struct {
		path string
		data []byte
	}
	var assets []asset

	extract := func(source *string, path string) error {
		if !raster.IsDataURI(*source) {
			return nil
		}
		data, err := raster.FromDataURI(*source)
		if err != nil {
			return fmt.Errorf("archive: extract %s: %w", path, err)
		}
		assets = append(assets, asset{path: path, data: data})
		*source = path
		return nil
	}

	for i := range doc.Layers {
		l := &doc.Layers[i]
		switch l.Type {
		case core.LayerImage, core.LayerTexture:
			if l.Image == nil {
				continue
			}
			if err := extract(&l.Image.Source, imagesPrefix+l.ID+".png"); err != nil {
				return nil, err
			}
		case core.LayerFill:
			if l.Fill == nil {
				continue
			}
			if err := extract(&l.Fill.Source, imagesPrefix+"fill-"+l.ID+".png"); err != nil {
				return nil, err
			}
		}
	}

	m := manifest{
		Version:    Version,
		Name:       doc.Name,
		CreatedAt:  doc.CreatedAt,
		ModifiedAt: time.Now(),
		ModelID:    doc.ModelID,
		BaseColor:  doc.BaseColor,
		Layers:     doc.Layers,
	}
	manifestData, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal manifest: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(manifestName)
	if err != nil {
		return nil, fmt.Errorf("archive: create manifest entry: %w", err)
	}
	if _, err := w.Write(manifestData); err != nil {
		return nil, fmt.Errorf("archive: write manifest entry: %w", err)
	}
	for _, a := range assets {
		w, err := zw.Create(a.path)
		if err != nil {
			return nil, fmt.Errorf("archive: create entry %s: %w", a.path, err)
		}
		if _, err := w.Write(a.data); err != nil {
			return nil, fmt.Errorf("archive: write entry %s: %w", a.path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: finalize container: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack restores a document from archive bytes. Container entries referenced
// by layer fields are re-inlined as data URIs; remote references pass through
// untouched. Bytes that are not a container fall back to the legacy flat
// format. Either way the document is fully hydrated or an error is returned;
// there is no partial result.
func Unpack(data []byte) (core.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return unpackLegacy(data)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}
	mf, ok := entries[manifestName]
	if !ok {
		return core.Document{}, fmt.Errorf("%w: no %s entry", ErrInvalidManifest, manifestName)
	}
	manifestData, err := readEntry(mf)
	if err != nil {
		return core.Document{}, err
	}
	if err := validate(manifestData); err != nil {
		if errors.Is(err, ErrNotArchive) {
			return core.Document{}, fmt.Errorf("%w: malformed manifest entry", ErrInvalidManifest)
		}
		return core.Document{}, err
	}

	var m manifest
	if err := json.Unmarshal(manifestData, &m); err != nil {
		return core.Document{}, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	doc := core.Document{
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		ModifiedAt: m.ModifiedAt,
		BaseColor:  m.BaseColor,
		ModelID:    m.ModelID,
		Layers:     m.Layers,
	}

	inline := func(source *string) error {
		if !strings.HasPrefix(*source, imagesPrefix) {
			return nil
		}
		f, ok := entries[*source]
		if !ok {
			return fmt.Errorf("archive: missing entry %s", *source)
		}
		data, err := readEntry(f)
		if err != nil {
			return err
		}
		*source = raster.ToDataURI(data)
		return nil
	}

	for i := range doc.Layers {
		l := &doc.Layers[i]
		switch l.Type {
		case core.LayerImage, core.LayerTexture:
			if l.Image == nil {
				continue
			}
			if err := inline(&l.Image.Source); err != nil {
				return core.Document{}, err
			}
		case core.LayerFill:
			if l.Fill == nil {
				continue
			}
			if err := inline(&l.Fill.Source); err != nil {
				return core.Document{}, err
			}
		}
	}
	return doc, nil
}

// unpackLegacy interprets the raw bytes as one flat document record with
// inline rasters. No asset extraction ever happened in this format, so the
// record passes through validation straight into a document.
func unpackLegacy(data []byte) (core.Document, error) {
	if err := validate(data); err != nil {
		return core.Document{}, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return core.Document{}, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return core.Document{
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		ModifiedAt: m.ModifiedAt,
		BaseColor:  m.BaseColor,
		ModelID:    m.ModelID,
		Layers:     m.Layers,
	}, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: read entry %s: %w", f.Name, err)
	}
	return data, nil
}
