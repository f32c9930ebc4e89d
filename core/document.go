package core

import "time"

// Document is the full editable state of one design: an ordered layer
// sequence (first = bottom) plus canvas-level metadata.
type Document struct {
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	BaseColor  string    `json:"baseColor"`
	ModelID    string    `json:"modelId"`
	Layers     []Layer   `json:"layers"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	c := d
	c.Layers = CloneLayers(d.Layers)
	return c
}

// LayerIndex returns the position of the layer with the given id, or -1.
func (d *Document) LayerIndex(id string) int {
	for i := range d.Layers {
		if d.Layers[i].ID == id {
			return i
		}
	}
	return -1
}
