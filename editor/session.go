package editor

import (
	"time"

	"designpad/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Offset applied to a duplicated layer so it does not sit exactly on top of
// its source, in canvas units.
const duplicateOffset = 20

// Session owns one document being edited: the ordered layer sequence, the
// current selection, and the undo/redo history. Sessions are explicitly
// constructed and independent, one per open document; there is no process-wide
// state. Callers must serialize mutations — a Session does no locking of its
// own.
//
// Every structural mutation commits a whole-state snapshot to the history.
// UpdateLayer deliberately does not: continuous edits (drags) go through it,
// and a drag becomes a single undoable step by wrapping it in a Gesture.
type Session struct {
	doc       core.Document
	selection string // layer id, or "" when nothing is selected
	hist      *history
}

// NewSession starts editing a document, seeding the history with its current
// state. An empty document is a valid starting point.
func NewSession(doc core.Document) *Session {
	return NewSessionLimit(doc, DefaultHistoryLimit)
}

// NewSessionLimit is NewSession with an explicit history capacity.
func NewSessionLimit(doc core.Document, limit int) *Session {
	s := &Session{doc: doc.Clone()}
	s.hist = newHistory(s.snapshot(), limit)
	return s
}

// Document returns the live document. Callers treat it as read-only; all
// mutation goes through Session methods.
func (s *Session) Document() core.Document { return s.doc }

// Layers returns the live layer sequence in paint order. Read-only.
func (s *Session) Layers() []core.Layer { return s.doc.Layers }

// Selection returns the selected layer id, or "" when nothing is selected.
func (s *Session) Selection() string { return s.selection }

func (s *Session) CanUndo() bool { return s.hist.canUndo() }
func (s *Session) CanRedo() bool { return s.hist.canRedo() }

// AddLayer assigns a fresh id to the layer, appends it to the top of the
// paint order, selects it and commits history. Returns the assigned id.
func (s *Session) AddLayer(l core.Layer) string {
	prevSel := s.selection
	l.ID = ulid.Make().String()
	s.doc.Layers = append(s.doc.Layers, l)
	s.selection = l.ID
	s.commit(prevSel)
	logrus.WithFields(logrus.Fields{"layer_id": l.ID, "layer_type": l.Type}).Debug("Layer added")
	return l.ID
}

// UpdateLayer applies a typed patch to the matching layer in place. It does
// not commit history. A missing id or a patch/variant mismatch is a silent
// no-op.
func (s *Session) UpdateLayer(id string, p LayerPatch) {
	i := s.doc.LayerIndex(id)
	if i < 0 {
		return
	}
	p.apply(&s.doc.Layers[i])
}

// DeleteLayer removes the layer, clears the selection if it pointed at the
// removed id, and commits history. A missing id is a no-op.
func (s *Session) DeleteLayer(id string) {
	prevSel := s.selection
	i := s.doc.LayerIndex(id)
	if i < 0 {
		return
	}
	s.doc.Layers = append(s.doc.Layers[:i], s.doc.Layers[i+1:]...)
	if s.selection == id {
		s.selection = ""
	}
	s.commit(prevSel)
	logrus.WithField("layer_id", id).Debug("Layer deleted")
}

// DuplicateLayer clones a layer under a new id, offsets it by a fixed delta,
// appends and selects it, and commits history. Returns the new id, or "" if
// the source id does not exist.
func (s *Session) DuplicateLayer(id string) string {
	prevSel := s.selection
	i := s.doc.LayerIndex(id)
	if i < 0 {
		return ""
	}
	c := s.doc.Layers[i].Clone()
	c.ID = ulid.Make().String()
	c.Name += " copy"
	c.X += duplicateOffset
	c.Y += duplicateOffset
	s.doc.Layers = append(s.doc.Layers, c)
	s.selection = c.ID
	s.commit(prevSel)
	return c.ID
}

// ReorderLayers moves the layer at from to position to, shifting the layers
// between them. Out-of-range indices are a no-op; callers are expected to
// pass valid positions.
func (s *Session) ReorderLayers(from, to int) {
	n := len(s.doc.Layers)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	l := s.doc.Layers[from]
	s.doc.Layers = append(s.doc.Layers[:from], s.doc.Layers[from+1:]...)
	rest := append(s.doc.Layers[:to:to], l)
	s.doc.Layers = append(rest, s.doc.Layers[to:]...)
	s.commit(s.selection)
}

// SetSelection selects the layer with the given id, or clears the selection
// when id is "". Selecting an unknown id is a no-op. Never committed to
// history on its own.
func (s *Session) SetSelection(id string) {
	if id != "" && s.doc.LayerIndex(id) < 0 {
		return
	}
	s.selection = id
}

// SetBaseColor changes the canvas base color and commits history.
func (s *Session) SetBaseColor(color string) {
	s.doc.BaseColor = color
	s.commit(s.selection)
}

// AddBrushStroke appends a recorded stroke to a brush layer and commits
// history. A missing layer or a non-brush layer is a silent no-op.
func (s *Session) AddBrushStroke(id string, stroke core.BrushStroke) {
	i := s.doc.LayerIndex(id)
	if i < 0 {
		return
	}
	l := &s.doc.Layers[i]
	if l.Type != core.LayerBrush || l.Brush == nil {
		return
	}
	stroke.Points = append([]float64(nil), stroke.Points...)
	l.Brush.Strokes = append(l.Brush.Strokes, stroke)
	s.commit(s.selection)
}

// Undo steps the history cursor back one snapshot and restores it. A no-op at
// the oldest snapshot.
func (s *Session) Undo() {
	snap, ok := s.hist.undo()
	if !ok {
		return
	}
	s.restore(snap)
}

// Redo steps the history cursor forward one snapshot and restores it. A no-op
// at the newest snapshot.
func (s *Session) Redo() {
	snap, ok := s.hist.redo()
	if !ok {
		return
	}
	s.restore(snap)
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Layers:    s.doc.Layers,
		BaseColor: s.doc.BaseColor,
		Selection: s.selection,
	}
}

// commit records the mutation that just happened. prevSel is the selection as
// it stood before the mutation; it is written back onto the snapshot an undo
// of this mutation will land on.
func (s *Session) commit(prevSel string) {
	s.doc.ModifiedAt = time.Now()
	s.hist.amendSelection(prevSel)
	s.hist.commit(s.snapshot())
}

func (s *Session) restore(snap Snapshot) {
	s.doc.Layers = snap.Layers
	s.doc.BaseColor = snap.BaseColor
	s.selection = snap.Selection
}

// Gesture scopes an interactive edit (a drag, a resize) so that any number of
// patches lands in the history as exactly one step. Commit always snapshots,
// even when no patch was applied, so a finished gesture is never lost.
type Gesture struct {
	s       *Session
	prevSel string
	done    bool
}

// BeginGesture opens an editing transaction on the session.
func (s *Session) BeginGesture() *Gesture {
	return &Gesture{s: s, prevSel: s.selection}
}

// Update applies a patch without committing history. Same no-op rules as
// Session.UpdateLayer.
func (g *Gesture) Update(id string, p LayerPatch) {
	if g.done {
		return
	}
	g.s.UpdateLayer(id, p)
}

// Commit ends the gesture and commits a single history snapshot. Calling
// Commit twice is a no-op the second time.
func (g *Gesture) Commit() {
	if g.done {
		return
	}
	g.done = true
	g.s.commit(g.prevSel)
}
