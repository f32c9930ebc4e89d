package editor

import "designpad/core"

// DefaultHistoryLimit bounds how many snapshots a session keeps before the
// oldest are evicted.
const DefaultHistoryLimit = 50

// Snapshot is an immutable full copy of document state at one point in time.
// It is deep-copied on the way in and on the way out, so no live state ever
// aliases a stored snapshot.
type Snapshot struct {
	Layers    []core.Layer
	BaseColor string
	Selection string
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Layers:    core.CloneLayers(s.Layers),
		BaseColor: s.BaseColor,
		Selection: s.Selection,
	}
}

// history is a bounded linear sequence of snapshots plus a cursor. Committing
// from a non-tip cursor discards everything after the cursor, so redo only
// works along the most recently taken path.
type history struct {
	snaps  []Snapshot
	cursor int
	limit  int
}

func newHistory(initial Snapshot, limit int) *history {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &history{snaps: []Snapshot{initial.clone()}, limit: limit}
}

// amendSelection rewrites the selection recorded at the cursor. Selection
// changes are never committed on their own, so just before a mutation commits
// the previous snapshot is patched to carry the selection as it stood right
// before the mutation — that is the state an undo should bring back.
func (h *history) amendSelection(sel string) {
	h.snaps[h.cursor].Selection = sel
}

func (h *history) commit(s Snapshot) {
	h.snaps = append(h.snaps[:h.cursor+1], s.clone())
	if len(h.snaps) > h.limit {
		over := len(h.snaps) - h.limit
		h.snaps = append(h.snaps[:0], h.snaps[over:]...)
	}
	h.cursor = len(h.snaps) - 1
}

func (h *history) undo() (Snapshot, bool) {
	if h.cursor == 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.snaps[h.cursor].clone(), true
}

func (h *history) redo() (Snapshot, bool) {
	if h.cursor >= len(h.snaps)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.snaps[h.cursor].clone(), true
}

func (h *history) len() int { return len(h.snaps) }

func (h *history) canUndo() bool { return h.cursor > 0 }

func (h *history) canRedo() bool { return h.cursor < len(h.snaps)-1 }
