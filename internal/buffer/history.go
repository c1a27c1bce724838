package buffer

// EditKind distinguishes an insertion from a deletion within the
// undo journal.
type EditKind int

const (
	EditInsert EditKind = iota
	EditDelete
)

// Edit is one atomic change within a Group. For EditInsert, Text is
// the inserted string and Range describes where it now lives in the
// post-edit content. For EditDelete, Text is the removed string and
// Range is the pre-edit span that was removed.
type Edit struct {
	Kind  EditKind
	Range Range
	Text  string
}

// Inverse returns the edit that undoes this one.
func (e Edit) Inverse() Edit {
	switch e.Kind {
	case EditInsert:
		return Edit{Kind: EditDelete, Range: e.Range, Text: e.Text}
	default:
		return Edit{Kind: EditInsert, Range: e.Range, Text: e.Text}
	}
}

// Group is one user-visible undoable step: a sequence of edits applied
// atomically by undo/redo.
type Group struct {
	edits []Edit
}

// History is the grouped undo/redo journal for a single buffer.
type History struct {
	groups       []Group
	current      Group
	undoIndex    int // number of committed groups that are "done"; redo replays groups[undoIndex:]
	sealed       bool
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Add appends an edit to the in-progress (uncommitted) group. If the
// new edit is an insert immediately following the previous insert at
// the point it left off, the two are coalesced into one edit to keep
// undo steps coarse, per the "same burst of inserts" policy.
func (h *History) Add(e Edit) {
	if h.sealed {
		h.dropRedoTail()
		h.current = Group{}
		h.sealed = false
	}
	if n := len(h.current.edits); n > 0 {
		last := &h.current.edits[n-1]
		if last.Kind == EditInsert && e.Kind == EditInsert && last.Range.To.Equal(e.Range.From) {
			last.Text += e.Text
			last.Range.To = e.Range.To
			return
		}
	}
	h.current.edits = append(h.current.edits, e)
}

// CommitGroup seals the current in-progress group so it becomes one
// undoable step, invoked at the end of each top-level key dispatch
// (also at mode exit, on any non-insert key, and on cursor teleport).
func (h *History) CommitGroup() {
	if len(h.current.edits) == 0 {
		return
	}
	h.dropRedoTail()
	h.groups = append(h.groups, h.current)
	h.current = Group{}
	h.undoIndex = len(h.groups)
	h.sealed = false
}

func (h *History) dropRedoTail() {
	h.groups = h.groups[:h.undoIndex]
}

// CanUndo reports whether an undo group is available.
func (h *History) CanUndo() bool {
	h.CommitGroup()
	return h.undoIndex > 0
}

// CanRedo reports whether a redo group is available.
func (h *History) CanRedo() bool {
	return h.undoIndex < len(h.groups)
}

// Undo returns the inverse edits of the current group, in reverse
// order, and moves the history back one group. Callers apply the
// returned edits to the content in order.
func (h *History) Undo() []Edit {
	h.CommitGroup()
	if h.undoIndex == 0 {
		return nil
	}
	h.undoIndex--
	g := h.groups[h.undoIndex]
	inv := make([]Edit, len(g.edits))
	for i, e := range g.edits {
		inv[len(g.edits)-1-i] = e.Inverse()
	}
	h.sealed = true
	return inv
}

// Redo re-applies the next group's edits in order and moves the
// history forward one group.
func (h *History) Redo() []Edit {
	if h.undoIndex >= len(h.groups) {
		return nil
	}
	g := h.groups[h.undoIndex]
	h.undoIndex++
	out := make([]Edit, len(g.edits))
	copy(out, g.edits)
	h.sealed = true
	return out
}
