package buffer

// Handle addresses a Buffer within its owning collection. Handles are
// small integers from a free list; a handle is never reused until the
// close event referencing the old occupant has been fully drained.
type Handle int

// Properties is the small per-buffer configuration record.
type Properties struct {
	IsFile              bool
	CanSave             bool
	HistoryEnabled      bool
	WordDatabaseEnabled bool
}

// DefaultProperties returns the properties of a normal file-backed buffer.
func DefaultProperties() Properties {
	return Properties{IsFile: true, CanSave: true, HistoryEnabled: true, WordDatabaseEnabled: true}
}

// ScratchProperties returns the properties of a non-file, non-history
// scratch buffer (used e.g. for piped stdin content).
func ScratchProperties() Properties {
	return Properties{}
}

// Buffer is an editable text document backed by a path (file or virtual).
type Buffer struct {
	Handle     Handle
	Path       string
	Properties Properties
	Content    *Content
	History    *History
	NeedsSave  bool
	Alive      bool
}

// New returns a freshly allocated, empty, alive buffer for the given handle.
func New(handle Handle, path string, props Properties) *Buffer {
	return &Buffer{
		Handle:     handle,
		Path:       path,
		Properties: props,
		Content:    NewContent(),
		History:    NewHistory(),
		Alive:      true,
	}
}

// Insert inserts text at p, recording the edit in history (if
// enabled) and marking the buffer dirty.
func (b *Buffer) Insert(p Position, text string) (Range, error) {
	r, err := b.Content.InsertText(p, text)
	if err != nil {
		return Range{}, err
	}
	if b.Properties.HistoryEnabled {
		b.History.Add(Edit{Kind: EditInsert, Range: r, Text: text})
	}
	b.NeedsSave = true
	return r, nil
}

// Delete deletes r, recording the edit in history (if enabled) and
// marking the buffer dirty.
func (b *Buffer) Delete(r Range) (string, error) {
	text, err := b.Content.DeleteRange(r)
	if err != nil {
		return "", err
	}
	if b.Properties.HistoryEnabled {
		b.History.Add(Edit{Kind: EditDelete, Range: r, Text: text})
	}
	b.NeedsSave = true
	return text, nil
}

// applyEdit applies a single edit (used by Undo/Redo) without
// recording a new history entry.
func (b *Buffer) applyEdit(e Edit) (Range, error) {
	switch e.Kind {
	case EditInsert:
		return b.Content.InsertText(e.Range.From, e.Text)
	default:
		_, err := b.Content.DeleteRange(e.Range)
		return e.Range, err
	}
}

// Undo applies the inverse of the current undo group, returning the
// edits applied (for view cursor re-basing by callers); the slice is
// empty if there was nothing to undo.
func (b *Buffer) Undo() ([]Edit, error) {
	edits := b.History.Undo()
	return b.applyAll(edits)
}

// Redo re-applies the next undo group.
func (b *Buffer) Redo() ([]Edit, error) {
	edits := b.History.Redo()
	return b.applyAll(edits)
}

func (b *Buffer) applyAll(edits []Edit) ([]Edit, error) {
	applied := make([]Edit, 0, len(edits))
	for _, e := range edits {
		r, err := b.applyEdit(e)
		if err != nil {
			return applied, err
		}
		applied = append(applied, Edit{Kind: e.Kind, Range: r, Text: e.Text})
		b.NeedsSave = true
	}
	return applied, nil
}
