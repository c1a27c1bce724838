// Package editor owns the aggregate editor state: buffers, views,
// navigation history, registers, and the string pool, wiring them
// together through the event queue.
package editor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/event"
	"github.com/quill-editor/quill/internal/worddb"
)

// FileIO abstracts reading/writing buffer content from disk so tests
// can substitute an in-memory fake.
type FileIO interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, content string) error
}

// OSFileIO is the real, os-backed FileIO.
type OSFileIO struct{}

func (OSFileIO) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (OSFileIO) WriteFile(path string, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// BufferCollection is the handle-addressed store of live buffers.
type BufferCollection struct {
	slots    []*buffer.Buffer
	free     []buffer.Handle
	words    *worddb.Database
	events   *event.Queue
	io       FileIO
}

// NewBufferCollection returns an empty collection wired to the given
// word database, event queue, and file I/O backend.
func NewBufferCollection(words *worddb.Database, events *event.Queue, io FileIO) *BufferCollection {
	return &BufferCollection{words: words, events: events, io: io}
}

// AddNew allocates a fresh, empty buffer and returns its handle, reusing
// a free-list slot if one is available.
func (bc *BufferCollection) AddNew(path string, props buffer.Properties) buffer.Handle {
	if n := len(bc.free); n > 0 {
		h := bc.free[n-1]
		bc.free = bc.free[:n-1]
		bc.slots[h] = buffer.New(h, path, props)
		return h
	}
	h := buffer.Handle(len(bc.slots))
	bc.slots = append(bc.slots, buffer.New(h, path, props))
	return h
}

// Get returns the buffer for handle h, or nil if it is dead or out of range.
func (bc *BufferCollection) Get(h buffer.Handle) *buffer.Buffer {
	if int(h) < 0 || int(h) >= len(bc.slots) {
		return nil
	}
	b := bc.slots[h]
	if b == nil || !b.Alive {
		return nil
	}
	return b
}

// Iter calls fn for every live buffer.
func (bc *BufferCollection) Iter(fn func(*buffer.Buffer)) {
	for _, b := range bc.slots {
		if b != nil && b.Alive {
			fn(b)
		}
	}
}

// FindWithPath resolves p against cwd and returns the handle of an
// already-open buffer backing the same file, if any.
func (bc *BufferCollection) FindWithPath(cwd, p string) (buffer.Handle, bool) {
	abs := resolvePath(cwd, p)
	var found buffer.Handle
	var ok bool
	bc.Iter(func(b *buffer.Buffer) {
		if ok {
			return
		}
		if resolvePath(cwd, b.Path) == abs {
			found, ok = b.Handle, true
		}
	})
	return found, ok
}

func resolvePath(cwd, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(cwd, p))
}

// DeferRemove enqueues a BufferClose event; the slot is reclaimed only
// once that event has been drained by HandleBufferClose, so in-flight
// readers of the handle always see consistent state.
func (bc *BufferCollection) DeferRemove(h buffer.Handle) {
	bc.events.Enqueue(event.Event{Kind: event.BufferClose, BufferHandle: h})
}

// HandleBufferClose is the core event handler for BufferClose: it
// removes the buffer's words from the word database and reclaims its
// slot onto the free list.
func (bc *BufferCollection) HandleBufferClose(h buffer.Handle) {
	b := bc.Get(h)
	if b == nil {
		return
	}
	if bc.words != nil && b.Properties.WordDatabaseEnabled {
		worddb.RemoveAllWords(bc.words, b.Content.String())
	}
	b.Alive = false
	bc.slots[h] = nil
	bc.free = append(bc.free, h)
}

// ReadFromFile loads path's content into buffer h, seeding the word
// database and enqueuing BufferRead.
func (bc *BufferCollection) ReadFromFile(h buffer.Handle, path string) error {
	b := bc.Get(h)
	if b == nil {
		return fmt.Errorf("readfile: no such buffer %d", h)
	}
	text, err := bc.io.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	b.Path = path
	b.Content = buffer.FromText(text)
	b.NeedsSave = false
	if bc.words != nil && b.Properties.WordDatabaseEnabled {
		worddb.AddAllWords(bc.words, text)
	}
	bc.events.Enqueue(event.Event{Kind: event.BufferRead, BufferHandle: h})
	return nil
}

// WriteToFile writes buffer h's content to path (or its existing path
// if newPath is empty), enqueuing BufferWrite.
func (bc *BufferCollection) WriteToFile(h buffer.Handle, newPath string) error {
	b := bc.Get(h)
	if b == nil {
		return fmt.Errorf("writefile: no such buffer %d", h)
	}
	retargeted := newPath != "" && newPath != b.Path
	path := b.Path
	if retargeted {
		path = newPath
		b.Path = newPath
	}
	if path == "" {
		return fmt.Errorf("writefile: buffer %d has no path", h)
	}
	if err := bc.io.WriteFile(path, b.Content.String()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	b.NeedsSave = false
	bc.events.Enqueue(event.Event{Kind: event.BufferWrite, BufferHandle: h, NewPath: retargeted})
	return nil
}

// NameForPipe returns the synthetic name used for a client's piped
// stdin buffer: "pipe.<handle-index>".
func NameForPipe(clientIndex int) string {
	return fmt.Sprintf("pipe.%d", clientIndex)
}

// InsertText inserts text at p in buffer h, enqueuing BufferInsertText
// so every view of h gets its cursors rebased through InsertShift, and
// adding the inserted text's words to the word database.
func (bc *BufferCollection) InsertText(h buffer.Handle, p buffer.Position, text string) (buffer.Range, error) {
	b := bc.Get(h)
	if b == nil {
		return buffer.Range{}, fmt.Errorf("inserttext: no such buffer %d", h)
	}
	r, err := b.Insert(p, text)
	if err != nil {
		return buffer.Range{}, err
	}
	if bc.words != nil && b.Properties.WordDatabaseEnabled {
		worddb.AddAllWords(bc.words, text)
	}
	bc.events.Enqueue(event.Event{Kind: event.BufferInsertText, BufferHandle: h, Range: r, Text: text})
	return r, nil
}

// DeleteRange deletes r from buffer h, enqueuing BufferDeleteText so
// every view of h gets its cursors rebased through DeleteShift, and
// removing the deleted text's words from the word database.
func (bc *BufferCollection) DeleteRange(h buffer.Handle, r buffer.Range) (string, error) {
	b := bc.Get(h)
	if b == nil {
		return "", fmt.Errorf("deleterange: no such buffer %d", h)
	}
	text, err := b.Delete(r)
	if err != nil {
		return "", err
	}
	if bc.words != nil && b.Properties.WordDatabaseEnabled {
		worddb.RemoveAllWords(bc.words, text)
	}
	bc.events.Enqueue(event.Event{Kind: event.BufferDeleteText, BufferHandle: h, Range: r, Text: text})
	return text, nil
}

// Undo applies buffer h's current undo group, enqueuing the matching
// BufferInsertText/BufferDeleteText event (and word database delta)
// for every edit applied, in order.
func (bc *BufferCollection) Undo(h buffer.Handle) ([]buffer.Edit, error) {
	b := bc.Get(h)
	if b == nil {
		return nil, fmt.Errorf("undo: no such buffer %d", h)
	}
	edits, err := b.Undo()
	bc.fixupAfterEdits(b, edits)
	return edits, err
}

// Redo re-applies buffer h's next undo group, with the same event and
// word-database fixup as Undo.
func (bc *BufferCollection) Redo(h buffer.Handle) ([]buffer.Edit, error) {
	b := bc.Get(h)
	if b == nil {
		return nil, fmt.Errorf("redo: no such buffer %d", h)
	}
	edits, err := b.Redo()
	bc.fixupAfterEdits(b, edits)
	return edits, err
}

func (bc *BufferCollection) fixupAfterEdits(b *buffer.Buffer, edits []buffer.Edit) {
	for _, e := range edits {
		kind := event.BufferDeleteText
		if e.Kind == buffer.EditInsert {
			kind = event.BufferInsertText
			if bc.words != nil && b.Properties.WordDatabaseEnabled {
				worddb.AddAllWords(bc.words, e.Text)
			}
		} else if bc.words != nil && b.Properties.WordDatabaseEnabled {
			worddb.RemoveAllWords(bc.words, e.Text)
		}
		bc.events.Enqueue(event.Event{Kind: kind, BufferHandle: b.Handle, Range: e.Range, Text: e.Text})
	}
}
