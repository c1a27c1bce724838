// Package session implements the server's per-client record:
// viewport size, scroll position, the client's focused
// view, its navigation history, and the synthetic buffer a piped
// stdin stream is appended into. internal/server owns one
// session.Collection and drives it from the single reactor goroutine;
// nothing here takes a lock.
package session

import (
	"strconv"
	"unicode/utf8"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/event"
)

// Client is the state kept per connected client. Handle is
// stable for the connection's lifetime; the rest is mutated as the
// client resizes, moves its cursor, or switches buffers.
type Client struct {
	Handle editor.ClientHandle
	Active bool

	ViewportWidth, ViewportHeight int
	ScrollX, ScrollY              int
	Height                        int

	ViewHandle     editor.ViewHandle
	HasView        bool
	PrevViewHandle editor.ViewHandle
	HasPrevView    bool

	Navigation *editor.NavigationHistory

	stdinBuffer    buffer.Handle
	hasStdinBuffer bool
	stdinResidual  []byte
}

// Collection is the handle-keyed store of connected clients.
type Collection struct {
	slots []*Client
	free  []editor.ClientHandle
}

// NewCollection returns an empty client collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Get returns the client for handle h, or nil.
func (cc *Collection) Get(h editor.ClientHandle) *Client {
	if int(h) < 0 || int(h) >= len(cc.slots) {
		return nil
	}
	return cc.slots[h]
}

// OnClientJoined allocates (or reuses) a slot for a newly accepted
// connection and returns its handle.
func (cc *Collection) OnClientJoined() editor.ClientHandle {
	c := &Client{Active: true, Navigation: editor.NewNavigationHistory()}
	if n := len(cc.free); n > 0 {
		h := cc.free[n-1]
		cc.free = cc.free[:n-1]
		c.Handle = h
		cc.slots[h] = c
		return h
	}
	h := editor.ClientHandle(len(cc.slots))
	c.Handle = h
	cc.slots = append(cc.slots, c)
	return h
}

// Iter calls fn for every connected client.
func (cc *Collection) Iter(fn func(*Client)) {
	for _, c := range cc.slots {
		if c != nil && c.Active {
			fn(c)
		}
	}
}

// OnClientLeft disposes of the client's state and frees its slot.
func (cc *Collection) OnClientLeft(h editor.ClientHandle) {
	if cc.Get(h) == nil {
		return
	}
	cc.slots[h] = nil
	cc.free = append(cc.free, h)
}

// SetBufferViewHandle changes which view client c is focused on. If
// the view actually changes, it saves a navigation snapshot for the
// outgoing view and fires that view's lost-focus hooks.
func (c *Client) SetBufferViewHandle(h editor.ViewHandle, hasView bool, ed *editor.Editor) {
	if c.HasView && c.ViewHandle == h && hasView {
		return
	}
	if c.HasView {
		if v := ed.Views.Get(c.ViewHandle); v != nil {
			c.Navigation.SaveSnapshot(editor.Snapshot{
				BufferHandle: v.BufferHandle,
				Position:     v.Cursors.Main().Position,
			})
		}
		ed.Views.FireLostFocus(c.ViewHandle)
		c.PrevViewHandle = c.ViewHandle
		c.HasPrevView = true
	}
	c.ViewHandle = h
	c.HasView = hasView
	ed.SetFocused(c.Handle, h)
}

// View resolves the client's currently focused view, or nil.
func (c *Client) View(ed *editor.Editor) *editor.View {
	if !c.HasView {
		return nil
	}
	return ed.Views.Get(c.ViewHandle)
}

// StdinBufferHandle lazily creates (on first call) the synthetic,
// non-file buffer piped stdin input is appended into, named
// "pipe.<handle-index>".
func (c *Client) StdinBufferHandle(ed *editor.Editor) buffer.Handle {
	if !c.hasStdinBuffer {
		name := "pipe." + strconv.Itoa(int(c.Handle))
		c.stdinBuffer = ed.Buffers.AddNew(name, buffer.ScratchProperties())
		c.hasStdinBuffer = true
	}
	return c.stdinBuffer
}

// StdinBuffer returns the handle of the client's stdin-backed buffer
// if one was ever created, without creating it.
func (c *Client) StdinBuffer() (buffer.Handle, bool) {
	return c.stdinBuffer, c.hasStdinBuffer
}

// OnStdinInput appends newly read bytes to the client's stdin buffer,
// decoding valid UTF-8 and holding back any trailing partial rune in
// stdinResidual until more bytes complete it (mirrors the client
// reactor's own residual-byte handling for terminal input).
func (c *Client) OnStdinInput(ed *editor.Editor, chunk []byte) error {
	data := append(c.stdinResidual, chunk...)
	c.stdinResidual = nil

	cut := validPrefixLen(data)
	text := string(data[:cut])
	c.stdinResidual = append(c.stdinResidual, data[cut:]...)

	if text == "" {
		return nil
	}
	bh := c.StdinBufferHandle(ed)
	b := ed.Buffers.Get(bh)
	if b == nil {
		return nil
	}
	end := b.Content.End()
	r, err := b.Insert(end, text)
	if err != nil {
		return err
	}
	ed.Events.Enqueue(event.Event{Kind: event.BufferInsertText, BufferHandle: bh, Range: r})
	return nil
}

// UpdateView recomputes the client's scroll position from its focused
// view's main cursor (see UpdateScroll in display.go), and returns the
// number of rows left for the buffer body once the status bar and
// (if the picker is open, per hasPicker) the picker's rows have
// claimed their share of c.Height.
func (c *Client) UpdateView(ed *editor.Editor, hasPicker bool) int {
	statusRows := ed.Config.StatusBarMaxHeight
	bodyHeight := c.Height - statusRows
	if hasPicker {
		bodyHeight -= ed.Picker.UpdateScroll(int(ed.Config.PickerMaxHeight))
	}
	if bodyHeight < 0 {
		bodyHeight = 0
	}
	c.ViewportHeight = bodyHeight

	v := c.View(ed)
	if v == nil {
		return bodyHeight
	}
	b := ed.Buffers.Get(v.BufferHandle)
	if b == nil {
		return bodyHeight
	}
	main := v.Cursors.Main().Position
	line := b.Content.LineAt(int(main.Line))
	distances := CharDisplayDistances(line, ed.Config.TabSize)
	col := ColumnOfByte(distances, int(main.Column))
	c.UpdateScroll(int(main.Line), col)
	return bodyHeight
}

// OnBufferClose strips navigation snapshots referencing bh, and if the
// client's current view referenced it, clears the focus and attempts
// to step backward then forward through history to land somewhere live.
func (c *Client) OnBufferClose(ed *editor.Editor, bh buffer.Handle) {
	c.Navigation.RemoveSnapshotsWithBufferHandle(bh)
	v := c.View(ed)
	if v == nil || v.BufferHandle != bh {
		return
	}
	c.HasView = false
	current := editor.Snapshot{BufferHandle: bh}
	if snap, ok := c.Navigation.Move(editor.Backward, current); ok {
		nh := ed.Views.ViewHandleFromBufferHandle(c.Handle, snap.BufferHandle)
		c.SetBufferViewHandle(nh, true, ed)
		return
	}
	if snap, ok := c.Navigation.Move(editor.Forward, current); ok {
		nh := ed.Views.ViewHandleFromBufferHandle(c.Handle, snap.BufferHandle)
		c.SetBufferViewHandle(nh, true, ed)
	}
}

// validPrefixLen finds the longest prefix of data that is complete,
// valid UTF-8, holding back a possibly-truncated trailing rune for
// the next chunk to complete.
func validPrefixLen(data []byte) int {
	if utf8.Valid(data) {
		return len(data)
	}
	n := len(data)
	for n > 0 {
		n--
		if utf8.RuneStart(data[n]) {
			break
		}
	}
	if r, size := utf8.DecodeRune(data[n:]); r == utf8.RuneError && size <= 1 {
		return n
	}
	return len(data)
}
