package editor

import (
	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/event"
)

// ViewHandle addresses a BufferView.
type ViewHandle int

// ClientHandle addresses a connected client (see internal/session).
type ClientHandle int

// View is a (client, buffer) pair owning the cursor set for that pairing.
type View struct {
	Handle       ViewHandle
	ClientHandle ClientHandle
	BufferHandle buffer.Handle
	Cursors      *buffer.Collection
}

// ViewCollection is the handle-keyed store of buffer views, plus the
// lost-focus hook used for word-DB/auto-complete resets.
type ViewCollection struct {
	slots       []*View
	free        []ViewHandle
	events      *event.Queue
	onLostFocus []func(*View)
}

// NewViewCollection returns an empty view collection.
func NewViewCollection(events *event.Queue) *ViewCollection {
	return &ViewCollection{events: events}
}

// OnLostFocus registers a hook invoked whenever a view is about to
// lose focus (used by the picker/word-database integration).
func (vc *ViewCollection) OnLostFocus(fn func(*View)) {
	vc.onLostFocus = append(vc.onLostFocus, fn)
}

// Get returns the view for handle h, or nil.
func (vc *ViewCollection) Get(h ViewHandle) *View {
	if int(h) < 0 || int(h) >= len(vc.slots) {
		return nil
	}
	return vc.slots[h]
}

func (vc *ViewCollection) add(v *View) ViewHandle {
	if n := len(vc.free); n > 0 {
		h := vc.free[n-1]
		vc.free = vc.free[:n-1]
		v.Handle = h
		vc.slots[h] = v
		return h
	}
	h := ViewHandle(len(vc.slots))
	v.Handle = h
	vc.slots = append(vc.slots, v)
	return h
}

// ViewHandleFromBufferHandle returns the existing view for (client,
// buffer), or lazily creates one.
func (vc *ViewCollection) ViewHandleFromBufferHandle(client ClientHandle, bh buffer.Handle) ViewHandle {
	for _, v := range vc.slots {
		if v != nil && v.ClientHandle == client && v.BufferHandle == bh {
			return v.Handle
		}
	}
	v := &View{ClientHandle: client, BufferHandle: bh, Cursors: buffer.NewCollection()}
	return vc.add(v)
}

// Remove drops the view, invoking the lost-focus hooks first.
func (vc *ViewCollection) Remove(h ViewHandle) {
	v := vc.Get(h)
	if v == nil {
		return
	}
	for _, hook := range vc.onLostFocus {
		hook(v)
	}
	vc.slots[h] = nil
	vc.free = append(vc.free, h)
}

// FireLostFocus invokes the lost-focus hooks for view h without
// removing it (used on a plain focus change, e.g. switching buffers).
func (vc *ViewCollection) FireLostFocus(h ViewHandle) {
	v := vc.Get(h)
	if v == nil {
		return
	}
	for _, hook := range vc.onLostFocus {
		hook(v)
	}
	if vc.events != nil {
		vc.events.Enqueue(event.Event{Kind: event.BufferViewLostFocus, ViewHandle: int(h)})
	}
}

// HandleBufferInsertText rebases every cursor of every view of bh
// through the insert-shift law.
func (vc *ViewCollection) HandleBufferInsertText(bh buffer.Handle, r buffer.Range) {
	vc.forEachViewOf(bh, func(v *View) {
		g := v.Cursors.Mutate(true)
		for i := 0; i < v.Cursors.Len(); i++ {
			c := g.Get(i)
			c.Anchor = buffer.InsertShift(c.Anchor, r)
			c.Position = buffer.InsertShift(c.Position, r)
			g.Set(i, c)
		}
		g.Release()
	})
}

// HandleBufferDeleteText rebases every cursor of every view of bh
// through the delete-shift law.
func (vc *ViewCollection) HandleBufferDeleteText(bh buffer.Handle, r buffer.Range) {
	vc.forEachViewOf(bh, func(v *View) {
		g := v.Cursors.Mutate(true)
		for i := 0; i < v.Cursors.Len(); i++ {
			c := g.Get(i)
			c.Anchor = buffer.DeleteShift(c.Anchor, r)
			c.Position = buffer.DeleteShift(c.Position, r)
			g.Set(i, c)
		}
		g.Release()
	})
}

// SaturateCursors clamps every cursor of every view of bh into
// content's valid positions, used after a whole-content replacement
// (read, reopen) where the shift laws don't apply.
func (vc *ViewCollection) SaturateCursors(bh buffer.Handle, content *buffer.Content) {
	vc.forEachViewOf(bh, func(v *View) {
		g := v.Cursors.Mutate(false)
		for i := 0; i < v.Cursors.Len(); i++ {
			c := g.Get(i)
			c.Anchor = content.SaturatePosition(c.Anchor)
			c.Position = content.SaturatePosition(c.Position)
			g.Set(i, c)
		}
		g.Release()
	})
}

func (vc *ViewCollection) forEachViewOf(bh buffer.Handle, fn func(*View)) {
	for _, v := range vc.slots {
		if v != nil && v.BufferHandle == bh {
			fn(v)
		}
	}
}

// RemoveViewsOfBuffer removes every view of a closing buffer.
func (vc *ViewCollection) RemoveViewsOfBuffer(bh buffer.Handle) {
	for _, v := range vc.slots {
		if v != nil && v.BufferHandle == bh {
			vc.Remove(v.Handle)
		}
	}
}
