package editor

import (
	"testing"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/event"
)

func TestViewHandleFromBufferHandleIsLazyAndStable(t *testing.T) {
	vc := NewViewCollection(event.New())

	first := vc.ViewHandleFromBufferHandle(1, 7)
	second := vc.ViewHandleFromBufferHandle(1, 7)
	if first != second {
		t.Errorf("same (client, buffer) pair minted two views: %d and %d", first, second)
	}

	other := vc.ViewHandleFromBufferHandle(2, 7)
	if other == first {
		t.Error("different clients share one view")
	}
}

func TestHandleBufferInsertTextRebasesCursors(t *testing.T) {
	vc := NewViewCollection(event.New())
	vh := vc.ViewHandleFromBufferHandle(0, 0)
	v := vc.Get(vh)

	g := v.Cursors.Mutate(false)
	g.Set(0, buffer.Cursor{
		Anchor:   buffer.Position{Line: 0, Column: 5},
		Position: buffer.Position{Line: 0, Column: 5},
	})
	g.Release()

	vc.HandleBufferInsertText(0, buffer.Range{
		From: buffer.Position{Line: 0, Column: 0},
		To:   buffer.Position{Line: 0, Column: 2},
	})

	if got := v.Cursors.Main().Position; got != (buffer.Position{Line: 0, Column: 7}) {
		t.Errorf("cursor after insert-shift = %+v, want (0,7)", got)
	}
}

func TestHandleBufferDeleteTextSnapsCursorInsideRange(t *testing.T) {
	vc := NewViewCollection(event.New())
	vh := vc.ViewHandleFromBufferHandle(0, 0)
	v := vc.Get(vh)

	g := v.Cursors.Mutate(false)
	g.Set(0, buffer.Cursor{
		Anchor:   buffer.Position{Line: 0, Column: 5},
		Position: buffer.Position{Line: 0, Column: 5},
	})
	g.Release()

	vc.HandleBufferDeleteText(0, buffer.Range{
		From: buffer.Position{Line: 0, Column: 2},
		To:   buffer.Position{Line: 0, Column: 8},
	})

	if got := v.Cursors.Main().Position; got != (buffer.Position{Line: 0, Column: 2}) {
		t.Errorf("cursor inside deleted range = %+v, want snap to (0,2)", got)
	}
}

func TestRebasingOnlyTouchesViewsOfTheEditedBuffer(t *testing.T) {
	vc := NewViewCollection(event.New())
	edited := vc.Get(vc.ViewHandleFromBufferHandle(0, 0))
	bystander := vc.Get(vc.ViewHandleFromBufferHandle(0, 1))

	for _, v := range []*View{edited, bystander} {
		g := v.Cursors.Mutate(false)
		g.Set(0, buffer.Cursor{
			Anchor:   buffer.Position{Line: 0, Column: 4},
			Position: buffer.Position{Line: 0, Column: 4},
		})
		g.Release()
	}

	vc.HandleBufferInsertText(0, buffer.Range{
		From: buffer.Position{Line: 0, Column: 0},
		To:   buffer.Position{Line: 0, Column: 3},
	})

	if got := edited.Cursors.Main().Position.Column; got != 7 {
		t.Errorf("edited view cursor column = %d, want 7", got)
	}
	if got := bystander.Cursors.Main().Position.Column; got != 4 {
		t.Errorf("bystander view cursor column = %d, want untouched 4", got)
	}
}

func TestRemoveViewsOfBufferFiresLostFocusHooks(t *testing.T) {
	vc := NewViewCollection(event.New())
	vh := vc.ViewHandleFromBufferHandle(0, 3)

	var fired []ViewHandle
	vc.OnLostFocus(func(v *View) { fired = append(fired, v.Handle) })

	vc.RemoveViewsOfBuffer(3)

	if len(fired) != 1 || fired[0] != vh {
		t.Errorf("lost-focus hooks fired for %v, want exactly [%d]", fired, vh)
	}
	if vc.Get(vh) != nil {
		t.Error("view still resolvable after removal")
	}
}
