package session

import (
	"testing"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/editor"
)

func TestCollectionJoinAndLeftReusesSlot(t *testing.T) {
	cc := NewCollection()
	a := cc.OnClientJoined()
	b := cc.OnClientJoined()
	if a == b {
		t.Fatalf("expected distinct handles, got %d and %d", a, b)
	}
	cc.OnClientLeft(a)
	if cc.Get(a) != nil {
		t.Fatal("expected Get after OnClientLeft to return nil")
	}
	c := cc.OnClientJoined()
	if c != a {
		t.Fatalf("expected freed handle %d to be reused, got %d", a, c)
	}
}

func TestStdinBufferHandleIsLazyAndStable(t *testing.T) {
	ed := editor.New("/tmp", editor.OSFileIO{})
	cc := NewCollection()
	h := cc.OnClientJoined()
	cl := cc.Get(h)

	first := cl.StdinBufferHandle(ed)
	second := cl.StdinBufferHandle(ed)
	if first != second {
		t.Fatalf("expected stable handle across calls, got %v and %v", first, second)
	}
}

func TestOnStdinInputHoldsBackPartialRune(t *testing.T) {
	ed := editor.New("/tmp", editor.OSFileIO{})
	cc := NewCollection()
	h := cc.OnClientJoined()
	cl := cc.Get(h)

	euroRune := []byte("\xe2\x82\xac") // '€', split across two chunks
	if err := cl.OnStdinInput(ed, euroRune[:1]); err != nil {
		t.Fatal(err)
	}
	bh := cl.StdinBufferHandle(ed)
	buf := ed.Buffers.Get(bh)
	if buf.Content.String() != "" {
		t.Fatalf("expected nothing committed yet, got %q", buf.Content.String())
	}
	if err := cl.OnStdinInput(ed, euroRune[1:]); err != nil {
		t.Fatal(err)
	}
	if buf.Content.String() != "€" {
		t.Fatalf("got %q", buf.Content.String())
	}
}

func TestSetBufferViewHandleSavesNavigationSnapshot(t *testing.T) {
	ed := editor.New("/tmp", editor.OSFileIO{})
	cc := NewCollection()
	h := cc.OnClientJoined()
	cl := cc.Get(h)

	bh1 := ed.Buffers.AddNew("one", buffer.ScratchProperties())
	bh2 := ed.Buffers.AddNew("two", buffer.ScratchProperties())
	v1 := ed.Views.ViewHandleFromBufferHandle(h, bh1)
	v2 := ed.Views.ViewHandleFromBufferHandle(h, bh2)

	cl.SetBufferViewHandle(v1, true, ed)
	cl.SetBufferViewHandle(v2, true, ed)

	if !cl.HasPrevView || cl.PrevViewHandle != v1 {
		t.Fatalf("expected previous view to be recorded as %v, got hasPrev=%v prev=%v", v1, cl.HasPrevView, cl.PrevViewHandle)
	}
}
