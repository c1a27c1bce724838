package mode

import (
	"strings"
	"testing"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/editor"
)

// newNormalContext is newTestContext with history and word-database
// tracking enabled, which the operator/undo/redo tests need.
func newNormalContext(t *testing.T, lines ...string) (*Machine, *Context) {
	t.Helper()
	ed := editor.New(t.TempDir(), editor.OSFileIO{})
	bh := ed.Buffers.AddNew("notes.txt", buffer.DefaultProperties())
	if _, err := ed.Buffers.InsertText(bh, buffer.Position{}, strings.Join(lines, "\n")); err != nil {
		t.Fatalf("seed buffer content: %v", err)
	}
	ed.DrainEvents()
	ed.Buffers.Get(bh).History.CommitGroup()

	client := editor.ClientHandle(0)
	vh := ed.Views.ViewHandleFromBufferHandle(client, bh)
	ed.SetFocused(client, vh)

	m := NewMachine()
	ctx := &Context{Editor: ed, Client: client, View: ed.Views.Get(vh)}
	return m, ctx
}

func placeCursor(ctx *Context, p buffer.Position) {
	g := ctx.View.Cursors.Mutate(false)
	g.Set(0, buffer.Cursor{Anchor: p, Position: p})
	g.Release()
}

func cursorPosition(ctx *Context) buffer.Position {
	return ctx.View.Cursors.Main().Position
}

func defaultRegister(ctx *Context) string {
	return ctx.Editor.Registers.Get(editor.RegisterKey(0))
}

func TestDeleteWordOperator(t *testing.T) {
	m, ctx := newNormalContext(t, "alpha beta gamma")

	feed(t, m, ctx, "dw")

	if got := bufferText(ctx); len(got) != 1 || got[0] != "beta gamma" {
		t.Errorf("buffer after dw = %v, want [beta gamma]", got)
	}
	if got := defaultRegister(ctx); got != "alpha " {
		t.Errorf("register after dw = %q, want %q", got, "alpha ")
	}
}

func TestChangeWordDeletesAndEntersInsert(t *testing.T) {
	m, ctx := newNormalContext(t, "alpha beta")

	feed(t, m, ctx, "cw")

	if m.State() != Insert {
		t.Fatalf("mode after cw = %v, want Insert", m.State())
	}
	if got := bufferText(ctx); len(got) != 1 || got[0] != "beta" {
		t.Errorf("buffer after cw = %v, want [beta]", got)
	}

	feed(t, m, ctx, "X")
	if got := bufferText(ctx); got[0] != "Xbeta" {
		t.Errorf("buffer after replacement insert = %v, want [Xbeta]", got)
	}
}

func TestYankLineLeavesBufferIntact(t *testing.T) {
	m, ctx := newNormalContext(t, "one", "two")

	feed(t, m, ctx, "yy")

	if got := defaultRegister(ctx); got != "one\n" {
		t.Errorf("register after yy = %q, want %q", got, "one\n")
	}
	if got := bufferText(ctx); len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("buffer changed by yank: %v", got)
	}
	if m.State() != Normal {
		t.Errorf("mode after yy = %v, want Normal", m.State())
	}
}

func TestDeleteLinesWithCount(t *testing.T) {
	m, ctx := newNormalContext(t, "one", "two", "three")

	feed(t, m, ctx, "2dd")

	if got := bufferText(ctx); len(got) != 1 || got[0] != "three" {
		t.Errorf("buffer after 2dd = %v, want [three]", got)
	}
	if got := defaultRegister(ctx); got != "one\ntwo\n" {
		t.Errorf("register after 2dd = %q, want %q", got, "one\ntwo\n")
	}
}

func TestPasteCharacterwiseRegister(t *testing.T) {
	m, ctx := newNormalContext(t, "abc")
	ctx.Editor.Registers.Set(editor.RegisterKey(0), "XY")

	feed(t, m, ctx, "p")
	if got := bufferText(ctx); got[0] != "aXYbc" {
		t.Errorf("buffer after p = %v, want [aXYbc]", got)
	}

	m, ctx = newNormalContext(t, "abc")
	ctx.Editor.Registers.Set(editor.RegisterKey(0), "XY")

	feed(t, m, ctx, "P")
	if got := bufferText(ctx); got[0] != "XYabc" {
		t.Errorf("buffer after P = %v, want [XYabc]", got)
	}
}

func TestPasteLinewiseRegister(t *testing.T) {
	m, ctx := newNormalContext(t, "alpha", "beta")

	feed(t, m, ctx, "yyjP")

	got := bufferText(ctx)
	if len(got) != 3 || got[0] != "alpha" || got[1] != "alpha" || got[2] != "beta" {
		t.Errorf("buffer after yyjP = %v, want [alpha alpha beta]", got)
	}
}

func TestUndoRedoThroughNormalDispatch(t *testing.T) {
	m, ctx := newNormalContext(t, "alpha beta")

	feed(t, m, ctx, "dw")
	if got := bufferText(ctx); got[0] != "beta" {
		t.Fatalf("buffer after dw = %v, want [beta]", got)
	}

	feed(t, m, ctx, "u")
	if got := bufferText(ctx); got[0] != "alpha beta" {
		t.Errorf("buffer after undo = %v, want [alpha beta]", got)
	}

	feed(t, m, ctx, "<c-r>")
	if got := bufferText(ctx); got[0] != "beta" {
		t.Errorf("buffer after redo = %v, want [beta]", got)
	}
}

func TestFindCharAcrossMultibyteRunes(t *testing.T) {
	// "héllo wörld": é spans bytes 1-2, ö spans bytes 8-9.
	m, ctx := newNormalContext(t, "héllo wörld")

	feed(t, m, ctx, "fö")
	if got := cursorPosition(ctx); got != (buffer.Position{Line: 0, Column: 8}) {
		t.Errorf("cursor after fö = %+v, want (0,8)", got)
	}

	m, ctx = newNormalContext(t, "héllo wörld")
	feed(t, m, ctx, "tö")
	if got := cursorPosition(ctx); got != (buffer.Position{Line: 0, Column: 7}) {
		t.Errorf("cursor after tö = %+v, want (0,7)", got)
	}

	// With the cursor sitting on a multi-byte rune, the search must
	// skip that rune's full width, not a single byte.
	m, ctx = newNormalContext(t, "héllo wörld")
	placeCursor(ctx, buffer.Position{Line: 0, Column: 1})
	feed(t, m, ctx, "fl")
	if got := cursorPosition(ctx); got != (buffer.Position{Line: 0, Column: 3}) {
		t.Errorf("cursor after fl from é = %+v, want (0,3)", got)
	}
}

func TestDeleteToFindTarget(t *testing.T) {
	m, ctx := newNormalContext(t, "one:two")

	feed(t, m, ctx, "df:")

	if got := bufferText(ctx); got[0] != ":two" {
		t.Errorf("buffer after df: = %v, want [:two]", got)
	}
	if got := defaultRegister(ctx); got != "one" {
		t.Errorf("register after df: = %q, want %q", got, "one")
	}
}
