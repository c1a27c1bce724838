package mode

import (
	"unicode/utf8"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/keys"
)

// insertState is Insert mode: every printable key is applied to every
// cursor in the view, one cursor at a time, draining events after each
// edit so the buffer-insert/delete rebasing law updates the remaining
// cursors before the next one is touched; typing with N cursors
// inserts at all N.
type insertState struct{}

func (s *insertState) onEnter(ctx *Context) {}

func (s *insertState) onExit(ctx *Context) {
	if b := ctx.Buffer(); b != nil {
		b.History.CommitGroup()
	}
}

func (s *insertState) onKeys(m *Machine, ctx *Context, k keys.Key) Result {
	switch k.Kind {
	case keys.Esc:
		insertExitMoveBack(ctx)
		m.ChangeTo(ctx, Normal)
	case keys.Char:
		insertAtAllCursors(ctx, string(k.Char))
	case keys.Enter:
		insertAtAllCursors(ctx, "\n")
	case keys.Tab:
		insertAtAllCursors(ctx, "\t")
	case keys.Backspace:
		deleteBackwardAtAllCursors(ctx)
	case keys.Delete:
		deleteForwardAtAllCursors(ctx)
	case keys.Left:
		moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position { return positionBefore(c, p) })
	case keys.Right:
		moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position { return positionAfter(c, p) })
	case keys.Home:
		moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position { return buffer.Position{Line: p.Line} })
	case keys.End:
		moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position {
			return buffer.Position{Line: p.Line, Column: uint32(c.LineAt(int(p.Line)).ByteLen())}
		})
	case keys.Up:
		moveAllCursors(ctx, moveLineUp)
	case keys.Down:
		moveAllCursors(ctx, moveLineDown)
	}
	return cont()
}

// insertExitMoveBack steps the main cursor (and every other, vim-like)
// one column left on leaving Insert mode, unless already at column 0.
func insertExitMoveBack(ctx *Context) {
	v := ctx.View
	if v == nil {
		return
	}
	buf := ctx.Buffer()
	if buf == nil {
		return
	}
	g := v.Cursors.Mutate(false)
	for i := 0; i < v.Cursors.Len(); i++ {
		c := g.Get(i)
		if c.Position.Column > 0 {
			c.Position = positionBefore(buf.Content, c.Position)
			c.Anchor = c.Position
			g.Set(i, c)
		}
	}
	g.Release()
}

func insertAtAllCursors(ctx *Context, text string) {
	v := ctx.View
	if v == nil {
		return
	}
	for i := 0; i < v.Cursors.Len(); i++ {
		c := v.Cursors.At(i)
		if _, err := ctx.Editor.Buffers.InsertText(v.BufferHandle, c.Position, text); err != nil {
			continue
		}
		ctx.Editor.DrainEvents()
	}
}

func deleteBackwardAtAllCursors(ctx *Context) {
	v := ctx.View
	if v == nil {
		return
	}
	for i := 0; i < v.Cursors.Len(); i++ {
		buf := ctx.Editor.Buffers.Get(v.BufferHandle)
		if buf == nil {
			return
		}
		c := v.Cursors.At(i)
		from := positionBefore(buf.Content, c.Position)
		if from.Equal(c.Position) {
			continue
		}
		if _, err := ctx.Editor.Buffers.DeleteRange(v.BufferHandle, buffer.NewRange(from, c.Position)); err != nil {
			continue
		}
		ctx.Editor.DrainEvents()
	}
}

func deleteForwardAtAllCursors(ctx *Context) {
	v := ctx.View
	if v == nil {
		return
	}
	for i := 0; i < v.Cursors.Len(); i++ {
		buf := ctx.Editor.Buffers.Get(v.BufferHandle)
		if buf == nil {
			return
		}
		c := v.Cursors.At(i)
		to := positionAfter(buf.Content, c.Position)
		if to.Equal(c.Position) {
			continue
		}
		if _, err := ctx.Editor.Buffers.DeleteRange(v.BufferHandle, buffer.NewRange(c.Position, to)); err != nil {
			continue
		}
		ctx.Editor.DrainEvents()
	}
}

func moveAllCursors(ctx *Context, fn func(*buffer.Content, buffer.Position) buffer.Position) {
	v := ctx.View
	if v == nil {
		return
	}
	buf := ctx.Buffer()
	if buf == nil {
		return
	}
	g := v.Cursors.Mutate(false)
	for i := 0; i < v.Cursors.Len(); i++ {
		c := g.Get(i)
		c.Position = fn(buf.Content, c.Position)
		c.Anchor = c.Position
		g.Set(i, c)
	}
	g.Release()
}

// positionBefore returns the position one rune before p, joining onto
// the end of the previous line at column 0.
func positionBefore(c *buffer.Content, p buffer.Position) buffer.Position {
	if p.Column > 0 {
		line := c.LineAt(int(p.Line)).Text()
		_, size := utf8.DecodeLastRuneInString(line[:p.Column])
		p.Column -= uint32(size)
		return p
	}
	if p.Line > 0 {
		prev := c.LineAt(int(p.Line) - 1)
		return buffer.Position{Line: p.Line - 1, Column: uint32(prev.ByteLen())}
	}
	return p
}

// positionAfter returns the position one rune after p, crossing onto
// the start of the next line at end-of-line.
func positionAfter(c *buffer.Content, p buffer.Position) buffer.Position {
	line := c.LineAt(int(p.Line))
	if int(p.Column) < line.ByteLen() {
		_, size := utf8.DecodeRuneInString(line.Text()[p.Column:])
		p.Column += uint32(size)
		return p
	}
	if int(p.Line) < c.LineCount()-1 {
		return buffer.Position{Line: p.Line + 1, Column: 0}
	}
	return p
}

func moveLineUp(c *buffer.Content, p buffer.Position) buffer.Position {
	if p.Line == 0 {
		return p
	}
	p.Line--
	return c.SaturatePosition(p)
}

func moveLineDown(c *buffer.Content, p buffer.Position) buffer.Position {
	if int(p.Line) >= c.LineCount()-1 {
		return p
	}
	p.Line++
	return c.SaturatePosition(p)
}
