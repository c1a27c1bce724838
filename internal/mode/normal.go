package mode

import (
	"strings"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/keys"
)

// normalState is Normal mode's Vim-like grammar: an optional count
// prefix, an optional `"<letter>` register prefix, motions
// (h j k l w b e gg G 0 $ f t / ? n N), and operators (d y c) that
// consume the next motion. Operators and motions act on the view's
// main cursor only; Insert mode is where multi-cursor editing happens
// (see insert.go).
type normalState struct {
	count       int
	hasRegister bool
	register    editor.RegisterKey

	waitingRegister bool
	pendingOp       byte // 0, 'd', 'y', or 'c'
	pendingFind     byte // 0, 'f', 't', or 'g' (second half of "gg")

	waitingMacroStart bool
	waitingMacroPlay  bool
	macroRegister     editor.RegisterKey
}

func (s *normalState) reset() {
	s.count = 0
	s.hasRegister = false
	s.pendingOp = 0
}

func (s *normalState) countOrDefault() int {
	if s.count == 0 {
		return 1
	}
	return s.count
}

func (s *normalState) resolveRegister() editor.RegisterKey {
	if s.hasRegister {
		return s.register
	}
	return editor.RegisterKey(0)
}

func (s *normalState) onKeys(m *Machine, ctx *Context, k keys.Key) Result {
	if s.pendingFind != 0 {
		op := s.pendingFind
		s.pendingFind = 0
		s.runFind(m, ctx, op, k)
		s.reset()
		return cont()
	}
	if s.waitingMacroStart {
		s.waitingMacroStart = false
		if k.Kind == keys.Char {
			if reg, ok := editor.RegisterKeyFromChar(byte(k.Char)); ok {
				s.macroRegister = reg
				ctx.Editor.BufferedKeys.StartRecording()
			}
		}
		return cont()
	}
	if s.waitingMacroPlay {
		s.waitingMacroPlay = false
		if k.Kind == keys.Char {
			if reg, ok := editor.RegisterKeyFromChar(byte(k.Char)); ok {
				s.playMacro(m, ctx, reg)
			}
		}
		return cont()
	}
	if s.waitingRegister {
		s.waitingRegister = false
		if k.Kind == keys.Char {
			if reg, ok := editor.RegisterKeyFromChar(byte(k.Char)); ok {
				s.register = reg
				s.hasRegister = true
			}
		}
		return cont()
	}
	if k.Kind == keys.Char && k.Char >= '1' && k.Char <= '9' {
		s.count = s.count*10 + int(k.Char-'0')
		return cont()
	}
	if k.Kind == keys.Char && k.Char == '0' && s.count > 0 {
		s.count *= 10
		return cont()
	}

	if k.Kind == keys.Char {
		switch k.Char {
		case '"':
			s.waitingRegister = true
			return cont()
		case 'd', 'y', 'c':
			if s.pendingOp == byte(k.Char) {
				s.applyLinewise(m, ctx, byte(k.Char))
				s.reset()
				return cont()
			}
			s.pendingOp = byte(k.Char)
			return cont()
		case 'f', 't':
			s.pendingFind = byte(k.Char)
			return cont()
		case 'g':
			s.pendingFind = 'g'
			return cont()
		case 'h', 'j', 'k', 'l', 'w', 'b', 'e', '0', '$':
			s.runMotionLetter(m, ctx, k.Char)
			s.reset()
			return cont()
		case 'G':
			s.moveOrOperate(m, ctx, motionLastLine)
			s.reset()
			return cont()
		case 'i':
			s.reset()
			m.ChangeTo(ctx, Insert)
			return cont()
		case 'a':
			moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position { return positionAfter(c, p) })
			s.reset()
			m.ChangeTo(ctx, Insert)
			return cont()
		case 'I':
			moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position { return motionLineStart(c, p, 1) })
			s.reset()
			m.ChangeTo(ctx, Insert)
			return cont()
		case 'A':
			moveAllCursors(ctx, func(c *buffer.Content, p buffer.Position) buffer.Position { return motionLineEnd(c, p, 1) })
			s.reset()
			m.ChangeTo(ctx, Insert)
			return cont()
		case 'o':
			s.openLine(ctx, true)
			s.reset()
			m.ChangeTo(ctx, Insert)
			return cont()
		case 'O':
			s.openLine(ctx, false)
			s.reset()
			m.ChangeTo(ctx, Insert)
			return cont()
		case 'x':
			s.deleteCharsUnderCursor(ctx)
			s.reset()
			return cont()
		case 'p', 'P':
			s.paste(ctx, k.Char == 'p')
			s.reset()
			return cont()
		case 'u':
			s.undo(ctx)
			s.reset()
			return cont()
		case '/':
			s.reset()
			enterSearch(m, ctx, true)
			return cont()
		case '?':
			s.reset()
			enterSearch(m, ctx, false)
			return cont()
		case 'n':
			runSearch(ctx, true)
			s.reset()
			return cont()
		case 'N':
			runSearch(ctx, false)
			s.reset()
			return cont()
		case ':':
			s.reset()
			m.ChangeTo(ctx, CommandLine)
			return cont()
		case 'q':
			if ctx.Editor.BufferedKeys.IsRecording() {
				text := ctx.Editor.BufferedKeys.StopRecording()
				ctx.Editor.Registers.Set(s.macroRegister, text)
			} else {
				s.waitingMacroStart = true
			}
			s.reset()
			return cont()
		case '@':
			s.waitingMacroPlay = true
			s.reset()
			return cont()
		}
	}
	if k.Kind == keys.Ctrl && k.Char == 'r' {
		s.redo(ctx)
		s.reset()
	}
	return cont()
}

// runFind resolves a pending 'f'/'t'/"gg" lookup now that its argument
// key has arrived.
func (s *normalState) runFind(m *Machine, ctx *Context, op byte, k keys.Key) {
	if op == 'g' {
		if k.Kind == keys.Char && k.Char == 'g' {
			s.moveOrOperate(m, ctx, motionFirstLine)
		}
		return
	}
	if k.Kind != keys.Char {
		return
	}
	buf := ctx.Buffer()
	if buf == nil {
		return
	}
	target, ok := findCharForward(buf.Content, mainCursorPosition(ctx), k.Char)
	if !ok {
		return
	}
	if op == 't' {
		target = positionBefore(buf.Content, target)
	}
	s.applyMotionResult(m, ctx, target)
}

func (s *normalState) runMotionLetter(m *Machine, ctx *Context, c rune) {
	var fn motion
	switch c {
	case 'h':
		fn = motionLeft
	case 'j':
		fn = motionDown
	case 'k':
		fn = motionUp
	case 'l':
		fn = motionRight
	case 'w':
		fn = motionWordForward
	case 'b':
		fn = motionWordBackward
	case 'e':
		fn = motionWordEnd
	case '0':
		fn = motionLineStart
	case '$':
		fn = motionLineEnd
	}
	s.moveOrOperate(m, ctx, fn)
}

// moveOrOperate computes fn's destination from the main cursor with
// the current count, then either moves the cursor there (no pending
// operator) or applies the pending operator to the span between.
func (s *normalState) moveOrOperate(m *Machine, ctx *Context, fn motion) {
	buf := ctx.Buffer()
	if buf == nil || fn == nil {
		return
	}
	target := fn(buf.Content, mainCursorPosition(ctx), s.countOrDefault())
	s.applyMotionResult(m, ctx, target)
}

func (s *normalState) applyMotionResult(m *Machine, ctx *Context, target buffer.Position) {
	if s.pendingOp == 0 {
		setMainCursor(ctx, target)
		return
	}
	r := buffer.NewRange(mainCursorPosition(ctx), target)
	s.applyOperator(m, ctx, s.pendingOp, r)
}

func (s *normalState) applyOperator(m *Machine, ctx *Context, op byte, r buffer.Range) {
	v := ctx.View
	if v == nil {
		return
	}
	reg := s.resolveRegister()
	switch op {
	case 'y':
		ctx.Editor.Registers.Set(reg, textOfRange(ctx, r))
		setMainCursor(ctx, r.From)
	case 'd', 'c':
		text, err := ctx.Editor.Buffers.DeleteRange(v.BufferHandle, r)
		if err != nil {
			return
		}
		ctx.Editor.Registers.Set(reg, text)
		ctx.Editor.DrainEvents()
		if op == 'c' {
			m.ChangeTo(ctx, Insert)
		}
	}
}

// applyLinewise handles the `dd`/`yy`/`cc` doubled-operator form,
// acting on count whole lines starting at the cursor's line. `cc`
// leaves one empty line behind for the insert that follows, instead
// of letting the next line's content slide up to the cursor.
func (s *normalState) applyLinewise(m *Machine, ctx *Context, op byte) {
	buf := ctx.Buffer()
	v := ctx.View
	if buf == nil || v == nil {
		return
	}
	r := lineRange(buf.Content, mainCursorPosition(ctx).Line, s.countOrDefault())
	s.applyOperator(m, ctx, op, r)
	if op == 'c' {
		if _, err := ctx.Editor.Buffers.InsertText(v.BufferHandle, r.From, "\n"); err == nil {
			ctx.Editor.DrainEvents()
			setMainCursor(ctx, r.From)
		}
	}
}

func (s *normalState) deleteCharsUnderCursor(ctx *Context) {
	buf := ctx.Buffer()
	v := ctx.View
	if buf == nil || v == nil {
		return
	}
	pos := mainCursorPosition(ctx)
	end := pos
	for i := 0; i < s.countOrDefault(); i++ {
		next := positionAfter(buf.Content, end)
		if next.Line != pos.Line {
			break
		}
		end = next
	}
	if end.Equal(pos) {
		return
	}
	text, err := ctx.Editor.Buffers.DeleteRange(v.BufferHandle, buffer.NewRange(pos, end))
	if err != nil {
		return
	}
	ctx.Editor.Registers.Set(s.resolveRegister(), text)
	ctx.Editor.DrainEvents()
}

func (s *normalState) paste(ctx *Context, after bool) {
	buf := ctx.Buffer()
	v := ctx.View
	if buf == nil || v == nil {
		return
	}
	text := ctx.Editor.Registers.Get(s.resolveRegister())
	if text == "" {
		return
	}
	pos := mainCursorPosition(ctx)
	if after {
		pos = positionAfter(buf.Content, pos)
	}
	if _, err := ctx.Editor.Buffers.InsertText(v.BufferHandle, pos, text); err == nil {
		ctx.Editor.DrainEvents()
	}
}

func (s *normalState) undo(ctx *Context) {
	v := ctx.View
	if v == nil {
		return
	}
	for i := 0; i < s.countOrDefault(); i++ {
		if _, err := ctx.Editor.Buffers.Undo(v.BufferHandle); err != nil {
			break
		}
		ctx.Editor.DrainEvents()
	}
}

func (s *normalState) redo(ctx *Context) {
	v := ctx.View
	if v == nil {
		return
	}
	for i := 0; i < s.countOrDefault(); i++ {
		if _, err := ctx.Editor.Buffers.Redo(v.BufferHandle); err != nil {
			break
		}
		ctx.Editor.DrainEvents()
	}
}

func (s *normalState) openLine(ctx *Context, below bool) {
	buf := ctx.Buffer()
	v := ctx.View
	if buf == nil || v == nil {
		return
	}
	line := mainCursorPosition(ctx).Line
	if below {
		pos := buffer.Position{Line: line, Column: uint32(buf.Content.LineAt(int(line)).ByteLen())}
		if _, err := ctx.Editor.Buffers.InsertText(v.BufferHandle, pos, "\n"); err == nil {
			ctx.Editor.DrainEvents()
			setMainCursor(ctx, buffer.Position{Line: line + 1, Column: 0})
		}
		return
	}
	pos := buffer.Position{Line: line, Column: 0}
	if _, err := ctx.Editor.Buffers.InsertText(v.BufferHandle, pos, "\n"); err == nil {
		ctx.Editor.DrainEvents()
		setMainCursor(ctx, pos)
	}
}

// playMacro replays a recorded key sequence by parsing its DSL text
// and dispatching each key directly through the machine, bypassing key
// map remapping (a deliberate simplification: remaps are about how raw
// input is interpreted, and a macro already records post-remap keys).
func (s *normalState) playMacro(m *Machine, ctx *Context, reg editor.RegisterKey) {
	text := ctx.Editor.Registers.Get(reg)
	if text == "" {
		return
	}
	parsed, err := keys.Parse(text)
	if err != nil {
		return
	}
	for _, k := range parsed {
		m.HandleKey(ctx, k)
	}
}

func setMainCursor(ctx *Context, p buffer.Position) {
	v := ctx.View
	if v == nil {
		return
	}
	g := v.Cursors.Mutate(false)
	i := v.Cursors.MainIndex()
	c := g.Get(i)
	c.Position = p
	c.Anchor = p
	g.Set(i, c)
	g.Release()
}

func mainCursorPosition(ctx *Context) buffer.Position {
	if ctx.View == nil {
		return buffer.Position{}
	}
	return ctx.View.Cursors.Main().Position
}

func textOfRange(ctx *Context, r buffer.Range) string {
	buf := ctx.Buffer()
	if buf == nil {
		return ""
	}
	parts, err := buf.Content.TextRange(r)
	if err != nil {
		return ""
	}
	return strings.Join(parts, "\n")
}

func lineRange(c *buffer.Content, startLine uint32, count int) buffer.Range {
	total := c.LineCount()
	endLine := int(startLine) + count
	if endLine > total {
		endLine = total
	}
	if endLine < total {
		return buffer.Range{From: buffer.Position{Line: startLine}, To: buffer.Position{Line: uint32(endLine)}}
	}
	if startLine > 0 {
		prevEnd := buffer.Position{Line: startLine - 1, Column: uint32(c.LineAt(int(startLine) - 1).ByteLen())}
		return buffer.Range{From: prevEnd, To: c.End()}
	}
	return buffer.Range{From: buffer.Position{Line: 0}, To: c.End()}
}

func enterSearch(m *Machine, ctx *Context, forward bool) {
	prompt := "/"
	if !forward {
		prompt = "?"
	}
	m.EnterReadLine(ctx, prompt, func(ctx *Context, input string, ok bool) {
		m.ChangeTo(ctx, Normal)
		if !ok || input == "" {
			return
		}
		ctx.Editor.Registers.Set(editor.SearchRegister, input)
		if err := ctx.Editor.AuxPattern.Compile(input); err != nil {
			ctx.Editor.StatusBar.Write(editor.MessageError, err.Error())
			return
		}
		runSearch(ctx, forward)
	})
}

func runSearch(ctx *Context, forward bool) {
	buf := ctx.Buffer()
	if buf == nil {
		return
	}
	text := buf.Content.String()
	offset := positionToByteOffset(buf.Content, mainCursorPosition(ctx))
	var start int
	var ok bool
	if forward {
		start, _, ok = ctx.Editor.AuxPattern.FindFrom(text, offset+1)
		if !ok {
			start, _, ok = ctx.Editor.AuxPattern.FindFrom(text, 0)
		}
	} else {
		start, _, ok = ctx.Editor.AuxPattern.FindLastBefore(text, offset)
		if !ok {
			start, _, ok = ctx.Editor.AuxPattern.FindLastBefore(text, len(text)+1)
		}
	}
	if !ok {
		return
	}
	setMainCursor(ctx, byteOffsetToPosition(buf.Content, start))
}

func positionToByteOffset(c *buffer.Content, p buffer.Position) int {
	offset := 0
	for i := 0; i < int(p.Line); i++ {
		offset += c.LineAt(i).ByteLen() + 1
	}
	return offset + int(p.Column)
}

func byteOffsetToPosition(c *buffer.Content, offset int) buffer.Position {
	for i := 0; i < c.LineCount(); i++ {
		lineLen := c.LineAt(i).ByteLen()
		if offset <= lineLen {
			return buffer.Position{Line: uint32(i), Column: uint32(offset)}
		}
		offset -= lineLen + 1
	}
	return c.End()
}
