package mode

import (
	"strings"
	"unicode/utf8"

	"github.com/quill-editor/quill/internal/buffer"
)

// motion computes the destination of a Normal-mode motion from p,
// repeated count times. Operators apply to the half-open range between
// the cursor's current position and a motion's destination; this
// collapses vim's separate word/WORD and inclusive/exclusive motion
// classes into one "maximal non-space run" notion of a word.
type motion func(c *buffer.Content, p buffer.Position, count int) buffer.Position

func motionLeft(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		np := positionBefore(c, p)
		if np.Line != p.Line {
			break
		}
		p = np
	}
	return p
}

func motionRight(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		np := positionAfter(c, p)
		if np.Line != p.Line {
			break
		}
		p = np
	}
	return p
}

func motionUp(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		p = moveLineUp(c, p)
	}
	return p
}

func motionDown(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		p = moveLineDown(c, p)
	}
	return p
}

func motionLineStart(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	return buffer.Position{Line: p.Line}
}

func motionLineEnd(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	return buffer.Position{Line: p.Line, Column: uint32(c.LineAt(int(p.Line)).ByteLen())}
}

func motionFirstLine(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	return buffer.Position{Line: 0}
}

func motionLastLine(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	return buffer.Position{Line: uint32(c.LineCount() - 1)}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// motionWordForward moves to the start of the next non-space run,
// crossing line boundaries.
func motionWordForward(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		p = wordForwardOnce(c, p)
	}
	return p
}

func wordForwardOnce(c *buffer.Content, p buffer.Position) buffer.Position {
	line := c.LineAt(int(p.Line)).Text()
	col := int(p.Column)
	if col < len(line) && !isSpace(line[col]) {
		for col < len(line) && !isSpace(line[col]) {
			col++
		}
	}
	for {
		for col < len(line) && isSpace(line[col]) {
			col++
		}
		if col < len(line) {
			return buffer.Position{Line: p.Line, Column: uint32(col)}
		}
		if int(p.Line) >= c.LineCount()-1 {
			return buffer.Position{Line: p.Line, Column: uint32(len(line))}
		}
		p.Line++
		col = 0
		line = c.LineAt(int(p.Line)).Text()
		if line != "" {
			return buffer.Position{Line: p.Line, Column: 0}
		}
	}
}

// motionWordEnd moves to one past the last byte of the current or
// next non-space run, the exclusive end an operator range uses.
func motionWordEnd(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		p = wordEndOnce(c, p)
	}
	return p
}

func wordEndOnce(c *buffer.Content, p buffer.Position) buffer.Position {
	line := c.LineAt(int(p.Line)).Text()
	col := int(p.Column) + 1
	for {
		for col < len(line) && isSpace(line[col]) {
			col++
		}
		if col < len(line) {
			for col+1 < len(line) && !isSpace(line[col+1]) {
				col++
			}
			return buffer.Position{Line: p.Line, Column: uint32(col + 1)}
		}
		if int(p.Line) >= c.LineCount()-1 {
			return buffer.Position{Line: p.Line, Column: uint32(len(line))}
		}
		p.Line++
		col = 0
		line = c.LineAt(int(p.Line)).Text()
	}
}

// motionWordBackward moves to the start of the previous non-space run.
func motionWordBackward(c *buffer.Content, p buffer.Position, count int) buffer.Position {
	for i := 0; i < count; i++ {
		p = wordBackwardOnce(c, p)
	}
	return p
}

func wordBackwardOnce(c *buffer.Content, p buffer.Position) buffer.Position {
	line := c.LineAt(int(p.Line)).Text()
	col := int(p.Column)
	for {
		col--
		for col >= 0 && isSpace(line[col]) {
			col--
		}
		if col >= 0 {
			for col > 0 && !isSpace(line[col-1]) {
				col--
			}
			return buffer.Position{Line: p.Line, Column: uint32(col)}
		}
		if p.Line == 0 {
			return buffer.Position{Line: 0, Column: 0}
		}
		p.Line--
		line = c.LineAt(int(p.Line)).Text()
		col = len(line)
	}
}

// findCharForward returns the position of target's next occurrence on
// the current line after p, or p unchanged if there is none. The rune
// under the cursor is skipped by its full UTF-8 width so the search
// window never starts mid-rune.
func findCharForward(c *buffer.Content, p buffer.Position, target rune) (buffer.Position, bool) {
	line := c.LineAt(int(p.Line)).Text()
	rest := line[p.Column:]
	if len(rest) == 0 {
		return p, false
	}
	_, size := utf8.DecodeRuneInString(rest)
	idx := strings.IndexRune(rest[size:], target)
	if idx < 0 {
		return p, false
	}
	return buffer.Position{Line: p.Line, Column: p.Column + uint32(size+idx)}, true
}
