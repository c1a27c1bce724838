package session

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/quill-editor/quill/internal/buffer"
)

// CharDisplayDistances maps each byte offset of line into the display
// column the character starting there occupies, accounting for tab
// expansion (to the next tabSize stop) and wide/combining runes via
// runewidth. Index i holds the display column of the character whose
// first byte is line[i] (the other bytes of a multi-byte rune share
// that column); there is one extra trailing entry for the
// column just past the last character, matching buffer.Content's
// half-open range convention. A position inside a tab run resolves to
// the rightmost column the run can reach before exceeding the width.
func CharDisplayDistances(line buffer.Line, tabSize int) []int {
	text := line.Text()
	distances := make([]int, 0, len(text)+1)
	col := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		for j := 0; j < size; j++ {
			distances = append(distances, col)
		}
		i += size
		if r == '\t' {
			col += tabSize - (col % tabSize)
		} else {
			w := runewidth.RuneWidth(r)
			if w <= 0 {
				w = 1
			}
			col += w
		}
	}
	distances = append(distances, col)
	return distances
}

// ColumnOfByte returns the display column of byte offset in line,
// given its precomputed CharDisplayDistances. Offsets beyond the
// cached range saturate to the final entry.
func ColumnOfByte(distances []int, byteOffset int) int {
	if byteOffset >= len(distances) {
		return distances[len(distances)-1]
	}
	return distances[byteOffset]
}

// quarterHeightDeadZone computes the scroll-centering dead zone: the
// main cursor is free to move within the middle half of the viewport
// before scroll shifts, reducing jitter on small movements.
func quarterHeightDeadZone(viewportHeight int) int {
	return viewportHeight / 4
}

// UpdateScroll recomputes the client's scroll position so the main
// cursor of view stays visible, centering within a quarter-height
// dead zone. col is the cursor's display column
// (already computed via CharDisplayDistances by the caller, which has
// access to the buffer's tab_size).
func (c *Client) UpdateScroll(lineIdx, col int) {
	dead := quarterHeightDeadZone(c.ViewportHeight)

	if lineIdx < c.ScrollY+dead {
		c.ScrollY = lineIdx - dead
	} else if lineIdx >= c.ScrollY+c.ViewportHeight-dead {
		c.ScrollY = lineIdx - c.ViewportHeight + dead + 1
	}
	if c.ScrollY < 0 {
		c.ScrollY = 0
	}

	deadX := quarterHeightDeadZone(c.ViewportWidth)
	if col < c.ScrollX+deadX {
		c.ScrollX = col - deadX
	} else if col >= c.ScrollX+c.ViewportWidth-deadX {
		c.ScrollX = col - c.ViewportWidth + deadX + 1
	}
	if c.ScrollX < 0 {
		c.ScrollX = 0
	}
}
