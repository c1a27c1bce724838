package session

import (
	"testing"

	"github.com/quill-editor/quill/internal/buffer"
)

func TestCharDisplayDistancesExpandsTabs(t *testing.T) {
	line := buffer.NewLine("a\tb")
	distances := CharDisplayDistances(line, 4)
	// 'a' at column 0, '\t' at column 1 (expands to next stop at 4),
	// 'b' at column 4, trailing entry at column 5.
	want := []int{0, 1, 4, 5}
	if len(distances) != len(want) {
		t.Fatalf("got %v, want %v", distances, want)
	}
	for i := range want {
		if distances[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d (%v)", i, distances[i], want[i], distances)
		}
	}
}

func TestColumnOfByteSaturatesPastEnd(t *testing.T) {
	line := buffer.NewLine("abc")
	distances := CharDisplayDistances(line, 4)
	if got := ColumnOfByte(distances, 100); got != distances[len(distances)-1] {
		t.Fatalf("expected saturation to final entry, got %d", got)
	}
	if got := ColumnOfByte(distances, 1); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestUpdateScrollTracksCursorWithinDeadZone(t *testing.T) {
	c := &Client{ViewportHeight: 20, ViewportWidth: 80}
	c.UpdateScroll(0, 0)
	if c.ScrollY != 0 || c.ScrollX != 0 {
		t.Fatalf("expected no scroll at origin, got (%d,%d)", c.ScrollX, c.ScrollY)
	}
	c.UpdateScroll(50, 0)
	if c.ScrollY == 0 {
		t.Fatalf("expected scroll to follow cursor far past the viewport")
	}
}
