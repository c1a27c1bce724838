package editor

import "github.com/quill-editor/quill/internal/buffer"

// Direction picks which way to move through the navigation history.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// Snapshot is a (buffer, position) pair remembered for navigation.
type Snapshot struct {
	BufferHandle buffer.Handle
	Position     buffer.Position
}

// NavigationHistory is a per-client stack of snapshots, supporting
// forward/back motion and a "jump to previous buffer" time-travel
// shortcut.
type NavigationHistory struct {
	snapshots        []Snapshot
	currentIndex     int
	onPreviousBuffer bool
}

// NewNavigationHistory returns an empty history.
func NewNavigationHistory() *NavigationHistory {
	return &NavigationHistory{}
}

// SaveSnapshot truncates any forward tail and appends s, deduping
// against the last entry. If the client is mid time-travel
// (onPreviousBuffer), the index first advances to the end so the
// time-travel step itself is preserved instead of being overwritten.
func (h *NavigationHistory) SaveSnapshot(s Snapshot) {
	if h.onPreviousBuffer {
		h.currentIndex = len(h.snapshots)
		h.onPreviousBuffer = false
	}
	h.snapshots = h.snapshots[:h.currentIndex]
	if n := len(h.snapshots); n > 0 && h.snapshots[n-1] == s {
		return
	}
	h.snapshots = append(h.snapshots, s)
	h.currentIndex = len(h.snapshots)
}

// Move steps the history index in dir and returns the resolved
// snapshot, or false if there is nowhere to go. Stepping backward from
// the end saves the current position first so Forward can return to it.
func (h *NavigationHistory) Move(dir Direction, current Snapshot) (Snapshot, bool) {
	switch dir {
	case Backward:
		if h.currentIndex == len(h.snapshots) {
			h.snapshots = append(h.snapshots, current)
		}
		if h.currentIndex == 0 {
			return Snapshot{}, false
		}
		h.currentIndex--
		return h.snapshots[h.currentIndex], true
	default:
		if h.currentIndex >= len(h.snapshots)-1 {
			return Snapshot{}, false
		}
		h.currentIndex++
		return h.snapshots[h.currentIndex], true
	}
}

// MoveToPreviousBuffer saves the current snapshot (if different from
// the last), then scans backward for the most recent snapshot
// referencing a different buffer, entering the on-previous-buffer
// time-travel state.
func (h *NavigationHistory) MoveToPreviousBuffer(current Snapshot) (Snapshot, bool) {
	h.SaveSnapshot(current)
	for i := len(h.snapshots) - 1; i >= 0; i-- {
		if h.snapshots[i].BufferHandle != current.BufferHandle {
			h.currentIndex = i
			h.onPreviousBuffer = true
			return h.snapshots[i], true
		}
	}
	return Snapshot{}, false
}

// RemoveSnapshotsWithBufferHandle deletes every snapshot referencing
// bh, decrementing currentIndex for each removed entry at or before
// it, so a pointer whose own entry is removed falls back to the
// previous one.
func (h *NavigationHistory) RemoveSnapshotsWithBufferHandle(bh buffer.Handle) {
	out := h.snapshots[:0]
	for i, s := range h.snapshots {
		if s.BufferHandle == bh {
			if i <= h.currentIndex {
				h.currentIndex--
			}
			continue
		}
		out = append(out, s)
	}
	h.snapshots = out
	if h.currentIndex < 0 {
		h.currentIndex = 0
	}
	if h.currentIndex > len(h.snapshots) {
		h.currentIndex = len(h.snapshots)
	}
}
