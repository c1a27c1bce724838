// Package event implements the double-buffered editor-event queue
// consumed by core and plugin handlers between reactor ticks.
package event

import "github.com/quill-editor/quill/internal/buffer"

// Kind tags the payload carried by an Event.
type Kind int

const (
	Idle Kind = iota
	BufferRead
	BufferInsertText
	BufferDeleteText
	BufferWrite
	BufferClose
	BufferViewLostFocus
	FixCursors
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "Idle"
	case BufferRead:
		return "BufferRead"
	case BufferInsertText:
		return "BufferInsertText"
	case BufferDeleteText:
		return "BufferDeleteText"
	case BufferWrite:
		return "BufferWrite"
	case BufferClose:
		return "BufferClose"
	case BufferViewLostFocus:
		return "BufferViewLostFocus"
	case FixCursors:
		return "FixCursors"
	default:
		return "Unknown"
	}
}

// Event is one record describing a state change. Only the field(s)
// relevant to Kind are populated.
type Event struct {
	Kind         Kind
	BufferHandle buffer.Handle
	Range        buffer.Range
	Text         string
	NewPath      bool
	ViewHandle   int
	ClientHandle int
}

// Queue is the double-buffered event channel: Enqueue always writes to
// the write bucket; Flip publishes it as the read bucket for
// consumers and starts a fresh write bucket.
type Queue struct {
	read  []Event
	write []Event
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends e to the write bucket.
func (q *Queue) Enqueue(e Event) {
	q.write = append(q.write, e)
}

// Flip clears the read bucket and swaps the write bucket into it,
// returning the events now available for consumption. The reactor
// calls Flip, runs plugin handlers, then core handlers, and repeats
// until both buckets are drained (i.e. Flip returns empty and no
// handler enqueued anything new).
func (q *Queue) Flip() []Event {
	q.read, q.write = q.write, q.read[:0]
	return q.read
}

// Empty reports whether both buckets are drained.
func (q *Queue) Empty() bool {
	return len(q.read) == 0 && len(q.write) == 0
}
