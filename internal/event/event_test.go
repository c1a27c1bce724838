package event

import "testing"

func TestQueueFlipSwapsWriteIntoRead(t *testing.T) {
	q := New()
	q.Enqueue(Event{Kind: BufferRead, BufferHandle: 1})
	q.Enqueue(Event{Kind: BufferWrite, BufferHandle: 2})

	if q.Empty() {
		t.Fatalf("queue should report non-empty only after checking, got Empty()=true before Flip")
	}

	read := q.Flip()
	if len(read) != 2 {
		t.Fatalf("Flip returned %d events, want 2", len(read))
	}
	if read[0].Kind != BufferRead || read[1].Kind != BufferWrite {
		t.Fatalf("Flip events out of order: %+v", read)
	}
}

func TestQueueFlipClearsPriorReadBucket(t *testing.T) {
	q := New()
	q.Enqueue(Event{Kind: Idle})
	q.Flip()

	// Nothing enqueued since; a second Flip should yield no events and
	// the queue should report empty.
	read := q.Flip()
	if len(read) != 0 {
		t.Fatalf("second Flip returned %d events, want 0", len(read))
	}
	if !q.Empty() {
		t.Fatalf("Empty() = false after draining both buckets")
	}
}

func TestQueueEnqueueDuringConsumptionGoesToNextFlip(t *testing.T) {
	q := New()
	q.Enqueue(Event{Kind: BufferClose, BufferHandle: 3})
	read := q.Flip()
	if len(read) != 1 {
		t.Fatalf("expected 1 event, got %d", len(read))
	}

	// Simulate a handler reacting to the BufferClose by enqueueing a
	// FixCursors event; it must not appear in the current read bucket.
	q.Enqueue(Event{Kind: FixCursors})
	if len(q.read) != 1 || q.read[0].Kind != BufferClose {
		t.Fatalf("enqueue during consumption mutated the in-flight read bucket")
	}

	next := q.Flip()
	if len(next) != 1 || next[0].Kind != FixCursors {
		t.Fatalf("FixCursors event missing from next Flip: %+v", next)
	}
	if rest := q.Flip(); len(rest) != 0 || !q.Empty() {
		t.Fatalf("queue should be empty after draining the FixCursors event")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Idle:                "Idle",
		BufferRead:          "BufferRead",
		BufferInsertText:    "BufferInsertText",
		BufferDeleteText:    "BufferDeleteText",
		BufferWrite:         "BufferWrite",
		BufferClose:         "BufferClose",
		BufferViewLostFocus: "BufferViewLostFocus",
		FixCursors:          "FixCursors",
		Kind(99):            "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
