package buffer

import "testing"

func TestMutationGuardMergeOverlapping(t *testing.T) {
	cc := NewCollection()
	g := cc.Mutate(false)
	g.Set(0, Cursor{Anchor: Position{Line: 0, Column: 0}, Position: Position{Line: 0, Column: 2}})
	g.Add(Cursor{Anchor: Position{Line: 0, Column: 1}, Position: Position{Line: 0, Column: 4}})
	g.Add(Cursor{Anchor: Position{Line: 2, Column: 0}, Position: Position{Line: 2, Column: 1}})
	g.Release()

	if cc.Len() != 2 {
		t.Fatalf("expected 2 cursors after merge, got %d", cc.Len())
	}
	for i := 1; i < cc.Len(); i++ {
		prev := cc.At(i - 1).Range()
		cur := cc.At(i).Range()
		if cur.From.Less(prev.To) {
			t.Fatalf("cursors %d and %d overlap", i-1, i)
		}
	}
	if cc.MainIndex() >= cc.Len() {
		t.Fatalf("main index %d out of range (len %d)", cc.MainIndex(), cc.Len())
	}
}

func TestMergeKeepsEarliestCursorDirection(t *testing.T) {
	// A later, wider, backward cursor is swallowed by the merge run
	// the earlier forward cursor started: it only contributes its To
	// bound, the direction stays forward.
	cc := NewCollection()
	g := cc.Mutate(false)
	g.Set(0, Cursor{Anchor: Position{Line: 0, Column: 0}, Position: Position{Line: 0, Column: 2}})
	g.Add(Cursor{Anchor: Position{Line: 0, Column: 5}, Position: Position{Line: 0, Column: 0}})
	g.Release()

	if cc.Len() != 1 {
		t.Fatalf("expected 1 cursor after merge, got %d", cc.Len())
	}
	c := cc.At(0)
	if !c.Forward() {
		t.Fatalf("merged cursor is backward, want the earliest cursor's forward direction: %+v", c)
	}
	if c.Anchor != (Position{Line: 0, Column: 0}) || c.Position != (Position{Line: 0, Column: 5}) {
		t.Fatalf("merged cursor = %+v, want anchor (0,0) position (0,5)", c)
	}

	// Partial overlap, earliest cursor backward: the merged cursor
	// stays backward regardless of the swallowed cursor's direction.
	cc = NewCollection()
	g = cc.Mutate(false)
	g.Set(0, Cursor{Anchor: Position{Line: 0, Column: 3}, Position: Position{Line: 0, Column: 0}})
	g.Add(Cursor{Anchor: Position{Line: 0, Column: 2}, Position: Position{Line: 0, Column: 6}})
	g.Release()

	if cc.Len() != 1 {
		t.Fatalf("expected 1 cursor after partial-overlap merge, got %d", cc.Len())
	}
	c = cc.At(0)
	if c.Forward() {
		t.Fatalf("merged cursor is forward, want the earliest cursor's backward direction: %+v", c)
	}
	if c.Anchor != (Position{Line: 0, Column: 6}) || c.Position != (Position{Line: 0, Column: 0}) {
		t.Fatalf("merged cursor = %+v, want anchor (0,6) position (0,0)", c)
	}
}

func TestMutationGuardSortsByFrom(t *testing.T) {
	cc := NewCollection()
	g := cc.Mutate(false)
	g.Set(0, Cursor{Anchor: Position{Line: 5, Column: 0}, Position: Position{Line: 5, Column: 0}})
	g.Add(Cursor{Anchor: Position{Line: 1, Column: 0}, Position: Position{Line: 1, Column: 0}})
	g.Release()

	if !cc.At(0).Range().From.Less(cc.At(1).Range().From) {
		t.Fatalf("cursors not sorted: %+v", cc.All())
	}
}

func TestMainCursorRebindsNearPosition(t *testing.T) {
	cc := NewCollection()
	g := cc.Mutate(false)
	g.Set(0, Cursor{Anchor: Position{Line: 10, Column: 0}, Position: Position{Line: 10, Column: 0}})
	idx := g.Add(Cursor{Anchor: Position{Line: 0, Column: 0}, Position: Position{Line: 0, Column: 0}})
	g.SetMainIndex(idx)
	g.Release()

	if cc.Main().Position != (Position{Line: 0, Column: 0}) {
		t.Fatalf("expected main near original position, got %+v", cc.Main())
	}
}
