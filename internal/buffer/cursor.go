package buffer

import "sort"

// Cursor is an (anchor, position) pair; the range between them is the
// selection. Forward reports whether position is at or after anchor,
// which is preserved across merges so motions keep their direction.
type Cursor struct {
	Anchor   Position
	Position Position
	// DisplayDistance optionally caches the cursor's display column
	// so vertical motion through variable-width lines can restore it.
	DisplayDistance int
	hasDisplay      bool
}

// Range returns the selection spanned by this cursor.
func (c Cursor) Range() Range { return NewRange(c.Anchor, c.Position) }

// Forward reports whether the cursor's position is at or after its anchor.
func (c Cursor) Forward() bool { return c.Anchor.LessEqual(c.Position) }

// Collection is a non-empty, ordered multi-cursor set.
type Collection struct {
	cursors    []Cursor
	mainIndex  int
}

// NewCollection returns a collection with a single zero cursor.
func NewCollection() *Collection {
	return &Collection{cursors: []Cursor{{}}}
}

// Len returns the number of cursors.
func (cc *Collection) Len() int { return len(cc.cursors) }

// At returns the cursor at index i.
func (cc *Collection) At(i int) Cursor { return cc.cursors[i] }

// MainIndex returns the index of the main cursor.
func (cc *Collection) MainIndex() int { return cc.mainIndex }

// Main returns the main cursor.
func (cc *Collection) Main() Cursor { return cc.cursors[cc.mainIndex] }

// All returns a copy of every cursor, ordered by Range().From.
func (cc *Collection) All() []Cursor {
	out := make([]Cursor, len(cc.cursors))
	copy(out, cc.cursors)
	return out
}

// MutationGuard is the scoped mutation handle: callers obtain one via
// Mutate, make changes, and Release restores the invariants (sort,
// merge overlapping ranges, clamp the main index) before any other
// code may read the collection again.
type MutationGuard struct {
	cc          *Collection
	keepDisplay bool
}

// Mutate begins a scoped mutation. keepDisplay controls whether
// per-cursor display distances survive the merge that Release performs
// (vertical motion keeps them; most edits clear them).
func (cc *Collection) Mutate(keepDisplay bool) *MutationGuard {
	return &MutationGuard{cc: cc, keepDisplay: keepDisplay}
}

// Add appends a new cursor and returns its index.
func (g *MutationGuard) Add(c Cursor) int {
	g.cc.cursors = append(g.cc.cursors, c)
	return len(g.cc.cursors) - 1
}

// SwapRemove removes the cursor at index i by swapping with the last
// element; ordering is restored on Release anyway.
func (g *MutationGuard) SwapRemove(i int) {
	last := len(g.cc.cursors) - 1
	g.cc.cursors[i] = g.cc.cursors[last]
	g.cc.cursors = g.cc.cursors[:last]
}

// Set replaces the cursor at index i.
func (g *MutationGuard) Set(i int, c Cursor) {
	g.cc.cursors[i] = c
}

// Get returns the cursor at index i for in-place editing.
func (g *MutationGuard) Get(i int) Cursor {
	return g.cc.cursors[i]
}

// SetMainIndex pins the main cursor to a specific index.
func (g *MutationGuard) SetMainIndex(i int) {
	g.cc.mainIndex = i
}

// SetMainNearPosition re-binds the main cursor to whichever cursor's
// position is closest to p (ties broken by lower index).
func (g *MutationGuard) SetMainNearPosition(p Position) {
	best := 0
	bestDist := distance(g.cc.cursors[0].Position, p)
	for i := 1; i < len(g.cc.cursors); i++ {
		d := distance(g.cc.cursors[i].Position, p)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	g.cc.mainIndex = best
}

func distance(a, b Position) int64 {
	dl := int64(a.Line) - int64(b.Line)
	dc := int64(a.Column) - int64(b.Column)
	if dl < 0 {
		dl = -dl
	}
	if dc < 0 {
		dc = -dc
	}
	return dl*1_000_000 + dc
}

// Release restores the collection's invariants: if empty, reinsert a
// zero cursor; sort by range-from; merge overlapping ranges, each
// merge run keeping its earliest cursor's direction; re-bind the main
// index to the
// position closest to where it pointed before the mutation.
func (g *MutationGuard) Release() {
	cc := g.cc
	if len(cc.cursors) == 0 {
		cc.cursors = []Cursor{{}}
		cc.mainIndex = 0
		return
	}
	if cc.mainIndex >= len(cc.cursors) {
		cc.mainIndex = len(cc.cursors) - 1
	}
	mainBefore := cc.cursors[cc.mainIndex].Position

	sort.SliceStable(cc.cursors, func(i, j int) bool {
		return cc.cursors[i].Range().From.Less(cc.cursors[j].Range().From)
	})

	merged := make([]Cursor, 0, len(cc.cursors))
	merged = append(merged, cc.cursors[0])
	for _, c := range cc.cursors[1:] {
		last := &merged[len(merged)-1]
		lastRange := last.Range()
		cRange := c.Range()
		if cRange.From.Less(lastRange.To) || cRange.From.Equal(lastRange.To) {
			// Overlap: extend the accumulated span. Direction always
			// stays with the earliest cursor of the merge run; the
			// swallowed cursor only contributes its To bound.
			outerFrom := lastRange.From
			outerTo := lastRange.To
			if outerTo.Less(cRange.To) {
				outerTo = cRange.To
			}
			if !g.keepDisplay {
				last.hasDisplay = false
				last.DisplayDistance = 0
			}
			if last.Forward() {
				last.Anchor, last.Position = outerFrom, outerTo
			} else {
				last.Anchor, last.Position = outerTo, outerFrom
			}
		} else {
			nc := c
			if !g.keepDisplay {
				nc.hasDisplay = false
				nc.DisplayDistance = 0
			}
			merged = append(merged, nc)
		}
	}
	cc.cursors = merged

	g.SetMainNearPosition(mainBefore)
}
