package buffer

import "testing"

func TestInsertDeleteRoundTrip(t *testing.T) {
	c := FromText("hello\nworld")
	p := Position{Line: 0, Column: 5}
	r, err := c.InsertText(p, " there\nfriend")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	removed, err := c.DeleteRange(r)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != " there\nfriend" {
		t.Fatalf("got %q", removed)
	}
	if c.String() != "hello\nworld" {
		t.Fatalf("content not restored: %q", c.String())
	}
}

func TestInsertMultilineSplitsCorrectly(t *testing.T) {
	c := FromText("ab")
	r, err := c.InsertText(Position{Line: 0, Column: 1}, "X\nY\nZ")
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != "aX\nY\nZb" {
		t.Fatalf("got %q", c.String())
	}
	if r.To != (Position{Line: 2, Column: 1}) {
		t.Fatalf("unexpected end range %+v", r.To)
	}
}

func TestDeleteAcrossLines(t *testing.T) {
	c := FromText("one\ntwo\nthree")
	removed, err := c.DeleteRange(Range{From: Position{Line: 0, Column: 1}, To: Position{Line: 2, Column: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if removed != "ne\ntwo\nth" {
		t.Fatalf("got %q", removed)
	}
	if c.String() != "oree" {
		t.Fatalf("got %q", c.String())
	}
}

func TestSaturatePosition(t *testing.T) {
	c := FromText("ab\ncd")
	p := c.SaturatePosition(Position{Line: 5, Column: 99})
	if p != (Position{Line: 1, Column: 2}) {
		t.Fatalf("got %+v", p)
	}
}

func TestEmptyContentNeverEmptyLines(t *testing.T) {
	c := NewContent()
	if c.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", c.LineCount())
	}
}
