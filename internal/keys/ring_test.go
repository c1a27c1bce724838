package keys

import "testing"

func TestRingParseAppendsAndIteratesFromTail(t *testing.T) {
	r := NewRing()
	if _, err := r.Parse("ab"); err != nil {
		t.Fatal(err)
	}
	it, err := r.Parse("<esc>c")
	if err != nil {
		t.Fatal(err)
	}
	if it.Index() != 2 {
		t.Fatalf("expected tail iterator to start at 2, got %d", it.Index())
	}
	first := it.Next(r)
	if first != (Key{Kind: Esc}) {
		t.Fatalf("got %+v", first)
	}
	second := it.Next(r)
	if second != (Key{Kind: Char, Char: 'c'}) {
		t.Fatalf("got %+v", second)
	}
	if done := it.Next(r); done.Kind != None {
		t.Fatalf("expected None at end of ring, got %+v", done)
	}
}

func TestRingParseErrorLeavesRingUntouched(t *testing.T) {
	r := NewRing()
	if _, err := r.Parse("ab"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Parse("<bogus>"); err == nil {
		t.Fatal("expected parse error")
	}
	if len(r.All()) != 2 {
		t.Fatalf("expected ring unchanged at length 2, got %d", len(r.All()))
	}
}

func TestRingReplaceSplicesInPlace(t *testing.T) {
	r := NewRing()
	r.Parse("abc")
	r.Replace(1, 2, []Key{{Kind: Char, Char: 'X'}, {Kind: Char, Char: 'Y'}})
	all := r.All()
	want := "aXYc"
	if len(all) != len(want) {
		t.Fatalf("got %v", all)
	}
	for i, c := range want {
		if all[i] != (Key{Kind: Char, Char: c}) {
			t.Fatalf("index %d: got %+v want Char(%c)", i, all[i], c)
		}
	}
}
