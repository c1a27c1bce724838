package bufpool

import "testing"

func TestAcquireReusesReleasedCapacity(t *testing.T) {
	p := New()
	b := p.Acquire()
	if b != nil {
		t.Fatalf("expected nil buffer from empty pool, got %v", b)
	}
	b = append(b, 1, 2, 3)
	p.Release(b)

	b2 := p.Acquire()
	if len(b2) != 0 {
		t.Fatalf("expected len 0, got %d", len(b2))
	}
	if cap(b2) < 3 {
		t.Fatalf("expected reused capacity >= 3, got %d", cap(b2))
	}
}

func TestReleaseNilIsNoop(t *testing.T) {
	p := New()
	p.Release(nil)
	if len(p.free) != 0 {
		t.Fatalf("expected nil release to be a no-op, got free list of %d", len(p.free))
	}
}

func TestGuardReleaseTwicePanics(t *testing.T) {
	p := New()
	g := Borrow(p)
	g.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	g.Release()
}

func TestGuardMustBeReleasedPanicsWhenLeaked(t *testing.T) {
	p := New()
	g := Borrow(p)
	g.Append([]byte("leaked"))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unreleased guard")
		}
	}()
	g.MustBeReleased()
}

func TestGuardMustBeReleasedIsQuietWhenReleased(t *testing.T) {
	p := New()
	g := Borrow(p)
	g.Release()
	g.MustBeReleased()
}

func TestGuardAppendAccumulates(t *testing.T) {
	p := New()
	g := Borrow(p)
	g.Append([]byte("ab"))
	g.Append([]byte("cd"))
	if string(g.Bytes()) != "abcd" {
		t.Fatalf("got %q", g.Bytes())
	}
	g.Release()
}
