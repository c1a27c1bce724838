package editor

import "testing"

func TestStringPoolReusesReleasedBuilder(t *testing.T) {
	p := NewStringPool()
	b1 := p.AcquireWith("abc")
	if b1.String() != "abc" {
		t.Fatalf("got %q", b1.String())
	}
	p.Release(b1)
	b2 := p.Acquire()
	if b2 != b1 {
		t.Fatal("expected the released builder to be reused")
	}
	if b2.String() != "" {
		t.Fatalf("expected reset builder, got %q", b2.String())
	}
}

func TestStringPoolAcquireWithoutReleaseAllocatesFresh(t *testing.T) {
	p := NewStringPool()
	b1 := p.Acquire()
	b2 := p.Acquire()
	if b1 == b2 {
		t.Fatal("expected distinct builders when nothing was released")
	}
}
