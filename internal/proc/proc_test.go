package proc

import (
	"testing"
	"time"
)

func drainUntilExit(t *testing.T, sink <-chan Event, want []byte) {
	t.Helper()
	var got []byte
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sink:
			switch ev.Kind {
			case Output:
				got = append(got, ev.Data...)
			case Exit:
				if string(got) != string(want) {
					t.Fatalf("got output %q, want %q", got, want)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for process exit, got %q so far", got)
		}
	}
}

func TestSpawnRoutesOutputByTag(t *testing.T) {
	sink := make(chan Event, 16)
	s := NewSupervisor(sink)

	tag := Tag{Kind: FindFiles}
	id, err := s.Spawn("/bin/echo", []string{"hello"}, tag)
	if err != nil {
		t.Fatal(err)
	}
	drainUntilExit(t, sink, []byte("hello\n"))
	s.Forget(id)
}

func TestWriteDeliversStdinToChild(t *testing.T) {
	sink := make(chan Event, 16)
	s := NewSupervisor(sink)

	id, err := s.Spawn("/bin/cat", nil, Tag{Kind: BufferTag})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(id, []byte("round trip\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.CloseInput(id); err != nil {
		t.Fatal(err)
	}
	drainUntilExit(t, sink, []byte("round trip\n"))
	s.Forget(id)
}

func TestKillEndsALongRunningProcess(t *testing.T) {
	sink := make(chan Event, 16)
	s := NewSupervisor(sink)

	id, err := s.Spawn("/bin/sleep", []string{"30"}, Tag{Kind: Ignored})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Kill(id); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sink:
			if ev.Kind == Exit {
				s.Forget(id)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for killed process to exit")
		}
	}
}
