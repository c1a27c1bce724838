package command

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestCompleter() (*Registry, *Completer) {
	reg := NewRegistry()
	nop := func(io *IO) error { return nil }
	reg.Register("open", []CompletionSource{Files}, nop)
	reg.Register("close", nil, nop)
	reg.Register("config", []CompletionSource{Custom}, nop)
	reg.Register("reopen", []CompletionSource{Buffers}, nop)
	return reg, NewCompleter(reg)
}

func TestCompleteCommandName(t *testing.T) {
	_, c := newTestCompleter()

	base, got := c.Complete("c", nil, nil)
	if base != "" {
		t.Errorf("base = %q, want empty", base)
	}
	want := []string{"close", "config"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestCompleteBuffersArgument(t *testing.T) {
	_, c := newTestCompleter()

	base, got := c.Complete("reopen ma", []string{"main.go", "main_test.go", "other.go"}, nil)
	if base != "reopen " {
		t.Errorf("base = %q, want %q", base, "reopen ")
	}
	if len(got) != 2 || got[0] != "main.go" || got[1] != "main_test.go" {
		t.Errorf("candidates = %v, want [main.go main_test.go]", got)
	}
}

func TestCompleteUnknownArgumentSlotOffersNothing(t *testing.T) {
	_, c := newTestCompleter()

	_, got := c.Complete("close x", nil, nil)
	if len(got) != 0 {
		t.Errorf("candidates for slot with no source = %v, want none", got)
	}
}

func TestCompleteFilesListsAndCachesParentDirectory(t *testing.T) {
	_, c := newTestCompleter()
	dir := t.TempDir()
	for _, name := range []string{"alpha.txt", "alps.txt", "beta.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	arg := dir + "/al"
	base, got := c.Complete("open "+arg, nil, nil)
	if base != "open " {
		t.Errorf("base = %q, want %q", base, "open ")
	}
	if len(got) != 2 || got[0] != dir+"/alpha.txt" || got[1] != dir+"/alps.txt" {
		t.Fatalf("candidates = %v, want the two al* files", got)
	}

	// The listing is cached per parent: a file created after the first
	// scan stays invisible until Invalidate.
	if err := os.WriteFile(filepath.Join(dir, "also.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, got = c.Complete("open "+arg, nil, nil)
	if len(got) != 2 {
		t.Errorf("cached candidates = %v, want still 2 entries", got)
	}

	c.Invalidate()
	_, got = c.Complete("open "+arg, nil, nil)
	if len(got) != 3 {
		t.Errorf("candidates after Invalidate = %v, want 3 entries", got)
	}
}
