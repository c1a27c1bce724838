package term

import (
	"testing"

	"github.com/quill-editor/quill/internal/keys"
)

func feedAll(t *testing.T, chunks ...[]byte) []keys.Key {
	t.Helper()
	var d Decoder
	var out []keys.Key
	for _, c := range chunks {
		out = append(out, d.Feed(c)...)
	}
	return out
}

func TestDecodesPlainAsciiChar(t *testing.T) {
	got := feedAll(t, []byte("a"))
	want := []keys.Key{{Kind: keys.Char, Char: 'a'}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodesControlCharAsCtrl(t *testing.T) {
	got := feedAll(t, []byte{0x01}) // Ctrl-A
	if len(got) != 1 || got[0].Kind != keys.Ctrl || got[0].Char != 'a' {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodesArrowKeySequences(t *testing.T) {
	cases := map[string]keys.Kind{
		"\x1b[A": keys.Up,
		"\x1b[B": keys.Down,
		"\x1b[C": keys.Right,
		"\x1b[D": keys.Left,
	}
	for seq, want := range cases {
		got := feedAll(t, []byte(seq))
		if len(got) != 1 || got[0].Kind != want {
			t.Fatalf("sequence %q: got %+v, want kind %v", seq, got, want)
		}
	}
}

func TestDecodesDeleteBackspaceEnterTab(t *testing.T) {
	got := feedAll(t, []byte{0x7f, 0x08, '\r', '\t'})
	want := []keys.Kind{keys.Delete, keys.Backspace, keys.Enter, keys.Tab}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("index %d: got %v, want %v", i, got[i].Kind, k)
		}
	}
}

func TestDecodesBareEscAsEsc(t *testing.T) {
	got := feedAll(t, []byte{0x1b})
	if len(got) != 1 || got[0].Kind != keys.Esc {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodesFunctionKeySequence(t *testing.T) {
	got := feedAll(t, []byte("\x1bOP"))
	if len(got) != 1 || got[0].Kind != keys.F || got[0].FNumber != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodesUTF8MultibyteRune(t *testing.T) {
	got := feedAll(t, []byte("€"))
	if len(got) != 1 || got[0].Kind != keys.Char || got[0].Char != '€' {
		t.Fatalf("got %+v", got)
	}
}

func TestHoldsBackPartialEscapeSequenceAcrossFeeds(t *testing.T) {
	got := feedAll(t, []byte("\x1b["), []byte("A"))
	if len(got) != 1 || got[0].Kind != keys.Up {
		t.Fatalf("got %+v", got)
	}
}

func TestHoldsBackPartialUTF8RuneAcrossFeeds(t *testing.T) {
	euro := []byte("€")
	got := feedAll(t, euro[:1], euro[1:])
	if len(got) != 1 || got[0].Char != '€' {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodesAltChar(t *testing.T) {
	got := feedAll(t, []byte("\x1bx"))
	if len(got) != 1 || got[0].Kind != keys.Alt || got[0].Char != 'x' {
		t.Fatalf("got %+v", got)
	}
}
