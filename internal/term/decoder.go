// Package term implements the terminal-side half of the editor:
// raw-mode terminal I/O, xterm byte-sequence decoding into keys.Key,
// and the loop that exchanges wire frames with the server over a Unix
// domain socket.
package term

import (
	"unicode/utf8"

	"github.com/quill-editor/quill/internal/keys"
)

// Decoder turns a stream of raw terminal bytes into keys.Key values,
// holding back any trailing partial escape sequence or UTF-8 rune
// across Feed calls. Arrows, Home/End, PgUp/PgDn, Delete, and the
// F-key CSI forms are recognized; any other byte under 0x20 becomes
// Ctrl(letter).
type Decoder struct {
	pending []byte
}

// Feed appends data to any held-back bytes and decodes as many
// complete keys as possible, returning them and leaving an incomplete
// trailing sequence (if any) buffered for the next call.
func (d *Decoder) Feed(data []byte) []keys.Key {
	buf := append(d.pending, data...)
	d.pending = nil

	var out []keys.Key
	for len(buf) > 0 {
		k, n, complete := decodeOne(buf)
		if !complete {
			d.pending = append([]byte(nil), buf...)
			break
		}
		if n == 0 {
			break
		}
		out = append(out, k)
		buf = buf[n:]
	}
	return out
}

// escSeq describes one fixed CSI/SS3 byte sequence and the Key it
// decodes to.
type escSeq struct {
	bytes []byte
	key   keys.Key
}

var escSequences = []escSeq{
	{[]byte("\x1b[5~"), keys.Key{Kind: keys.PageUp}},
	{[]byte("\x1b[6~"), keys.Key{Kind: keys.PageDown}},
	{[]byte("\x1b[A"), keys.Key{Kind: keys.Up}},
	{[]byte("\x1b[B"), keys.Key{Kind: keys.Down}},
	{[]byte("\x1b[C"), keys.Key{Kind: keys.Right}},
	{[]byte("\x1b[D"), keys.Key{Kind: keys.Left}},
	{[]byte("\x1b[1~"), keys.Key{Kind: keys.Home}},
	{[]byte("\x1b[7~"), keys.Key{Kind: keys.Home}},
	{[]byte("\x1b[H"), keys.Key{Kind: keys.Home}},
	{[]byte("\x1bOH"), keys.Key{Kind: keys.Home}},
	{[]byte("\x1b[4~"), keys.Key{Kind: keys.End}},
	{[]byte("\x1b[8~"), keys.Key{Kind: keys.End}},
	{[]byte("\x1b[F"), keys.Key{Kind: keys.End}},
	{[]byte("\x1bOF"), keys.Key{Kind: keys.End}},
	{[]byte("\x1b[3~"), keys.Key{Kind: keys.Delete}},
	{[]byte("\x1bOP"), keys.Key{Kind: keys.F, FNumber: 1}},
	{[]byte("\x1bOQ"), keys.Key{Kind: keys.F, FNumber: 2}},
	{[]byte("\x1bOR"), keys.Key{Kind: keys.F, FNumber: 3}},
	{[]byte("\x1bOS"), keys.Key{Kind: keys.F, FNumber: 4}},
	{[]byte("\x1b[15~"), keys.Key{Kind: keys.F, FNumber: 5}},
	{[]byte("\x1b[17~"), keys.Key{Kind: keys.F, FNumber: 6}},
	{[]byte("\x1b[18~"), keys.Key{Kind: keys.F, FNumber: 7}},
	{[]byte("\x1b[19~"), keys.Key{Kind: keys.F, FNumber: 8}},
	{[]byte("\x1b[20~"), keys.Key{Kind: keys.F, FNumber: 9}},
	{[]byte("\x1b[21~"), keys.Key{Kind: keys.F, FNumber: 10}},
	{[]byte("\x1b[23~"), keys.Key{Kind: keys.F, FNumber: 11}},
	{[]byte("\x1b[24~"), keys.Key{Kind: keys.F, FNumber: 12}},
}

// longestEscPrefixLen reports the length of the longest escSequences
// entry that buf could still become a prefix of, used to decide
// whether an incomplete-looking escape sequence should wait for more
// bytes rather than be emitted as a bare Esc.
func longestEscPrefixLen(buf []byte) int {
	best := 0
	for _, s := range escSequences {
		n := len(s.bytes)
		if n > len(buf) {
			n = len(buf)
		}
		if n > 0 && string(buf[:n]) == string(s.bytes[:n]) && n > best {
			best = n
		}
	}
	return best
}

// decodeOne decodes a single key from the head of buf. complete is
// false when buf holds an escape sequence prefix that more bytes
// could still complete; the caller should hold it and wait.
func decodeOne(buf []byte) (k keys.Key, n int, complete bool) {
	b := buf[0]

	for _, s := range escSequences {
		if len(buf) >= len(s.bytes) && string(buf[:len(s.bytes)]) == string(s.bytes) {
			return s.key, len(s.bytes), true
		}
	}

	if b == 0x1b {
		if len(buf) == 1 {
			return keys.Key{Kind: keys.Esc}, 1, true
		}
		if prefixLen := longestEscPrefixLen(buf); prefixLen == len(buf) && prefixLen > 1 {
			return keys.Key{}, 0, false
		}
		if buf[1] == '[' || buf[1] == 'O' {
			return keys.Key{Kind: keys.Esc}, 1, true
		}
		r, size := utf8.DecodeRune(buf[1:])
		if r == utf8.RuneError && size <= 1 {
			return keys.Key{Kind: keys.Esc}, 1, true
		}
		return keys.Key{Kind: keys.Alt, Char: r}, 1 + size, true
	}

	switch b {
	case 0x7f:
		return keys.Key{Kind: keys.Delete}, 1, true
	case 0x08:
		return keys.Key{Kind: keys.Backspace}, 1, true
	case '\r', '\n':
		return keys.Key{Kind: keys.Enter}, 1, true
	case '\t':
		return keys.Key{Kind: keys.Tab}, 1, true
	}

	if b < 0x20 {
		return keys.Key{Kind: keys.Ctrl, Char: rune(b | 0b0110_0000)}, 1, true
	}

	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		if size == 0 || !utf8.FullRune(buf) {
			return keys.Key{}, 0, false
		}
		return keys.Key{Kind: keys.Char, Char: rune(b)}, 1, true
	}
	return keys.Key{Kind: keys.Char, Char: r}, size, true
}
