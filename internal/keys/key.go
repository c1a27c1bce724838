// Package keys implements the key DSL parser, the buffered key ring
// with macro-recording support, and the per-mode key remapping table.
package keys

import "fmt"

// Kind tags which field of a Key is meaningful.
type Kind int

const (
	None Kind = iota
	Backspace
	Enter
	Left
	Right
	Up
	Down
	Home
	End
	PageUp
	PageDown
	Tab
	Delete
	F
	Char
	Ctrl
	Alt
	Esc
)

// Key is a single decoded input event: a plain key, an F-number, or a
// character combined with a modifier.
type Key struct {
	Kind Kind
	// Char holds the literal rune for Kind==Char, the base letter for
	// Kind==Ctrl/Alt, and is unused otherwise.
	Char rune
	// FNumber holds the function-key number for Kind==F.
	FNumber uint8
}

func (k Key) String() string {
	switch k.Kind {
	case None:
		return "<none>"
	case Backspace:
		return "<backspace>"
	case Enter:
		return "<enter>"
	case Left:
		return "<left>"
	case Right:
		return "<right>"
	case Up:
		return "<up>"
	case Down:
		return "<down>"
	case Home:
		return "<home>"
	case End:
		return "<end>"
	case PageUp:
		return "<pageup>"
	case PageDown:
		return "<pagedown>"
	case Tab:
		return "<tab>"
	case Delete:
		return "<delete>"
	case Esc:
		return "<esc>"
	case F:
		return fmt.Sprintf("<f%d>", k.FNumber)
	case Ctrl:
		return fmt.Sprintf("<c-%c>", k.Char)
	case Alt:
		return fmt.Sprintf("<a-%c>", k.Char)
	case Char:
		if k.Char == ' ' {
			return "<space>"
		}
		return string(k.Char)
	default:
		return "<?>"
	}
}

// Equal reports whether two keys represent the same input event.
func (k Key) Equal(other Key) bool {
	return k == other
}
