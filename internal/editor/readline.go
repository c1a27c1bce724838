package editor

import "github.com/quill-editor/quill/internal/keys"

// Poll is the result of feeding keys to a ReadLine.
type Poll int

const (
	Pending Poll = iota
	Submitted
	Canceled
)

// ReadLine collects a single line of free-form input for commands that
// need a string (rename, find-pattern, search). It is a sub-mode of
// Command mode: something installs a prompt, drives HandleKey per
// keystroke, and reads Input() once Poll reports Submitted.
type ReadLine struct {
	prompt string
	input  []rune
	cursor int
}

// NewReadLine returns an empty ReadLine.
func NewReadLine() *ReadLine {
	return &ReadLine{}
}

func (r *ReadLine) Prompt() string { return r.prompt }

// SetPrompt resets the prompt and clears any previous input/cursor.
func (r *ReadLine) SetPrompt(prompt string) {
	r.prompt = prompt
	r.input = r.input[:0]
	r.cursor = 0
}

func (r *ReadLine) Input() string { return string(r.input) }

// SetInput replaces the whole input line, leaving the cursor at its
// end (used by completion).
func (r *ReadLine) SetInput(s string) {
	r.input = append(r.input[:0], []rune(s)...)
	r.cursor = len(r.input)
}

// HandleKey applies one key to the input buffer and returns the
// resulting Poll state.
func (r *ReadLine) HandleKey(k keys.Key) Poll {
	switch k.Kind {
	case keys.Enter:
		return Submitted
	case keys.Esc:
		return Canceled
	case keys.Backspace:
		if r.cursor > 0 {
			r.input = append(r.input[:r.cursor-1], r.input[r.cursor:]...)
			r.cursor--
		}
	case keys.Delete:
		if r.cursor < len(r.input) {
			r.input = append(r.input[:r.cursor], r.input[r.cursor+1:]...)
		}
	case keys.Left:
		if r.cursor > 0 {
			r.cursor--
		}
	case keys.Right:
		if r.cursor < len(r.input) {
			r.cursor++
		}
	case keys.Home:
		r.cursor = 0
	case keys.End:
		r.cursor = len(r.input)
	case keys.Char:
		r.input = append(r.input[:r.cursor], append([]rune{k.Char}, r.input[r.cursor:]...)...)
		r.cursor++
	}
	return Pending
}
