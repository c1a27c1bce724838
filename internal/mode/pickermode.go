package mode

import (
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/keys"
)

// pickerState is the fuzzy-filtered entry list sub-mode: typed
// characters narrow the filter, Up/Down (and Ctrl-p/Ctrl-n) move the
// cursor, Enter commits the selection to onDone.
type pickerState struct {
	prompt string
	onDone func(ctx *Context, name string, ok bool)
}

func (s *pickerState) onEnter(ctx *Context) {
	prompt := s.prompt
	if prompt == "" {
		prompt = "> "
	}
	ctx.Editor.ReadLine.SetPrompt(prompt)
	ctx.Editor.Picker.Filter(ctx.Editor.Words, "")
}

func (s *pickerState) onExit(ctx *Context) {
	ctx.Editor.Picker.ClearFiltered()
	s.prompt = ""
}

func (s *pickerState) onKeys(m *Machine, ctx *Context, k keys.Key) Result {
	switch {
	case k.Kind == keys.Up || (k.Kind == keys.Ctrl && k.Char == 'p'):
		ctx.Editor.Picker.MoveCursor(-1)
		return cont()
	case k.Kind == keys.Down || (k.Kind == keys.Ctrl && k.Char == 'n'):
		ctx.Editor.Picker.MoveCursor(1)
		return cont()
	case k.Kind == keys.Enter:
		entry, ok := ctx.Editor.Picker.CurrentEntry(ctx.Editor.Words)
		m.ChangeTo(ctx, Normal)
		if s.onDone != nil {
			s.onDone(ctx, entry.Name, ok)
		}
		return cont()
	case k.Kind == keys.Esc:
		m.ChangeTo(ctx, Normal)
		if s.onDone != nil {
			s.onDone(ctx, "", false)
		}
		return cont()
	}

	poll := ctx.Editor.ReadLine.HandleKey(k)
	if poll == editor.Pending {
		ctx.Editor.Picker.Filter(ctx.Editor.Words, ctx.Editor.ReadLine.Input())
	}
	return cont()
}
