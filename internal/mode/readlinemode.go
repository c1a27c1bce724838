package mode

import (
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/keys"
)

// readLineState is the ReadLine sub-mode: a single free-form input
// line driven by editor.ReadLine, used for search prompts and any
// other one-shot string input. onDone owns whatever
// mode transition follows; readLineState itself never calls ChangeTo.
type readLineState struct {
	prompt string
	onDone func(ctx *Context, input string, ok bool)
}

func (s *readLineState) onEnter(ctx *Context) {
	ctx.Editor.ReadLine.SetPrompt(s.prompt)
}

func (s *readLineState) onExit(ctx *Context) {}

func (s *readLineState) onKeys(m *Machine, ctx *Context, k keys.Key) Result {
	poll := ctx.Editor.ReadLine.HandleKey(k)
	switch poll {
	case editor.Submitted:
		if s.onDone != nil {
			s.onDone(ctx, ctx.Editor.ReadLine.Input(), true)
		}
	case editor.Canceled:
		if s.onDone != nil {
			s.onDone(ctx, "", false)
		}
	}
	return cont()
}
