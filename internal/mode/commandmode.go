package mode

import (
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/keys"
)

// commandLineState is the `:`-prompt command line: input is collected
// through the shared ReadLine and, on submit, handed to the command
// registry. Tab cycles through the completion candidates for the
// argument under the cursor; any other key drops the candidate set so
// the next Tab recomputes it against the edited line.
type commandLineState struct {
	completions []string
	base        string
	index       int
}

func (s *commandLineState) onEnter(ctx *Context) {
	ctx.Editor.ReadLine.SetPrompt(":")
	s.completions = nil
}

func (s *commandLineState) onExit(ctx *Context) {
	s.completions = nil
	ctx.Editor.Completion.Invalidate()
}

func (s *commandLineState) onKeys(m *Machine, ctx *Context, k keys.Key) Result {
	if k.Kind == keys.Tab {
		s.completeTab(ctx)
		return cont()
	}
	s.completions = nil

	poll := ctx.Editor.ReadLine.HandleKey(k)
	switch poll {
	case editor.Submitted:
		input := ctx.Editor.ReadLine.Input()
		m.ChangeTo(ctx, Normal)
		if input == "" {
			return cont()
		}
		cmdFlow, output, err := ctx.Editor.Commands.Eval(int(ctx.Client), input)
		if err != nil {
			ctx.Editor.StatusBar.Write(editor.MessageError, err.Error())
			return cont()
		}
		if output != "" {
			ctx.Editor.StatusBar.Write(editor.Info, output)
		}
		return flow(cmdFlow)
	case editor.Canceled:
		m.ChangeTo(ctx, Normal)
	}
	return cont()
}

func (s *commandLineState) completeTab(ctx *Context) {
	rl := ctx.Editor.ReadLine
	if s.completions == nil {
		base, candidates := ctx.Editor.CompleteCommandLine(rl.Input())
		if len(candidates) == 0 {
			return
		}
		s.base, s.completions, s.index = base, candidates, 0
	} else {
		s.index = (s.index + 1) % len(s.completions)
	}
	rl.SetInput(s.base + s.completions[s.index])
}
