package mode

import "github.com/quill-editor/quill/internal/keys"

// pluginState hands every key straight to a plugin-supplied handler,
// letting a plugin run its own mode without the core grammar.
type pluginState struct {
	handler func(ctx *Context, k keys.Key) Result
}

func (s *pluginState) onEnter(ctx *Context) {}

func (s *pluginState) onExit(ctx *Context) {}

func (s *pluginState) onKeys(m *Machine, ctx *Context, k keys.Key) Result {
	if s.handler == nil {
		return cont()
	}
	return s.handler(ctx, k)
}
