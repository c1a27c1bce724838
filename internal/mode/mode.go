// Package mode implements the modal key-dispatch state machine:
// Normal, Insert, Command, ReadLine, Picker, and Plugin modes, each
// with on_enter/on_exit hooks and a per-mode on_keys handler, wired to
// the shared key map and buffered key ring.
package mode

import (
	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/command"
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/keys"
	"github.com/quill-editor/quill/internal/proc"
)

// State names one of the six modes.
type State int

const (
	Normal State = iota
	Insert
	CommandLine
	ReadLine
	Picker
	Plugin
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Insert:
		return "insert"
	case CommandLine:
		return "command"
	case ReadLine:
		return "readline"
	case Picker:
		return "picker"
	case Plugin:
		return "plugin"
	default:
		return "?"
	}
}

// keyMapName is the name State is registered under in a
// keys.Collection, matching editor.New's NewCollection call.
func (s State) keyMapName() string {
	switch s {
	case Insert:
		return "insert"
	case CommandLine:
		return "command"
	case ReadLine:
		return "readline"
	case Picker:
		return "picker"
	default:
		return "normal"
	}
}

// Result is what a mode's on_keys handler (or the top-level dispatch
// loop) hands back: either the mode wants more input (Pending), or a
// Flow the reactor should act on.
type Result struct {
	Pending bool
	Flow    command.Flow
}

func pending() Result    { return Result{Pending: true} }
func cont() Result       { return Result{Flow: command.Continue} }
func flow(f command.Flow) Result { return Result{Flow: f} }

// Context is the per-dispatch environment a mode handler needs: the
// editor aggregate, which client is typing, and that client's current
// view (buffer + cursor set). View may be nil if the client has not
// focused a buffer yet.
type Context struct {
	Editor *editor.Editor
	Client editor.ClientHandle
	View   *editor.View
	Procs  *proc.Supervisor
}

// Buffer resolves the context's current buffer, or nil.
func (c *Context) Buffer() *buffer.Buffer {
	if c.View == nil {
		return nil
	}
	return c.Editor.Buffers.Get(c.View.BufferHandle)
}

// Machine is the per-client mode state machine.
type Machine struct {
	state State

	insert   insertState
	cmdline  commandLineState
	readline readLineState
	picker   pickerState
	plugin   pluginState

	normal normalState
}

// NewMachine returns a fresh Machine starting in Normal mode.
func NewMachine() *Machine {
	return &Machine{state: Normal}
}

// State returns the machine's current mode.
func (m *Machine) State() State { return m.state }

// ChangeTo runs the current mode's on_exit, switches state, then runs
// the new mode's on_enter.
func (m *Machine) ChangeTo(ctx *Context, next State) {
	m.exit(ctx, m.state)
	m.state = next
	m.enter(ctx, next)
}

func (m *Machine) exit(ctx *Context, s State) {
	switch s {
	case Insert:
		m.insert.onExit(ctx)
	case CommandLine:
		m.cmdline.onExit(ctx)
	case ReadLine:
		m.readline.onExit(ctx)
	case Picker:
		m.picker.onExit(ctx)
	case Plugin:
		m.plugin.onExit(ctx)
	}
}

func (m *Machine) enter(ctx *Context, s State) {
	switch s {
	case Insert:
		m.insert.onEnter(ctx)
	case CommandLine:
		m.cmdline.onEnter(ctx)
	case ReadLine:
		m.readline.onEnter(ctx)
	case Picker:
		m.picker.onEnter(ctx)
	case Plugin:
		m.plugin.onEnter(ctx)
	}
}

// EnterReadLine installs prompt and a submit callback, then switches
// to ReadLine mode. The callback receives the final input and whether
// it was submitted (false means canceled).
func (m *Machine) EnterReadLine(ctx *Context, prompt string, onDone func(ctx *Context, input string, ok bool)) {
	m.readline.prompt = prompt
	m.readline.onDone = onDone
	m.ChangeTo(ctx, ReadLine)
}

// EnterPicker switches to Picker mode with the given prompt and exit
// callback. Callers are expected to have already populated
// ctx.Editor.Picker. An empty prompt falls back to "> ".
func (m *Machine) EnterPicker(ctx *Context, prompt string, onDone func(ctx *Context, name string, ok bool)) {
	m.picker.prompt = prompt
	m.picker.onDone = onDone
	m.ChangeTo(ctx, Picker)
}

// EnterPlugin switches to Plugin mode, delegating every subsequent key
// to fn until the plugin itself changes mode again.
func (m *Machine) EnterPlugin(ctx *Context, fn func(ctx *Context, k keys.Key) Result) {
	m.plugin.handler = fn
	m.ChangeTo(ctx, Plugin)
}

// HandleKey dispatches one key to the current mode and returns the
// result. A key is appended to an in-progress macro recording only if
// recording was already active before this dispatch and is still
// active after it. This excludes both the `q<letter>` key that starts
// a recording (recording turns on during its own dispatch) and the `q`
// that stops one (recording turns off during its own dispatch), same
// as the originating implementation's `recording_macro` snapshot taken
// before and compared after each key.
func (m *Machine) HandleKey(ctx *Context, k keys.Key) Result {
	wasRecording := ctx.Editor.BufferedKeys.IsRecording()
	var r Result
	switch m.state {
	case Normal:
		r = m.normal.onKeys(m, ctx, k)
	case Insert:
		r = m.insert.onKeys(m, ctx, k)
	case CommandLine:
		r = m.cmdline.onKeys(m, ctx, k)
	case ReadLine:
		r = m.readline.onKeys(m, ctx, k)
	case Picker:
		r = m.picker.onKeys(m, ctx, k)
	case Plugin:
		r = m.plugin.onKeys(m, ctx, k)
	default:
		r = cont()
	}
	if wasRecording && ctx.Editor.BufferedKeys.IsRecording() {
		ctx.Editor.BufferedKeys.RecordKey(k)
	}
	return r
}

// matchPending finds the shortest prefix of pending that km maps to a
// replacement, growing the trial window one key at a time; this is
// the multi-key (e.g. "jj", "<c-w>h") equivalent of KeyMap.Matches,
// which only tests one fixed-length candidate at a time. It returns
// keys.Prefix if pending could still extend into a binding, NoMatch if
// no binding can ever match starting here, or Replaced with the
// consumed length and replacement.
func matchPending(km *keys.KeyMap, pending []keys.Key) (kind keys.MatchKind, to []keys.Key, consumed int) {
	for w := 1; w <= len(pending); w++ {
		res := km.Matches(pending[:w])
		switch res.Kind {
		case keys.Replaced:
			return keys.Replaced, res.To, w
		case keys.Prefix:
			continue
		default:
			return keys.NoMatch, nil, 0
		}
	}
	return keys.Prefix, nil, 0
}

// ProcessKeys drains every key currently buffered in ctx.Editor's key
// ring, applying the current mode's key map (prefix-matching remap)
// before each dispatch: key buffer -> key-map match -> mode dispatch.
// It commits the buffer's current undo group once the ring is
// drained, so one burst of input is one undoable step. It returns the
// last non-Continue Flow seen, or Continue if none.
func ProcessKeys(m *Machine, ctx *Context) command.Flow {
	ring := ctx.Editor.BufferedKeys
	result := command.Continue
	for {
		pendingKeys := ring.All()
		if len(pendingKeys) == 0 {
			break
		}
		km := ctx.Editor.KeyMaps.For(m.state.keyMapName())
		kind, to, consumed := matchPending(km, pendingKeys)
		switch kind {
		case keys.Prefix:
			return result
		case keys.Replaced:
			ring.Replace(0, consumed, to)
		default:
			k := pendingKeys[0]
			ring.DropFront(1)
			r := m.HandleKey(ctx, k)
			if !r.Pending && r.Flow != command.Continue {
				result = r.Flow
			}
		}
	}
	if buf := ctx.Buffer(); buf != nil {
		buf.History.CommitGroup()
	}
	return result
}
