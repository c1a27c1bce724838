package editor

import (
	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/command"
	"github.com/quill-editor/quill/internal/config"
	"github.com/quill-editor/quill/internal/event"
	"github.com/quill-editor/quill/internal/keys"
	"github.com/quill-editor/quill/internal/picker"
	"github.com/quill-editor/quill/internal/worddb"
)

// Theme and Syntaxes are named by the Editor aggregate but their rule
// parsing/highlighting is an out-of-scope external collaborator (rendered
// cells and syntax-rule parsing are both excluded from this system's
// scope); only the small surface other components need to reference is
// kept here.
type Theme struct {
	Colors map[string]string
}

// Syntaxes is a registry of named highlighters keyed by file extension
// glob; actual tokenization is supplied by an external collaborator.
type Syntaxes struct {
	byGlob map[string]string
}

func NewTheme() *Theme       { return &Theme{Colors: make(map[string]string)} }
func NewSyntaxes() *Syntaxes { return &Syntaxes{byGlob: make(map[string]string)} }

func (s *Syntaxes) Set(glob, name string) { s.byGlob[glob] = name }
func (s *Syntaxes) For(glob string) (string, bool) {
	name, ok := s.byGlob[glob]
	return name, ok
}

// Editor is the aggregate owning every piece of state that isn't tied
// to one particular client connection: buffers, views, the picker,
// the word database, the single read-line/status-bar pair, the
// command registry, the event queue, and the shared mode-dispatch
// resources (registers, string pool, buffered keys, key maps, the
// search pattern).
type Editor struct {
	Cwd string

	Buffers *BufferCollection
	Views   *ViewCollection
	Words   *worddb.Database
	Events  *event.Queue

	Picker    *picker.Picker
	ReadLine  *ReadLine
	StatusBar *StatusBar

	Registers  *Registers
	StringPool *StringPool
	AuxPattern *AuxPattern

	BufferedKeys *keys.Ring
	KeyMaps      *keys.Collection
	Commands     *command.Registry
	Completion   *command.Completer

	Theme    *Theme
	Syntaxes *Syntaxes
	Config   *config.Config

	// focused tracks each client's current view. Full per-connection
	// state (viewport, scroll, stdin buffering) belongs to
	// internal/session; this is the minimal slice of it the command
	// builtins need to resolve "the current buffer" for a client.
	focused map[ClientHandle]ViewHandle

	// observers are invoked for every drained event before the core
	// handler runs; the reactor uses this for per-connection fixups
	// this aggregate can't see (navigation snapshots, focused views).
	observers []func(event.Event)

	// PendingFind is set by the find-file/find-pattern builtins and
	// consumed by internal/server, which spawns the backing process
	// and switches the client into Picker mode (command.IO has no
	// reference to a process supervisor or the mode machine, by
	// design, to keep internal/command free of that dependency).
	PendingFind *PendingFind
}

// PendingFind carries a find-file/find-pattern invocation's shell
// command and prompt across to internal/server, which spawns the
// command and owns the resulting picker session.
type PendingFind struct {
	Command string
	Prompt  string
	Pattern bool
}

// FocusedView returns the view a client is currently looking at, or
// nil if the client has nothing open.
func (ed *Editor) FocusedView(c ClientHandle) *View {
	h, ok := ed.focused[c]
	if !ok {
		return nil
	}
	return ed.Views.Get(h)
}

// SetFocused records h as client c's current view.
func (ed *Editor) SetFocused(c ClientHandle, h ViewHandle) {
	ed.focused[c] = h
}

// New wires a complete Editor around the given working directory and
// file I/O backend.
func New(cwd string, io FileIO) *Editor {
	events := event.New()
	words := worddb.New()

	ed := &Editor{
		Cwd:          cwd,
		Events:       events,
		Words:        words,
		Buffers:      NewBufferCollection(words, events, io),
		Views:        NewViewCollection(events),
		Picker:       picker.New(),
		ReadLine:     NewReadLine(),
		StatusBar:    NewStatusBar(),
		Registers:    NewRegisters(),
		StringPool:   NewStringPool(),
		AuxPattern:   NewAuxPattern(),
		BufferedKeys: keys.NewRing(),
		KeyMaps:      keys.NewCollection("normal", "insert", "command", "readline", "picker"),
		Commands:     command.NewRegistry(),
		Theme:        NewTheme(),
		Syntaxes:     NewSyntaxes(),
		Config:       config.Default(),
		focused:      make(map[ClientHandle]ViewHandle),
	}
	ed.Completion = command.NewCompleter(ed.Commands)
	RegisterBuiltins(ed.Commands, ed)
	return ed
}

// CompleteCommandLine returns the fixed prefix of line and the
// candidate replacements for the argument being edited at its end,
// feeding the Buffers completion source from the open buffers' paths.
func (ed *Editor) CompleteCommandLine(line string) (string, []string) {
	var paths []string
	ed.Buffers.Iter(func(b *buffer.Buffer) {
		if b.Path != "" {
			paths = append(paths, b.Path)
		}
	})
	return ed.Completion.Complete(line, paths, nil)
}

// OnEvent registers an observer invoked for every drained event,
// before the core handler for that event runs.
func (ed *Editor) OnEvent(fn func(event.Event)) {
	ed.observers = append(ed.observers, fn)
}

// DrainEvents runs the core event handlers (cursor rebasing and
// word-database maintenance) until both queue buckets are empty,
// flipping the double-buffered queue between passes.
func (ed *Editor) DrainEvents() {
	for {
		batch := ed.Events.Flip()
		if len(batch) == 0 && ed.Events.Empty() {
			return
		}
		for _, e := range batch {
			for _, fn := range ed.observers {
				fn(e)
			}
			ed.handleEvent(e)
		}
	}
}

func (ed *Editor) handleEvent(e event.Event) {
	switch e.Kind {
	case event.BufferInsertText:
		ed.Views.HandleBufferInsertText(e.BufferHandle, e.Range)
	case event.BufferRead, event.FixCursors:
		// The whole content was replaced (read/reopen) or a handler
		// asked for a fixup; every view's cursors get clamped back
		// into valid positions.
		if b := ed.Buffers.Get(e.BufferHandle); b != nil {
			ed.Views.SaturateCursors(e.BufferHandle, b.Content)
		}
	case event.BufferDeleteText:
		ed.Views.HandleBufferDeleteText(e.BufferHandle, e.Range)
	case event.BufferWrite:
		if b := ed.Buffers.Get(e.BufferHandle); b != nil {
			ed.StatusBar.Write(Info, "buffer saved to "+b.Path)
		}
	case event.BufferClose:
		ed.Views.RemoveViewsOfBuffer(e.BufferHandle)
		ed.Buffers.HandleBufferClose(e.BufferHandle)
		ed.StatusBar.Write(Info, "buffer closed")
	}
}
