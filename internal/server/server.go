// Package server implements the single-threaded reactor at the heart
// of the editor: it multiplexes the listening socket, accepted client
// connections, child-process output, and an idle timer, driving every
// mutation of editor state from one goroutine. Producer goroutines
// (the accept loop and one reader per connection) push a platformEvent
// onto one shared channel, internal/proc's per-process reader
// goroutines push proc.Event values onto a second channel, and the idle
// deadline is a timer; this package's Run loop is the single consumer
// that ever touches *editor.Editor, *session.Collection, or any
// mode.Machine, so no mutex is ever taken around editor state.
package server

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/quill-editor/quill/internal/bufpool"
	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/command"
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/event"
	"github.com/quill-editor/quill/internal/mode"
	"github.com/quill-editor/quill/internal/proc"
	"github.com/quill-editor/quill/internal/session"
	"github.com/quill-editor/quill/internal/wire"
	"github.com/quill-editor/quill/pkg/logger"
)

// IdleDeadline is the fixed duration of inactivity after which the
// reactor emits one Idle event.
const IdleDeadline = 500 * time.Millisecond

type platformKind int

const (
	connOpen platformKind = iota
	connOutput
	connClose
)

type platformEvent struct {
	kind   platformKind
	client editor.ClientHandle
	conn   net.Conn
	data   []byte
}

// Server is the reactor. One Server owns one Editor and every
// connected client's session.Client and mode.Machine.
type Server struct {
	Editor  *editor.Editor
	clients *session.Collection
	modes   map[editor.ClientHandle]*mode.Machine
	conns   map[editor.ClientHandle]net.Conn
	recvBuf map[editor.ClientHandle][]byte

	pool  *bufpool.Pool
	procs *proc.Supervisor

	events   chan platformEvent
	procSink chan proc.Event

	listener net.Listener

	focused    editor.ClientHandle
	hasFocused bool

	quitAll bool

	crashPath string
	crashing  bool
	trail     []string
}

// New binds a Unix domain socket at socketPath and returns a Server
// ready to Run against ed.
func New(ed *editor.Editor, socketPath string) (*Server, error) {
	os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("server: listen %s: %w", socketPath, err)
	}
	s := &Server{
		Editor:   ed,
		clients:  session.NewCollection(),
		modes:    make(map[editor.ClientHandle]*mode.Machine),
		conns:    make(map[editor.ClientHandle]net.Conn),
		recvBuf:  make(map[editor.ClientHandle][]byte),
		pool:     bufpool.New(),
		events:   make(chan platformEvent, 64),
		procSink: make(chan proc.Event, 64),
		listener: ln,

		crashPath: socketPath + "-crash.txt",
	}
	s.procs = proc.NewSupervisor(s.procSink)
	ed.OnEvent(func(e event.Event) {
		if e.Kind != event.BufferClose {
			return
		}
		s.clients.Iter(func(cl *session.Client) {
			cl.OnBufferClose(ed, e.BufferHandle)
		})
	})
	return s, nil
}

// Addr returns the bound socket's address.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Procs returns the process supervisor so command builtins (find-file,
// find-pattern, the clipboard commands) can spawn children tagged for
// this reactor to route output back through.
func (s *Server) Procs() *proc.Supervisor { return s.procs }

// Run drives the reactor until a command asks every client to quit;
// an Accept error stops accepting new connections but does not end
// Run. Each
// tick has a fixed structure: wait, drain ready sources, update,
// flip-and-handle events, render.
func (s *Server) Run() error {
	defer func() {
		if r := recover(); r != nil {
			s.writeCrashReport(r)
			panic(r)
		}
	}()

	go s.acceptLoop()

	idle := time.NewTimer(IdleDeadline)
	defer idle.Stop()

	for {
		select {
		case pe, ok := <-s.events:
			if !ok {
				return nil
			}
			resetTimer(idle, IdleDeadline)
			s.handlePlatformEvent(pe)
		case pevt := <-s.procSink:
			resetTimer(idle, IdleDeadline)
			s.handleProcEvent(pevt)
		case <-idle.C:
			s.Editor.Events.Enqueue(event.Event{Kind: event.Idle})
		}

		s.Editor.DrainEvents()
		s.renderAll()

		if s.quitAll {
			break
		}
	}
	s.shutdown()
	return nil
}

// crashTrailLen bounds the number of recent events kept for the crash
// report.
const crashTrailLen = 32

func (s *Server) noteEvent(desc string) {
	if len(s.trail) == crashTrailLen {
		copy(s.trail, s.trail[1:])
		s.trail = s.trail[:crashTrailLen-1]
	}
	s.trail = append(s.trail, desc)
}

// writeCrashReport records the panic value, goroutine count, the last
// few reactor events, and the stack to the session's crash file before
// the panic is re-raised.
func (s *Server) writeCrashReport(r any) {
	if s.crashing {
		return
	}
	s.crashing = true
	var b strings.Builder
	fmt.Fprintf(&b, "panic: %v\ngoroutines: %d\n\nlast events:\n", r, runtime.NumGoroutine())
	for _, e := range s.trail {
		b.WriteString("  ")
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.Write(debug.Stack())
	os.WriteFile(s.crashPath, []byte(b.String()), 0o600)
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.events <- platformEvent{kind: connOpen, conn: conn}
	}
}

func (s *Server) connReadLoop(h editor.ClientHandle, conn net.Conn) {
	buf := make([]byte, 32*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			s.events <- platformEvent{kind: connOutput, client: h, data: chunk}
		}
		if err != nil {
			s.events <- platformEvent{kind: connClose, client: h}
			return
		}
	}
}

func (s *Server) handlePlatformEvent(pe platformEvent) {
	switch pe.kind {
	case connOpen:
		h := s.clients.OnClientJoined()
		s.noteEvent(fmt.Sprintf("connection open: client %d", h))
		s.conns[h] = pe.conn
		s.modes[h] = mode.NewMachine()
		s.focused, s.hasFocused = h, true
		go s.connReadLoop(h, pe.conn)
	case connOutput:
		s.noteEvent(fmt.Sprintf("connection output: client %d, %d bytes", pe.client, len(pe.data)))
		s.recvBuf[pe.client] = append(s.recvBuf[pe.client], pe.data...)
		s.drainClientFrames(pe.client)
	case connClose:
		s.noteEvent(fmt.Sprintf("connection close: client %d", pe.client))
		s.closeClient(pe.client)
	}
}

func (s *Server) drainClientFrames(h editor.ClientHandle) {
	buf := s.recvBuf[h]
	for {
		ev, n, err := wire.DecodeClientEvent(buf)
		if err == wire.ErrInsufficientData {
			break
		}
		if err != nil {
			logger.Error("server: client %d sent invalid frame, closing: %v", h, err)
			s.closeClient(h)
			return
		}
		buf = buf[n:]
		s.dispatchClientEvent(h, ev)
	}
	s.recvBuf[h] = buf
}

// resolveTarget picks the client a ClientEvent applies to: the sender
// itself, or whichever client currently holds focus (the
// --as-focused-client forwarding).
func (s *Server) resolveTarget(sender editor.ClientHandle, target wire.Target) editor.ClientHandle {
	if target == wire.Focused && s.hasFocused {
		return s.focused
	}
	return sender
}

func (s *Server) dispatchClientEvent(sender editor.ClientHandle, ev wire.ClientEvent) {
	h := s.resolveTarget(sender, ev.Target)
	cl := s.clients.Get(h)
	if cl == nil {
		return
	}
	switch ev.Kind {
	case wire.EventKey:
		s.Editor.BufferedKeys.AppendKey(ev.Key)
		m := s.modes[h]
		ctx := &mode.Context{Editor: s.Editor, Client: h, View: cl.View(s.Editor), Procs: s.procs}
		flow := mode.ProcessKeys(m, ctx)
		s.applyFlow(h, flow)
		s.handlePendingFind(h)
	case wire.EventResize:
		cl.ViewportWidth, cl.ViewportHeight = int(ev.Width), int(ev.Height)
		cl.Height = int(ev.Height)
	case wire.EventCommand:
		flow, output, err := s.Editor.Commands.Eval(int(h), ev.Text)
		if err != nil {
			s.Editor.StatusBar.Write(editor.MessageError, err.Error())
		} else if output != "" {
			s.Editor.StatusBar.Write(editor.Info, output)
		}
		s.applyFlow(h, flow)
		s.handlePendingFind(h)
	case wire.EventStdinInput:
		if err := cl.OnStdinInput(s.Editor, ev.Bytes); err != nil {
			s.Editor.StatusBar.Write(editor.MessageError, err.Error())
		}
	}
	s.focused, s.hasFocused = h, true
}

// applyFlow acts on the Flow a key dispatch or command evaluation
// handed back: Suspend asks the client to background itself, Quit
// closes just that client, QuitAll tears down the whole reactor.
func (s *Server) applyFlow(h editor.ClientHandle, flow command.Flow) {
	switch flow {
	case command.Suspend:
		s.writeServerEvent(h, wire.ServerEvent{Kind: wire.EventSuspend})
	case command.Quit:
		s.closeClient(h)
	case command.QuitAll:
		s.quitAll = true
	}
}

// handlePendingFind consumes an editor.PendingFind a find-file or
// find-pattern command just stashed: it spawns the command's shell
// process (its stdout lines feed the picker via routeProcOutput) and
// switches h's mode machine into Picker. command.IO can't do this
// itself since internal/command has no reference to internal/proc or
// internal/mode.
func (s *Server) handlePendingFind(h editor.ClientHandle) {
	pf := s.Editor.PendingFind
	if pf == nil {
		return
	}
	s.Editor.PendingFind = nil

	m := s.modes[h]
	cl := s.clients.Get(h)
	if m == nil || cl == nil {
		return
	}

	tag := proc.Tag{Kind: proc.FindFiles}
	if pf.Pattern {
		tag = proc.Tag{Kind: proc.FindPattern}
	}
	if _, err := s.procs.Spawn("sh", []string{"-c", pf.Command}, tag); err != nil {
		s.Editor.StatusBar.Write(editor.MessageError, err.Error())
		return
	}

	ctx := &mode.Context{Editor: s.Editor, Client: h, View: cl.View(s.Editor), Procs: s.procs}
	isPattern := pf.Pattern
	m.EnterPicker(ctx, pf.Prompt, func(ctx *mode.Context, name string, ok bool) {
		if !ok || name == "" {
			return
		}
		if isPattern {
			s.openGrepMatch(ctx.Client, name)
		} else {
			s.Editor.Open(ctx.Client, name)
		}
	})
}

// openGrepMatch opens a `path:line:rest` or `path:line:col:rest`
// picker entry (the shape `grep -n`/`rg --vimgrep` produce) and moves
// the client's view cursor to that position.
func (s *Server) openGrepMatch(client editor.ClientHandle, entry string) {
	parts := strings.SplitN(entry, ":", 4)
	if len(parts) < 2 {
		s.Editor.Open(client, entry)
		return
	}
	line, err := strconv.Atoi(parts[1])
	if err != nil {
		s.Editor.Open(client, entry)
		return
	}
	col := 1
	if len(parts) >= 3 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			col = n
		}
	}
	bh, err := s.Editor.Open(client, parts[0])
	if err != nil {
		return
	}
	v := s.Editor.FocusedView(client)
	if v == nil || v.BufferHandle != bh {
		return
	}
	buf := s.Editor.Buffers.Get(bh)
	if buf == nil {
		return
	}
	pos := buf.Content.SaturatePosition(buffer.Position{Line: uint32(line - 1), Column: uint32(col - 1)})
	g := v.Cursors.Mutate(false)
	g.Set(0, buffer.Cursor{Anchor: pos, Position: pos})
	g.SetMainIndex(0)
	g.Release()
}

func (s *Server) handleProcEvent(pevt proc.Event) {
	switch pevt.Kind {
	case proc.Output:
		s.noteEvent(fmt.Sprintf("process output: id %d, %d bytes", pevt.ID, len(pevt.Data)))
		s.routeProcOutput(pevt)
	case proc.Exit:
		s.noteEvent(fmt.Sprintf("process exit: id %d", pevt.ID))
		s.procs.Forget(pevt.ID)
	}
}

func (s *Server) closeClient(h editor.ClientHandle) {
	if cl := s.clients.Get(h); cl != nil {
		if bh, ok := cl.StdinBuffer(); ok {
			s.streamBufferToStdout(h, bh)
		}
	}
	if conn, ok := s.conns[h]; ok {
		conn.Close()
		delete(s.conns, h)
	}
	delete(s.recvBuf, h)
	delete(s.modes, h)
	s.clients.OnClientLeft(h)
	if len(s.conns) == 0 {
		s.quitAll = true
	}
}

func (s *Server) shutdown() {
	for h := range s.conns {
		s.closeClient(h)
	}
	s.listener.Close()
}

// streamBufferToStdout sends the whole content of bh to client h as a
// StdoutOutput frame, for the client to replay on its own stdout once
// it has left raw mode. The payload is streamed through
// wire.StdoutWriter so the buffer's line slices go straight into the
// pooled output buffer with no intermediate join.
func (s *Server) streamBufferToStdout(h editor.ClientHandle, bh buffer.Handle) {
	conn, ok := s.conns[h]
	if !ok {
		return
	}
	b := s.Editor.Buffers.Get(bh)
	if b == nil {
		return
	}
	parts, err := b.Content.TextRange(buffer.Range{To: b.Content.End()})
	if err != nil {
		return
	}
	w := wire.NewStdoutWriter(s.pool.Acquire(), wire.EventStdoutOutput)
	for i, part := range parts {
		if i > 0 {
			w.Write([]byte{'\n'})
		}
		w.Write([]byte(part))
	}
	out := w.Finish()
	conn.Write(out)
	s.pool.Release(out)
}

// writeServerEvent frames and writes ev to client h's connection.
func (s *Server) writeServerEvent(h editor.ClientHandle, ev wire.ServerEvent) {
	conn, ok := s.conns[h]
	if !ok {
		return
	}
	g := bufpool.Borrow(s.pool)
	g.Append(wire.EncodeServerEvent(nil, ev))
	conn.Write(g.Bytes())
	g.Release()
}
