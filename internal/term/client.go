package term

import (
	"fmt"
	"net"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/quill-editor/quill/internal/bufpool"
	"github.com/quill-editor/quill/internal/wire"
)

// sourceKind tags which producer goroutine a Client's fan-in channel
// received a message from, mirroring internal/server's platformEvent
// shape: one channel, many producers, a single consumer loop.
type sourceKind int

const (
	sourceStdin sourceKind = iota
	sourcePipe
	sourceConn
	sourceResize
	sourceConnClosed
)

type clientMsg struct {
	kind sourceKind
	data []byte
}

// Client is the terminal-side reactor: it owns the terminal's
// raw-mode state, decodes stdin into keys, frames them to the server
// over conn, and applies whatever ServerEvents come back.
type Client struct {
	conn      net.Conn
	keyFile   *os.File
	tty       *os.File
	fd        int
	oldState  *term.State
	decoder   Decoder
	recvBuf   []byte
	stdout    []byte
	pool      *bufpool.Pool
	msgs      chan clientMsg
	asFocused bool
	piped     bool
}

// enterSeq/exitSeq are the terminal mode switches written around the
// session: alternate screen, cursor visibility, and 256-color mode on
// entry; their inverses plus a style reset on exit.
const (
	enterSeq = "\x1b[?1049h\x1b[?25l\x1b[=19h"
	exitSeq  = "\x1b[?1049l\x1b[?25h\x1b[0m"
)

// Dial connects to the session socket at socketPath and puts the
// controlling terminal into raw mode. When stdin is a pipe rather
// than a terminal, keys are read from /dev/tty instead and the piped
// bytes are forwarded to the server as StdinInput events. The caller
// restores the terminal by calling Restore.
func Dial(socketPath string, asFocused bool) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("term: dial %s: %w", socketPath, err)
	}
	keyFile := os.Stdin
	piped := !term.IsTerminal(int(os.Stdin.Fd()))
	var tty *os.File
	if piped {
		tty, err = os.Open("/dev/tty")
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("term: open controlling terminal: %w", err)
		}
		keyFile = tty
	}
	fd := int(keyFile.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		conn.Close()
		if tty != nil {
			tty.Close()
		}
		return nil, fmt.Errorf("term: set raw mode: %w", err)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		os.Stdout.WriteString(enterSeq)
	}
	return &Client{
		conn:      conn,
		keyFile:   keyFile,
		tty:       tty,
		fd:        fd,
		oldState:  oldState,
		pool:      bufpool.New(),
		msgs:      make(chan clientMsg, 64),
		asFocused: asFocused,
		piped:     piped,
	}, nil
}

// Restore undoes the raw-mode and screen-mode switches Dial made.
// Callers must call this exactly once, on every exit path, including
// panics recovered upstream.
func (c *Client) Restore() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		os.Stdout.WriteString(exitSeq)
	}
	term.Restore(c.fd, c.oldState)
	if c.tty != nil {
		c.tty.Close()
		c.tty = nil
	}
}

// FlushStdout replays any StdoutOutput payloads the server sent, to be
// called after Restore so the bytes land on a cooked, non-alternate
// screen (or cleanly into whatever stdout is piped to).
func (c *Client) FlushStdout() {
	if len(c.stdout) > 0 {
		os.Stdout.Write(c.stdout)
		c.stdout = nil
	}
}

// Size reads the controlling terminal's current column/row count via
// TIOCGWINSZ.
func (c *Client) Size() (cols, rows int, err error) {
	ws, err := unix.IoctlGetWinsize(c.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("term: get window size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

// Run drives the client until the connection closes or the server
// sends an invalid frame. A Suspend event backgrounds the client and
// the loop resumes afterward; StdoutOutput payloads are kept for
// FlushStdout. It sends
// an initial resize event, then dispatches stdin keys, SIGWINCH
// resizes, and server frames as they arrive — the same fan-in-to-
// single-consumer shape internal/server's reactor uses.
func (c *Client) Run() error {
	cols, rows, err := c.Size()
	if err != nil {
		return err
	}
	c.writeResize(cols, rows)

	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, unix.SIGWINCH)
	defer signal.Stop(sigwinch)

	done := make(chan struct{})
	defer close(done)

	go c.readKeysLoop(done)
	if c.piped {
		go c.readPipeLoop(done)
	}
	go c.readConnLoop(done)
	go func() {
		for {
			select {
			case <-sigwinch:
				cols, rows, err := c.Size()
				if err != nil {
					continue
				}
				select {
				case c.msgs <- clientMsg{kind: sourceResize, data: encodeWH(cols, rows)}:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	for m := range c.msgs {
		switch m.kind {
		case sourceStdin:
			c.sendKeys(m.data)
		case sourcePipe:
			c.writeClientEvent(wire.ClientEvent{Kind: wire.EventStdinInput, Target: c.target(), Bytes: m.data})
		case sourceResize:
			cols, rows := decodeWH(m.data)
			c.writeResize(cols, rows)
		case sourceConn:
			if err := c.handleServerData(m.data); err != nil {
				return err
			}
		case sourceConnClosed:
			return nil
		}
	}
	return nil
}

func (c *Client) readKeysLoop(done <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		n, err := c.keyFile.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.msgs <- clientMsg{kind: sourceStdin, data: chunk}:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// readPipeLoop drains piped stdin; the raw bytes travel to the server
// as StdinInput events and end up in the client's pipe-backed buffer.
func (c *Client) readPipeLoop(done <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.msgs <- clientMsg{kind: sourcePipe, data: chunk}:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) readConnLoop(done <-chan struct{}) {
	buf := make([]byte, 32*1024)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.msgs <- clientMsg{kind: sourceConn, data: chunk}:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case c.msgs <- clientMsg{kind: sourceConnClosed}:
			case <-done:
			}
			return
		}
	}
}

func (c *Client) sendKeys(data []byte) {
	for _, k := range c.decoder.Feed(data) {
		c.writeClientEvent(wire.ClientEvent{Kind: wire.EventKey, Target: c.target(), Key: k})
	}
}

func (c *Client) target() wire.Target {
	if c.asFocused {
		return wire.Focused
	}
	return wire.Sender
}

func (c *Client) writeResize(cols, rows int) {
	c.writeClientEvent(wire.ClientEvent{
		Kind: wire.EventResize, Target: c.target(),
		Width: uint16(cols), Height: uint16(rows),
	})
}

// SendCommand frames a command-line string (e.g. from a `-c` startup
// script or the wire protocol's out-of-band control path) to the
// server as an EventCommand.
func (c *Client) SendCommand(text string) {
	c.writeClientEvent(wire.ClientEvent{Kind: wire.EventCommand, Target: c.target(), Text: text})
}

func (c *Client) writeClientEvent(ev wire.ClientEvent) {
	g := bufpool.Borrow(c.pool)
	g.Append(wire.EncodeClientEvent(nil, ev))
	c.conn.Write(g.Bytes())
	g.Release()
}

// handleServerData decodes and applies as many ServerEvent frames as
// data holds, buffering any trailing partial frame.
func (c *Client) handleServerData(data []byte) error {
	c.recvBuf = append(c.recvBuf, data...)
	for {
		ev, n, err := wire.DecodeServerEvent(c.recvBuf)
		if err == wire.ErrInsufficientData {
			break
		}
		if err != nil {
			return fmt.Errorf("term: invalid server frame: %w", err)
		}
		c.recvBuf = c.recvBuf[n:]
		switch ev.Kind {
		case wire.EventDisplay:
			os.Stdout.Write(ev.Payload)
		case wire.EventStdoutOutput:
			c.stdout = append(c.stdout, ev.Payload...)
		case wire.EventSuspend:
			c.suspend()
		}
	}
	return nil
}

// suspend backgrounds the client process (Ctrl-Z-style), restoring
// cooked terminal mode for the duration and re-entering raw mode on
// resume.
func (c *Client) suspend() {
	ttyOut := term.IsTerminal(int(os.Stdout.Fd()))
	if ttyOut {
		os.Stdout.WriteString(exitSeq)
	}
	term.Restore(c.fd, c.oldState)
	unix.Kill(os.Getpid(), unix.SIGTSTP)
	term.MakeRaw(c.fd)
	if ttyOut {
		os.Stdout.WriteString(enterSeq)
	}
}

func encodeWH(cols, rows int) []byte {
	return []byte{byte(cols), byte(cols >> 8), byte(rows), byte(rows >> 8)}
}

func decodeWH(b []byte) (cols, rows int) {
	if len(b) < 4 {
		return 0, 0
	}
	cols = int(b[0]) | int(b[1])<<8
	rows = int(b[2]) | int(b[3])<<8
	return cols, rows
}
