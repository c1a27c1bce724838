// Command quill is the editor's CLI entry point: it computes the
// per-directory session socket path, decides whether this
// process becomes the server (no one owns the socket yet) or a client
// of an already-running one, and drives either internal/server's
// reactor or internal/term's client reactor to completion.
package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/server"
	"github.com/quill-editor/quill/internal/term"
	"github.com/quill-editor/quill/pkg/logger"
)

const appName = "quill"

// version is the only thing -v/--version prints; there is no build
// pipeline here to stamp it from a tag.
const version = "0.1.0"

type options struct {
	Version         bool   `short:"v" long:"version" description:"print version and exit"`
	Session         string `short:"s" long:"session" description:"session name (alphanumeric only)"`
	PrintSession    bool   `long:"print-session" description:"print the computed session path and exit"`
	AsFocusedClient bool   `long:"as-focused-client" description:"forward input as if from the focused client"`
	Quit            bool   `long:"quit" description:"enqueue a quit command on connect"`
	Server          bool   `long:"server" description:"run as server in the current process"`
	Config          string `short:"c" long:"config" description:"source a config file"`
	TryConfig       string `long:"try-config" description:"source a config file, ignoring a missing file"`
}

func main() {
	opts, paths, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println(appName, version)
		return
	}

	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "quill:", err)
		os.Exit(1)
	}
	sessionName := opts.Session
	if sessionName == "" {
		sessionName = hashCwd(cwd)
	}
	sessionDir := filepath.Join(os.TempDir(), appName)
	socketPath := filepath.Join(sessionDir, sessionName)

	if opts.PrintSession {
		fmt.Println(socketPath)
		return
	}

	if err := os.MkdirAll(sessionDir, 0o700); err != nil {
		fmt.Fprintln(os.Stderr, "quill:", err)
		os.Exit(1)
	}

	if opts.Server {
		logger.Init(filepath.Join(sessionDir, sessionName+".txt"))
		defer logger.Close()
		if err := runServer(socketPath, cwd, opts, paths); err != nil {
			logger.Error("server: %v", err)
			os.Exit(1)
		}
		return
	}

	if isSocketLive(socketPath) {
		if err := runClient(socketPath, opts, paths); err != nil {
			fmt.Fprintln(os.Stderr, "quill:", err)
			os.Exit(1)
		}
		return
	}

	if err := daemonizeAndServe(socketPath, cwd, opts, paths); err != nil {
		fmt.Fprintln(os.Stderr, "quill:", err)
		os.Exit(1)
	}
	if err := runClient(socketPath, opts, paths); err != nil {
		fmt.Fprintln(os.Stderr, "quill:", err)
		os.Exit(1)
	}
}

// parseArgs parses argv with go-flags, also handling -h/--help (which
// go-flags reports as ErrHelp; the help text is printed here and the
// process exits 0) and
// `--` ending flag parsing so the remainder are positional file paths.
func parseArgs(argv []string) (options, []string, error) {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = appName
	paths, err := parser.ParseArgs(argv)
	if err != nil {
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		return opts, nil, err
	}
	return opts, paths, nil
}

var sessionNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func (o options) validate() error {
	if o.Session != "" && !sessionNamePattern.MatchString(o.Session) {
		return fmt.Errorf("quill: session name must be alphanumeric: %q", o.Session)
	}
	return nil
}

// hashCwd derives the default session name: a
// 16-hex-digit hash of the working directory, so repeated invocations
// from the same directory reattach to the same server.
func hashCwd(cwd string) string {
	h := fnv64a(cwd)
	return fmt.Sprintf("%016x", h)
}

// fnv64a is the FNV-1a 64-bit hash, used unkeyed purely to fold a path
// into a stable fixed-width session name — not for anything
// security-sensitive.
func fnv64a(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// isSocketLive reports whether a process currently owns socketPath: it
// attempts to connect and immediately closes, treating any dial
// failure as "no server, this is a stale or nonexistent socket."
func isSocketLive(socketPath string) bool {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// daemonizeAndServe forks a detached server process for socketPath and
// waits until the socket accepts connections before returning, so the
// caller can immediately dial it as a client.
func daemonizeAndServe(socketPath, cwd string, opts options, paths []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("quill: locate executable: %w", err)
	}
	args := []string{"--server"}
	if opts.Session != "" {
		args = append(args, "--session", opts.Session)
	}
	if opts.Config != "" {
		args = append(args, "--config", opts.Config)
	}
	if opts.TryConfig != "" {
		args = append(args, "--try-config", opts.TryConfig)
	}
	cmd := []string{exe}
	cmd = append(cmd, args...)

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("quill: open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	pid, err := syscall.ForkExec(cmd[0], cmd, &syscall.ProcAttr{
		Dir:   cwd,
		Env:   os.Environ(),
		Files: []uintptr{devnull.Fd(), devnull.Fd(), devnull.Fd()},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	})
	if err != nil {
		return fmt.Errorf("quill: fork server: %w", err)
	}
	_ = pid

	return waitForSocket(socketPath)
}

func waitForSocket(socketPath string) error {
	for i := 0; i < 200; i++ {
		if isSocketLive(socketPath) {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("quill: server at %s did not start accepting connections", socketPath)
}

func runServer(socketPath, cwd string, opts options, paths []string) error {
	ed := editor.New(cwd, editor.OSFileIO{})
	if opts.Config != "" {
		if err := sourceConfig(ed, opts.Config, false); err != nil {
			return err
		}
	}
	if opts.TryConfig != "" {
		if err := sourceConfig(ed, opts.TryConfig, true); err != nil {
			return err
		}
	}
	for _, p := range paths {
		path, lineCol := splitLineColSuffix(p)
		bh, err := ed.Open(editor.ClientHandle(0), path)
		if err != nil {
			logger.Error("open %s: %v", path, err)
			continue
		}
		if lineCol == "" {
			continue
		}
		applyLineColSuffix(ed, bh, lineCol)
	}
	s, err := server.New(ed, socketPath)
	if err != nil {
		return err
	}
	logger.Info("quill server listening at %s", s.Addr())
	return s.Run()
}

func runClient(socketPath string, opts options, paths []string) error {
	c, err := term.Dial(socketPath, opts.AsFocusedClient)
	if err != nil {
		return err
	}
	defer c.FlushStdout()
	defer c.Restore()

	for _, p := range paths {
		path, _ := splitLineColSuffix(p)
		c.SendCommand("open " + path)
	}
	if opts.Quit {
		c.SendCommand("quit")
	}
	return c.Run()
}

// splitLineColSuffix strips a trailing `:LINE[,COL]` suffix from a
// positional file path argument.
func splitLineColSuffix(p string) (path string, lineCol string) {
	idx := strings.LastIndexByte(p, ':')
	if idx < 0 {
		return p, ""
	}
	suffix := p[idx+1:]
	for _, r := range suffix {
		if (r < '0' || r > '9') && r != ',' {
			return p, ""
		}
	}
	if suffix == "" {
		return p, ""
	}
	return p[:idx], suffix
}

// applyLineColSuffix moves the view client 0 holds on bh to the
// 1-based LINE[,COL] position a `:LINE,COL` path suffix named,
// clamped to the buffer's actual content.
func applyLineColSuffix(ed *editor.Editor, bh buffer.Handle, lineCol string) {
	v := ed.FocusedView(editor.ClientHandle(0))
	if v == nil || v.BufferHandle != bh {
		return
	}
	buf := ed.Buffers.Get(bh)
	if buf == nil {
		return
	}
	line, col := 1, 1
	parts := strings.SplitN(lineCol, ",", 2)
	if n, err := strconv.Atoi(parts[0]); err == nil {
		line = n
	}
	if len(parts) == 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			col = n
		}
	}
	pos := buf.Content.SaturatePosition(buffer.Position{Line: uint32(line - 1), Column: uint32(col - 1)})
	g := v.Cursors.Mutate(false)
	g.Set(0, buffer.Cursor{Anchor: pos, Position: pos})
	g.SetMainIndex(0)
	g.Release()
}

// sourceConfig reads path line by line and evaluates each as a command
// (internal/config's "config file is just commands" shape). A missing
// file is an error unless try is set.
func sourceConfig(ed *editor.Editor, path string, try bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if try && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("quill: read config %s: %w", path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, _, err := ed.Commands.Eval(0, line); err != nil {
			return fmt.Errorf("quill: config %s: %w", path, err)
		}
	}
	return nil
}
