package editor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/quill-editor/quill/internal/buffer"
	"github.com/quill-editor/quill/internal/command"
)

// RegisterBuiltins installs the builtin command set, closing over ed
// so each one can reach buffers/views/registers without the command
// package importing editor (which would cycle).
func RegisterBuiltins(reg *command.Registry, ed *Editor) {
	reg.Register("help", []command.CompletionSource{command.Commands}, func(io *command.IO) error {
		name, ok := io.Args.TryNext()
		if !ok {
			names := reg.Names()
			io.Output.WriteString(strings.Join(names, " "))
			return nil
		}
		io.Output.WriteString("no manual entry for " + name)
		return nil
	})

	reg.Register("print", nil, func(io *command.IO) error {
		io.Output.WriteString(strings.Join(io.Args.Rest(), " "))
		return nil
	})

	reg.Register("quit", nil, func(io *command.IO) error {
		if err := io.Args.AssertEmpty(); err != nil {
			return err
		}
		if !io.Bang {
			if v := ed.FocusedView(ClientHandle(io.ClientHandle)); v != nil {
				if b := ed.Buffers.Get(v.BufferHandle); b != nil && b.NeedsSave {
					return &command.Error{Kind: command.UnsavedChanges}
				}
			}
		}
		io.Flow = command.Quit
		return nil
	})

	reg.Register("quit-all", nil, func(io *command.IO) error {
		if !io.Bang {
			var dirty bool
			ed.Buffers.Iter(func(b *buffer.Buffer) {
				if b.NeedsSave {
					dirty = true
				}
			})
			if dirty {
				return &command.Error{Kind: command.UnsavedChanges}
			}
		}
		io.Flow = command.QuitAll
		return nil
	})

	reg.Register("open", []command.CompletionSource{command.Files}, func(io *command.IO) error {
		path, err := io.Args.Next()
		if err != nil {
			return err
		}
		if err := io.Args.AssertEmpty(); err != nil {
			return err
		}
		_, err = ed.Open(ClientHandle(io.ClientHandle), path)
		if err != nil {
			return &command.Error{Kind: command.BufferReadError, Message: err.Error()}
		}
		return nil
	})

	reg.Register("save", []command.CompletionSource{command.Files}, func(io *command.IO) error {
		path, _ := io.Args.TryNext()
		v := ed.FocusedView(ClientHandle(io.ClientHandle))
		if v == nil {
			return &command.Error{Kind: command.NoBufferOpened}
		}
		if err := ed.Buffers.WriteToFile(v.BufferHandle, path); err != nil {
			return &command.Error{Kind: command.BufferWriteError, Message: err.Error()}
		}
		return nil
	})

	reg.Register("save-all", nil, func(io *command.IO) error {
		var firstErr error
		ed.Buffers.Iter(func(b *buffer.Buffer) {
			if firstErr != nil || !b.Properties.CanSave || b.Path == "" {
				return
			}
			if err := ed.Buffers.WriteToFile(b.Handle, ""); err != nil {
				firstErr = err
			}
		})
		if firstErr != nil {
			return &command.Error{Kind: command.BufferWriteError, Message: firstErr.Error()}
		}
		return nil
	})

	reg.Register("reopen", nil, func(io *command.IO) error {
		v := ed.FocusedView(ClientHandle(io.ClientHandle))
		if v == nil {
			return &command.Error{Kind: command.NoBufferOpened}
		}
		b := ed.Buffers.Get(v.BufferHandle)
		if b == nil {
			return &command.Error{Kind: command.NoBufferOpened}
		}
		if !io.Bang && b.NeedsSave {
			return &command.Error{Kind: command.UnsavedChanges}
		}
		if err := ed.Buffers.ReadFromFile(v.BufferHandle, b.Path); err != nil {
			return &command.Error{Kind: command.BufferReadError, Message: err.Error()}
		}
		return nil
	})

	reg.Register("reopen-all", nil, func(io *command.IO) error {
		var firstErr error
		ed.Buffers.Iter(func(b *buffer.Buffer) {
			if firstErr != nil || b.Path == "" {
				return
			}
			if !io.Bang && b.NeedsSave {
				firstErr = &command.Error{Kind: command.UnsavedChanges}
				return
			}
			if err := ed.Buffers.ReadFromFile(b.Handle, b.Path); err != nil {
				firstErr = err
			}
		})
		if firstErr != nil {
			if ce, ok := firstErr.(*command.Error); ok {
				return ce
			}
			return &command.Error{Kind: command.BufferReadError, Message: firstErr.Error()}
		}
		return nil
	})

	reg.Register("close", nil, func(io *command.IO) error {
		v := ed.FocusedView(ClientHandle(io.ClientHandle))
		if v == nil {
			return &command.Error{Kind: command.NoBufferOpened}
		}
		b := ed.Buffers.Get(v.BufferHandle)
		if !io.Bang && b != nil && b.NeedsSave {
			return &command.Error{Kind: command.UnsavedChanges}
		}
		ed.Buffers.DeferRemove(v.BufferHandle)
		ed.DrainEvents()
		return nil
	})

	reg.Register("close-all", nil, func(io *command.IO) error {
		if !io.Bang {
			var dirty bool
			ed.Buffers.Iter(func(b *buffer.Buffer) {
				if b.NeedsSave {
					dirty = true
				}
			})
			if dirty {
				return &command.Error{Kind: command.UnsavedChanges}
			}
		}
		ed.Buffers.Iter(func(b *buffer.Buffer) {
			ed.Buffers.DeferRemove(b.Handle)
		})
		ed.DrainEvents()
		return nil
	})

	reg.Register("config", []command.CompletionSource{command.Files}, func(io *command.IO) error {
		path, err := io.Args.Next()
		if err != nil {
			return err
		}
		text, readErr := os.ReadFile(path)
		if readErr != nil {
			return &command.Error{Kind: command.ParseConfig, Message: readErr.Error()}
		}
		for _, line := range strings.Split(string(text), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if _, _, err := reg.Eval(io.ClientHandle, line); err != nil {
				return &command.Error{Kind: command.ParseConfig, Message: err.Error()}
			}
		}
		return nil
	})

	reg.Register("set", []command.CompletionSource{command.Custom}, func(io *command.IO) error {
		key, err := io.Args.Next()
		if err != nil {
			return err
		}
		value, err := io.Args.Next()
		if err != nil {
			return err
		}
		if setErr := ed.Config.Set(key, value); setErr != nil {
			return &command.Error{Kind: command.ParseConfig, Message: setErr.Error()}
		}
		return nil
	})

	reg.Register("color", nil, func(io *command.IO) error {
		name, err := io.Args.Next()
		if err != nil {
			return err
		}
		value, err := io.Args.Next()
		if err != nil {
			return err
		}
		ed.Theme.Colors[name] = value
		return nil
	})

	for _, mode := range []string{"normal", "insert", "command", "readline", "picker"} {
		modeName := mode
		reg.Register("map-"+modeName, nil, func(io *command.IO) error {
			from, err := io.Args.Next()
			if err != nil {
				return err
			}
			to, err := io.Args.Next()
			if err != nil {
				return err
			}
			if err := ed.KeyMaps.For(modeName).Map(from, to); err != nil {
				return &command.Error{Kind: command.KeyMap, Message: err.Error()}
			}
			return nil
		})
	}

	reg.Register("alias", nil, func(io *command.IO) error {
		name, err := io.Args.Next()
		if err != nil {
			return err
		}
		phrase := strings.Join(io.Args.Rest(), " ")
		if phrase == "" {
			return &command.Error{Kind: command.TooFewArguments}
		}
		reg.Alias(name, phrase)
		return nil
	})

	reg.Register("syntax", []command.CompletionSource{command.Custom}, func(io *command.IO) error {
		glob, err := io.Args.Next()
		if err != nil {
			return err
		}
		name, err := io.Args.Next()
		if err != nil {
			return err
		}
		ed.Syntaxes.Set(glob, name)
		return nil
	})

	reg.Register("copy-command", nil, func(io *command.IO) error {
		ed.Registers.Set(RegisterKey(0), strings.Join(io.Args.Rest(), " "))
		return nil
	})

	reg.Register("paste-command", nil, func(io *command.IO) error {
		io.Output.WriteString(ed.Registers.Get(RegisterKey(0)))
		return nil
	})

	reg.Register("enqueue-keys", nil, func(io *command.IO) error {
		text := strings.Join(io.Args.Rest(), " ")
		_, err := ed.BufferedKeys.Parse(text)
		if err != nil {
			return &command.Error{Kind: command.KeyParse, Message: err.Error()}
		}
		return nil
	})

	reg.Register("find-file", []command.CompletionSource{command.Files}, func(io *command.IO) error {
		cmd, err := io.Args.Next()
		if err != nil {
			return err
		}
		prompt, ok := io.Args.TryNext()
		if !ok {
			prompt = "open:"
		}
		if err := io.Args.AssertEmpty(); err != nil {
			return err
		}
		ed.Picker.Clear()
		ed.PendingFind = &PendingFind{Command: cmd, Prompt: prompt}
		return nil
	})

	reg.Register("find-pattern", nil, func(io *command.IO) error {
		cmd, err := io.Args.Next()
		if err != nil {
			return err
		}
		prompt, ok := io.Args.TryNext()
		if !ok {
			prompt = "find:"
		}
		if err := io.Args.AssertEmpty(); err != nil {
			return err
		}
		ed.Picker.Clear()
		ed.PendingFind = &PendingFind{Command: cmd, Prompt: prompt, Pattern: true}
		return nil
	})

	reg.Register("pid", nil, func(io *command.IO) error {
		fmt.Fprintf(&io.Output, "%d", os.Getpid())
		return nil
	})
}

// Open resolves path against ed.Cwd, reusing an already-open buffer if
// one backs the same file, and focuses client's view onto it.
func (ed *Editor) Open(client ClientHandle, path string) (buffer.Handle, error) {
	if h, ok := ed.Buffers.FindWithPath(ed.Cwd, path); ok {
		vh := ed.Views.ViewHandleFromBufferHandle(client, h)
		ed.SetFocused(client, vh)
		return h, nil
	}
	h := ed.Buffers.AddNew(path, buffer.DefaultProperties())
	if err := ed.Buffers.ReadFromFile(h, path); err != nil {
		// A path that doesn't exist yet still opens: the buffer starts
		// empty and the file appears on the first save.
		if !errors.Is(err, fs.ErrNotExist) {
			ed.Buffers.DeferRemove(h)
			ed.DrainEvents()
			return h, err
		}
	}
	vh := ed.Views.ViewHandleFromBufferHandle(client, h)
	ed.SetFocused(client, vh)
	return h, nil
}
