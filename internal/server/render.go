package server

import (
	"fmt"
	"strings"

	"github.com/quill-editor/quill/internal/editor"
	"github.com/quill-editor/quill/internal/event"
	"github.com/quill-editor/quill/internal/mode"
	"github.com/quill-editor/quill/internal/proc"
	"github.com/quill-editor/quill/internal/session"
	"github.com/quill-editor/quill/internal/wire"
)

// renderAll rebuilds and sends a frame to every connected client.
// Styled-cell rendering (colors, syntax highlighting) is supplied by
// an external layer; this produces the plain-text rows a terminal
// client needs underneath that styling: the buffer body (scrolled to
// the client's viewport), the status bar, and the picker list when
// one is open.
func (s *Server) renderAll() {
	for h := range s.conns {
		cl := s.clients.Get(h)
		if cl == nil {
			continue
		}
		hasPicker := s.modes[h] != nil && s.modes[h].State() == mode.Picker
		bodyHeight := cl.UpdateView(s.Editor, hasPicker)
		frame := s.renderFrame(cl, bodyHeight, hasPicker)
		s.writeServerEvent(h, wire.ServerEvent{Kind: wire.EventDisplay, Payload: []byte(frame)})
	}
}

func (s *Server) renderFrame(cl *session.Client, bodyHeight int, hasPicker bool) string {
	var b strings.Builder

	v := cl.View(s.Editor)
	if v == nil {
		b.WriteString("-- no buffer --\n")
	} else if buf := s.Editor.Buffers.Get(v.BufferHandle); buf != nil {
		last := buf.Content.LineCount()
		for i := 0; i < bodyHeight; i++ {
			lineIdx := cl.ScrollY + i
			if lineIdx >= last {
				b.WriteByte('~')
				b.WriteByte('\n')
				continue
			}
			b.WriteString(buf.Content.LineAt(lineIdx).Text())
			b.WriteByte('\n')
		}
	}

	if hasPicker {
		p := s.Editor.Picker
		entries := p.Entries(s.Editor.Words)
		height := p.Height(int(s.Editor.Config.PickerMaxHeight))
		for i := 0; i < height; i++ {
			idx := p.Scroll() + i
			if idx >= len(entries) {
				break
			}
			marker := "  "
			if idx == p.Cursor() {
				marker = "> "
			}
			fmt.Fprintf(&b, "%s%s\n", marker, entries[idx].Name)
		}
	}

	kind, msg := s.Editor.StatusBar.Message()
	if kind == editor.MessageError {
		fmt.Fprintf(&b, "error: %s", msg)
	} else {
		b.WriteString(msg)
	}

	return b.String()
}

// routeProcOutput dispatches a child process's stdout chunk to the
// subsystem its Tag names.
func (s *Server) routeProcOutput(pevt proc.Event) {
	switch pevt.Tag.Kind {
	case proc.Ignored:
		return
	case proc.BufferTag:
		buf := s.Editor.Buffers.Get(pevt.Tag.BufferHandle)
		if buf == nil {
			return
		}
		r, err := buf.Insert(buf.Content.End(), string(pevt.Data))
		if err != nil {
			return
		}
		s.Editor.Events.Enqueue(event.Event{Kind: event.BufferInsertText, BufferHandle: pevt.Tag.BufferHandle, Range: r})
	case proc.FindFiles, proc.FindPattern:
		for _, line := range strings.Split(string(pevt.Data), "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			s.Editor.Picker.AddCustomEntry(line, "")
		}
		s.Editor.Picker.Filter(s.Editor.Words, s.Editor.ReadLine.Input())
	case proc.PluginTag:
		// Plugin-process routing is owned by the plugin subsystem.
	}
}
