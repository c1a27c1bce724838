package editor

// MessageKind tags a status-bar message's severity.
type MessageKind int

const (
	Info MessageKind = iota
	MessageError
)

// StatusBar holds the single most recent message shown to the client.
type StatusBar struct {
	kind    MessageKind
	message string
}

// NewStatusBar returns an empty, Info-kind status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// Message returns the current kind and text.
func (s *StatusBar) Message() (MessageKind, string) {
	return s.kind, s.message
}

// Clear empties the message.
func (s *StatusBar) Clear() {
	s.message = ""
}

// Write replaces the message with kind/text; the status line always
// shows only the latest event.
func (s *StatusBar) Write(kind MessageKind, text string) {
	s.kind = kind
	s.message = text
}
