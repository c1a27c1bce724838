package wire

import (
	"encoding/binary"

	"github.com/quill-editor/quill/internal/keys"
)

// Target picks which client a ClientEvent should be attributed to,
// letting one physical connection forward input on behalf of another
// (the --as-focused-client flag).
type Target uint8

const (
	Sender Target = iota
	Focused
)

// ClientEventKind tags the variant of a ClientEvent.
type ClientEventKind uint8

const (
	EventKey ClientEventKind = iota
	EventResize
	EventCommand
	EventStdinInput
)

// ClientEvent is a message sent from client to server.
type ClientEvent struct {
	Kind   ClientEventKind
	Target Target

	Key    keys.Key
	Width  uint16
	Height uint16
	Text   string
	Bytes  []byte
}

// ServerEventKind tags the variant of a ServerEvent.
type ServerEventKind uint8

const (
	EventDisplay ServerEventKind = iota
	EventSuspend
	EventStdoutOutput
)

// ServerEvent is a message sent from server to client. Display carries
// a pre-rendered frame as plain text (no escape sequences); StdoutOutput
// carries bytes the client should write to its own stdout on exit;
// Suspend carries no payload.
type ServerEvent struct {
	Kind    ServerEventKind
	Payload []byte
}

func encodeKey(buf []byte, k keys.Key) []byte {
	buf = append(buf, byte(k.Kind))
	var charBuf [4]byte
	binary.LittleEndian.PutUint32(charBuf[:], uint32(k.Char))
	buf = append(buf, charBuf[:]...)
	buf = append(buf, k.FNumber)
	return buf
}

func decodeKey(b []byte) (keys.Key, []byte, error) {
	if len(b) < 6 {
		return keys.Key{}, nil, ErrInsufficientData
	}
	k := keys.Key{
		Kind:    keys.Kind(b[0]),
		Char:    rune(binary.LittleEndian.Uint32(b[1:5])),
		FNumber: b[5],
	}
	return k, b[6:], nil
}

func encodeBytes(buf []byte, s []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	return buf
}

func decodeBytes(b []byte) ([]byte, []byte, error) {
	if len(b) < 4 {
		return nil, nil, ErrInsufficientData
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	if uint64(len(b)) < uint64(n) {
		return nil, nil, ErrInsufficientData
	}
	return b[:n:n], b[n:], nil
}

// EncodeClientEvent appends e's length-prefixed frame to buf and
// returns the extended slice.
func EncodeClientEvent(buf []byte, e ClientEvent) []byte {
	body := []byte{byte(e.Kind), byte(e.Target)}
	switch e.Kind {
	case EventKey:
		body = encodeKey(body, e.Key)
	case EventResize:
		var wh [4]byte
		binary.LittleEndian.PutUint16(wh[0:2], e.Width)
		binary.LittleEndian.PutUint16(wh[2:4], e.Height)
		body = append(body, wh[:]...)
	case EventCommand:
		body = encodeBytes(body, []byte(e.Text))
	case EventStdinInput:
		body = encodeBytes(body, e.Bytes)
	}
	return appendFrame(buf, body)
}

// DecodeClientEvent decodes one frame from the head of data, returning
// the event and the number of bytes consumed. It returns
// ErrInsufficientData if data does not yet hold a full frame, or
// ErrInvalidData if the frame's tag is unrecognized.
func DecodeClientEvent(data []byte) (ClientEvent, int, error) {
	body, total, err := readFrame(data)
	if err != nil {
		return ClientEvent{}, 0, err
	}
	if len(body) < 2 {
		return ClientEvent{}, 0, ErrInvalidData
	}
	e := ClientEvent{Kind: ClientEventKind(body[0]), Target: Target(body[1])}
	rest := body[2:]
	switch e.Kind {
	case EventKey:
		k, _, err := decodeKey(rest)
		if err != nil {
			return ClientEvent{}, 0, ErrInvalidData
		}
		e.Key = k
	case EventResize:
		if len(rest) < 4 {
			return ClientEvent{}, 0, ErrInvalidData
		}
		e.Width = binary.LittleEndian.Uint16(rest[0:2])
		e.Height = binary.LittleEndian.Uint16(rest[2:4])
	case EventCommand:
		b, _, err := decodeBytes(rest)
		if err != nil {
			return ClientEvent{}, 0, ErrInvalidData
		}
		e.Text = string(b)
	case EventStdinInput:
		b, _, err := decodeBytes(rest)
		if err != nil {
			return ClientEvent{}, 0, ErrInvalidData
		}
		e.Bytes = append([]byte(nil), b...)
	default:
		return ClientEvent{}, 0, ErrInvalidData
	}
	return e, total, nil
}

// EncodeServerEvent appends e's length-prefixed frame to buf and
// returns the extended slice.
func EncodeServerEvent(buf []byte, e ServerEvent) []byte {
	body := []byte{byte(e.Kind)}
	switch e.Kind {
	case EventDisplay, EventStdoutOutput:
		body = encodeBytes(body, e.Payload)
	case EventSuspend:
	}
	return appendFrame(buf, body)
}

// DecodeServerEvent decodes one frame from the head of data, returning
// the event and the number of bytes consumed.
func DecodeServerEvent(data []byte) (ServerEvent, int, error) {
	body, total, err := readFrame(data)
	if err != nil {
		return ServerEvent{}, 0, err
	}
	if len(body) < 1 {
		return ServerEvent{}, 0, ErrInvalidData
	}
	e := ServerEvent{Kind: ServerEventKind(body[0])}
	rest := body[1:]
	switch e.Kind {
	case EventDisplay, EventStdoutOutput:
		b, _, err := decodeBytes(rest)
		if err != nil {
			return ServerEvent{}, 0, ErrInvalidData
		}
		e.Payload = append([]byte(nil), b...)
	case EventSuspend:
	default:
		return ServerEvent{}, 0, ErrInvalidData
	}
	return e, total, nil
}

// appendFrame wraps body with its u32 length prefix.
func appendFrame(buf []byte, body []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, body...)
	return buf
}

// readFrame reads the u32 length prefix at the head of data and
// returns the frame body plus the total bytes (prefix+body) consumed.
func readFrame(data []byte) (body []byte, total int, err error) {
	if len(data) < lengthPrefixSize {
		return nil, 0, ErrInsufficientData
	}
	n := binary.LittleEndian.Uint32(data[:lengthPrefixSize])
	if uint64(len(data)-lengthPrefixSize) < uint64(n) {
		return nil, 0, ErrInsufficientData
	}
	body = data[lengthPrefixSize : lengthPrefixSize+int(n)]
	return body, lengthPrefixSize + int(n), nil
}

// StdoutWriter streams a ServerEvent{Kind: EventStdoutOutput}'s
// payload directly into buf without an intermediate copy: it reserves
// the frame's length-prefix and tag+payload-length header up front,
// lets the caller append payload chunks (e.g. from
// buffer.Content.TextRange) directly, then back-patches both length
// fields once the payload is complete.
type StdoutWriter struct {
	buf       []byte
	headerAt  int
	payloadAt int
}

// NewStdoutWriter reserves the header for an EventStdoutOutput (or
// EventDisplay, same shape) frame at the end of buf and returns a
// writer positioned to stream the payload.
func NewStdoutWriter(buf []byte, kind ServerEventKind) *StdoutWriter {
	w := &StdoutWriter{headerAt: len(buf)}
	buf = append(buf, 0, 0, 0, 0) // frame length, patched in Finish
	buf = append(buf, byte(kind))
	w.payloadAt = len(buf)
	buf = append(buf, 0, 0, 0, 0) // payload length, patched in Finish
	w.buf = buf
	return w
}

// Write appends a chunk of payload bytes.
func (w *StdoutWriter) Write(p []byte) {
	w.buf = append(w.buf, p...)
}

// Finish back-patches the reserved length fields and returns the
// extended buffer.
func (w *StdoutWriter) Finish() []byte {
	payloadLen := len(w.buf) - w.payloadAt - 4
	binary.LittleEndian.PutUint32(w.buf[w.payloadAt:w.payloadAt+4], uint32(payloadLen))
	frameLen := len(w.buf) - w.headerAt - lengthPrefixSize
	binary.LittleEndian.PutUint32(w.buf[w.headerAt:w.headerAt+4], uint32(frameLen))
	return w.buf
}
