package wire

import (
	"reflect"
	"testing"

	"github.com/quill-editor/quill/internal/keys"
)

func TestClientEventRoundTrip(t *testing.T) {
	cases := []ClientEvent{
		{Kind: EventKey, Target: Sender, Key: keys.Key{Kind: keys.Char, Char: 'a'}},
		{Kind: EventKey, Target: Focused, Key: keys.Key{Kind: keys.Ctrl, Char: 'x'}},
		{Kind: EventResize, Target: Sender, Width: 80, Height: 24},
		{Kind: EventCommand, Target: Sender, Text: "open hello.txt"},
		{Kind: EventStdinInput, Target: Focused, Bytes: []byte("piped input")},
	}
	for _, want := range cases {
		buf := EncodeClientEvent(nil, want)
		got, n, err := DecodeClientEvent(buf)
		if err != nil {
			t.Fatalf("decode %+v: %v", want, err)
		}
		if n != len(buf) {
			t.Fatalf("consumed %d, want %d", n, len(buf))
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	}
}

func TestServerEventRoundTrip(t *testing.T) {
	cases := []ServerEvent{
		{Kind: EventDisplay, Payload: []byte("\x1b[2Jhello")},
		{Kind: EventSuspend},
		{Kind: EventStdoutOutput, Payload: []byte("stdout bytes")},
	}
	for _, want := range cases {
		buf := EncodeServerEvent(nil, want)
		got, n, err := DecodeServerEvent(buf)
		if err != nil {
			t.Fatalf("decode %+v: %v", want, err)
		}
		if n != len(buf) {
			t.Fatalf("consumed %d, want %d", n, len(buf))
		}
		if got.Kind != want.Kind || !reflect.DeepEqual(got.Payload, want.Payload) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	}
}

func TestDecodeClientEventSplitIsInsufficientNotInvalid(t *testing.T) {
	want := ClientEvent{Kind: EventCommand, Target: Sender, Text: "find-file pattern"}
	full := EncodeClientEvent(nil, want)
	for i := 0; i < len(full); i++ {
		_, _, err := DecodeClientEvent(full[:i])
		if err != ErrInsufficientData {
			t.Fatalf("split at %d: got %v, want ErrInsufficientData", i, err)
		}
	}
}

func TestStdoutWriterMatchesDirectEncode(t *testing.T) {
	payload := []byte("streamed in two chunks")
	direct := EncodeServerEvent(nil, ServerEvent{Kind: EventStdoutOutput, Payload: payload})

	w := NewStdoutWriter(nil, EventStdoutOutput)
	w.Write(payload[:10])
	w.Write(payload[10:])
	streamed := w.Finish()

	if !reflect.DeepEqual(direct, streamed) {
		t.Fatalf("streamed encoding %v != direct encoding %v", streamed, direct)
	}
}
