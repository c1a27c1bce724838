// Package wire implements the length-prefixed binary wire format
// exchanged between a client and the server over the session's Unix
// domain socket.
package wire

import "errors"

// ErrInsufficientData means the caller has not yet read enough bytes
// to decode a full frame; it should buffer more and retry the same
// decode call.
var ErrInsufficientData = errors.New("wire: insufficient data")

// ErrInvalidData means the bytes read do not form a valid frame at
// all; this is fatal for the connection and it should be closed.
var ErrInvalidData = errors.New("wire: invalid data")

// lengthPrefixSize is the size in bytes of the u32 length prefix that
// precedes every frame's tag+payload.
const lengthPrefixSize = 4
