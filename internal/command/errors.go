package command

import "fmt"

// ErrorKind is the finite taxonomy of command-evaluation failures.
type ErrorKind int

const (
	NoSuchCommand ErrorKind = iota
	TooManyArguments
	TooFewArguments
	NoBufferOpened
	UnsavedChanges
	BufferReadError
	BufferWriteError
	ParseConfig
	NoSuchColor
	InvalidGlob
	KeyParse
	KeyMap
	Pattern
	InvalidBufferMode
	Other
)

func (k ErrorKind) String() string {
	switch k {
	case NoSuchCommand:
		return "no such command"
	case TooManyArguments:
		return "too many arguments"
	case TooFewArguments:
		return "too few arguments"
	case NoBufferOpened:
		return "no buffer opened"
	case UnsavedChanges:
		return "unsaved changes"
	case BufferReadError:
		return "buffer read error"
	case BufferWriteError:
		return "buffer write error"
	case ParseConfig:
		return "could not parse config"
	case NoSuchColor:
		return "no such color"
	case InvalidGlob:
		return "invalid glob"
	case KeyParse:
		return "could not parse keys"
	case KeyMap:
		return "could not install key map"
	case Pattern:
		return "invalid pattern"
	case InvalidBufferMode:
		return "invalid buffer mode"
	default:
		return "error"
	}
}

// Error is the concrete error type commands and the engine itself
// return; Message, when set, replaces the Kind's default text (the
// Other kind always carries one).
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// NewOtherError builds an Other-kind error carrying a free-form message.
func NewOtherError(format string, args ...any) *Error {
	return &Error{Kind: Other, Message: fmt.Sprintf(format, args...)}
}
