package errors

import (
	"strings"
)

// Kind categorizes an Error.
type Kind uint8

const (
	// KindUsage denotes an invalid configuration or value, detected before any byte is
	// produced or consumed.
	KindUsage Kind = iota + 1
	// KindLookup denotes a wire type without a registered codec.
	KindLookup
	// KindDecoding denotes malformed or truncated input.
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage error"
	case KindLookup:
		return "lookup error"
	case KindDecoding:
		return "decoding error"
	}

	return "error"
}

// Error is the error type returned by the codecs, the registry and the record engine.
type Error struct {
	Kind Kind
	// Path locates the failing value inside a record, outermost element first.
	Path []string
	Msg  string
}

// Error returns the kind, the path if any, and the message.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.PathString())
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}

	return b.String()
}

// PathString renders the path as a selector, e.g. "pets[2].name".
func (e *Error) PathString() string {
	var b strings.Builder

	for i, p := range e.Path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}

	return b.String()
}

// Is matches another *Error of the same kind. A target without
// a message matches any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.Kind != e.Kind {
		return false
	}

	return t.Msg == "" || t.Msg == e.Msg
}
