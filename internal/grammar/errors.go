package grammar

import (
	"errors"
	"fmt"
)

// Kind categorises a ParseError.
type Kind int

const (
	// KindIO indicates the rule source could not be read.
	KindIO Kind = iota + 1

	// KindMissingSeparator indicates a line without "->", or two tokens
	// not separated by a comma.
	KindMissingSeparator

	// KindEmptySequence indicates no token before "->".
	KindEmptySequence

	// KindEmptyLabel indicates nothing after "->".
	KindEmptyLabel

	// KindInvalidSource indicates a structurally invalid CUE or YAML source.
	KindInvalidSource
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMissingSeparator:
		return "missing_separator"
	case KindEmptySequence:
		return "empty_sequence"
	case KindEmptyLabel:
		return "empty_label"
	case KindInvalidSource:
		return "invalid_source"
	default:
		return "unknown"
	}
}

// Sentinel errors matched through (*ParseError).Is.
var (
	ErrIO               = errors.New("rule source unreadable")
	ErrMissingSeparator = errors.New("missing separator")
	ErrEmptySequence    = errors.New("empty sequence")
	ErrEmptyLabel       = errors.New("empty label")
	ErrInvalidSource    = errors.New("invalid rule source")
)

// ParseError reports a malformed rule source.
type ParseError struct {
	Kind    Kind
	Path    string // empty when parsing from a reader
	Line    int    // 1-based; 0 when not tied to a line
	Message string
	Err     error // underlying cause, if any
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	default:
		return msg
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a ParseError against the Kind sentinels.
func (e *ParseError) Is(target error) bool {
	switch e.Kind {
	case KindIO:
		return target == ErrIO
	case KindMissingSeparator:
		return target == ErrMissingSeparator
	case KindEmptySequence:
		return target == ErrEmptySequence
	case KindEmptyLabel:
		return target == ErrEmptyLabel
	case KindInvalidSource:
		return target == ErrInvalidSource
	}
	return false
}

// AsParseError unwraps err to a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func withPath(err error, path string) error {
	if pe, ok := AsParseError(err); ok && pe.Path == "" {
		pe.Path = path
	}
	return err
}
