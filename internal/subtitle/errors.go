package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	MalformedTimestamp ErrorKind = iota + 1
	MalformedStructure
	UnsupportedFeature
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedTimestamp:
		return "malformed timestamp"
	case MalformedStructure:
		return "malformed structure"
	case UnsupportedFeature:
		return "unsupported feature"
	default:
		return "parse error"
	}
}

// sentinels for errors.Is matching on the kind of a *ParseError
var (
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrMalformedStructure = errors.New("malformed structure")
	ErrUnsupportedFeature = errors.New("unsupported feature")
)

// ParseError reports input that does not follow the format grammar.
// Cue and Line are 1-based; zero means unknown.
type ParseError struct {
	Format Format
	Kind   ErrorKind
	Cue    int
	Line   int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Format))
	sb.WriteString(": ")
	sb.WriteString(e.Kind.String())
	if e.Cue > 0 {
		fmt.Fprintf(&sb, " in cue %d", e.Cue)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrMalformedTimestamp:
		return e.Kind == MalformedTimestamp
	case ErrMalformedStructure:
		return e.Kind == MalformedStructure
	case ErrUnsupportedFeature:
		return e.Kind == UnsupportedFeature
	}
	return false
}

func newParseError(
	f Format,
	kind ErrorKind,
	cue, line int,
	msg string,
	args ...any,
) *ParseError {
	return &ParseError{
		Format: f,
		Kind:   kind,
		Cue:    cue,
		Line:   line,
		Msg:    fmt.Sprintf(msg, args...),
	}
}
