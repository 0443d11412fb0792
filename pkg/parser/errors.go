package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLine is returned for blank lines. It is not a real failure:
	// callers skip such lines without reporting them.
	ErrEmptyLine = errors.New("empty log line")

	// ErrUnknownFormat means the line does not match the access-log grammar.
	ErrUnknownFormat = errors.New("unknown log format")

	// ErrDateParseFailed means the line matched but its timestamp is invalid.
	ErrDateParseFailed = errors.New("date parse failed")

	// ErrLineTooLong is the cause attached to an ErrUnknownFormat ParseError
	// for a line that exceeded the size limit.
	ErrLineTooLong = errors.New("line too long")
)

// ParseError describes a line that could not be turned into a Record.
type ParseError struct {
	// Kind is ErrUnknownFormat or ErrDateParseFailed.
	Kind error

	// Text is the offending input: the whole line for ErrUnknownFormat,
	// the timestamp for ErrDateParseFailed.
	Text string

	// Source and LineNum locate the line when it came from a LineSource.
	Source  string
	LineNum int

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Text)
	if e.Source != "" {
		msg = fmt.Sprintf("%s:%d: %s", e.Source, e.LineNum, msg)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short stable name for the error kind, used in logs and metrics.
func (e *ParseError) KindName() string {
	switch e.Kind {
	case ErrUnknownFormat:
		return "unknown_format"
	case ErrDateParseFailed:
		return "date_parse_failed"
	default:
		return "other"
	}
}
