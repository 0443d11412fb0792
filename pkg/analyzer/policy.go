package analyzer

import (
	"github.com/b1rdex/slalog/pkg/parser"
)

// ErrorHandler receives malformed lines that were skipped.
type ErrorHandler func(err *parser.ParseError)

// ParseErrorPolicy decides what happens to a line that failed to parse.
// Blank lines never reach the policy.
type ParseErrorPolicy interface {
	// Handle returns nil to skip the line and continue, or the error that
	// aborts the analysis.
	Handle(err *parser.ParseError) error
}

// Abort returns a policy that stops the analysis at the first malformed line.
func Abort() ParseErrorPolicy {
	return abortPolicy{}
}

// Callback returns a policy that passes every malformed line to fn and
// skips it. A nil fn yields the Abort policy.
func Callback(fn ErrorHandler) ParseErrorPolicy {
	if fn == nil {
		return abortPolicy{}
	}
	return callbackPolicy{fn: fn}
}

type abortPolicy struct{}

func (abortPolicy) Handle(err *parser.ParseError) error {
	return err
}

type callbackPolicy struct {
	fn ErrorHandler
}

func (p callbackPolicy) Handle(err *parser.ParseError) error {
	p.fn(err)
	return nil
}
