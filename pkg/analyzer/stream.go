package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/b1rdex/slalog/pkg/parser"
)

// Stream is a pull iterator over the failure periods of one input.
// It reads the input lazily: each call to Next consumes lines only until
// the next reportable window closes. A Stream is single-use and must not
// be shared between goroutines.
type Stream struct {
	src    parser.LineSource
	parser *parser.Parser
	policy ParseErrorPolicy
	acc    *Accumulator
	logger zerolog.Logger

	stats Stats
	done  bool
	err   error
}

// Next returns the next reportable period in order of window start.
// Returns io.EOF when the input is exhausted and the last window flushed.
// After an error every later call returns the same error.
func (s *Stream) Next(ctx context.Context) (Period, error) {
	if s.err != nil {
		return Period{}, s.err
	}
	if s.done {
		return Period{}, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return Period{}, err
		}

		line, err := s.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return s.finish()
		}
		if err != nil {
			s.err = fmt.Errorf("reading log source: %w", err)
			return Period{}, s.err
		}
		s.stats.LinesRead++

		rec, err := s.parser.ParseLine(line)
		if err != nil {
			if herr := s.handleParseError(err); herr != nil {
				s.err = herr
				return Period{}, herr
			}
			continue
		}

		s.stats.Records++
		if s.acc.IsFailure(rec) {
			s.stats.Failures++
		}

		if p, ok := s.observe(rec); ok {
			return p, nil
		}
	}
}

// Stats returns the counters collected so far.
func (s *Stream) Stats() Stats {
	return s.stats
}

func (s *Stream) handleParseError(err error) error {
	if errors.Is(err, parser.ErrEmptyLine) {
		s.stats.EmptyLines++
		return nil
	}

	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		return err
	}

	switch {
	case errors.Is(pe, parser.ErrDateParseFailed):
		s.stats.DateParseFailed++
	default:
		s.stats.UnknownFormat++
	}

	return s.policy.Handle(pe)
}

func (s *Stream) observe(rec parser.Record) (Period, bool) {
	before := s.acc.WindowsClosed()
	p, ok := s.acc.Observe(rec)
	if s.acc.WindowsClosed() != before {
		s.windowClosed(p, ok)
	}
	return p, ok
}

func (s *Stream) finish() (Period, error) {
	s.done = true

	if p, ok := s.flush(); ok {
		return p, nil
	}
	return Period{}, io.EOF
}

func (s *Stream) flush() (Period, bool) {
	if !s.acc.Open() {
		return Period{}, false
	}
	p, ok := s.acc.Flush()
	s.windowClosed(p, ok)
	return p, ok
}

func (s *Stream) windowClosed(p Period, reported bool) {
	s.stats.WindowsClosed++
	if reported {
		s.stats.PeriodsReported++
	}

	s.logger.Debug().
		Time("start", p.Start).
		Time("end", p.End).
		Int("succeeded", p.Succeeded).
		Int("failed", p.Failed).
		Float64("availability", p.Availability()).
		Bool("reported", reported).
		Msg("failure window closed")
}
