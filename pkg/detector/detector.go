// Package detector samples access-log inputs and reports how well they
// conform to the grammar the analyzer expects.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/b1rdex/slalog/pkg/parser"
)

// DefaultSampleSize is the number of lines inspected when no size is given.
const DefaultSampleSize = 1000

// DefaultMaxExamples bounds the offending lines kept in a Result.
const DefaultMaxExamples = 5

// Result holds what was learned from a sample of lines.
type Result struct {
	SampledLines    int // Lines read, including empty ones
	Records         int // Lines parsed into records
	EmptyLines      int
	UnknownFormat   int
	DateParseFailed int

	// OutOfOrder counts records older than the record before them.
	OutOfOrder int

	// First and Last are the earliest and latest timestamps seen.
	First, Last time.Time

	// MaxGap is the largest forward step between consecutive records.
	MaxGap time.Duration

	// Offsets lists the distinct UTC offsets seen, in order of appearance.
	Offsets []string

	// Guesses counts rejected lines per recognized foreign format.
	Guesses map[string]int

	// Examples holds the first offending lines.
	Examples []Example

	// Truncated is set when the sample size stopped reading early.
	Truncated bool
}

// Example is one rejected line.
type Example struct {
	Source  string
	LineNum int
	Kind    string
	Text    string
	Format  *ForeignFormat // nil when the shape is not recognized
}

// Conformance returns the share of non-empty lines that parsed, 0 to 1.
func (r *Result) Conformance() float64 {
	nonEmpty := r.SampledLines - r.EmptyLines
	if nonEmpty <= 0 {
		return 0
	}
	return float64(r.Records) / float64(nonEmpty)
}

// Rejected returns the number of malformed lines.
func (r *Result) Rejected() int {
	return r.UnknownFormat + r.DateParseFailed
}

// Notes returns human-readable warnings about the sample.
func (r *Result) Notes() []string {
	var notes []string
	if r.SampledLines > 0 && r.Records == 0 {
		notes = append(notes, "no line matched the access log grammar")
	}
	if r.OutOfOrder > 0 {
		notes = append(notes, fmt.Sprintf(
			"%d record(s) are older than the record before them; failure windows assume chronological input",
			r.OutOfOrder))
	}
	if len(r.Offsets) > 1 {
		notes = append(notes, fmt.Sprintf(
			"timestamps use %d different UTC offsets; periods are printed in the offset of their first record",
			len(r.Offsets)))
	}
	return notes
}

// Detector inspects line sources.
type Detector struct {
	parser      *parser.Parser
	formats     []*ForeignFormat
	sampleSize  int
	maxExamples int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to read. Zero or less reads
// everything.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		d.sampleSize = n
	}
}

// WithMaxExamples sets how many offending lines are kept.
func WithMaxExamples(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.maxExamples = n
		}
	}
}

// New creates a new Detector.
func New(opts ...Option) (*Detector, error) {
	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	d := &Detector{
		parser:      p,
		formats:     DefaultForeignFormats(),
		sampleSize:  DefaultSampleSize,
		maxExamples: DefaultMaxExamples,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Inspect reads up to the sample size from src. It does not close src.
func (d *Detector) Inspect(ctx context.Context, src parser.LineSource) (*Result, error) {
	result := &Result{Guesses: make(map[string]int)}
	seenOffsets := make(map[string]bool)
	var prev time.Time

	for {
		if d.sampleSize > 0 && result.SampledLines >= d.sampleSize {
			result.Truncated = true
			break
		}

		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		result.SampledLines++

		rec, err := d.parser.ParseLine(line)
		if err != nil {
			d.reject(result, line, err)
			continue
		}
		result.Records++

		ts := rec.Timestamp
		if offset := ts.Format("-07:00"); !seenOffsets[offset] {
			seenOffsets[offset] = true
			result.Offsets = append(result.Offsets, offset)
		}
		if result.First.IsZero() || ts.Before(result.First) {
			result.First = ts
		}
		if ts.After(result.Last) {
			result.Last = ts
		}
		if !prev.IsZero() {
			if ts.Before(prev) {
				result.OutOfOrder++
			} else if gap := ts.Sub(prev); gap > result.MaxGap {
				result.MaxGap = gap
			}
		}
		prev = ts
	}

	return result, nil
}

func (d *Detector) reject(result *Result, line *parser.LogLine, err error) {
	if errors.Is(err, parser.ErrEmptyLine) {
		result.EmptyLines++
		return
	}

	kind := "other"
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		kind = pe.KindName()
	}
	switch kind {
	case "unknown_format":
		result.UnknownFormat++
	case "date_parse_failed":
		result.DateParseFailed++
	}

	format := Guess(d.formats, line.Content)
	if format != nil {
		result.Guesses[format.Name]++
	}

	if len(result.Examples) < d.maxExamples {
		result.Examples = append(result.Examples, Example{
			Source:  line.Source,
			LineNum: line.LineNum,
			Kind:    kind,
			Text:    line.Content,
			Format:  format,
		})
	}
}
