package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/b1rdex/slalog/pkg/analyzer"
)

// isoLayout prints offsets as +00:00 rather than Z.
const isoLayout = "2006-01-02T15:04:05-07:00"

// TextFormatter prints one line per period as soon as it is found:
//
//	13:32:26 13:33:15 94.5
//
// or, verbose:
//
//	2017-06-14T13:32:26+10:00 2017-06-14T13:33:15+10:00 succeeded 52 / failed 3 (94.5%)
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Begin prints the parameter header in verbose mode.
func (f *TextFormatter) Begin(ctx context.Context, t analyzer.Thresholds, w io.Writer) error {
	if !f.opts.Verbose || f.opts.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(w, "Parameters: Max response time: %s. Min availability: %s. Sample period: %d\n\n",
		formatNumber(t.ResponseTimeMs),
		formatNumber(t.Availability),
		int(t.SamplePeriod.Seconds()))
	return err
}

// WritePeriod prints a single period line.
func (f *TextFormatter) WritePeriod(ctx context.Context, p analyzer.Period, w io.Writer) error {
	if f.opts.Quiet {
		return nil
	}

	var err error
	if f.opts.Verbose {
		_, err = fmt.Fprintf(w, "%s %s succeeded %d / failed %d (%s%%)\n",
			p.Start.Format(isoLayout),
			p.End.Format(isoLayout),
			p.Succeeded,
			p.Failed,
			formatNumber(p.Availability()))
	} else {
		_, err = fmt.Fprintf(w, "%s %s %s\n",
			p.Start.Format("15:04:05"),
			p.End.Format("15:04:05"),
			formatNumber(p.Availability()))
	}
	return err
}

// Format prints the summary in verbose and quiet modes; the periods were
// already written by WritePeriod.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	s := report.Summary

	if f.opts.Quiet {
		_, err := fmt.Fprintf(w, "slalog: %d failure period(s) below %s%% availability\n",
			s.PeriodsReported, formatNumber(report.Metadata.Thresholds.Availability))
		return err
	}

	if !f.opts.Verbose {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d period(s) reported, %d window(s) closed\n", s.PeriodsReported, s.WindowsClosed)
	fmt.Fprintf(w, "Lines read: %d (records %d, failures %d, empty %d, malformed %d)\n",
		s.LinesRead, s.Records, s.Failures, s.EmptyLines, s.ParseErrors())
	_, err := fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	return err
}

// formatNumber prints a float without trailing zeros: 0, 33.3, 99.9.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
