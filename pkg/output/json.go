package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/b1rdex/slalog/pkg/analyzer"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Begin does nothing; JSON is written as one document at the end.
func (f *JSONFormatter) Begin(context.Context, analyzer.Thresholds, io.Writer) error {
	return nil
}

// WritePeriod does nothing; periods are part of the final report.
func (f *JSONFormatter) WritePeriod(context.Context, analyzer.Period, io.Writer) error {
	return nil
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(report.Summary)
	}

	return encoder.Encode(report)
}
