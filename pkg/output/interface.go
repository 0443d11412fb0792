package output

import (
	"context"
	"fmt"
	"io"

	"github.com/b1rdex/slalog/pkg/analyzer"
)

// Formatter renders analysis results in a specific format.
//
// Begin and WritePeriod are called while the analysis runs, so streaming
// formats can print each period as soon as its window closes. Format is
// called once with the finished report.
type Formatter interface {
	// Begin is called before the first line is read.
	Begin(ctx context.Context, t analyzer.Thresholds, w io.Writer) error

	// WritePeriod renders one period as soon as it is found.
	WritePeriod(ctx context.Context, p analyzer.Period, w io.Writer) error

	// Format renders the finished report.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, prometheus).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables full timestamps, counts and the run summary.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "prometheus"}

// New returns the formatter for name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "prometheus", "prom":
		return NewPrometheusFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, json or prometheus)", name)
	}
}
