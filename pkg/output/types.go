// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/b1rdex/slalog/pkg/analyzer"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Periods are the reported failure periods in order of start time.
	Periods []PeriodReport `json:"periods"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// PeriodReport is the serialized form of a failure period.
type PeriodReport struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Availability float64   `json:"availability"`
}

// Summary provides aggregate statistics.
type Summary struct {
	PeriodsReported int `json:"periods_reported"`
	WindowsClosed   int `json:"windows_closed"`
	LinesRead       int `json:"lines_read"`
	Records         int `json:"records"`
	Failures        int `json:"failures"`
	EmptyLines      int `json:"empty_lines"`
	UnknownFormat   int `json:"unknown_format"`
	DateParseFailed int `json:"date_parse_failed"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// Sources lists the inputs that were analyzed.
	Sources []string `json:"sources"`

	// Thresholds are the SLA parameters used.
	Thresholds Thresholds `json:"thresholds"`

	// AnalyzedAt is when the analysis finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration_ns"`
}

// Thresholds mirrors analyzer.Thresholds with a readable sample period.
type Thresholds struct {
	Availability   float64 `json:"availability"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	SamplePeriod   string  `json:"sample_period"`
}

// NewPeriodReport converts a period for serialization.
func NewPeriodReport(p analyzer.Period) PeriodReport {
	return PeriodReport{
		Start:        p.Start,
		End:          p.End,
		Succeeded:    p.Succeeded,
		Failed:       p.Failed,
		Availability: p.Availability(),
	}
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.Result, periods []analyzer.Period, sources []string) *Report {
	report := &Report{
		Periods: make([]PeriodReport, 0, len(periods)),
		Metadata: Metadata{
			Sources: sources,
			Thresholds: Thresholds{
				Availability:   result.Thresholds.Availability,
				ResponseTimeMs: result.Thresholds.ResponseTimeMs,
				SamplePeriod:   result.Thresholds.SamplePeriod.String(),
			},
			AnalyzedAt: result.EndTime,
			Duration:   result.Duration(),
		},
		Summary: Summary{
			PeriodsReported: result.Stats.PeriodsReported,
			WindowsClosed:   result.Stats.WindowsClosed,
			LinesRead:       result.Stats.LinesRead,
			Records:         result.Stats.Records,
			Failures:        result.Stats.Failures,
			EmptyLines:      result.Stats.EmptyLines,
			UnknownFormat:   result.Stats.UnknownFormat,
			DateParseFailed: result.Stats.DateParseFailed,
		},
	}

	for _, p := range periods {
		report.Periods = append(report.Periods, NewPeriodReport(p))
	}

	return report
}

// HasPeriods returns true if any failure period was reported.
func (r *Report) HasPeriods() bool {
	return len(r.Periods) > 0
}

// ParseErrors returns the number of malformed lines skipped.
func (s Summary) ParseErrors() int {
	return s.UnknownFormat + s.DateParseFailed
}
