// Package analyzer detects periods of degraded availability in a stream of
// access-log records.
package analyzer

import (
	"time"
)

// DefaultSamplePeriod is how long the log must stay quiet after the last
// record of a failure window before the window is considered finished.
const DefaultSamplePeriod = 5 * time.Second

// Thresholds holds the SLA parameters of an analysis.
type Thresholds struct {
	// Availability is the minimum acceptable share of successful requests,
	// in percent. Windows at or above it are not reported.
	Availability float64

	// ResponseTimeMs is the slowest acceptable response. Requests taking
	// this long or longer count as failures.
	ResponseTimeMs float64

	// SamplePeriod is the quiescence gap that closes a failure window.
	SamplePeriod time.Duration
}

// Period is one detected failure window. It is a value and never changes
// after construction.
type Period struct {
	// Start is the timestamp of the first failure in the window.
	Start time.Time

	// End is the timestamp of the last record seen in the window.
	End time.Time

	// Succeeded is the number of successful requests inside the window.
	Succeeded int

	// Failed is the number of failed requests inside the window; always >= 1.
	Failed int
}

// Availability returns the window's availability in percent, rounded to
// one decimal.
func (p Period) Availability() float64 {
	return Availability(p.Succeeded, p.Failed)
}

// Total returns the number of requests in the window.
func (p Period) Total() int {
	return p.Succeeded + p.Failed
}

// Duration returns the time between the first and last record of the window.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Stats contains counters collected during an analysis.
type Stats struct {
	// LinesRead is the number of raw lines pulled from the input.
	LinesRead int

	// EmptyLines is the number of blank lines skipped.
	EmptyLines int

	// Records is the number of lines parsed successfully.
	Records int

	// Failures is the number of records classified as failures.
	Failures int

	// UnknownFormat and DateParseFailed count skipped malformed lines.
	UnknownFormat   int
	DateParseFailed int

	// WindowsClosed counts every closed failure window, reported or not.
	WindowsClosed int

	// PeriodsReported counts windows below the availability threshold.
	PeriodsReported int
}

// ParseErrors returns the number of malformed lines skipped.
func (s Stats) ParseErrors() int {
	return s.UnknownFormat + s.DateParseFailed
}

// Result describes a finished analysis run.
type Result struct {
	// Thresholds are the parameters the run used.
	Thresholds Thresholds

	// Stats are the counters collected during the run.
	Stats Stats

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
