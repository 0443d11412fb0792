package analyzer

import (
	"time"

	"github.com/b1rdex/slalog/pkg/parser"
)

// Accumulator folds ordered records into failure windows.
//
// A window opens on a failure and stays open while records keep arriving
// no more than SamplePeriod apart. The record that breaks the gap closes
// the window and is then classified on its own, so it may open the next one.
// The zero value is not usable; use NewAccumulator.
type Accumulator struct {
	thresholds Thresholds

	open        bool
	firstFailAt time.Time

	seen            bool
	lastProcessedAt time.Time

	succeeded int
	failed    int

	windowsClosed int
}

// NewAccumulator creates an idle accumulator.
func NewAccumulator(t Thresholds) *Accumulator {
	if t.SamplePeriod <= 0 {
		t.SamplePeriod = DefaultSamplePeriod
	}
	return &Accumulator{thresholds: t}
}

// IsFailure reports whether a record breaks the SLA: a 5xx status or a
// response at least as slow as the threshold.
func (a *Accumulator) IsFailure(r parser.Record) bool {
	return (r.Status >= 500 && r.Status <= 599) || r.ResponseTimeMs >= a.thresholds.ResponseTimeMs
}

// Observe folds one record. It returns a period when the record closed a
// window whose availability is below the threshold.
func (a *Accumulator) Observe(r parser.Record) (Period, bool) {
	var (
		period   Period
		reported bool
	)

	if a.open && a.seen && r.Timestamp.Sub(a.lastProcessedAt) > a.thresholds.SamplePeriod {
		period, reported = a.close()
	}

	a.lastProcessedAt = r.Timestamp
	a.seen = true

	if a.IsFailure(r) {
		if !a.open {
			a.open = true
			a.firstFailAt = r.Timestamp
		}
		a.failed++
	} else if a.open {
		a.succeeded++
	}

	return period, reported
}

// Flush closes the open window at end of input.
func (a *Accumulator) Flush() (Period, bool) {
	if !a.open || !a.seen {
		return Period{}, false
	}
	return a.close()
}

// Open reports whether a failure window is currently open.
func (a *Accumulator) Open() bool {
	return a.open
}

// WindowsClosed returns how many windows have been closed so far.
func (a *Accumulator) WindowsClosed() int {
	return a.windowsClosed
}

func (a *Accumulator) close() (Period, bool) {
	p := Period{
		Start:     a.firstFailAt,
		End:       a.lastProcessedAt,
		Succeeded: a.succeeded,
		Failed:    a.failed,
	}

	a.open = false
	a.firstFailAt = time.Time{}
	a.succeeded = 0
	a.failed = 0
	a.windowsClosed++

	return p, p.Availability() < a.thresholds.Availability
}
