package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/b1rdex/slalog/pkg/parser"
)

// Analyzer finds failure periods in access logs.
type Analyzer struct {
	thresholds Thresholds
	policy     ParseErrorPolicy
	parser     *parser.Parser
	logger     zerolog.Logger

	cacheSize int
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithSamplePeriod sets the quiescence gap that closes a failure window.
func WithSamplePeriod(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.thresholds.SamplePeriod = d
	}
}

// WithErrorPolicy sets how malformed lines are handled. The default aborts.
func WithErrorPolicy(p ParseErrorPolicy) AnalyzerOption {
	return func(a *Analyzer) {
		if p != nil {
			a.policy = p
		}
	}
}

// WithErrorHandler skips malformed lines, passing each one to fn.
// A nil fn keeps the abort policy.
func WithErrorHandler(fn ErrorHandler) AnalyzerOption {
	return WithErrorPolicy(Callback(fn))
}

// WithTimestampCache sets the size of the timestamp parse cache.
func WithTimestampCache(size int) AnalyzerOption {
	return func(a *Analyzer) {
		a.cacheSize = size
	}
}

// WithLogger sets the logger used for debug output of closed windows.
func WithLogger(l zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// NewAnalyzer creates an analyzer for the given availability (percent) and
// response time (milliseconds) thresholds.
func NewAnalyzer(availability, responseTimeMs float64, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		thresholds: Thresholds{
			Availability:   availability,
			ResponseTimeMs: responseTimeMs,
			SamplePeriod:   DefaultSamplePeriod,
		},
		policy:    Abort(),
		logger:    zerolog.Nop(),
		cacheSize: parser.DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.thresholds.SamplePeriod < time.Second {
		return nil, fmt.Errorf("sample period must be at least 1s, got %s", a.thresholds.SamplePeriod)
	}
	if a.thresholds.SamplePeriod%time.Second != 0 {
		return nil, fmt.Errorf("sample period must be a whole number of seconds, got %s", a.thresholds.SamplePeriod)
	}

	p, err := parser.New(parser.WithCacheSize(a.cacheSize))
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}
	a.parser = p

	return a, nil
}

// Thresholds returns the SLA parameters of the analyzer.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Stream starts a lazy analysis of src. The caller keeps ownership of src.
func (a *Analyzer) Stream(src parser.LineSource) *Stream {
	return &Stream{
		src:    src,
		parser: a.parser,
		policy: a.policy,
		acc:    NewAccumulator(a.thresholds),
		logger: a.logger,
	}
}

// Analyze reads src to the end, calling emit for each reportable period as
// soon as its window closes. An error from emit stops the analysis and is
// returned.
func (a *Analyzer) Analyze(ctx context.Context, src parser.LineSource, emit func(Period) error) (*Result, error) {
	result := &Result{
		Thresholds: a.thresholds,
		StartTime:  time.Now(),
	}

	stream := a.Stream(src)
	for {
		p, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if err := emit(p); err != nil {
			return nil, fmt.Errorf("emitting period: %w", err)
		}
	}

	result.Stats = stream.Stats()
	result.EndTime = time.Now()

	return result, nil
}

// Collect runs Analyze and returns the periods as a slice.
func (a *Analyzer) Collect(ctx context.Context, src parser.LineSource) ([]Period, *Result, error) {
	var periods []Period
	result, err := a.Analyze(ctx, src, func(p Period) error {
		periods = append(periods, p)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return periods, result, nil
}
