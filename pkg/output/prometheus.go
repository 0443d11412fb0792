package output

import (
	"context"
	"fmt"
	"io"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/b1rdex/slalog/pkg/analyzer"
)

const metricPrefix = "slalog_"

// PrometheusFormatter writes the report in the Prometheus text exposition
// format, suitable for the node_exporter textfile collector.
type PrometheusFormatter struct {
	opts FormatOptions
}

// NewPrometheusFormatter creates a new prometheus formatter.
func NewPrometheusFormatter(opts FormatOptions) *PrometheusFormatter {
	return &PrometheusFormatter{opts: opts}
}

// Name returns the format name.
func (f *PrometheusFormatter) Name() string {
	return "prometheus"
}

// Begin does nothing.
func (f *PrometheusFormatter) Begin(context.Context, analyzer.Thresholds, io.Writer) error {
	return nil
}

// WritePeriod does nothing; metric families are written once at the end.
func (f *PrometheusFormatter) WritePeriod(context.Context, analyzer.Period, io.Writer) error {
	return nil
}

// Format writes all metric families. In quiet mode per-period series are
// omitted.
func (f *PrometheusFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	for _, mf := range f.families(report) {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func (f *PrometheusFormatter) families(report *Report) []*dto.MetricFamily {
	s := report.Summary
	t := report.Metadata.Thresholds

	families := []*dto.MetricFamily{
		family("sla_availability_threshold_percent", "Minimum availability required by the SLA.", dto.MetricType_GAUGE,
			gauge(t.Availability)),
		family("sla_response_time_threshold_milliseconds", "Response time at or above which a request counts as failed.", dto.MetricType_GAUGE,
			gauge(t.ResponseTimeMs)),
		family("lines_read_total", "Lines read from all inputs.", dto.MetricType_COUNTER,
			counter(float64(s.LinesRead))),
		family("records_total", "Lines parsed into records.", dto.MetricType_COUNTER,
			counter(float64(s.Records))),
		family("failed_requests_total", "Records classified as failures.", dto.MetricType_COUNTER,
			counter(float64(s.Failures))),
		family("parse_errors_total", "Malformed lines skipped, by kind.", dto.MetricType_COUNTER,
			counter(float64(s.UnknownFormat), "kind", "unknown_format"),
			counter(float64(s.DateParseFailed), "kind", "date_parse_failed")),
		family("failure_windows_total", "Failure windows closed, reported or not.", dto.MetricType_COUNTER,
			counter(float64(s.WindowsClosed))),
		family("failure_periods_total", "Failure windows reported below the availability threshold.", dto.MetricType_COUNTER,
			counter(float64(s.PeriodsReported))),
		family("last_run_timestamp_seconds", "Unix time the analysis finished.", dto.MetricType_GAUGE,
			gauge(unixSeconds(report.Metadata.AnalyzedAt))),
	}

	if f.opts.Quiet {
		return families
	}

	availability := family("failure_period_availability_percent", "Availability within a reported failure period.", dto.MetricType_GAUGE)
	requests := family("failure_period_requests", "Requests within a reported failure period, by result.", dto.MetricType_GAUGE)
	duration := family("failure_period_duration_seconds", "Time between the first and last record of a failure period.", dto.MetricType_GAUGE)

	for _, p := range report.Periods {
		start := p.Start.Format(isoLayout)
		end := p.End.Format(isoLayout)

		availability.Metric = append(availability.Metric, gauge(p.Availability, "start", start, "end", end))
		requests.Metric = append(requests.Metric,
			gauge(float64(p.Succeeded), "start", start, "end", end, "result", "succeeded"),
			gauge(float64(p.Failed), "start", start, "end", end, "result", "failed"))
		duration.Metric = append(duration.Metric, gauge(p.End.Sub(p.Start).Seconds(), "start", start, "end", end))
	}

	return append(families, availability, requests, duration)
}

func family(name, help string, typ dto.MetricType, metrics ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(metricPrefix + name),
		Help:   proto.String(help),
		Type:   typ.Enum(),
		Metric: metrics,
	}
}

func gauge(v float64, labels ...string) *dto.Metric {
	return &dto.Metric{
		Label: labelPairs(labels),
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	}
}

func counter(v float64, labels ...string) *dto.Metric {
	return &dto.Metric{
		Label:   labelPairs(labels),
		Counter: &dto.Counter{Value: proto.Float64(v)},
	}
}

// labelPairs turns name, value, name, value... into label pairs.
func labelPairs(kv []string) []*dto.LabelPair {
	if len(kv) == 0 {
		return nil
	}
	pairs := make([]*dto.LabelPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, &dto.LabelPair{
			Name:  proto.String(kv[i]),
			Value: proto.String(kv[i+1]),
		})
	}
	return pairs
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}
