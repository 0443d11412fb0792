package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/b1rdex/slalog/pkg/analyzer"
	"github.com/b1rdex/slalog/pkg/config"
	"github.com/b1rdex/slalog/pkg/logging"
	"github.com/b1rdex/slalog/pkg/output"
	"github.com/b1rdex/slalog/pkg/parser"
	"github.com/b1rdex/slalog/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	ConfigPath   string
	Availability float64
	ResponseTime float64
	SamplePeriod string
	Output       string
	OnError      string
	LogLevel     string
	Verbose      bool
	Quiet        bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [log-file...]",
		Short: "Report periods where availability fell below the SLA",
		Long: `Analyze access logs and print every failure period: a run of requests,
started by a failed one, during which availability fell below the threshold.

A request fails when its status is 5xx or its response time reaches the
response time threshold. A period ends when the log goes quiet for longer
than the sample period.

Log files may be glob patterns. With no files and no log_sources in the
config, standard input is read. "-" also selects standard input.

Examples:
  slalog analyze -u 99.9 -t 45 /var/log/nginx/access.log
  cat access.log | slalog analyze -u 99.9 -t 45 -s 10s -v
  slalog analyze -c slalog.yaml -o prometheus > /var/lib/node_exporter/slalog.prom

Exit codes:
  0 - No failure periods
  1 - Failure periods reported
  2 - Configuration or runtime error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().Float64VarP(&opts.Availability, "availability", "u", 0, "Minimum availability in percent, e.g. 99.9")
	cmd.Flags().Float64VarP(&opts.ResponseTime, "response-time", "t", 0, "Acceptable response time in milliseconds, e.g. 45")
	cmd.Flags().StringVarP(&opts.SamplePeriod, "sample-period", "s", "5s", "Quiet time that ends a failure period (seconds or duration)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|prometheus)")
	cmd.Flags().StringVar(&opts.OnError, "on-error", "report", "Malformed line handling (report|abort)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Diagnostic log level (debug|info|warn|error)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Print full timestamps, request counts and a summary")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no periods")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_breach", "When to fire webhook (on_breach|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closer.Close()

	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.LogSources
	}
	files, err := parser.ExpandInputs(patterns)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}

	formatter, err := output.New(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	a, err := analyzer.NewAnalyzer(cfg.SLA.Availability, cfg.SLA.ResponseTime, analyzerOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	paramLevel := zerolog.DebugLevel
	if opts.Verbose {
		paramLevel = zerolog.InfoLevel
	}
	logger.WithLevel(paramLevel).
		Float64("availability", cfg.SLA.Availability).
		Float64("response_time_ms", cfg.SLA.ResponseTime).
		Dur("sample_period", cfg.SLA.SamplePeriod).
		Str("on_parse_error", string(cfg.OnParseError)).
		Strs("inputs", files).
		Msg("starting analysis")

	source := parser.NewFileSource(files).WithStdin(cmd.InOrStdin())
	defer source.Close()

	w := cmd.OutOrStdout()
	if err := formatter.Begin(ctx, a.Thresholds(), w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	var periods []analyzer.Period
	result, err := a.Analyze(ctx, source, func(p analyzer.Period) error {
		periods = append(periods, p)
		return formatter.WritePeriod(ctx, p, w)
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, periods, files)
	if err := formatter.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	logger.Debug().
		Int("lines", result.Stats.LinesRead).
		Int("records", result.Stats.Records).
		Int("parse_errors", result.Stats.ParseErrors()).
		Int("periods", result.Stats.PeriodsReported).
		Dur("duration", result.Duration()).
		Msg("analysis finished")

	// Errors are logged but don't fail the analysis
	webhook.NewDispatcher(nil, logger).Dispatch(ctx, cfg.Webhooks, report)

	if report.HasPeriods() {
		ExitCode = 1
	}

	return nil
}

// buildConfig layers defaults, the config file, environment and flags, in
// that order, then validates the result.
func buildConfig(cmd *cobra.Command, opts *AnalyzeOptions) (*config.Config, error) {
	cfg, err := readConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("availability") {
		cfg.SLA.Availability = opts.Availability
	}
	if flags.Changed("response-time") {
		cfg.SLA.ResponseTime = opts.ResponseTime
	}
	if flags.Changed("sample-period") {
		d, err := config.ParseSamplePeriod(opts.SamplePeriod)
		if err != nil {
			return nil, fmt.Errorf("invalid sample-period %q: %w", opts.SamplePeriod, err)
		}
		cfg.SLA.SamplePeriod = d
	}
	if flags.Changed("on-error") {
		cfg.OnParseError = config.ParseErrorMode(opts.OnError)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}

	if cfg.SLA.Availability == 0 {
		return nil, errors.New("availability threshold is required (-u or sla.availability)")
	}
	if cfg.SLA.ResponseTime == 0 {
		return nil, errors.New("response time threshold is required (-t or sla.response_time)")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readConfig parses the config file without validating it. Without a file,
// defaults and environment overrides are used.
func readConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.DefaultConfig()
		if err := cfg.ApplyEnvironmentOverrides(); err != nil {
			return nil, fmt.Errorf("environment override: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func analyzerOptions(cfg *config.Config, logger zerolog.Logger) []analyzer.AnalyzerOption {
	opts := []analyzer.AnalyzerOption{
		analyzer.WithSamplePeriod(cfg.SLA.SamplePeriod),
		analyzer.WithTimestampCache(cfg.TimestampCacheSize),
		analyzer.WithLogger(logger),
	}

	if cfg.OnParseError == config.ParseErrorAbort {
		opts = append(opts, analyzer.WithErrorPolicy(analyzer.Abort()))
	} else {
		opts = append(opts, analyzer.WithErrorHandler(logParseError(logger)))
	}

	return opts
}

// logParseError reports a skipped line on the diagnostic log.
func logParseError(logger zerolog.Logger) analyzer.ErrorHandler {
	return func(err *parser.ParseError) {
		logger.Warn().
			Str("source", err.Source).
			Int("line", err.LineNum).
			Str("kind", err.KindName()).
			Str("text", err.Text).
			Msg("skipping malformed line")
	}
}
