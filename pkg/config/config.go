package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults and applies environment overrides
// without validating, so callers can layer command-line flags on top first.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.ApplyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("environment override: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults for
// optional fields left empty.
func Validate(cfg *Config) error {
	if err := validateSLA(&cfg.SLA); err != nil {
		return fmt.Errorf("sla: %w", err)
	}

	switch cfg.OnParseError {
	case ParseErrorReport, ParseErrorAbort:
	case "":
		cfg.OnParseError = ParseErrorReport
	default:
		return fmt.Errorf("on_parse_error: invalid mode %q (must be report or abort)", cfg.OnParseError)
	}

	if cfg.TimestampCacheSize < 0 {
		return errors.New("timestamp_cache_size: must be >= 0")
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateSLA(sla *SLAConfig) error {
	if sla.Availability <= 0 || sla.Availability > 100 {
		return fmt.Errorf("availability must be in (0, 100], got %v", sla.Availability)
	}

	if sla.ResponseTime <= 0 {
		return fmt.Errorf("response_time must be > 0 milliseconds, got %v", sla.ResponseTime)
	}

	if sla.SamplePeriod == 0 {
		sla.SamplePeriod = DefaultSamplePeriod
	}
	if sla.SamplePeriod < time.Second {
		return fmt.Errorf("sample_period must be at least 1s (use a duration such as 5s), got %s", sla.SamplePeriod)
	}
	if sla.SamplePeriod%time.Second != 0 {
		return fmt.Errorf("sample_period must be a whole number of seconds, got %s", sla.SamplePeriod)
	}

	return nil
}

func validateLogging(lc *LoggingConfig) error {
	switch strings.ToLower(lc.Level) {
	case "":
		lc.Level = DefaultLogLevel
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("invalid level %q", lc.Level)
	}

	switch lc.Format {
	case "":
		lc.Format = DefaultLogFormat
	case "console", "json":
	default:
		return fmt.Errorf("invalid format %q (must be console or json)", lc.Format)
	}

	switch lc.Output {
	case "":
		lc.Output = DefaultLogOutput
	case "stderr":
	case "file", "both":
		if lc.FilePath == "" {
			return fmt.Errorf("file_path is required when output is %q", lc.Output)
		}
	default:
		return fmt.Errorf("invalid output %q (must be stderr, file or both)", lc.Output)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case WebhookTriggerOnBreach, WebhookTriggerAlways, WebhookTriggerNever:
	case "":
		wh.Trigger = WebhookTriggerOnBreach
	default:
		return fmt.Errorf("invalid trigger %q (must be on_breach, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a value of the form ${VAR} or $VAR from the environment.
func expandEnvVar(s string) string {
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		return os.Getenv(s[2 : len(s)-1])
	case strings.HasPrefix(s, "$") && len(s) > 1:
		return os.Getenv(s[1:])
	default:
		return s
	}
}
