// Package config provides configuration loading and validation for slalog.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	SLA                SLAConfig       `yaml:"sla"`
	LogSources         []string        `yaml:"log_sources,omitempty"`
	OnParseError       ParseErrorMode  `yaml:"on_parse_error,omitempty"`
	TimestampCacheSize int             `yaml:"timestamp_cache_size,omitempty"`
	Logging            LoggingConfig   `yaml:"logging"`
	Webhooks           []WebhookConfig `yaml:"webhooks,omitempty"`
}

// SLAConfig holds the thresholds a failure period is measured against.
type SLAConfig struct {
	// Availability is the minimum acceptable availability in percent (e.g. 99.9).
	Availability float64 `yaml:"availability"`

	// ResponseTime is the acceptable response time in milliseconds (e.g. 45).
	// Slower requests count as failures.
	ResponseTime float64 `yaml:"response_time"`

	// SamplePeriod is how long the log must go without a record before an
	// open failure period is considered finished.
	SamplePeriod time.Duration `yaml:"sample_period,omitempty"`
}

// UnmarshalYAML accepts sample_period as a duration ("5s") or a bare number
// of seconds, and keeps defaults for keys that are absent.
func (s *SLAConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Availability *float64 `yaml:"availability"`
		ResponseTime *float64 `yaml:"response_time"`
		SamplePeriod string   `yaml:"sample_period"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Availability != nil {
		s.Availability = *raw.Availability
	}
	if raw.ResponseTime != nil {
		s.ResponseTime = *raw.ResponseTime
	}
	if raw.SamplePeriod != "" {
		d, err := ParseSamplePeriod(raw.SamplePeriod)
		if err != nil {
			return fmt.Errorf("sample_period: %w", err)
		}
		s.SamplePeriod = d
	}

	return nil
}

// ParseErrorMode selects what happens to malformed log lines.
type ParseErrorMode string

const (
	// ParseErrorReport logs each malformed line and skips it (default).
	ParseErrorReport ParseErrorMode = "report"
	// ParseErrorAbort stops the analysis at the first malformed line.
	ParseErrorAbort ParseErrorMode = "abort"
)

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level,omitempty"`

	// Format is console or json.
	Format string `yaml:"format,omitempty"`

	// Output is stderr, file or both.
	Output string `yaml:"output,omitempty"`

	// FilePath is the log file, used when Output is file or both.
	FilePath string `yaml:"file_path,omitempty"`

	// MaxSize is the size in megabytes at which the log file is rotated.
	MaxSize int `yaml:"max_size,omitempty"`

	// MaxBackups is how many rotated files are kept.
	MaxBackups int `yaml:"max_backups,omitempty"`

	// MaxAge is how many days rotated files are kept.
	MaxAge int `yaml:"max_age,omitempty"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnBreach fires only when failure periods were reported (default).
	WebhookTriggerOnBreach WebhookTrigger = "on_breach"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are read from the environment.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
