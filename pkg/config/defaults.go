package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultSamplePeriod       = 5 * time.Second
	DefaultWebhookTimeout     = 10 * time.Second
	DefaultTimestampCacheSize = 4096
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultLogOutput          = "stderr"
	DefaultLogFile            = "slalog.log"
)

// Environment variable names.
const (
	EnvAvailability = "SLALOG_AVAILABILITY"
	EnvResponseTime = "SLALOG_RESPONSE_TIME"
	EnvSamplePeriod = "SLALOG_SAMPLE_PERIOD"
	EnvLogLevel     = "SLALOG_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
// The SLA thresholds have no defaults and must be provided.
func DefaultConfig() *Config {
	return &Config{
		SLA: SLAConfig{
			SamplePeriod: DefaultSamplePeriod,
		},
		LogSources:         []string{},
		OnParseError:       ParseErrorReport,
		TimestampCacheSize: DefaultTimestampCacheSize,
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			Output:     DefaultLogOutput,
			FilePath:   DefaultLogFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// ApplyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvironmentOverrides() error {
	if v := os.Getenv(EnvAvailability); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAvailability, err)
		}
		c.SLA.Availability = f
	}

	if v := os.Getenv(EnvResponseTime); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvResponseTime, err)
		}
		c.SLA.ResponseTime = f
	}

	if v := os.Getenv(EnvSamplePeriod); v != "" {
		d, err := ParseSamplePeriod(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSamplePeriod, err)
		}
		c.SLA.SamplePeriod = d
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// maxSampleSeconds is the largest bare number of seconds a Duration can hold.
const maxSampleSeconds = math.MaxInt64 / int64(time.Second)

// ParseSamplePeriod accepts a Go duration ("5s", "1m") or a bare number of seconds.
func ParseSamplePeriod(s string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs > maxSampleSeconds || secs < -maxSampleSeconds {
			return 0, fmt.Errorf("sample period of %d seconds is out of range", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
