// Package logging configures the zerolog logger used for diagnostics.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/b1rdex/slalog/pkg/config"
)

// Setup builds a logger from the logging config. The returned closer
// releases the log file, if one was opened; it is safe to call when none was.
// stderr is where console and json output go when Output includes stderr.
func Setup(cfg config.LoggingConfig, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	switch cfg.Output {
	case "file", "both":
		fw, err := buildFileWriter(cfg)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		writers = append(writers, fw)
		closer = fw
		if cfg.Output == "both" {
			writers = append(writers, buildStderrWriter(cfg.Format, stderr))
		}
	default:
		writers = append(writers, buildStderrWriter(cfg.Format, stderr))
	}

	var out io.Writer = writers[0]
	if len(writers) > 1 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// buildStderrWriter returns a human-readable writer for console format
// and the raw writer for json.
func buildStderrWriter(format string, w io.Writer) io.Writer {
	if format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}
}

// buildFileWriter creates a lumberjack rotated file writer. Files always
// get JSON so they stay machine readable.
func buildFileWriter(cfg config.LoggingConfig) (*lumberjack.Logger, error) {
	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
