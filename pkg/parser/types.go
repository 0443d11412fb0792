// Package parser reads access-log lines and parses them into records.
package parser

import "time"

// Record is a single successfully parsed access-log line.
type Record struct {
	// Timestamp is the request time, keeping the offset written in the log.
	Timestamp time.Time

	// Status is the HTTP status code.
	Status int

	// ResponseTimeMs is the request duration in milliseconds.
	ResponseTimeMs float64

	// Source is the input this line came from ("-" for stdin).
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int
}

// LogLine is a raw log line before parsing.
type LogLine struct {
	// Content is the raw line text.
	Content string

	// Source is the input this line came from.
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int

	// Truncated is set when the line exceeded the size limit and Content
	// holds only its beginning.
	Truncated bool
}
