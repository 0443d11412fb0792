package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// accessLogPattern matches lines such as:
//
//	192.168.32.181 - - [14/06/2017:16:47:02 +1000] "PUT /rest/v1.4/documents?zone=default&_rid=6076537c HTTP/1.1" 200 2 44.510983 "-" "@list-item-updater" prio:0
var accessLogPattern = regexp.MustCompile(
	`^(?P<host>.*)\s(.*)\s(.*)\s\[(?P<at>.*)\]\s"(.*)"\s(?P<status>\d+)\s(.*)\s(?P<time>\d+\.\d+)\s"(.*)"\s"(.*)"\s(.*)$`,
)

// maxErrorText bounds the text kept in a ParseError for a truncated line.
const maxErrorText = 256

var (
	atIndex     = accessLogPattern.SubexpIndex("at")
	statusIndex = accessLogPattern.SubexpIndex("status")
	timeIndex   = accessLogPattern.SubexpIndex("time")
)

// Parser turns raw access-log lines into Records.
type Parser struct {
	timestamps *TimestampParser
}

// Option configures a Parser.
type Option func(*parserOptions)

type parserOptions struct {
	cacheSize int
}

// WithCacheSize sets the timestamp cache size (0 disables the cache).
func WithCacheSize(n int) Option {
	return func(o *parserOptions) {
		if n >= 0 {
			o.cacheSize = n
		}
	}
}

// New creates a Parser.
func New(opts ...Option) (*Parser, error) {
	o := parserOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	ts, err := NewTimestampParser(o.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Parser{timestamps: ts}, nil
}

// Parse parses one raw line.
//
// Blank lines return ErrEmptyLine. Lines that do not match the grammar
// return a *ParseError of kind ErrUnknownFormat carrying the line, and lines
// with an invalid date return one of kind ErrDateParseFailed carrying the
// timestamp text.
func (p *Parser) Parse(line string) (Record, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, ErrEmptyLine
	}

	m := accessLogPattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, &ParseError{Kind: ErrUnknownFormat, Text: line}
	}

	status, err := strconv.Atoi(m[statusIndex])
	if err != nil {
		return Record{}, &ParseError{Kind: ErrUnknownFormat, Text: line, Err: err}
	}

	rt, err := strconv.ParseFloat(m[timeIndex], 64)
	if err != nil {
		return Record{}, &ParseError{Kind: ErrUnknownFormat, Text: line, Err: err}
	}

	at, err := p.timestamps.Parse(m[atIndex])
	if err != nil {
		return Record{}, &ParseError{Kind: ErrDateParseFailed, Text: m[atIndex], Err: err}
	}

	return Record{
		Timestamp:      at,
		Status:         status,
		ResponseTimeMs: rt,
	}, nil
}

// ParseLine parses a LogLine, attaching its location to the record and
// to any ParseError. A truncated line is always ErrUnknownFormat.
func (p *Parser) ParseLine(line *LogLine) (Record, error) {
	if line.Truncated {
		return Record{}, &ParseError{
			Kind:    ErrUnknownFormat,
			Text:    clip(line.Content, maxErrorText),
			Source:  line.Source,
			LineNum: line.LineNum,
			Err:     ErrLineTooLong,
		}
	}

	rec, err := p.Parse(line.Content)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = line.Source
			pe.LineNum = line.LineNum
		}
		return Record{}, err
	}
	rec.Source = line.Source
	rec.LineNum = line.LineNum
	return rec, nil
}

// clip shortens s to at most n bytes on a rune boundary, marking the cut.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

var defaultParser, _ = New(WithCacheSize(0))

// Parse parses one line without a timestamp cache.
func Parse(line string) (Record, error) {
	return defaultParser.Parse(line)
}
