package parser

import (
	"context"
	"fmt"
	"io"
	"os"
)

// StdinName is the input name that selects standard input.
const StdinName = "-"

// FileSource implements LineSource over a list of files read one after another.
// The name "-" reads standard input.
type FileSource struct {
	files []string
	stdin io.Reader

	currentFile   *os.File
	currentReader *lineReader
	currentSource string
	currentLine   int
	fileIndex     int
}

// NewFileSource creates a LineSource that reads the given files in order.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		stdin:     os.Stdin,
		fileIndex: -1,
	}
}

// WithStdin replaces the reader used for "-".
func (s *FileSource) WithStdin(r io.Reader) *FileSource {
	s.stdin = r
	return s
}

// Next returns the next raw line.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentReader == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		content, truncated, err := s.currentReader.next()
		if err == nil {
			s.currentLine++
			return &LogLine{
				Content:   content,
				Source:    s.currentSource,
				LineNum:   s.currentLine,
				Truncated: truncated,
			}, nil
		}
		if err != io.EOF {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
		s.currentReader = nil
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	s.currentSource = path
	s.currentLine = 0

	if path == StdinName {
		s.currentReader = newLineReader(s.stdin)
		return nil
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentReader = newLineReader(f)
	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentReader = nil
		return err
	}
	return nil
}

// ReaderSource implements LineSource over an io.Reader owned by the caller.
type ReaderSource struct {
	name    string
	reader  *lineReader
	lineNum int
}

// NewReaderSource creates a LineSource reading lines from r.
// name is reported as the Source of each line.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{
		name:   name,
		reader: newLineReader(r),
	}
}

// Next returns the next raw line or io.EOF.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, truncated, err := s.reader.next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}

	s.lineNum++
	return &LogLine{
		Content:   content,
		Source:    s.name,
		LineNum:   s.lineNum,
		Truncated: truncated,
	}, nil
}

// Close is a no-op; the reader belongs to the caller.
func (s *ReaderSource) Close() error {
	return nil
}
