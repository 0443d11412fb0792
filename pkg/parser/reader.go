package parser

import (
	"bufio"
	"bytes"
	"io"
)

// maxLineSize bounds the bytes kept from a single log line. Longer lines are
// cut and flagged as truncated; the rest of the line is discarded.
const maxLineSize = 1024 * 1024

// lineReader splits a stream into lines without a length limit on the input.
type lineReader struct {
	r   *bufio.Reader
	max int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024), max: maxLineSize}
}

// next returns the next line without its "\n" or "\r\n" terminator and
// whether it was cut to the size limit. A final line without a terminator is
// returned like any other. Returns io.EOF when the stream is exhausted.
func (lr *lineReader) next() (string, bool, error) {
	var (
		buf       []byte
		truncated bool
		read      bool
	)

	for {
		chunk, err := lr.r.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		if err == nil {
			chunk = chunk[:len(chunk)-1]
		}

		if room := lr.max - len(buf); len(chunk) > room {
			if room > 0 {
				buf = append(buf, chunk[:room]...)
			}
			truncated = true
		} else {
			buf = append(buf, chunk...)
		}

		switch err {
		case nil:
			return string(dropCR(buf)), truncated, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if !read {
				return "", false, io.EOF
			}
			return string(dropCR(buf)), truncated, nil
		default:
			return "", false, err
		}
	}
}

func dropCR(b []byte) []byte {
	return bytes.TrimSuffix(b, []byte("\r"))
}
