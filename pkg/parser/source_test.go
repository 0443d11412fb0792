package parser

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src LineSource) []*LogLine {
	t.Helper()
	ctx := context.Background()
	var lines []*LogLine
	for {
		line, err := src.Next(ctx)
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestReaderSource_Next(t *testing.T) {
	src := NewReaderSource(strings.NewReader("a\n\nb\n"), "mem")
	defer src.Close()

	lines := readAll(t, src)
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].Content)
	assert.Equal(t, "", lines[1].Content)
	assert.Equal(t, "b", lines[2].Content)
	assert.Equal(t, 3, lines[2].LineNum)
	assert.Equal(t, "mem", lines[2].Source)
}

func TestReaderSource_Empty(t *testing.T) {
	src := NewReaderSource(strings.NewReader(""), "mem")
	_, err := src.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestReaderSource_Cancelled(t *testing.T) {
	src := NewReaderSource(strings.NewReader("a\n"), "mem")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_ReadsFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.log")
	second := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(first, []byte("one\ntwo\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("three"), 0644))

	src := NewFileSource([]string{first, second})
	defer src.Close()

	lines := readAll(t, src)
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"one", "two", "three"},
		[]string{lines[0].Content, lines[1].Content, lines[2].Content})
	assert.Equal(t, second, lines[2].Source)
	assert.Equal(t, 1, lines[2].LineNum)
}

func TestFileSource_Stdin(t *testing.T) {
	src := NewFileSource([]string{StdinName}).WithStdin(strings.NewReader("x\ny\n"))

	lines := readAll(t, src)
	require.Len(t, lines, 2)
	assert.Equal(t, StdinName, lines[0].Source)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource([]string{filepath.Join(t.TempDir(), "missing.log")})
	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_LongLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.log")
	long := strings.Repeat("x", 200*1024)
	require.NoError(t, os.WriteFile(path, []byte(long+"\n"), 0644))

	src := NewFileSource([]string{path})
	defer src.Close()

	lines := readAll(t, src)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Content, len(long))
}
