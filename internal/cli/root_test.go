package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `192.168.32.181 - - [14/06/2017:16:47:02 +1000] "PUT /rest/v1.4/documents?zone=default&_rid=e356713 HTTP/1.1" 200 2 44.510983 "-" "@list-item-updater" prio:0
192.168.32.181 - - [14/06/2017:16:47:03 +1000] "PUT /rest/v1.4/documents?zone=default&_rid=e356713 HTTP/1.1" 200 2 23.251219 "-" "@list-item-updater" prio:0
192.168.32.181 - - [14/06/2017:16:47:04 +1000] "PUT /rest/v1.4/documents?zone=default&_rid=e356713 HTTP/1.1" 200 2 30.164372 "-" "@list-item-updater" prio:0
`

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	root := NewRootCommand()

	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	code := run(root, args)
	return code, stdout.String(), stderr.String()
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"analyze", "diagnose", "validate", "version"}, names)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)
}

func TestExitCodes(t *testing.T) {
	t.Run("periods reported", func(t *testing.T) {
		code, stdout, _ := execute(t, sampleLog, "analyze", "-u", "99.9", "-t", "30")
		assert.Equal(t, 1, code)
		assert.Equal(t, "16:47:02 16:47:04 33.3\n", stdout)
	})

	t.Run("no periods", func(t *testing.T) {
		code, stdout, _ := execute(t, sampleLog, "analyze", "-u", "99.9", "-t", "100")
		assert.Equal(t, 0, code)
		assert.Empty(t, stdout)
	})

	t.Run("configuration error", func(t *testing.T) {
		code, _, stderr := execute(t, sampleLog, "analyze", "-t", "30")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "Error: availability threshold is required")
	})

	t.Run("unknown command", func(t *testing.T) {
		code, _, stderr := execute(t, "", "tail")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "Error: unknown command")
	})
}

func TestExitCodeResetBetweenRuns(t *testing.T) {
	code, _, _ := execute(t, sampleLog, "analyze", "-u", "99.9", "-t", "30")
	require.Equal(t, 1, code)

	code, _, _ = execute(t, "", "version")
	assert.Equal(t, 0, code)
}

func TestEndToEnd_ConfigAndFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "access.log")
	require.NoError(t, os.WriteFile(logPath, []byte(sampleLog+"not an access log line\n"), 0644))

	configPath := filepath.Join(dir, "slalog.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
sla:
  availability: 99.9
  response_time: 30
log_sources:
  - `+filepath.Join(dir, "*.log")+`
logging:
  level: warn
  format: json
`), 0644))

	code, stdout, _ := execute(t, "", "validate", configPath)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration valid!")

	code, stdout, stderr := execute(t, "", "analyze", "-c", configPath, "-v")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "2017-06-14T16:47:02+10:00 2017-06-14T16:47:04+10:00 succeeded 1 / failed 2 (33.3%)")
	assert.Contains(t, stdout, "malformed 1")
	assert.Contains(t, stderr, `"kind":"unknown_format"`)
	assert.Contains(t, stderr, `"line":4`)

	code, stdout, _ = execute(t, "", "diagnose", "-c", configPath)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "[WARN] Log Format: access.log")

	code, _, stderr = execute(t, "", "analyze", "-c", configPath, "--on-error", "abort")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown log format")
}
