package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b1rdex/slalog/pkg/config"
	"github.com/b1rdex/slalog/pkg/detector"
)

func diagnose(t *testing.T, stdin string, args []string, opts *DiagnoseOptions) string {
	t.Helper()
	if opts.SampleSize == 0 {
		opts.SampleSize = detector.DefaultSampleSize
	}
	var buf bytes.Buffer
	require.NoError(t, runDiagnose(context.Background(), &buf, strings.NewReader(stdin), args, opts))
	return buf.String()
}

func TestNewDiagnoseCommand(t *testing.T) {
	cmd := NewDiagnoseCommand()

	assert.Equal(t, "diagnose [log-file...]", cmd.Use)
	for _, name := range []string{"config", "sample-size", "verbose"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestRunDiagnose_CleanLog(t *testing.T) {
	logPath := writeFile(t, t.TempDir(), "access.log", bigLog)

	out := diagnose(t, "", []string{logPath}, &DiagnoseOptions{})

	assert.Contains(t, out, "[PASS] Log Source: "+logPath)
	assert.Contains(t, out, "[PASS] Log Format: access.log")
	assert.Contains(t, out, "Grammar matches 10/10 sampled lines")
	assert.Contains(t, out, "Summary: 2 passed, 0 warnings, 0 errors")
	assert.Contains(t, out, "Everything looks good!")
}

func TestRunDiagnose_MalformedLines(t *testing.T) {
	content := bigLog +
		`192.168.32.181 - - [14/Jun/2017:16:55:02 +1000] "GET / HTTP/1.1" 200 2 1.5 "-" "curl" x` + "\n" +
		"garbage\n"
	logPath := writeFile(t, t.TempDir(), "access.log", content)

	out := diagnose(t, "", []string{logPath}, &DiagnoseOptions{})

	assert.Contains(t, out, "[WARN] Log Format: access.log")
	assert.Contains(t, out, "Grammar matches 10/12 sampled lines")
	assert.Contains(t, out, "unknown_format: 1, date_parse_failed: 1")
	assert.Contains(t, out, "line 11 (date_parse_failed)")
	assert.Contains(t, out, "line 12 (unknown_format): garbage")
	assert.Contains(t, out, "Hint: Looks like Apache/NGINX timestamp with month name")
}

func TestRunDiagnose_NoMatchingLines(t *testing.T) {
	logPath := writeFile(t, t.TempDir(), "app.log", "2024-01-15T10:30:00 Application started\n")

	out := diagnose(t, "", []string{logPath}, &DiagnoseOptions{})

	assert.Contains(t, out, "[FAIL] Log Format: app.log")
	assert.Contains(t, out, "No line matches the access log grammar")
	assert.Contains(t, out, "Hint: Looks like ISO 8601 timestamp")
	assert.Contains(t, out, "Fix the errors above before running analysis.")
}

func TestRunDiagnose_OutOfOrder(t *testing.T) {
	content := accessLine("14/06/2017:16:47:10 +1000", 200, "1.0") + "\n" +
		accessLine("14/06/2017:16:47:02 +1000", 200, "1.0") + "\n"
	logPath := writeFile(t, t.TempDir(), "access.log", content)

	out := diagnose(t, "", []string{logPath}, &DiagnoseOptions{})

	assert.Contains(t, out, "[WARN] Log Format: access.log")
	assert.Contains(t, out, "1 record(s) are older than the record before them")
}

func TestRunDiagnose_Stdin(t *testing.T) {
	out := diagnose(t, bigLog, nil, &DiagnoseOptions{Verbose: true})

	assert.Contains(t, out, "No log files given, standard input will be read")
	assert.Contains(t, out, "[PASS] Log Format: stdin")
	assert.Contains(t, out, "Time range: 2017-06-14T16:47:02+10:00 to 2017-06-14T16:54:04+10:00")
	assert.Contains(t, out, "UTC offsets: +10:00")
}

func TestRunDiagnose_SampleSize(t *testing.T) {
	logPath := writeFile(t, t.TempDir(), "access.log", bigLog)

	out := diagnose(t, "", []string{logPath}, &DiagnoseOptions{SampleSize: 3, Verbose: true})

	assert.Contains(t, out, "Grammar matches 3/3 sampled lines")
	assert.Contains(t, out, "Sample stopped early")
}

func TestRunDiagnose_MissingConfig(t *testing.T) {
	out := diagnose(t, "", nil, &DiagnoseOptions{ConfigPath: "/nonexistent/slalog.yaml"})

	assert.Contains(t, out, "[FAIL] Config File")
	assert.Contains(t, out, "Config file not found")
	assert.NotContains(t, out, "Log Format")
}

func TestRunDiagnose_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "slalog.yaml", "sla: {availability: 99, response_time: 30, sample_period: 500ms}\n")

	out := diagnose(t, "", nil, &DiagnoseOptions{ConfigPath: configPath})

	assert.Contains(t, out, "[PASS] Config File")
	assert.Contains(t, out, "[FAIL] Config Syntax")
	assert.Contains(t, out, "Hint: Write sample_period as seconds or a duration of at least 1s")
}

func TestRunDiagnose_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "access.log", bigLog)
	configPath := writeFile(t, dir, "slalog.yaml", `
sla: {availability: 99.9, response_time: 45}
log_sources: [`+filepath.Join(dir, "*.log")+`]
`)

	out := diagnose(t, "", nil, &DiagnoseOptions{ConfigPath: configPath, Verbose: true})

	assert.Contains(t, out, "[PASS] Config Syntax")
	assert.Contains(t, out, "Sample period: 5s")
	assert.Contains(t, out, "Matches 1 file(s)")
	assert.Contains(t, out, logPath)
	assert.Contains(t, out, "[PASS] Log Format: access.log")
	assert.Contains(t, out, "No webhooks configured (optional)")
}

func TestCheckConfigExists(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.yaml", "")
	full := writeFile(t, dir, "full.yaml", "sla: {}\n")

	tests := []struct {
		name   string
		path   string
		status string
		msg    string
	}{
		{"missing", filepath.Join(dir, "missing.yaml"), "error", "not found"},
		{"directory", dir, "error", "directory"},
		{"empty", empty, "error", "empty"},
		{"ok", full, "ok", "Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checkConfigExists(tt.path)
			assert.Equal(t, tt.status, result.Status)
			assert.Contains(t, result.Message, tt.msg)
		})
	}
}

func TestCheckLogSources(t *testing.T) {
	dir := t.TempDir()
	full := writeFile(t, dir, "access.log", bigLog)
	empty := writeFile(t, dir, "empty.log", "")

	results := checkLogSources([]string{
		full,
		empty,
		filepath.Join(dir, "missing.log"),
		dir,
		filepath.Join(dir, "*.gz"),
		"-",
	})

	require.Len(t, results, 6)
	statuses := []string{}
	for _, r := range results {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []string{"ok", "warning", "error", "error", "warning", "ok"}, statuses)
}

func TestCheckLogSources_NoneAccessible(t *testing.T) {
	results := checkLogSources([]string{"/nonexistent/access.log"})

	require.Len(t, results, 2)
	assert.Equal(t, "Log Files Summary", results[1].Check)
	assert.Equal(t, "error", results[1].Status)
}

func TestCheckWebhooks(t *testing.T) {
	cfg := &config.Config{
		Webhooks: []config.WebhookConfig{
			{Name: "ok", URL: "https://hooks.example.com/sla", Trigger: config.WebhookTriggerOnBreach},
			{Name: "bad-scheme", URL: "ftp://hooks.example.com"},
			{Name: "bad-trigger", URL: "https://hooks.example.com", Trigger: "sometimes"},
			{Name: "token", URL: "https://hooks.example.com", Token: "${UNSET_TOKEN}"},
			{URL: ""},
		},
	}

	results := checkWebhooks(cfg, &DiagnoseOptions{})

	require.Len(t, results, 5)
	assert.Equal(t, "ok", results[0].Status)
	assert.Equal(t, "error", results[1].Status)
	assert.Contains(t, results[1].Details[0], "scheme")
	assert.Equal(t, "error", results[2].Status)
	assert.Contains(t, results[2].Details[0], "Invalid trigger")
	assert.Equal(t, "warning", results[3].Status)
	assert.Equal(t, "error", results[4].Status)
	assert.Contains(t, results[4].Details, "Missing url")
}

func TestCheckWebhooks_VerboseConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{
		Webhooks: []config.WebhookConfig{{Name: "local", URL: server.URL, Trigger: config.WebhookTriggerAlways}},
	}

	results := checkWebhooks(cfg, &DiagnoseOptions{Verbose: true})

	require.Len(t, results, 2)
	assert.Equal(t, "Webhook Connectivity: local", results[1].Check)
	assert.Equal(t, "ok", results[1].Status)
	assert.Contains(t, results[1].Message, "Reachable (status 200)")
}

func TestPrintDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	printDiagnostics(&buf, []DiagnosticResult{
		{Check: "A", Status: "ok", Message: "fine", Details: []string{"hidden"}},
		{Check: "B", Status: "warning", Message: "hmm", Details: []string{"shown"}, Suggests: []string{"do this"}},
	}, &DiagnoseOptions{})

	out := buf.String()
	assert.Contains(t, out, "[PASS] A")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] B")
	assert.Contains(t, out, "      - shown")
	assert.Contains(t, out, "      Hint: do this")
	assert.Contains(t, out, "Summary: 1 passed, 1 warnings, 0 errors")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 2), 10))

	// "é" is two bytes; the cut backs off to the rune start.
	got := truncate("abcdefééé", 10)
	assert.Equal(t, "abcdef...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestDisplaySource(t *testing.T) {
	assert.Equal(t, "stdin", displaySource("-"))
	assert.Equal(t, "access.log", displaySource(filepath.Join(os.TempDir(), "access.log")))
}
