package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/b1rdex/slalog/pkg/config"
	"github.com/b1rdex/slalog/pkg/detector"
	"github.com/b1rdex/slalog/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigPath string
	SampleSize int
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [log-file...]",
		Short: "Check configuration and log files before analysis",
		Long: `Diagnose common configuration and input problems.

This command checks:
- Config file existence and validity (with -c)
- Log source file existence and accessibility
- How many sampled lines match the access log grammar
- Timestamps out of order or in mixed UTC offsets
- Webhook configuration

Example:
  slalog diagnose /var/log/nginx/access.log
  slalog diagnose -c slalog.yaml -v`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample-size", "n", detector.DefaultSampleSize, "Lines to inspect per input (0 for all)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, stdin io.Reader, args []string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}
	cfg := config.DefaultConfig()

	if opts.ConfigPath != "" {
		result := checkConfigExists(opts.ConfigPath)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}

		var parsed *config.Config
		parsed, result = checkConfigParseable(ctx, opts.ConfigPath)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}
		cfg = parsed
	}

	sources := args
	if len(sources) == 0 {
		sources = cfg.LogSources
	}

	results = append(results, checkLogSources(sources)...)
	results = append(results, checkGrammar(ctx, sources, stdin, opts)...)
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{"Set at least sla.availability and sla.response_time"}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		switch {
		case strings.Contains(err.Error(), "yaml"):
			result.Suggests = []string{"Check YAML syntax - ensure proper indentation (use spaces, not tabs)"}
		case strings.Contains(err.Error(), "sample_period"):
			result.Suggests = []string{"Write sample_period as seconds or a duration of at least 1s, e.g. 5 or 1m"}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Availability: %v%%", cfg.SLA.Availability),
		fmt.Sprintf("Response time: %vms", cfg.SLA.ResponseTime),
		fmt.Sprintf("Sample period: %s", cfg.SLA.SamplePeriod),
		fmt.Sprintf("Log sources: %d", len(cfg.LogSources)),
	}
	return cfg, result
}

func checkLogSources(sources []string) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(sources) == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Log Sources",
			Status:  "ok",
			Message: "No log files given, standard input will be read",
		})
		return results
	}

	totalFiles := 0
	for _, source := range sources {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Log Source: %s", source),
		}

		switch {
		case source == parser.StdinName:
			result.Status = "ok"
			result.Message = "Standard input"
			totalFiles++

		case strings.ContainsAny(source, "*?["):
			matches, err := filepath.Glob(source)
			if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
			} else if len(matches) == 0 {
				result.Status = "warning"
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{
					"Check if the log files exist at this path",
					"Verify the glob pattern syntax",
				}
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("Matches %d file(s)", len(matches))
				result.Details = append(result.Details, matches...)
				totalFiles += len(matches)
			}

		default:
			info, err := os.Stat(source)
			if os.IsNotExist(err) {
				result.Status = "error"
				result.Message = "File does not exist"
				result.Suggests = []string{"Check if the log file path is correct"}
			} else if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Cannot access file: %v", err)
				result.Suggests = []string{"Check file permissions"}
			} else if info.IsDir() {
				result.Status = "error"
				result.Message = "Path is a directory, not a file"
				result.Suggests = []string{
					"Use a glob pattern to match files in directory",
					"Example: /var/log/nginx/access.log*",
				}
			} else if info.Size() == 0 {
				result.Status = "warning"
				result.Message = "File is empty (0 bytes)"
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
				totalFiles++
			}
		}
		results = append(results, result)
	}

	if totalFiles == 0 {
		results = append(results, DiagnosticResult{
			Check:    "Log Files Summary",
			Status:   "error",
			Message:  "No accessible log files found",
			Suggests: []string{"Ensure at least one log file exists and is readable"},
		})
	}

	return results
}

// checkGrammar samples every readable input and reports how many lines the
// analyzer would accept.
func checkGrammar(ctx context.Context, sources []string, stdin io.Reader, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	files, err := parser.ExpandInputs(sources)
	if err != nil {
		return results
	}

	d, err := detector.New(detector.WithSampleSize(opts.SampleSize))
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Log Format",
			Status:  "error",
			Message: err.Error(),
		})
	}

	for _, file := range files {
		if file != parser.StdinName {
			if info, err := os.Stat(file); err != nil || info.IsDir() || info.Size() == 0 {
				continue
			}
		}

		src := parser.NewFileSource([]string{file}).WithStdin(stdin)
		inspected, err := d.Inspect(ctx, src)
		_ = src.Close()

		result := DiagnosticResult{
			Check: fmt.Sprintf("Log Format: %s", displaySource(file)),
		}
		if err != nil {
			result.Status = "warning"
			result.Message = fmt.Sprintf("Cannot read input: %v", err)
			results = append(results, result)
			continue
		}

		results = append(results, grammarResult(result, inspected, opts))
	}

	return results
}

func grammarResult(result DiagnosticResult, r *detector.Result, opts *DiagnoseOptions) DiagnosticResult {
	nonEmpty := r.SampledLines - r.EmptyLines
	scope := fmt.Sprintf("%d/%d sampled lines", r.Records, nonEmpty)

	switch {
	case nonEmpty == 0:
		result.Status = "warning"
		result.Message = "No non-empty lines to inspect"
		return result
	case r.Records == 0:
		result.Status = "error"
		result.Message = "No line matches the access log grammar"
	case r.Rejected() > 0:
		result.Status = "warning"
		result.Message = fmt.Sprintf("Grammar matches %s (%.1f%%); malformed lines are skipped and reported",
			scope, r.Conformance()*100)
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("Grammar matches %s", scope)
	}

	if r.Rejected() > 0 {
		result.Details = append(result.Details,
			fmt.Sprintf("unknown_format: %d, date_parse_failed: %d", r.UnknownFormat, r.DateParseFailed))
		for _, ex := range r.Examples {
			result.Details = append(result.Details,
				fmt.Sprintf("line %d (%s): %s", ex.LineNum, ex.Kind, truncate(ex.Text, 80)))
		}
		hinted := map[string]bool{}
		for _, ex := range r.Examples {
			if ex.Format != nil && !hinted[ex.Format.Name] {
				hinted[ex.Format.Name] = true
				result.Suggests = append(result.Suggests,
					fmt.Sprintf("Looks like %s: %s", ex.Format.Name, ex.Format.Hint))
			}
		}
	}

	if notes := r.Notes(); len(notes) > 0 && r.Records > 0 {
		if result.Status == "ok" {
			result.Status = "warning"
		}
		result.Details = append(result.Details, notes...)
	}

	if opts.Verbose && r.Records > 0 {
		result.Details = append(result.Details,
			fmt.Sprintf("Time range: %s to %s", r.First.Format(time.RFC3339), r.Last.Format(time.RFC3339)),
			fmt.Sprintf("Largest gap: %s", r.MaxGap),
			fmt.Sprintf("UTC offsets: %s", strings.Join(r.Offsets, ", ")))
		if r.Truncated {
			result.Details = append(result.Details, "Sample stopped early; use --sample-size 0 to read everything")
		}
	}

	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== slalog Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nInputs are usable but have warnings.")
	} else {
		fmt.Fprintln(w, "\nEverything looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", webhookName(wh)),
		}

		issues := []string{}
		warnings := []string{}

		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnBreach, config.WebhookTriggerAlways, config.WebhookTriggerNever:
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_breach, always, or never)", wh.Trigger))
			}
		}

		if strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}
			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", webhookName(wh))
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func webhookName(wh config.WebhookConfig) string {
	if wh.Name != "" {
		return wh.Name
	}
	return wh.URL
}

func displaySource(name string) string {
	if name == parser.StdinName {
		return "stdin"
	}
	return filepath.Base(name)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
