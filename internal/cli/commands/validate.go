package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/b1rdex/slalog/pkg/config"
	"github.com/b1rdex/slalog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a slalog configuration file without running analysis.

Checks:
  - YAML syntax
  - SLA thresholds and sample period
  - Parse error mode, logging and webhook settings
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Availability:   %v%%\n", cfg.SLA.Availability)
	fmt.Fprintf(w, "  Response time:  %vms\n", cfg.SLA.ResponseTime)
	fmt.Fprintf(w, "  Sample period:  %s\n", cfg.SLA.SamplePeriod)
	fmt.Fprintf(w, "  Parse errors:   %s\n", cfg.OnParseError)
	fmt.Fprintf(w, "  Log sources:    %d pattern(s)\n", len(cfg.LogSources))
	fmt.Fprintf(w, "  Webhooks:       %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		fmt.Fprintf(w, "    %d. [%s] %s\n", i+1, wh.Trigger, webhookName(wh))
	}

	if len(cfg.LogSources) == 0 {
		fmt.Fprintf(w, "\nNo log sources configured; files must be given on the command line or piped to stdin\n")
		return nil
	}

	files, err := parser.ExpandInputs(cfg.LogSources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding log source patterns: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "\nLog inputs: %d\n", len(files))
	for _, f := range files {
		fmt.Fprintf(w, "  - %s\n", f)
	}

	return nil
}
