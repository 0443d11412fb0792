// Package cli provides the command-line interface for slalog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/b1rdex/slalog/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(NewRootCommand(), os.Args[1:])
}

func run(rootCmd *cobra.Command, args []string) int {
	commands.ExitCode = 0
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slalog",
		Short: "Find periods of SLA breach in web server access logs",
		Long: `slalog reads access logs in one pass and reports failure periods:
windows during which availability fell below the SLA threshold.

A request counts as failed when it returned a 5xx status or took at least
the response time threshold. Each period is printed with its start, end
and availability as soon as it is over.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
