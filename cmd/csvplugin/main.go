// Package main provides the CLI entry point for the CSV plugin.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowsynx/plugin-csv/internal/cli"
	"github.com/flowsynx/plugin-csv/internal/config"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/internal/modules/output"
	"github.com/flowsynx/plugin-csv/internal/operation"
	"github.com/flowsynx/plugin-csv/internal/runtime"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// exitError carries the process exit code out of a command. The message has
// already been printed when it is returned.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// options holds the flag values of one invocation.
type options struct {
	verbose   bool
	quiet     bool
	logFormat string
	logFile   string

	dryRun bool
	format string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	logger.CloseLogFile()
	if err == nil {
		return ExitSuccess
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitRuntimeError
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "csvplugin",
		Short: "CSV plugin - read, project and filter CSV data",
		Long: `csvplugin runs CSV jobs described in JSON or YAML files.

A job reads CSV from a file (plain or compressed, glob patterns allowed)
or from inline data, applies one operation and writes the result.

Operations:
  read    return the records unchanged
  map     keep the listed columns, in the listed order
  filter  keep records matching a condition tree
  where   keep records matching an expression
  script  transform records with a JavaScript function

Examples:
  # Validate a job file
  csvplugin validate job.json

  # Run a job and print the records as JSON
  csvplugin run --format json job.yaml

  # Preview the output file without writing it
  csvplugin run --dry-run job.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return configureLogging(opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "Log format: json or human")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file")

	root.AddCommand(
		newValidateCmd(opts, stdout, stderr),
		newRunCmd(opts, stdout, stderr),
		newOperationsCmd(stdout),
		newVersionCmd(stdout),
	)
	return root
}

func configureLogging(opts *options, stderr io.Writer) error {
	format, err := logger.ParseFormat(opts.logFormat)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	} else if opts.quiet {
		level = slog.LevelError
	}

	logger.SetOutput(stderr, level, format)
	if opts.logFile != "" {
		return logger.SetLogFile(opts.logFile, level, format)
	}
	return nil
}

func newValidateCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <job-file>",
		Short: "Validate a job file",
		Long: `Validate a job file against the job schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Job is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  csvplugin validate job.json
  csvplugin validate --verbose job.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			if !opts.quiet {
				fmt.Fprintf(stdout, "Validating job: %s\n", path)
			}

			result, job, err := loadJob(path, opts, stderr)
			if err != nil {
				return err
			}

			if !opts.quiet {
				fmt.Fprintf(stdout, "✓ Job is valid (format: %s)\n", result.Format)
				if opts.verbose {
					cli.PrintJobSummary(stdout, job)
				}
			}
			return nil
		},
	}
}

func newRunCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <job-file>",
		Short: "Run a job file",
		Long: `Run the job defined in a job file.

The job file is first validated against the schema.
If validation fails, the job is not executed.

With --format, the resulting records are printed to stdout in that
format (csv, json, yaml or msgpack) and status messages go to stderr.

Exit codes:
  0 - Job executed successfully
  1 - Validation errors, including invalid job parameters
  2 - Parse errors
  3 - Runtime errors

Examples:
  csvplugin run job.json
  csvplugin run --format csv job.yaml > out.csv
  csvplugin run --dry-run job.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), args[0], opts, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run the job but only preview the output file")
	cmd.Flags().StringVar(&opts.format, "format", "",
		fmt.Sprintf("Print records to stdout as %s", strings.Join(output.StructuredFormats, ", ")))
	return cmd
}

func runJob(ctx context.Context, path string, opts *options, stdout, stderr io.Writer) error {
	// Records own stdout when a format is requested.
	status := stdout
	if opts.format != "" {
		status = stderr
	}

	if !opts.quiet {
		fmt.Fprintf(status, "Loading job: %s\n", path)
	}
	result, job, err := loadJob(path, opts, stderr)
	if err != nil {
		return err
	}
	if !opts.quiet {
		fmt.Fprintf(status, "✓ Job loaded successfully (format: %s)\n", result.Format)
		if opts.verbose {
			cli.PrintJobSummary(status, job)
		}
	}

	executor := runtime.NewExecutor(opts.dryRun)
	if opts.format != "" {
		sink, err := output.NewStructuredWriter(stdout, opts.format)
		if err != nil {
			fmt.Fprintf(stderr, "✗ %v\n", err)
			return &exitError{code: ExitValidationError}
		}
		executor.WithSink(sink)
	}

	if !opts.quiet {
		if opts.dryRun {
			fmt.Fprintln(status, "Executing job (dry-run mode - output file will not be written)...")
		} else {
			fmt.Fprintln(status, "Executing job...")
		}
	}

	execResult, err := executor.Execute(ctx, job)
	cli.PrintExecutionResult(status, stderr, execResult, err, cli.OutputOptions{
		Verbose: opts.verbose,
		Quiet:   opts.quiet,
		DryRun:  opts.dryRun,
	})
	if err != nil {
		if runtime.IsSpecificationError(err) {
			return &exitError{code: ExitValidationError}
		}
		return &exitError{code: ExitRuntimeError}
	}
	return nil
}

// loadJob parses, validates and converts a job file, printing any error.
func loadJob(path string, opts *options, stderr io.Writer) (*config.Result, *csvplugin.Job, error) {
	result := config.ParseConfig(path)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(stderr, result.ParseErrors, opts.verbose)
		return nil, nil, &exitError{code: ExitParseError}
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(stderr, result.ValidationErrors, opts.verbose, opts.quiet)
		return nil, nil, &exitError{code: ExitValidationError}
	}

	job, err := config.ConvertResult(result)
	if err != nil {
		cli.PrintConversionError(stderr, err)
		return nil, nil, &exitError{code: ExitValidationError}
	}
	return result, job, nil
}

func newOperationsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the supported operations",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			cli.PrintOperations(stdout, operation.List())
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print plugin metadata, version, commit hash, and build date information.",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			cli.PrintVersion(stdout, csvplugin.PluginMetadata(), version, commit, buildDate)
		},
	}
}
