package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintExecutionResult displays the job result. Success goes to out, failure
// to errOut.
func PrintExecutionResult(out, errOut io.Writer, result *csvplugin.Result, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(errOut, "✗ No execution result available")
		return
	}

	if err != nil {
		fmt.Fprintln(errOut, "✗ Job execution failed")
		if result.Error != nil {
			if result.Error.Stage != "" {
				fmt.Fprintf(errOut, "  Stage: %s\n", result.Error.Stage)
			}
			fmt.Fprintf(errOut, "  Code: %s\n", result.Error.Code)
			fmt.Fprintf(errOut, "  Error: %s\n", result.Error.Message)
			if opts.Verbose {
				printDetails(errOut, result.Error.Details)
			}
		} else {
			fmt.Fprintf(errOut, "  Error: %v\n", err)
		}
		return
	}

	if opts.Quiet {
		return
	}
	fmt.Fprintln(out, "✓ Job executed successfully")
	fmt.Fprintf(out, "  Operation: %s\n", result.Operation)
	fmt.Fprintf(out, "  Records read: %d\n", result.RecordsRead)
	fmt.Fprintf(out, "  Records written: %d\n", result.RecordsWritten)
	if opts.Verbose {
		fmt.Fprintf(out, "  Run ID: %s\n", result.RunID)
		fmt.Fprintf(out, "  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
	}

	if opts.DryRun && result.DryRunPreview != nil {
		PrintDryRunPreview(out, result.DryRunPreview, opts.Verbose)
	}
}

func printDetails(w io.Writer, details map[string]interface{}) {
	if code, ok := details["module_code"]; ok {
		fmt.Fprintf(w, "  Module code: %v\n", code)
	}
	if index, ok := details["record_index"]; ok {
		fmt.Fprintf(w, "  Record index: %v\n", index)
	}
}

// PrintDryRunPreview displays what the output would have written.
func PrintDryRunPreview(w io.Writer, preview *csvplugin.WritePreview, verbose bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dry-Run Preview (what would have been written):")
	fmt.Fprintf(w, "  Destination: %s\n", preview.Destination)
	fmt.Fprintf(w, "  Format: %s\n", preview.Format)
	fmt.Fprintf(w, "  Records: %d\n", preview.RecordCount)
	if preview.Exists {
		fmt.Fprintln(w, "  Destination exists")
	}
	if preview.ContentPreview != "" {
		printContentPreview(w, preview.ContentPreview, verbose)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "No file was written (dry-run mode)")
}

// printContentPreview prints the preview, cut to a few lines unless verbose.
func printContentPreview(w io.Writer, content string, verbose bool) {
	const maxLinesCompact = 10
	lines := splitLines(content)

	if verbose || len(lines) <= maxLinesCompact {
		fmt.Fprintln(w, "  Content:")
		printIndented(w, lines, "    ")
		return
	}

	fmt.Fprintln(w, "  Content (truncated, use --verbose for full):")
	printIndented(w, lines[:maxLinesCompact], "    ")
	fmt.Fprintf(w, "    ... (%d more lines)\n", len(lines)-maxLinesCompact)
}

func printIndented(w io.Writer, lines []string, indent string) {
	for _, line := range lines {
		fmt.Fprintf(w, "%s%s\n", indent, line)
	}
}

// splitLines splits s into lines, dropping a trailing empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// PrintJobSummary prints the job name, operation and source.
func PrintJobSummary(w io.Writer, job *csvplugin.Job) {
	if job == nil {
		return
	}
	if job.Name != "" {
		fmt.Fprintf(w, "  Job: %s\n", job.Name)
	}
	fmt.Fprintf(w, "  Operation: %s\n", job.Parameters.Operation)
	if job.Source != nil {
		fmt.Fprintf(w, "  Source: %s\n", job.Source.Path)
	} else {
		fmt.Fprintln(w, "  Source: inline data")
	}
	if job.Output != nil {
		fmt.Fprintf(w, "  Output: %s\n", job.Output.Path)
	}
}

// PrintOperations lists the registered operation names, one per line.
func PrintOperations(w io.Writer, names []string) {
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

// PrintVersion prints plugin metadata and build information.
func PrintVersion(w io.Writer, meta csvplugin.Metadata, build, commit, buildDate string) {
	fmt.Fprintf(w, "Plugin: %s %s\n", meta.Name, meta.Version)
	fmt.Fprintf(w, "ID: %s\n", meta.ID)
	fmt.Fprintf(w, "Version: %s\n", build)
	fmt.Fprintf(w, "Commit: %s\n", commit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}
