// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"io"

	"github.com/flowsynx/plugin-csv/internal/config"
)

// PrintParseErrors prints parse errors to w.
func PrintParseErrors(w io.Writer, errors []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Parse errors:")
	for _, err := range errors {
		printSingleParseError(w, err, verbose)
	}
}

// printSingleParseError prints a single parse error with location information.
func printSingleParseError(w io.Writer, err config.ParseError, verbose bool) {
	location := formatErrorLocation(err.Path, err.Line, err.Column)

	if location != "" {
		fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
	} else {
		fmt.Fprintf(w, "  %s\n", err.Message)
	}

	if verbose && err.Type != "" {
		fmt.Fprintf(w, "    Type: %s\n", err.Type)
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}

	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints schema validation errors to w.
func PrintValidationErrors(w io.Writer, errors []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(w, "✗ Validation errors:")
	for _, err := range errors {
		printSingleValidationError(w, err, verbose)
	}
	printValidationHint(w, verbose, quiet)
}

func printSingleValidationError(w io.Writer, err config.ValidationError, verbose bool) {
	path := err.Path
	if path == "" {
		path = "/"
	}

	if verbose {
		fmt.Fprintf(w, "  %s:\n", path)
		fmt.Fprintf(w, "    Message: %s\n", err.Message)
		if err.Type != "" {
			fmt.Fprintf(w, "    Type: %s\n", err.Type)
		}
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", path, truncate(err.Message, 80))
}

// truncate shortens s to max runes, ending with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func printValidationHint(w io.Writer, verbose, quiet bool) {
	if !quiet && !verbose {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

// PrintConversionError reports a document that passed the schema but could
// not be turned into a job.
func PrintConversionError(w io.Writer, err error) {
	fmt.Fprintf(w, "✗ Invalid job: %v\n", err)
}
