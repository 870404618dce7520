package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flowsynx/plugin-csv/internal/config"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

func TestFormatErrorLocation(t *testing.T) {
	tests := []struct {
		path         string
		line, column int
		want         string
	}{
		{"", 3, 4, ""},
		{"job.json", 0, 0, "job.json"},
		{"job.json", 3, 0, "job.json:3"},
		{"job.json", 3, 4, "job.json:3:4"},
	}
	for _, tt := range tests {
		if got := formatErrorLocation(tt.path, tt.line, tt.column); got != tt.want {
			t.Errorf("formatErrorLocation(%q, %d, %d) = %q, want %q", tt.path, tt.line, tt.column, got, tt.want)
		}
	}
}

func TestPrintParseErrors(t *testing.T) {
	var buf bytes.Buffer
	PrintParseErrors(&buf, []config.ParseError{
		{Path: "job.json", Line: 2, Column: 5, Message: "unexpected token", Type: config.ErrorTypeSyntax},
		{Message: "no location"},
	}, true)

	out := buf.String()
	for _, want := range []string{"✗ Parse errors:", "job.json:2:5: unexpected token", "Type: syntax", "  no location"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintValidationErrors(t *testing.T) {
	long := strings.Repeat("x", 100)
	errs := []config.ValidationError{
		{Path: "/operation", Type: "type", Message: "got number, want string"},
		{Type: "required", Message: long},
	}

	var compact bytes.Buffer
	PrintValidationErrors(&compact, errs, false, false)
	out := compact.String()
	if !strings.Contains(out, "/operation: got number, want string") {
		t.Errorf("missing compact error:\n%s", out)
	}
	if !strings.Contains(out, "/: "+strings.Repeat("x", 77)+"...") {
		t.Errorf("long message should be truncated:\n%s", out)
	}
	if !strings.Contains(out, "Hint:") {
		t.Error("compact output should carry the hint")
	}

	var verbose bytes.Buffer
	PrintValidationErrors(&verbose, errs, true, false)
	out = verbose.String()
	if !strings.Contains(out, "Message: "+long) || !strings.Contains(out, "Type: required") {
		t.Errorf("verbose output incomplete:\n%s", out)
	}
	if strings.Contains(out, "Hint:") {
		t.Error("verbose output should not carry the hint")
	}

	var quiet bytes.Buffer
	PrintValidationErrors(&quiet, errs, false, true)
	if strings.Contains(quiet.String(), "Hint:") {
		t.Error("quiet output should not carry the hint")
	}
}

func TestPrintExecutionResult_Success(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &csvplugin.Result{
		RunID:          "run-1",
		Operation:      "filter",
		Status:         csvplugin.StatusSuccess,
		StartedAt:      start,
		CompletedAt:    start.Add(1500 * time.Millisecond),
		RecordsRead:    4,
		RecordsWritten: 2,
		DryRunPreview: &csvplugin.WritePreview{
			Destination:    "/tmp/out.csv",
			Format:         "csv",
			RecordCount:    2,
			ContentPreview: "a,b\n1,2\n3,4\n",
		},
	}

	var out, errOut bytes.Buffer
	PrintExecutionResult(&out, &errOut, result, nil, OutputOptions{Verbose: true, DryRun: true})

	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr: %s", errOut.String())
	}
	for _, want := range []string{
		"✓ Job executed successfully",
		"Records read: 4",
		"Records written: 2",
		"Run ID: run-1",
		"Duration: 1.5s",
		"Destination: /tmp/out.csv",
		"    1,2",
		"No file was written",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	PrintExecutionResult(&out, &errOut, result, nil, OutputOptions{Quiet: true})
	if out.Len() != 0 {
		t.Errorf("quiet mode printed %q", out.String())
	}
}

func TestPrintExecutionResult_Failure(t *testing.T) {
	result := &csvplugin.Result{
		Status: csvplugin.StatusError,
		Error: &csvplugin.ExecutionError{
			Code:    "evaluation",
			Message: "script execution failed at record 3",
			Stage:   "operation",
			Details: map[string]interface{}{"module_code": "EXECUTION_FAILED", "record_index": 3},
		},
	}

	var out, errOut bytes.Buffer
	PrintExecutionResult(&out, &errOut, result, errors.New("boom"), OutputOptions{Verbose: true})

	if out.Len() != 0 {
		t.Errorf("unexpected stdout: %s", out.String())
	}
	for _, want := range []string{"✗ Job execution failed", "Stage: operation", "Code: evaluation", "Module code: EXECUTION_FAILED", "Record index: 3"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut.String())
		}
	}

	errOut.Reset()
	PrintExecutionResult(&out, &errOut, nil, errors.New("boom"), OutputOptions{})
	if !strings.Contains(errOut.String(), "No execution result") {
		t.Errorf("nil result: %s", errOut.String())
	}
}

func TestPrintContentPreview_Truncates(t *testing.T) {
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, "row")
	}
	content := strings.Join(lines, "\n") + "\n"

	var buf bytes.Buffer
	printContentPreview(&buf, content, false)
	if !strings.Contains(buf.String(), "... (5 more lines)") {
		t.Errorf("expected truncation marker:\n%s", buf.String())
	}

	buf.Reset()
	printContentPreview(&buf, content, true)
	if strings.Count(buf.String(), "    row\n") != 15 {
		t.Errorf("verbose preview should print every line:\n%s", buf.String())
	}
}

func TestSplitLines(t *testing.T) {
	if got := splitLines(""); got != nil {
		t.Errorf("splitLines(\"\") = %v", got)
	}
	if got := splitLines("a\nb\n"); len(got) != 2 {
		t.Errorf("splitLines = %v", got)
	}
	if got := splitLines("a\nb"); len(got) != 2 {
		t.Errorf("splitLines = %v", got)
	}
}

func TestPrintJobSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintJobSummary(&buf, &csvplugin.Job{
		Name:       "people",
		Parameters: csvplugin.Parameters{Operation: "map"},
		Output:     &csvplugin.Output{Path: "out.csv"},
	})
	want := "  Job: people\n  Operation: map\n  Source: inline data\n  Output: out.csv\n"
	if buf.String() != want {
		t.Errorf("summary = %q, want %q", buf.String(), want)
	}
}

func TestPrintOperationsAndVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintOperations(&buf, []string{"filter", "map"})
	if buf.String() != "filter\nmap\n" {
		t.Errorf("operations = %q", buf.String())
	}

	buf.Reset()
	PrintVersion(&buf, csvplugin.PluginMetadata(), "1.2.3", "abc", "today")
	for _, want := range []string{"Plugin: Csv 1.0.0", "Version: 1.2.3", "Commit: abc", "Build Date: today"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, buf.String())
		}
	}
}
