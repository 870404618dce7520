// Package logger provides structured logging for the CSV plugin runtime.
// It wraps log/slog so every component logs through the same handler.
//
// Run context helpers (execution start/end, stage start/end, metrics, errors)
// emit consistent snake_case field names. Two console formats are supported:
//   - JSON (default): machine-readable structured logging
//   - Human: console output with colors and status prefixes
//
// Console output goes to stderr so that stdout stays available for data.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// console is the writer used for console output.
var console io.Writer = os.Stderr

func init() {
	Logger = slog.New(newConsoleHandler(slog.LevelInfo, FormatJSON))
}

// SetLevel configures the logging level, keeping JSON console output.
func SetLevel(level slog.Level) {
	Logger = slog.New(newConsoleHandler(level, FormatJSON))
}

// SetOutput redirects console logging to w. Used by tests and embedders.
func SetOutput(w io.Writer, level slog.Level, format OutputFormat) {
	console = w
	Logger = slog.New(newConsoleHandler(level, format))
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithRun returns a logger carrying the run identifier.
func WithRun(runID string) *slog.Logger {
	return Logger.With("run_id", runID)
}

// WithModule returns a logger with module context.
func WithModule(kind string, name string) *slog.Logger {
	return Logger.With("module_kind", kind, "module_name", name)
}

// =============================================================================
// Run Context Types
// =============================================================================

// OperationContext identifies one execution of a job.
type OperationContext struct {
	// RunID is the unique identifier of this execution (required)
	RunID string
	// JobName is the human-readable job name
	JobName string
	// Operation is the operation being applied (read, map, filter, ...)
	Operation string
	// Stage is the current execution stage (read, operation, write)
	Stage string
	// Source is the input location, when the job reads from a file
	Source string
	// DryRun indicates that outputs are not written
	DryRun bool
}

// WithStage returns a copy of the context for the given stage.
func (c OperationContext) WithStage(stage string) OperationContext {
	c.Stage = stage
	return c
}

// ErrorContext holds structured context for error logging.
type ErrorContext struct {
	RunID     string
	JobName   string
	Operation string
	Stage     string

	ErrorCode    string
	ErrorMessage string
	Err          error

	// RecordIndex is the failing record position, or -1 when not applicable.
	RecordIndex int
	RecordCount int
	Path        string
	Duration    time.Duration

	Extra map[string]interface{}
}

// ExecutionMetrics contains performance metrics of one run.
type ExecutionMetrics struct {
	TotalDuration     time.Duration
	ReadDuration      time.Duration
	OperationDuration time.Duration
	WriteDuration     time.Duration
	RecordsRead       int
	RecordsWritten    int
	RecordsPerSecond  float64
}

// =============================================================================
// Run Context Helpers
// =============================================================================

// WithOperation returns a logger with the run context attached.
// Only non-empty fields are included.
func WithOperation(ctx OperationContext) *slog.Logger {
	return Logger.With(contextAttrs(ctx)...)
}

// LogExecutionStart logs the start of a job execution.
func LogExecutionStart(ctx OperationContext) {
	Logger.Info("execution started", contextAttrs(ctx)...)
}

// LogExecutionEnd logs the completion of a job execution with its final status.
func LogExecutionEnd(ctx OperationContext, status string, recordsRead, recordsWritten int, duration time.Duration) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("records_read", recordsRead),
		slog.Int("records_written", recordsWritten),
		slog.Duration("duration", duration),
	)
	Logger.Info("execution completed", attrs...)
}

// LogStageStart logs the start of a stage.
func LogStageStart(ctx OperationContext) {
	Logger.Debug("stage started", contextAttrs(ctx)...)
}

// LogStageEnd logs the end of a stage. A non-nil err is logged at error level.
func LogStageEnd(ctx OperationContext, recordCount int, duration time.Duration, err error) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("record_count", recordCount),
		slog.Duration("duration", duration),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Debug("stage completed", attrs...)
}

// LogMetrics logs execution performance metrics.
func LogMetrics(ctx OperationContext, metrics ExecutionMetrics) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.Duration("total_duration", metrics.TotalDuration),
		slog.Duration("read_duration", metrics.ReadDuration),
		slog.Duration("operation_duration", metrics.OperationDuration),
		slog.Duration("write_duration", metrics.WriteDuration),
		slog.Int("records_read", metrics.RecordsRead),
		slog.Int("records_written", metrics.RecordsWritten),
		slog.Float64("records_per_second", metrics.RecordsPerSecond),
	)
	Logger.Info("execution metrics", attrs...)
}

// LogError logs an error together with its run context and error chain.
func LogError(message string, errCtx ErrorContext) {
	attrs := contextAttrs(OperationContext{
		RunID:     errCtx.RunID,
		JobName:   errCtx.JobName,
		Operation: errCtx.Operation,
		Stage:     errCtx.Stage,
	})

	if errCtx.ErrorCode != "" {
		attrs = append(attrs, slog.String("error_code", errCtx.ErrorCode))
	}
	if errCtx.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error", errCtx.ErrorMessage))
	}
	if errCtx.Err != nil {
		attrs = append(attrs, slog.String("error_type", fmt.Sprintf("%T", errCtx.Err)))
		if chain := errorChain(errCtx.Err); len(chain) > 1 {
			attrs = append(attrs, slog.String("error_chain", strings.Join(chain, " -> ")))
		}
	}
	if errCtx.RecordIndex >= 0 {
		attrs = append(attrs, slog.Int("record_index", errCtx.RecordIndex))
	}
	if errCtx.RecordCount > 0 {
		attrs = append(attrs, slog.Int("record_count", errCtx.RecordCount))
	}
	if errCtx.Path != "" {
		attrs = append(attrs, slog.String("path", errCtx.Path))
	}
	if errCtx.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", errCtx.Duration))
	}
	for k, v := range errCtx.Extra {
		attrs = append(attrs, slog.Any(k, v))
	}

	Logger.Error(message, attrs...)
}

func errorChain(err error) []string {
	chain := []string{err.Error()}
	for cur := errors.Unwrap(err); cur != nil; cur = errors.Unwrap(cur) {
		chain = append(chain, cur.Error())
	}
	return chain
}

func contextAttrs(ctx OperationContext) []any {
	attrs := make([]any, 0, 6)
	attrs = append(attrs, slog.String("run_id", ctx.RunID))
	if ctx.JobName != "" {
		attrs = append(attrs, slog.String("job_name", ctx.JobName))
	}
	if ctx.Operation != "" {
		attrs = append(attrs, slog.String("operation", ctx.Operation))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.Source != "" {
		attrs = append(attrs, slog.String("source", ctx.Source))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	return attrs
}

// =============================================================================
// Formats and Levels
// =============================================================================

// OutputFormat represents the console log format.
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatHuman is a console format with colors and prefixes
	FormatHuman
)

// String returns the flag spelling of the format.
func (f OutputFormat) String() string {
	if f == FormatHuman {
		return "human"
	}
	return "json"
}

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "human", "text", "console":
		return FormatHuman, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q (expected json or human)", s)
	}
}

// ParseLevel maps a flag value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// SetFormat sets the console log format at info level.
func SetFormat(format OutputFormat) {
	Logger = slog.New(newConsoleHandler(slog.LevelInfo, format))
}

// SetLevelAndFormat sets both the log level and console format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	Logger = slog.New(newConsoleHandler(level, format))
}

func newConsoleHandler(level slog.Level, format OutputFormat) slog.Handler {
	if format == FormatHuman {
		return NewHumanHandler(console, &HumanHandlerOptions{
			Level:     level,
			UseColors: isTerminal(console),
		})
	}
	return slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level})
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
