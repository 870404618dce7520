package filter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/internal/pathutil"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Error codes for the script module
const (
	ErrCodeScriptEmpty          = "SCRIPT_EMPTY"
	ErrCodeScriptTooLong        = "SCRIPT_TOO_LONG"
	ErrCodeCompilationFailed    = "COMPILATION_FAILED"
	ErrCodeMissingTransform     = "MISSING_TRANSFORM"
	ErrCodeExecutionFailed      = "EXECUTION_FAILED"
	ErrCodeInvalidResult        = "INVALID_RESULT"
	ErrCodeInvalidScriptFile    = "INVALID_SCRIPT_FILE"
	ErrCodeScriptFileReadFailed = "SCRIPT_FILE_READ_FAILED"
)

// MaxScriptLength is the maximum script size in bytes (100KB).
const MaxScriptLength = 100 * 1024

// ScriptConfig selects the script source. Exactly one field must be set.
type ScriptConfig struct {
	Script     string
	ScriptFile string
}

// ScriptModule rewrites records with a JavaScript function:
//
//	function transform(record) { return { name: record.name.toUpperCase() }; }
//
// The function receives the record as an object with keys in column order.
// Returning an object produces a new record with the object's keys in
// insertion order; returning null or undefined drops the record.
//
// The compiled program is shared; each Process call runs it in its own
// runtime, so a module may be used from several goroutines.
type ScriptModule struct {
	source  string
	program *goja.Program
}

// ScriptError carries structured context for script failures.
type ScriptError struct {
	Code        string
	Message     string
	RecordIndex int
	StackTrace  string
	Err         error
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Unwrap exposes the classified cause.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

func newScriptError(code, message string, recordIdx int, cause *errhandling.ClassifiedError) *ScriptError {
	return &ScriptError{Code: code, Message: message, RecordIndex: recordIdx, Err: cause}
}

// NewScriptFromConfig loads and compiles the script and checks that it
// defines a transform function.
func NewScriptFromConfig(config ScriptConfig) (*ScriptModule, error) {
	source, err := resolveScriptSource(config)
	if err != nil {
		return nil, err
	}
	if len(source) > MaxScriptLength {
		msg := fmt.Sprintf("script exceeds maximum length: %d bytes exceeds maximum %d bytes", len(source), MaxScriptLength)
		return nil, newScriptError(ErrCodeScriptTooLong, msg, -1, errhandling.NewInvalidExpressionError(msg, nil))
	}

	program, err := goja.Compile("transform.js", source, false)
	if err != nil {
		msg := fmt.Sprintf("script compilation failed: %v", err)
		return nil, newScriptError(ErrCodeCompilationFailed, msg, -1, errhandling.NewInvalidExpressionError(msg, err))
	}

	m := &ScriptModule{source: source, program: program}
	if _, _, err := m.instantiate(); err != nil {
		return nil, err
	}

	logger.Debug("script module initialized",
		slog.Int("script_length", len(source)),
		slog.Bool("from_file", config.ScriptFile != ""),
	)
	return m, nil
}

func resolveScriptSource(config ScriptConfig) (string, error) {
	hasScript := strings.TrimSpace(config.Script) != ""
	switch {
	case hasScript && config.ScriptFile != "":
		msg := "cannot specify both 'script' and 'scriptFile'"
		return "", newScriptError(ErrCodeInvalidScriptFile, msg, -1, errhandling.NewInvalidExpressionError(msg, nil))
	case hasScript:
		return config.Script, nil
	case config.ScriptFile != "":
		return readScriptFile(config.ScriptFile)
	default:
		return "", errhandling.NewMissingArgumentError("script")
	}
}

func readScriptFile(path string) (string, error) {
	if err := pathutil.ValidateFilePath(path); err != nil {
		msg := fmt.Sprintf("invalid scriptFile: %v", err)
		return "", newScriptError(ErrCodeInvalidScriptFile, msg, -1, errhandling.NewInvalidExpressionError(msg, err))
	}

	f, err := os.Open(path)
	if err != nil {
		msg := fmt.Sprintf("failed to open script file %q", path)
		return "", newScriptError(ErrCodeScriptFileReadFailed, msg, -1, errhandling.NewIOError(msg, err))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn("failed to close script file",
				slog.String("file", path),
				slog.String("error", closeErr.Error()),
			)
		}
	}()

	content, err := io.ReadAll(io.LimitReader(f, MaxScriptLength+1))
	if err != nil {
		msg := fmt.Sprintf("failed to read script file %q", path)
		return "", newScriptError(ErrCodeScriptFileReadFailed, msg, -1, errhandling.NewIOError(msg, err))
	}
	if strings.TrimSpace(string(content)) == "" {
		msg := fmt.Sprintf("script file %q is empty", path)
		return "", newScriptError(ErrCodeScriptEmpty, msg, -1, errhandling.NewInvalidExpressionError(msg, nil))
	}
	return string(content), nil
}

// instantiate runs the program in a fresh runtime and returns the transform function.
func (m *ScriptModule) instantiate() (*goja.Runtime, goja.Callable, error) {
	rt := goja.New()
	if _, err := rt.RunProgram(m.program); err != nil {
		msg := fmt.Sprintf("script initialization failed: %v", err)
		return nil, nil, newScriptError(ErrCodeCompilationFailed, msg, -1, errhandling.NewInvalidExpressionError(msg, err))
	}
	v := rt.Get("transform")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		msg := "transform function not found in script"
		return nil, nil, newScriptError(ErrCodeMissingTransform, msg, -1, errhandling.NewInvalidExpressionError(msg, nil))
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		msg := "transform is not a function"
		return nil, nil, newScriptError(ErrCodeMissingTransform, msg, -1, errhandling.NewInvalidExpressionError(msg, nil))
	}
	return rt, fn, nil
}

// Process calls transform for each record in order. A script exception or
// an invalid return value aborts the batch. Cancelling ctx interrupts a
// running script.
func (m *ScriptModule) Process(ctx context.Context, records []csvplugin.Record) ([]csvplugin.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	rt, fn, err := m.instantiate()
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rt.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	start := time.Now()
	result := make([]csvplugin.Record, 0, len(records))
	for i, record := range records {
		out, err := fn(goja.Undefined(), recordObject(rt, record))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, executionError(err, i)
		}
		transformed, keep, err := exportRecord(rt, out, i)
		if err != nil {
			return nil, err
		}
		if keep {
			result = append(result, transformed)
		}
	}

	logger.Debug("script processing completed",
		slog.Int("input_records", len(records)),
		slog.Int("output_records", len(result)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func recordObject(rt *goja.Runtime, record csvplugin.Record) *goja.Object {
	obj := rt.NewObject()
	for _, f := range record.Fields() {
		// Set only fails on frozen objects or throwing setters.
		_ = obj.Set(f.Name, f.Value.Interface())
	}
	return obj
}

func exportRecord(rt *goja.Runtime, v goja.Value, index int) (csvplugin.Record, bool, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return csvplugin.Record{}, false, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() == "Array" || obj.ClassName() == "Function" {
		msg := fmt.Sprintf("transform returned %s at record %d, expected an object, null or undefined", describe(v), index)
		return csvplugin.Record{}, false, newScriptError(ErrCodeInvalidResult, msg, index, errhandling.NewEvaluationError(msg, nil))
	}

	keys := obj.Keys()
	fields := make([]csvplugin.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, csvplugin.Field{Name: k, Value: csvplugin.ValueOf(obj.Get(k).Export())})
	}
	return csvplugin.NewRecord(fields...), true, nil
}

func describe(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		return strings.ToLower(obj.ClassName())
	}
	return fmt.Sprintf("%T", v.Export())
}

func executionError(err error, index int) error {
	msg := fmt.Sprintf("script execution failed at record %d: %v", index, err)
	se := newScriptError(ErrCodeExecutionFailed, msg, index, errhandling.NewEvaluationError(msg, err))
	if ex, ok := err.(*goja.Exception); ok {
		se.StackTrace = ex.String()
	}
	logger.Error("script execution failed",
		slog.Int("record_index", index),
		slog.String("error", err.Error()),
	)
	return se
}
