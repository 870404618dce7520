// Package runtime executes jobs: it reads the input records, applies the
// selected operation, encodes the result and writes it to the configured
// outputs.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/factory"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/internal/modules/filter"
	"github.com/flowsynx/plugin-csv/internal/modules/output"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Execution stages, reported in logs and in ExecutionError.Stage.
const (
	StageSetup     = "setup"
	StageRead      = "read"
	StageOperation = "operation"
	StageWrite     = "write"
)

// Executor runs jobs. The zero value is not usable; use NewExecutor.
type Executor struct {
	dryRun bool
	sinks  []output.Module
}

// NewExecutor creates an executor. In dry-run mode configured outputs are
// previewed instead of written.
func NewExecutor(dryRun bool) *Executor {
	return &Executor{dryRun: dryRun}
}

// WithSink adds an output that receives the produced records on every run,
// dry-run included. The CLI uses it to print records to stdout.
func (e *Executor) WithSink(sink output.Module) *Executor {
	if sink != nil {
		e.sinks = append(e.sinks, sink)
	}
	return e
}

// run carries the state of one execution.
type run struct {
	job     *csvplugin.Job
	ctx     logger.OperationContext
	result  *csvplugin.Result
	started time.Time
	metrics logger.ExecutionMetrics
}

// Execute runs job.
//
// Execution flow:
//  1. Build the operation and the output, so parameter errors surface
//     before any record is read
//  2. Fetch records from the source file or inline data
//  3. Apply the operation
//  4. Encode the records as CSV into Result.Context
//  5. Write the configured output (preview only in dry-run mode) and sinks
//
// The returned Result is never nil; on failure it carries an ExecutionError
// and the error is returned as well.
func (e *Executor) Execute(ctx context.Context, job *csvplugin.Job) (*csvplugin.Result, error) {
	r := &run{
		job:     job,
		started: time.Now(),
		result: &csvplugin.Result{
			RunID:  uuid.NewString(),
			Status: csvplugin.StatusError,
		},
	}
	r.result.StartedAt = r.started

	if job == nil {
		return r.fail(StageSetup, errhandling.NewMissingArgumentError("job"))
	}

	r.result.JobName = job.Name
	r.result.Operation = job.Parameters.Operation
	r.ctx = logger.OperationContext{
		RunID:     r.result.RunID,
		JobName:   job.Name,
		Operation: job.Parameters.Operation,
		DryRun:    e.dryRun,
	}
	if job.Source != nil {
		r.ctx.Source = job.Source.Path
	}
	logger.LogExecutionStart(r.ctx)

	operation, err := factory.CreateOperation(job)
	if err != nil {
		return r.fail(StageOperation, err)
	}
	out, err := factory.CreateOutputModule(job)
	if err != nil {
		return r.fail(StageWrite, err)
	}
	if out != nil {
		defer e.closeModule(r, "output", out)
	}

	records, err := e.read(ctx, r)
	if err != nil {
		return r.fail(StageRead, err)
	}

	records, err = e.process(ctx, r, operation, records)
	if err != nil {
		return r.fail(StageOperation, err)
	}

	if err := e.write(ctx, r, out, records); err != nil {
		return r.fail(StageWrite, err)
	}

	return r.succeed(), nil
}

func (e *Executor) read(ctx context.Context, r *run) ([]csvplugin.Record, error) {
	stageCtx := r.ctx.WithStage(StageRead)
	logger.LogStageStart(stageCtx)
	start := time.Now()

	in, err := factory.CreateInputModule(r.job)
	if err != nil {
		logger.LogStageEnd(stageCtx, 0, time.Since(start), err)
		return nil, err
	}
	records, err := in.Fetch(ctx)
	e.closeModule(r, "input", in)

	r.metrics.ReadDuration = time.Since(start)
	logger.LogStageEnd(stageCtx, len(records), r.metrics.ReadDuration, err)
	if err != nil {
		return nil, err
	}

	r.metrics.RecordsRead = len(records)
	r.result.RecordsRead = len(records)
	return records, nil
}

func (e *Executor) process(ctx context.Context, r *run, operation filter.Module, records []csvplugin.Record) ([]csvplugin.Record, error) {
	stageCtx := r.ctx.WithStage(StageOperation)
	logger.LogStageStart(stageCtx)
	start := time.Now()

	out, err := operation.Process(ctx, records)

	r.metrics.OperationDuration = time.Since(start)
	logger.LogStageEnd(stageCtx, len(out), r.metrics.OperationDuration, err)
	if err != nil {
		return nil, err
	}

	r.metrics.RecordsWritten = len(out)
	r.result.RecordsWritten = len(out)
	return out, nil
}

func (e *Executor) write(ctx context.Context, r *run, out output.Module, records []csvplugin.Record) error {
	stageCtx := r.ctx.WithStage(StageWrite)
	logger.LogStageStart(stageCtx)
	start := time.Now()

	err := e.writeRecords(ctx, r, out, records)

	r.metrics.WriteDuration = time.Since(start)
	logger.LogStageEnd(stageCtx, len(records), r.metrics.WriteDuration, err)
	return err
}

func (e *Executor) writeRecords(ctx context.Context, r *run, out output.Module, records []csvplugin.Record) error {
	content, err := csvcodec.EncodeString(records, csvcodec.WriteOptions{
		Delimiter:   r.job.Parameters.DelimiterOrDefault(),
		WriteHeader: true,
	})
	if err != nil {
		return err
	}
	r.result.Context = &csvplugin.Context{
		ID:             r.result.RunID,
		SourceType:     factory.SourceType(r.job),
		Format:         csvplugin.FormatCSV,
		Content:        content,
		StructuredData: records,
	}

	if out != nil {
		if e.dryRun {
			e.preview(r, out, records)
		} else if _, err := out.Send(ctx, records); err != nil {
			return err
		}
	}

	for i, sink := range e.sinks {
		if _, err := sink.Send(ctx, records); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}

// preview records what the output would write. Preview failures are logged
// and do not fail a dry run.
func (e *Executor) preview(r *run, out output.Module, records []csvplugin.Record) {
	previewable, ok := out.(output.PreviewableModule)
	if !ok {
		logger.Debug("output does not support preview, skipping",
			slog.String("run_id", r.result.RunID))
		return
	}
	preview, err := previewable.Preview(records)
	if err != nil {
		logger.Warn("dry-run preview failed",
			slog.String("run_id", r.result.RunID),
			slog.String("error", err.Error()))
		return
	}
	r.result.DryRunPreview = preview
	logger.Debug("dry-run: output skipped",
		slog.String("run_id", r.result.RunID),
		slog.String("destination", preview.Destination),
		slog.Int("records_would_write", preview.RecordCount),
	)
}

func (r *run) succeed() *csvplugin.Result {
	r.result.Status = csvplugin.StatusSuccess
	r.result.CompletedAt = time.Now()

	r.metrics.TotalDuration = r.result.CompletedAt.Sub(r.started)
	if seconds := r.metrics.TotalDuration.Seconds(); seconds > 0 {
		r.metrics.RecordsPerSecond = float64(r.metrics.RecordsRead) / seconds
	}
	logger.LogMetrics(r.ctx, r.metrics)
	logger.LogExecutionEnd(r.ctx, csvplugin.StatusSuccess, r.result.RecordsRead, r.result.RecordsWritten, r.metrics.TotalDuration)
	return r.result
}

func (r *run) fail(stage string, err error) (*csvplugin.Result, error) {
	r.result.CompletedAt = time.Now()
	r.result.Context = nil
	r.result.Error = buildExecutionError(stage, err)

	logger.LogError("execution failed", logger.ErrorContext{
		RunID:        r.result.RunID,
		JobName:      r.result.JobName,
		Operation:    r.result.Operation,
		Stage:        stage,
		ErrorCode:    r.result.Error.Code,
		ErrorMessage: err.Error(),
		Err:          err,
		RecordIndex:  recordIndex(err),
		RecordCount:  r.result.RecordsRead,
		Duration:     r.result.CompletedAt.Sub(r.started),
	})
	logger.LogExecutionEnd(r.ctx, csvplugin.StatusError, r.result.RecordsRead, 0, r.result.CompletedAt.Sub(r.started))
	return r.result, err
}

// buildExecutionError maps err to a result error. The code is the error
// category; module errors add their own code and record index as details.
func buildExecutionError(stage string, err error) *csvplugin.ExecutionError {
	ex := &csvplugin.ExecutionError{
		Code:    string(errhandling.GetErrorCategory(err)),
		Message: err.Error(),
		Stage:   stage,
	}
	if code, index, ok := moduleErrorDetails(err); ok {
		ex.Details = map[string]interface{}{"module_code": code}
		if index >= 0 {
			ex.Details["record_index"] = index
		}
	}
	return ex
}

type moduleCloser interface {
	Close() error
}

func (e *Executor) closeModule(r *run, name string, m moduleCloser) {
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			slog.String("run_id", r.result.RunID),
			slog.String("module", name),
			slog.String("error", err.Error()),
		)
	}
}
