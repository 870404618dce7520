// Package factory creates the modules of a job: the input that produces
// records, the operation that transforms them and the optional output that
// writes them.
package factory

import (
	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/modules/filter"
	"github.com/flowsynx/plugin-csv/internal/modules/input"
	"github.com/flowsynx/plugin-csv/internal/modules/output"
	"github.com/flowsynx/plugin-csv/internal/operation"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// SourceType reports where a job reads from: File when a source path is
// configured, Inline otherwise.
func SourceType(job *csvplugin.Job) string {
	if job != nil && job.Source != nil && job.Source.Path != "" {
		return csvplugin.SourceTypeFile
	}
	return csvplugin.SourceTypeInline
}

// CreateInputModule creates the input for job. Returns nil for a nil job.
func CreateInputModule(job *csvplugin.Job) (input.Module, error) {
	if job == nil {
		return nil, nil
	}

	opts := csvcodec.ReadOptionsFrom(job.Parameters)
	if SourceType(job) == csvplugin.SourceTypeFile {
		return input.NewCSVFileFromConfig(input.CSVFileConfig{Path: job.Source.Path, Options: opts})
	}
	return input.NewInline(job.Parameters.Data, opts)
}

// CreateOperation creates the operation selected by the job parameters.
func CreateOperation(job *csvplugin.Job) (filter.Module, error) {
	if job == nil {
		return nil, nil
	}
	return operation.Build(job.Parameters)
}

// CreateOutputModule creates the CSV file output for job.
// Returns nil when the job has no output configured.
func CreateOutputModule(job *csvplugin.Job) (output.Module, error) {
	if job == nil || job.Output == nil {
		return nil, nil
	}

	delimiter := job.Output.Delimiter
	if delimiter == "" {
		delimiter = job.Parameters.DelimiterOrDefault()
	}
	return output.NewCSVFileFromConfig(output.CSVFileConfig{
		Path: job.Output.Path,
		Options: csvcodec.WriteOptions{
			Delimiter:   delimiter,
			WriteHeader: job.Output.HeaderEnabled(),
		},
		Overwrite: job.Output.Overwrite,
	})
}
