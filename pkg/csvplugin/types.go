// Package csvplugin provides the public types of the CSV plugin: the record
// model, operation parameters, job descriptions and execution results.
// It is intended to be importable by hosts that embed the plugin.
package csvplugin

import "time"

// Default parameter values.
const (
	DefaultDelimiter = ","
	FormatCSV        = "CSV"
	SourceTypeFile   = "File"
	SourceTypeInline = "Inline"
)

// Execution status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Parameters selects an operation and carries its arguments.
// Which fields are required depends on the operation:
//   - read:   none
//   - map:    Mappings
//   - filter: Filters
//   - where:  Expression
//   - script: Script or ScriptFile
type Parameters struct {
	// Operation is the operation name, matched case-insensitively
	Operation string `json:"operation" yaml:"operation"`

	// Data is inline input: CSV text, []Record, or a list of objects
	Data interface{} `json:"data,omitempty" yaml:"data,omitempty"`

	// Delimiter is the field separator (default ",")
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// IgnoreBlankLines drops rows whose cells are all empty (default true)
	IgnoreBlankLines *bool `json:"ignoreBlankLines,omitempty" yaml:"ignoreBlankLines,omitempty"`

	// HasHeader treats the first row as column names (default true)
	HasHeader *bool `json:"hasHeader,omitempty" yaml:"hasHeader,omitempty"`

	// Mappings lists the columns kept by the map operation, in output order
	Mappings []string `json:"mappings,omitempty" yaml:"mappings,omitempty"`

	// Filters is the filter document: JSON text, or an already decoded object or array
	Filters interface{} `json:"filters,omitempty" yaml:"filters,omitempty"`

	// Expression is the boolean expression of the where operation
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`

	// Script is inline JavaScript defining transform(record)
	Script string `json:"script,omitempty" yaml:"script,omitempty"`

	// ScriptFile is a path to a JavaScript file defining transform(record)
	ScriptFile string `json:"scriptFile,omitempty" yaml:"scriptFile,omitempty"`
}

// DelimiterOrDefault returns the configured delimiter or ",".
func (p Parameters) DelimiterOrDefault() string {
	if p.Delimiter == "" {
		return DefaultDelimiter
	}
	return p.Delimiter
}

// HeaderEnabled reports whether the first row is a header (default true).
func (p Parameters) HeaderEnabled() bool {
	return p.HasHeader == nil || *p.HasHeader
}

// BlankLinesIgnored reports whether empty rows are dropped (default true).
func (p Parameters) BlankLinesIgnored() bool {
	return p.IgnoreBlankLines == nil || *p.IgnoreBlankLines
}

// Job describes one run: where records come from, what to do with them and
// where the result goes.
type Job struct {
	// Name is an optional human-readable job name
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Source is the file input. When nil, Parameters.Data is used.
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Parameters selects the operation
	Parameters Parameters `json:"parameters" yaml:"parameters"`

	// Output is the optional CSV file destination
	Output *Output `json:"output,omitempty" yaml:"output,omitempty"`
}

// Source is a CSV file input.
type Source struct {
	// Path is a file path or a doublestar glob ("data/**/*.csv")
	Path string `json:"path" yaml:"path"`
}

// Output is a CSV file destination.
type Output struct {
	// Path is the destination file
	Path string `json:"path" yaml:"path"`

	// Delimiter overrides the parameters delimiter for writing
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// WriteHeader writes the header row (default true)
	WriteHeader *bool `json:"writeHeader,omitempty" yaml:"writeHeader,omitempty"`

	// Overwrite allows replacing an existing file
	Overwrite bool `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
}

// HeaderEnabled reports whether the header row is written (default true).
func (o Output) HeaderEnabled() bool {
	return o.WriteHeader == nil || *o.WriteHeader
}

// Context is the data produced by a run: the re-encoded CSV text and the
// structured records it was encoded from.
type Context struct {
	ID             string   `json:"id"`
	SourceType     string   `json:"sourceType"`
	Format         string   `json:"format"`
	Content        string   `json:"content"`
	StructuredData []Record `json:"structuredData"`
}

// Result is the outcome of a job execution.
type Result struct {
	// RunID identifies this execution
	RunID string `json:"runId"`

	// JobName is copied from the job
	JobName string `json:"jobName,omitempty"`

	// Operation is the executed operation
	Operation string `json:"operation"`

	// Status is "success" or "error"
	Status string `json:"status"`

	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`

	// RecordsRead is the number of records fetched from the source
	RecordsRead int `json:"recordsRead"`

	// RecordsWritten is the number of records produced by the operation
	RecordsWritten int `json:"recordsWritten"`

	// Context holds the produced data (nil on error)
	Context *Context `json:"context,omitempty"`

	// Error contains error details if execution failed
	Error *ExecutionError `json:"error,omitempty"`

	// DryRunPreview describes what the output would have written (dry-run only)
	DryRunPreview *WritePreview `json:"dryRunPreview,omitempty"`
}

// WritePreview describes a write that was skipped in dry-run mode.
type WritePreview struct {
	// Destination is the file path or stream name
	Destination string `json:"destination"`

	// Format is the encoding that would be used (CSV, json, yaml, msgpack)
	Format string `json:"format"`

	// Exists reports whether the destination file already exists
	Exists bool `json:"exists"`

	// RecordCount is the number of records that would be written
	RecordCount int `json:"recordCount"`

	// ContentPreview is the beginning of the encoded content
	ContentPreview string `json:"contentPreview"`
}

// ExecutionError contains details about an execution failure.
type ExecutionError struct {
	// Code is the error category
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Stage is where the error occurred (operation, read, write)
	Stage string `json:"stage,omitempty"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`
}
