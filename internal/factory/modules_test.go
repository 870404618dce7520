package factory

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/modules/filter"
	"github.com/flowsynx/plugin-csv/internal/modules/input"
	"github.com/flowsynx/plugin-csv/internal/modules/output"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

func TestCreateInputModule_Nil(t *testing.T) {
	got, err := CreateInputModule(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nil job")
	}
}

func TestCreateInputModule_File(t *testing.T) {
	job := &csvplugin.Job{
		Source:     &csvplugin.Source{Path: filepath.Join(t.TempDir(), "in.csv")},
		Parameters: csvplugin.Parameters{Operation: "read", Data: "ignored"},
	}
	got, err := CreateInputModule(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(*input.CSVFileModule); !ok {
		t.Errorf("expected *input.CSVFileModule, got %T", got)
	}
	if SourceType(job) != csvplugin.SourceTypeFile {
		t.Errorf("SourceType() = %s", SourceType(job))
	}
}

func TestCreateInputModule_Inline(t *testing.T) {
	job := &csvplugin.Job{Parameters: csvplugin.Parameters{Operation: "read", Data: "a\n1\n"}}
	got, err := CreateInputModule(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(*input.InlineModule); !ok {
		t.Errorf("expected *input.InlineModule, got %T", got)
	}
	if SourceType(job) != csvplugin.SourceTypeInline {
		t.Errorf("SourceType() = %s", SourceType(job))
	}

	_, err = CreateInputModule(&csvplugin.Job{Parameters: csvplugin.Parameters{Operation: "read"}})
	if !errors.Is(err, errhandling.ErrMissingArgument) {
		t.Errorf("expected missing_argument for missing data, got %v", err)
	}
}

func TestCreateOperation(t *testing.T) {
	got, err := CreateOperation(&csvplugin.Job{Parameters: csvplugin.Parameters{Operation: "Read"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.(*filter.ReadModule); !ok {
		t.Errorf("expected *filter.ReadModule, got %T", got)
	}

	_, err = CreateOperation(&csvplugin.Job{Parameters: csvplugin.Parameters{Operation: "pivot"}})
	if !errors.Is(err, errhandling.ErrUnsupportedOperation) {
		t.Errorf("expected unsupported_operation, got %v", err)
	}
}

func TestCreateOutputModule(t *testing.T) {
	got, err := CreateOutputModule(&csvplugin.Job{})
	if err != nil || got != nil {
		t.Fatalf("expected nil output without configuration, got %v, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	job := &csvplugin.Job{
		Parameters: csvplugin.Parameters{Delimiter: ";"},
		Output:     &csvplugin.Output{Path: path},
	}
	got, err = CreateOutputModule(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	module, ok := got.(*output.CSVFileModule)
	if !ok {
		t.Fatalf("expected *output.CSVFileModule, got %T", got)
	}
	if module.Path() != path {
		t.Errorf("Path() = %s, want %s", module.Path(), path)
	}

	_, err = CreateOutputModule(&csvplugin.Job{Output: &csvplugin.Output{}})
	if !errors.Is(err, errhandling.ErrMissingArgument) {
		t.Errorf("expected missing_argument for empty output path, got %v", err)
	}
}
