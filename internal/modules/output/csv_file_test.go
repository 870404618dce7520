package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

func sampleRecords() []csvplugin.Record {
	return []csvplugin.Record{
		csvplugin.FromStrings([]string{"id", "name"}, []string{"1", "Ada"}),
		csvplugin.FromStrings([]string{"id", "name"}, []string{"2", "Alan"}),
	}
}

func TestCSVFile_Send(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	m, err := NewCSVFileFromConfig(CSVFileConfig{Path: path, Options: csvcodec.DefaultWriteOptions()})
	if err != nil {
		t.Fatalf("NewCSVFileFromConfig() error = %v", err)
	}

	n, err := m.Send(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Send() = %d, want 2", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "id,name\n1,Ada\n2,Alan\n"; string(data) != want {
		t.Errorf("file content = %q, want %q", data, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected no leftover temporary files, got %d entries", len(entries))
	}
}

func TestCSVFile_SendExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := NewCSVFileFromConfig(CSVFileConfig{Path: path, Options: csvcodec.DefaultWriteOptions()})
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Send(context.Background(), sampleRecords())
	if !errhandling.IsCategory(err, errhandling.CategoryIO) {
		t.Fatalf("expected io error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists and cannot be overwritten") {
		t.Errorf("unexpected message: %v", err)
	}

	m, err = NewCSVFileFromConfig(CSVFileConfig{Path: path, Options: csvcodec.WriteOptions{Delimiter: ";"}, Overwrite: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Send(context.Background(), sampleRecords()); err != nil {
		t.Fatalf("Send() with overwrite error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "1;Ada\n2;Alan\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestCSVFile_SendEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	m, err := NewCSVFileFromConfig(CSVFileConfig{Path: path, Options: csvcodec.DefaultWriteOptions()})
	if err != nil {
		t.Fatal(err)
	}
	n, err := m.Send(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("Send() = %d, %v", n, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestCSVFile_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		cfg      CSVFileConfig
		category errhandling.ErrorCategory
	}{
		{"missing path", CSVFileConfig{}, errhandling.CategoryMissingArgument},
		{"directory path", CSVFileConfig{Path: "out/"}, errhandling.CategoryInvalidData},
		{"traversal", CSVFileConfig{Path: "../out.csv"}, errhandling.CategoryInvalidData},
		{"bad delimiter", CSVFileConfig{Path: "out.csv", Options: csvcodec.WriteOptions{Delimiter: "ab"}}, errhandling.CategoryInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVFileFromConfig(tt.cfg)
			if !errhandling.IsCategory(err, tt.category) {
				t.Errorf("expected %s error, got %v", tt.category, err)
			}
		})
	}
}

func TestCSVFile_Preview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	m, err := NewCSVFileFromConfig(CSVFileConfig{Path: path, Options: csvcodec.DefaultWriteOptions()})
	if err != nil {
		t.Fatal(err)
	}
	preview, err := m.Preview(sampleRecords())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if preview.Destination != path || preview.Exists || preview.RecordCount != 2 {
		t.Errorf("unexpected preview: %+v", preview)
	}
	if preview.ContentPreview != "id,name\n1,Ada\n2,Alan\n" {
		t.Errorf("ContentPreview = %q", preview.ContentPreview)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Preview must not create the file")
	}
}

func TestTruncatePreview(t *testing.T) {
	long := strings.Repeat("x", maxPreviewBytes+10)
	got := truncatePreview(long)
	if len(got) != maxPreviewBytes+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation length %d", len(got))
	}
	if truncatePreview("short") != "short" {
		t.Error("short content must be unchanged")
	}
}
