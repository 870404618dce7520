package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/internal/pathutil"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// CSVFileConfig configures a CSV file output.
type CSVFileConfig struct {
	Path      string
	Options   csvcodec.WriteOptions
	Overwrite bool
}

// CSVFileModule writes records as CSV to a single file. The file is written
// to a temporary sibling and renamed into place.
type CSVFileModule struct {
	path      string
	opts      csvcodec.WriteOptions
	overwrite bool
}

// NewCSVFileFromConfig validates the destination and returns a file output.
func NewCSVFileFromConfig(cfg CSVFileConfig) (*CSVFileModule, error) {
	if cfg.Path == "" {
		return nil, errhandling.NewMissingArgumentError("output.path")
	}
	if err := pathutil.ValidateFilePath(cfg.Path); err != nil {
		return nil, errhandling.NewInvalidDataError("invalid output path", err)
	}
	if !pathutil.IsFile(cfg.Path) {
		return nil, errhandling.NewInvalidDataError(fmt.Sprintf("output path '%s' must name a file", cfg.Path), nil)
	}
	if _, err := csvcodec.ParseDelimiter(cfg.Options.Delimiter); err != nil {
		return nil, err
	}
	return &CSVFileModule{path: cfg.Path, opts: cfg.Options, overwrite: cfg.Overwrite}, nil
}

// Path returns the destination path.
func (m *CSVFileModule) Path() string {
	return m.path
}

// Send implements Module.
func (m *CSVFileModule) Send(ctx context.Context, records []csvplugin.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errhandling.ClassifyError(err)
	}
	start := time.Now()

	exists, err := m.exists()
	if err != nil {
		return 0, err
	}
	if exists && !m.overwrite {
		return 0, errhandling.NewIOError(fmt.Sprintf("file '%s' already exists and cannot be overwritten", m.path), nil)
	}

	content, err := csvcodec.EncodeString(records, m.opts)
	if err != nil {
		return 0, err
	}
	if err := writeAtomic(m.path, []byte(content)); err != nil {
		return 0, err
	}

	logger.Debug("csv file written",
		slog.String("path", m.path),
		slog.Int("records", len(records)),
		slog.Bool("replaced", exists),
		slog.Duration("duration", time.Since(start)),
	)
	return len(records), nil
}

// Preview implements PreviewableModule.
func (m *CSVFileModule) Preview(records []csvplugin.Record) (*csvplugin.WritePreview, error) {
	exists, err := m.exists()
	if err != nil {
		return nil, err
	}
	content, err := csvcodec.EncodeString(records, m.opts)
	if err != nil {
		return nil, err
	}
	return &csvplugin.WritePreview{
		Destination:    m.path,
		Format:         csvplugin.FormatCSV,
		Exists:         exists,
		RecordCount:    len(records),
		ContentPreview: truncatePreview(content),
	}, nil
}

func (m *CSVFileModule) exists() (bool, error) {
	info, err := os.Stat(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errhandling.NewIOError(fmt.Sprintf("cannot stat output file '%s'", m.path), err)
	}
	if info.IsDir() {
		return false, errhandling.NewIOError(fmt.Sprintf("output path '%s' is a directory", m.path), nil)
	}
	return true, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errhandling.NewIOError(fmt.Sprintf("cannot create directory '%s'", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errhandling.NewIOError("cannot create temporary file", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errhandling.NewIOError(fmt.Sprintf("cannot write '%s'", path), err)
	}
	if err := tmp.Close(); err != nil {
		return errhandling.NewIOError(fmt.Sprintf("cannot write '%s'", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errhandling.NewIOError(fmt.Sprintf("cannot replace '%s'", path), err)
	}
	return nil
}

// Close implements Module.
func (m *CSVFileModule) Close() error {
	return nil
}

var _ PreviewableModule = (*CSVFileModule)(nil)
