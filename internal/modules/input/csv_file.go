package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/internal/pathutil"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// CSVFileConfig configures a file input.
type CSVFileConfig struct {
	// Path is a file path or a doublestar pattern. Matches of a pattern are
	// read in lexical order and their records concatenated.
	Path    string
	Options csvcodec.ReadOptions
}

// CSVFileModule reads records from one or more CSV files. Files compressed
// with gzip, bzip2, zstd or xz are detected by content and decompressed.
type CSVFileModule struct {
	path string
	opts csvcodec.ReadOptions
}

// NewCSVFileFromConfig validates the path and returns a file input.
func NewCSVFileFromConfig(cfg CSVFileConfig) (*CSVFileModule, error) {
	if cfg.Path == "" {
		return nil, errhandling.NewMissingArgumentError("source.path")
	}
	if err := pathutil.ValidateFilePath(cfg.Path); err != nil {
		return nil, errhandling.NewInvalidDataError("invalid source path", err)
	}
	if _, err := csvcodec.ParseDelimiter(cfg.Options.Delimiter); err != nil {
		return nil, err
	}
	if !pathutil.IsGlob(cfg.Path) && pathutil.IsDirectory(cfg.Path) {
		return nil, errhandling.NewIOError(fmt.Sprintf("source path '%s' is a directory", cfg.Path), nil)
	}
	return &CSVFileModule{path: cfg.Path, opts: cfg.Options}, nil
}

// Path returns the configured path or pattern.
func (m *CSVFileModule) Path() string {
	return m.path
}

// Fetch reads every file the path names.
func (m *CSVFileModule) Fetch(ctx context.Context) ([]csvplugin.Record, error) {
	start := time.Now()

	files, err := m.resolve()
	if err != nil {
		return nil, err
	}

	var records []csvplugin.Record
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, errhandling.ClassifyError(err)
		}
		fileRecords, err := m.readFile(file)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}

	logger.Debug("csv files read",
		slog.String("path", m.path),
		slog.Int("files", len(files)),
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)),
	)
	return records, nil
}

func (m *CSVFileModule) resolve() ([]string, error) {
	if !pathutil.IsGlob(m.path) {
		info, err := os.Stat(m.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errhandling.NewIOError(fmt.Sprintf("source file '%s' does not exist", m.path), err)
		}
		if err != nil {
			return nil, errhandling.NewIOError(fmt.Sprintf("cannot stat source file '%s'", m.path), err)
		}
		if info.IsDir() {
			return nil, errhandling.NewIOError(fmt.Sprintf("source path '%s' is a directory", m.path), nil)
		}
		return []string{m.path}, nil
	}

	matches, err := doublestar.FilepathGlob(m.path, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errhandling.NewInvalidDataError(fmt.Sprintf("invalid source pattern '%s'", m.path), err)
	}
	if len(matches) == 0 {
		return nil, errhandling.NewIOError(fmt.Sprintf("no files match '%s'", m.path), nil)
	}
	sort.Strings(matches)
	return matches, nil
}

func (m *CSVFileModule) readFile(path string) ([]csvplugin.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errhandling.NewIOError(fmt.Sprintf("cannot read source file '%s'", path), err)
	}

	data, kind, err := Decompress(data)
	if err != nil {
		return nil, errhandling.NewInvalidDataError(fmt.Sprintf("cannot decompress '%s'", path), err)
	}
	if kind != CompressionNone {
		logger.Debug("decompressed source file", slog.String("path", path), slog.String("compression", kind.String()))
	}

	records, err := csvcodec.Decode(bytes.NewReader(data), m.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Close implements Module.
func (m *CSVFileModule) Close() error {
	return nil
}

var _ Module = (*CSVFileModule)(nil)
