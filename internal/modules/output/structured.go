package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Structured formats.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatCSV     = "csv"
)

// StructuredFormats lists the formats accepted by NewStructuredWriter.
var StructuredFormats = []string{FormatCSV, FormatJSON, FormatYAML, FormatMsgpack}

// StructuredWriter encodes records to a stream. Column order is preserved
// in every format.
type StructuredWriter struct {
	w      io.Writer
	format string
	csv    csvcodec.WriteOptions
}

// NewStructuredWriter returns a writer for format (case-insensitive).
func NewStructuredWriter(w io.Writer, format string) (*StructuredWriter, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case FormatJSON, FormatYAML, FormatMsgpack, FormatCSV:
	case "yml":
		f = FormatYAML
	default:
		return nil, errhandling.NewInvalidDataError(
			fmt.Sprintf("unknown output format '%s' (expected one of %s)", format, strings.Join(StructuredFormats, ", ")), nil)
	}
	return &StructuredWriter{w: w, format: f, csv: csvcodec.DefaultWriteOptions()}, nil
}

// Format returns the normalized format name.
func (s *StructuredWriter) Format() string {
	return s.format
}

// Send implements Module.
func (s *StructuredWriter) Send(ctx context.Context, records []csvplugin.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errhandling.ClassifyError(err)
	}
	if records == nil {
		records = []csvplugin.Record{}
	}

	var err error
	switch s.format {
	case FormatJSON:
		enc := json.NewEncoder(s.w)
		enc.SetIndent("", "  ")
		err = enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(s.w)
		enc.SetIndent(2)
		err = enc.Encode(records)
		if err == nil {
			err = enc.Close()
		}
	case FormatMsgpack:
		err = msgpack.NewEncoder(s.w).Encode(records)
	case FormatCSV:
		err = csvcodec.Encode(s.w, records, s.csv)
	}
	if err != nil {
		return 0, errhandling.NewIOError(fmt.Sprintf("encoding %s output", s.format), err)
	}
	return len(records), nil
}

// Close implements Module.
func (s *StructuredWriter) Close() error {
	return nil
}

var _ Module = (*StructuredWriter)(nil)
