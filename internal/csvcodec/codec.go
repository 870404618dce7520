// Package csvcodec converts between CSV text and records.
//
// Decoding is tolerant: rows may have fewer or more cells than the header,
// quotes are parsed lazily and rows the reader cannot parse are skipped and
// logged at debug level. Encoding takes its header from the first record.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

const utf8BOM = "\ufeff"

// ReadOptions controls decoding.
type ReadOptions struct {
	// Delimiter is the field separator, see ParseDelimiter
	Delimiter string
	// HasHeader treats the first row as column names. Otherwise columns are
	// named Field0, Field1, ...
	HasHeader bool
	// IgnoreBlankLines drops rows whose cells are all empty
	IgnoreBlankLines bool
	// TrimSpace trims surrounding whitespace from every cell and header
	TrimSpace bool
}

// DefaultReadOptions returns comma-separated, with header, blank rows dropped
// and cells trimmed.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Delimiter: ",", HasHeader: true, IgnoreBlankLines: true, TrimSpace: true}
}

// ReadOptionsFrom derives read options from operation parameters.
func ReadOptionsFrom(p csvplugin.Parameters) ReadOptions {
	return ReadOptions{
		Delimiter:        p.DelimiterOrDefault(),
		HasHeader:        p.HeaderEnabled(),
		IgnoreBlankLines: p.BlankLinesIgnored(),
		TrimSpace:        true,
	}
}

// WriteOptions controls encoding.
type WriteOptions struct {
	Delimiter   string
	WriteHeader bool
}

// DefaultWriteOptions returns comma-separated output with a header row.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Delimiter: ",", WriteHeader: true}
}

// ParseDelimiter returns the rune for a delimiter setting. "" means comma;
// "\t" (escaped or literal) and "tab" mean tab. Anything else must be a
// single rune other than a quote or line break.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return ',', nil
	case `\t`, "\t", "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errhandling.NewInvalidDataError(fmt.Sprintf("delimiter %q must be a single character", s), nil)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, errhandling.NewInvalidDataError(fmt.Sprintf("delimiter %q is not allowed", s), nil)
	}
	return r, nil
}

// Decode reads all records from r.
func Decode(r io.Reader, opts ReadOptions) ([]csvplugin.Record, error) {
	comma, err := ParseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		header  []string
		records []csvplugin.Record
		first   = true
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Debug("skipping malformed csv row",
					slog.Int("line", parseErr.StartLine),
					slog.String("error", parseErr.Err.Error()),
				)
				continue
			}
			return nil, errhandling.NewIOError("reading csv", err)
		}

		if first {
			first = false
			if len(row) > 0 {
				row[0] = strings.TrimPrefix(row[0], utf8BOM)
			}
			if opts.HasHeader {
				header = headerNames(row, opts.TrimSpace)
				continue
			}
		}

		if opts.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		if opts.IgnoreBlankLines && isBlank(row) {
			continue
		}

		names := header
		if !opts.HasHeader {
			names = positionalNames(len(row))
		}
		records = append(records, csvplugin.FromStrings(names, row))
	}

	return records, nil
}

// DecodeString reads all records from s.
func DecodeString(s string, opts ReadOptions) ([]csvplugin.Record, error) {
	return Decode(strings.NewReader(s), opts)
}

func headerNames(row []string, trim bool) []string {
	names := make([]string, len(row))
	for i, name := range row {
		if trim {
			name = strings.TrimSpace(name)
		}
		if name == "" {
			name = fmt.Sprintf("Field%d", i)
		}
		names[i] = name
	}
	return names
}

func positionalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Field%d", i)
	}
	return names
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// Header returns the output header: the keys of the first record.
func Header(records []csvplugin.Record) []string {
	if len(records) == 0 {
		return nil
	}
	return records[0].Keys()
}

// Encode writes records to w. The header is the first record's keys; every
// record is written by looking its cells up under those names, missing and
// null cells as "". Nothing is written for an empty slice.
func Encode(w io.Writer, records []csvplugin.Record, opts WriteOptions) error {
	comma, err := ParseDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}
	header := Header(records)
	if header == nil {
		return nil
	}

	writer := csv.NewWriter(w)
	writer.Comma = comma

	if opts.WriteHeader {
		if err := writer.Write(header); err != nil {
			return errhandling.NewIOError("writing csv header", err)
		}
	}

	row := make([]string, len(header))
	for _, record := range records {
		for i, name := range header {
			v, _ := record.Get(name)
			row[i] = v.String()
		}
		if err := writer.Write(row); err != nil {
			return errhandling.NewIOError("writing csv row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errhandling.NewIOError("flushing csv", err)
	}
	return nil
}

// EncodeString returns the CSV text of records.
func EncodeString(records []csvplugin.Record, opts WriteOptions) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, records, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
