package filter

import (
	"context"
	"log/slog"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// MapModule projects every record onto a fixed list of columns.
type MapModule struct {
	columns []string
}

// NewMapFromConfig returns a projection onto columns. A nil list is a
// missing_argument error; an empty list projects every record to no columns.
func NewMapFromConfig(columns []string) (*MapModule, error) {
	if columns == nil {
		return nil, errhandling.NewMissingArgumentError("mappings")
	}
	logger.Debug("map module initialized", slog.Any("columns", columns))
	return &MapModule{columns: append([]string(nil), columns...)}, nil
}

// Columns returns the projected column names.
func (m *MapModule) Columns() []string {
	return append([]string(nil), m.columns...)
}

// Process projects each record. See Project.
func (m *MapModule) Process(ctx context.Context, records []csvplugin.Record) ([]csvplugin.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return Project(records, m.columns), nil
}

// Project returns one record per input record containing exactly columns, in
// that order. Columns a record lacks are null.
func Project(records []csvplugin.Record, columns []string) []csvplugin.Record {
	out := make([]csvplugin.Record, len(records))
	for i, r := range records {
		out[i] = r.Project(columns)
	}
	return out
}
