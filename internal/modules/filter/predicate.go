package filter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// FilterModule keeps the records that satisfy a condition tree.
type FilterModule struct {
	root *Group
}

// NewFilterFromConfig parses the filter document and returns the module.
// Errors are those of ParseFilterSpec.
func NewFilterFromConfig(filters interface{}) (*FilterModule, error) {
	root, err := ParseFilterSpec(filters)
	if err != nil {
		return nil, err
	}
	logger.Debug("filter module initialized",
		slog.String("root_logic", root.Logic.String()),
		slog.Int("root_children", len(root.Children)),
	)
	return &FilterModule{root: root}, nil
}

// NewFilter returns a module for an already built tree.
func NewFilter(root *Group) *FilterModule {
	return &FilterModule{root: root}
}

// Root returns the parsed condition tree.
func (m *FilterModule) Root() *Group {
	return m.root
}

// Process returns the records matching the tree, in input order.
// The first evaluation error aborts the batch.
func (m *FilterModule) Process(ctx context.Context, records []csvplugin.Record) ([]csvplugin.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	result := make([]csvplugin.Record, 0, len(records))
	for i, record := range records {
		ok, err := EvaluateGroup(record, m.root)
		if err != nil {
			logger.Error("filter evaluation failed",
				slog.Int("record_index", i),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			result = append(result, record)
		}
	}

	logger.Debug("filter processing completed",
		slog.Int("input_records", len(records)),
		slog.Int("output_records", len(result)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}
