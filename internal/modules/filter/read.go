package filter

import (
	"context"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// ReadModule returns its input unchanged.
type ReadModule struct{}

// NewRead returns the pass-through module.
func NewRead() *ReadModule {
	return &ReadModule{}
}

// Process returns a copy of the record slice.
func (ReadModule) Process(ctx context.Context, records []csvplugin.Record) ([]csvplugin.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return append([]csvplugin.Record{}, records...), nil
}
