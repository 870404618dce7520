// Package input provides implementations for input modules.
// Input modules are responsible for producing the records an operation
// runs on, either from CSV files or from data passed inline.
package input

import (
	"context"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Module represents an input module that fetches records from a source.
type Module interface {
	// Fetch retrieves the records. The context can be used to cancel
	// reading many files.
	Fetch(ctx context.Context) ([]csvplugin.Record, error)
	// Close releases any resources held by the module.
	Close() error
}
