// Package filter implements the record operations of the CSV plugin:
// pass-through read, column projection, predicate filtering over a condition
// tree, expression filtering and script transforms.
//
// Every operation is a Module. Modules never modify their input records; they
// return a new slice that may share unchanged records with the input.
package filter

import (
	"context"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Module represents an operation over a batch of records.
type Module interface {
	// Process applies the operation and returns the resulting records.
	// An error aborts the whole batch; no partial result is returned.
	Process(ctx context.Context, records []csvplugin.Record) ([]csvplugin.Record, error)
}

// checkContext returns ctx.Err() when ctx is already done.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
