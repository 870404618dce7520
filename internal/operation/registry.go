// Package operation maps operation names to record transformations.
//
// # Overview
//
// Each operation registers a constructor under its name. Names are matched
// case-insensitively, so "Filter", "FILTER" and "filter" select the same
// operation. Build constructs the operation eagerly from the parameters,
// which surfaces missing arguments and malformed specifications before any
// record is read. Handle builds and runs the operation in one step.
//
// # Built-in Operations
//
// read, map, filter, where and script are registered by init() in
// builtins.go.
//
// # Adding an Operation
//
//	func init() {
//	    operation.Register("dedupe", func(p csvplugin.Parameters) (filter.Module, error) {
//	        return newDedupe(p.Mappings)
//	    })
//	}
package operation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/modules/filter"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Constructor creates an operation from parameters.
// It returns an error if a required parameter is missing or invalid.
type Constructor func(params csvplugin.Parameters) (filter.Module, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Constructor)
)

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register registers an operation constructor by name.
// Registering an existing name overwrites the previous constructor.
//
// This function is safe for concurrent use and is typically called from
// init() functions.
func Register(name string, constructor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	registry[normalize(name)] = constructor
}

// Lookup returns the constructor registered for name, or nil.
func Lookup(name string) Constructor {
	mu.RLock()
	defer mu.RUnlock()
	return registry[normalize(name)]
}

// List returns the registered operation names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the operation selected by params.Operation.
// An unregistered name is an unsupported_operation error.
func Build(params csvplugin.Parameters) (filter.Module, error) {
	constructor := Lookup(params.Operation)
	if constructor == nil {
		return nil, errhandling.NewUnsupportedOperationError(params.Operation)
	}
	return constructor(params)
}

// Handle runs the operation selected by params over records.
func Handle(ctx context.Context, records []csvplugin.Record, params csvplugin.Parameters) ([]csvplugin.Record, error) {
	module, err := Build(params)
	if err != nil {
		return nil, err
	}
	return module.Process(ctx, records)
}

// reset removes all registered constructors. Tests only.
func reset() {
	mu.Lock()
	registry = make(map[string]Constructor)
	mu.Unlock()
}
