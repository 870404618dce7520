// Package output provides implementations for output modules.
// Output modules are responsible for writing the records an operation
// produced to a destination.
package output

import (
	"context"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// maxPreviewBytes bounds WritePreview.ContentPreview.
const maxPreviewBytes = 2048

// Module represents an output module that writes records to a destination.
type Module interface {
	// Send writes records to the destination.
	// Returns the number of records written and any error.
	Send(ctx context.Context, records []csvplugin.Record) (int, error)

	// Close releases any resources held by the module.
	Close() error
}

// PreviewableModule is implemented by outputs that can describe a write
// without performing it, for dry-run mode.
type PreviewableModule interface {
	Module
	Preview(records []csvplugin.Record) (*csvplugin.WritePreview, error)
}

func truncatePreview(content string) string {
	if len(content) <= maxPreviewBytes {
		return content
	}
	return content[:maxPreviewBytes] + "..."
}
