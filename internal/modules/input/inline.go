package input

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// InlineModule produces records from data passed with the parameters.
// Supported data:
//   - string or []byte: CSV text, decoded with the read options
//   - []csvplugin.Record: used as is
//   - []map[string]interface{} or []interface{} of objects: one record per
//     object, columns in sorted key order
type InlineModule struct {
	data interface{}
	opts csvcodec.ReadOptions
}

// NewInline returns an inline input. A nil data is a missing_argument error.
func NewInline(data interface{}, opts csvcodec.ReadOptions) (*InlineModule, error) {
	if data == nil {
		return nil, errhandling.NewMissingArgumentError("data")
	}
	return &InlineModule{data: data, opts: opts}, nil
}

// Fetch implements Module.
func (m *InlineModule) Fetch(_ context.Context) ([]csvplugin.Record, error) {
	records, err := m.records()
	if err != nil {
		return nil, err
	}
	logger.Debug("inline data read", slog.Int("records", len(records)))
	return records, nil
}

func (m *InlineModule) records() ([]csvplugin.Record, error) {
	switch data := m.data.(type) {
	case string:
		return csvcodec.DecodeString(data, m.opts)
	case []byte:
		return csvcodec.DecodeString(string(data), m.opts)
	case []csvplugin.Record:
		out := make([]csvplugin.Record, len(data))
		copy(out, data)
		return out, nil
	case []map[string]interface{}:
		out := make([]csvplugin.Record, len(data))
		for i, obj := range data {
			out[i] = fromObject(obj)
		}
		return out, nil
	case []interface{}:
		out := make([]csvplugin.Record, len(data))
		for i, item := range data {
			switch v := item.(type) {
			case csvplugin.Record:
				out[i] = v
			case map[string]interface{}:
				out[i] = fromObject(v)
			default:
				return nil, errhandling.NewInvalidDataError(
					fmt.Sprintf("data[%d]: expected an object, got %T", i, item), nil)
			}
		}
		return out, nil
	default:
		return nil, errhandling.NewInvalidDataError(fmt.Sprintf("unsupported data type %T", m.data), nil)
	}
}

func fromObject(obj map[string]interface{}) csvplugin.Record {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return csvplugin.FromMap(obj, keys)
}

// Close implements Module.
func (m *InlineModule) Close() error {
	return nil
}

var _ Module = (*InlineModule)(nil)
