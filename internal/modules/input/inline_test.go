package input

import (
	"context"
	"testing"

	"github.com/flowsynx/plugin-csv/internal/csvcodec"
	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

func TestInline_Fetch(t *testing.T) {
	ordered := csvplugin.FromStrings([]string{"z", "a"}, []string{"1", "2"})

	tests := []struct {
		name     string
		data     interface{}
		wantLen  int
		wantKeys []string
	}{
		{"csv text", sampleCSV, 2, []string{"id", "name"}},
		{"csv bytes", []byte(sampleCSV), 2, []string{"id", "name"}},
		{"records", []csvplugin.Record{ordered}, 1, []string{"z", "a"}},
		{"maps", []map[string]interface{}{{"b": 1, "a": "x"}}, 1, []string{"a", "b"}},
		{"decoded json", []interface{}{map[string]interface{}{"y": true, "x": nil}, ordered}, 2, []string{"x", "y"}},
		{"empty list", []interface{}{}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewInline(tt.data, csvcodec.DefaultReadOptions())
			if err != nil {
				t.Fatalf("NewInline() error = %v", err)
			}
			records, err := m.Fetch(context.Background())
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if len(records) != tt.wantLen {
				t.Fatalf("expected %d records, got %d", tt.wantLen, len(records))
			}
			if tt.wantLen == 0 {
				return
			}
			keys := records[0].Keys()
			if len(keys) != len(tt.wantKeys) {
				t.Fatalf("keys = %v, want %v", keys, tt.wantKeys)
			}
			for i := range keys {
				if keys[i] != tt.wantKeys[i] {
					t.Errorf("keys = %v, want %v", keys, tt.wantKeys)
					break
				}
			}
		})
	}
}

func TestInline_NullCells(t *testing.T) {
	m, err := NewInline([]interface{}{map[string]interface{}{"a": nil}}, csvcodec.DefaultReadOptions())
	if err != nil {
		t.Fatal(err)
	}
	records, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := records[0].Get("a"); !ok || !v.IsNull() {
		t.Errorf("expected null cell, got %v (present=%v)", v, ok)
	}
}

func TestInline_Errors(t *testing.T) {
	if _, err := NewInline(nil, csvcodec.DefaultReadOptions()); !errhandling.IsCategory(err, errhandling.CategoryMissingArgument) {
		t.Errorf("nil data: expected missing_argument, got %v", err)
	}

	for name, data := range map[string]interface{}{
		"number":        42,
		"list of texts": []interface{}{"a", "b"},
	} {
		t.Run(name, func(t *testing.T) {
			m, err := NewInline(data, csvcodec.DefaultReadOptions())
			if err != nil {
				t.Fatal(err)
			}
			if _, err := m.Fetch(context.Background()); !errhandling.IsCategory(err, errhandling.CategoryInvalidData) {
				t.Errorf("expected invalid_data, got %v", err)
			}
		})
	}
}
