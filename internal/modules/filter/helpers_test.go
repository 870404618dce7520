package filter

import (
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// rec builds a record from alternating name/value pairs.
func rec(pairs ...string) csvplugin.Record {
	fields := make([]csvplugin.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields = append(fields, csvplugin.Field{Name: pairs[i], Value: csvplugin.StringValue(pairs[i+1])})
	}
	return csvplugin.NewRecord(fields...)
}

func cell(r csvplugin.Record, name string) string {
	v, _ := r.Get(name)
	return v.String()
}
