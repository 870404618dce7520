package csvcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

func cells(t *testing.T, r csvplugin.Record) []string {
	t.Helper()
	out := make([]string, 0, r.Len())
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out = append(out, v.String())
	}
	return out
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{",", ',', false},
		{";", ';', false},
		{"|", '|', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"TAB", '\t', false},
		{"::", 0, true},
		{`"`, 0, true},
		{"\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errhandling.IsCategory(err, errhandling.CategoryInvalidData))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeWithHeader(t *testing.T) {
	records, err := DecodeString("name,age\nAda,36\nAlan,41\n", DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"name", "age"}, records[0].Keys())
	assert.Equal(t, []string{"Ada", "36"}, cells(t, records[0]))
	assert.Equal(t, []string{"Alan", "41"}, cells(t, records[1]))
}

func TestDecodeWithoutHeader(t *testing.T) {
	opts := DefaultReadOptions()
	opts.HasHeader = false
	records, err := DecodeString("a,b\nc,d,e\n", opts)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Field0", "Field1"}, records[0].Keys())
	assert.Equal(t, []string{"Field0", "Field1", "Field2"}, records[1].Keys())
}

func TestDecodeRaggedRows(t *testing.T) {
	records, err := DecodeString("a,b,c\n1\n1,2,3,4\n", DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "", ""}, cells(t, records[0]))
	assert.Equal(t, []string{"1", "2", "3"}, cells(t, records[1]))
}

func TestDecodeBlankRows(t *testing.T) {
	input := "a,b\n1,2\n,\n3,4\n"

	records, err := DecodeString(input, DefaultReadOptions())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	opts := DefaultReadOptions()
	opts.IgnoreBlankLines = false
	records, err = DecodeString(input, opts)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestDecodeDelimiterAndTrim(t *testing.T) {
	opts := DefaultReadOptions()
	opts.Delimiter = ";"
	records, err := DecodeString(" id ; name \n 1 ;  x \n", opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "name"}, records[0].Keys())
	assert.Equal(t, []string{"1", "x"}, cells(t, records[0]))
}

func TestDecodeStripsBOMAndQuotes(t *testing.T) {
	records, err := DecodeString("\ufeffid,note\n1,\"a, b\"\n", DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "note"}, records[0].Keys())
	assert.Equal(t, []string{"1", "a, b"}, cells(t, records[0]))
}

func TestDecodeEmptyHeaderName(t *testing.T) {
	records, err := DecodeString("id,,x\n1,2,3\n", DefaultReadOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "Field1", "x"}, records[0].Keys())
}

func TestDecodeEmptyInput(t *testing.T) {
	records, err := DecodeString("", DefaultReadOptions())
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = DecodeString("a,b\n", DefaultReadOptions())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadOptionsFrom(t *testing.T) {
	no := false
	opts := ReadOptionsFrom(csvplugin.Parameters{Delimiter: "|", HasHeader: &no})
	assert.Equal(t, "|", opts.Delimiter)
	assert.False(t, opts.HasHeader)
	assert.True(t, opts.IgnoreBlankLines)

	opts = ReadOptionsFrom(csvplugin.Parameters{})
	assert.Equal(t, ",", opts.Delimiter)
	assert.True(t, opts.HasHeader)
}

func TestEncodeHeaderFromFirstRecord(t *testing.T) {
	records := []csvplugin.Record{
		csvplugin.FromStrings([]string{"b", "a"}, []string{"1", "2"}),
		csvplugin.FromStrings([]string{"a", "c"}, []string{"3", "4"}),
		csvplugin.NewRecord(csvplugin.Field{Name: "b", Value: csvplugin.NullValue()}),
	}
	out, err := EncodeString(records, DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, "b,a\n1,2\n,3\n,\n", out)
}

func TestEncodeOptions(t *testing.T) {
	records := []csvplugin.Record{
		csvplugin.FromStrings([]string{"id", "note"}, []string{"1", "x;y"}),
	}
	out, err := EncodeString(records, WriteOptions{Delimiter: ";", WriteHeader: false})
	require.NoError(t, err)
	assert.Equal(t, "1;\"x;y\"\n", out)
}

func TestEncodeEmpty(t *testing.T) {
	out, err := EncodeString(nil, DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, "", out)
	assert.Nil(t, Header(nil))
}

func TestRoundTrip(t *testing.T) {
	input := "id,name,city\n1,Ada,London\n2,\"Grace, Rear Admiral\",Arlington\n"
	records, err := DecodeString(input, DefaultReadOptions())
	require.NoError(t, err)
	out, err := EncodeString(records, DefaultWriteOptions())
	require.NoError(t, err)
	assert.Equal(t, input, out)
}
