package input

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const sampleCSV = "id,name\n1,Ada\n2,Alan\n"

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func xzBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"plain", []byte(sampleCSV), CompressionNone},
		{"empty", nil, CompressionNone},
		{"gzip", gzipBytes(t, sampleCSV), CompressionGzip},
		{"bzip2", []byte("BZh91AY&SY"), CompressionBzip2},
		{"zstd", zstdBytes(t, sampleCSV), CompressionZstd},
		{"xz", xzBytes(t, sampleCSV), CompressionXZ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCompression(tt.data); got != tt.want {
				t.Errorf("DetectCompression() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecompress(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"plain", []byte(sampleCSV), CompressionNone},
		{"gzip", gzipBytes(t, sampleCSV), CompressionGzip},
		{"zstd", zstdBytes(t, sampleCSV), CompressionZstd},
		{"xz", xzBytes(t, sampleCSV), CompressionXZ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, kind, err := Decompress(tt.data)
			if err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			if kind != tt.want {
				t.Errorf("kind = %s, want %s", kind, tt.want)
			}
			if string(out) != sampleCSV {
				t.Errorf("content = %q, want %q", out, sampleCSV)
			}
		})
	}
}

func TestDecompress_Truncated(t *testing.T) {
	data := gzipBytes(t, sampleCSV)
	if _, _, err := Decompress(data[:len(data)/2]); err == nil {
		t.Error("expected error for truncated gzip stream")
	}
}
