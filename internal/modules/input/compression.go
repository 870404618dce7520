package input

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is the compression format of a source file.
type Compression int

// Supported compression formats.
const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionZstd
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionZstd:
		return "zstd"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression identifies the format from the leading bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Decompress returns the decompressed content of data and the detected
// format. Uncompressed data is returned as is.
func Decompress(data []byte) ([]byte, Compression, error) {
	kind := DetectCompression(data)

	var reader io.Reader
	switch kind {
	case CompressionNone:
		return data, kind, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case CompressionBzip2:
		reader = bzip2.NewReader(bytes.NewReader(data))
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, kind, fmt.Errorf("failed to decompress zstd: %w", err)
		}
		return out, kind, nil
	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xr
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, kind, fmt.Errorf("failed to decompress %s: %w", kind, err)
	}
	return out, kind, nil
}
