// Package compression holds the codecs used for stored article bodies.
package compression

import (
	"fmt"

	"github.com/debemdeboas/composer/internal/config"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ByName returns the compressor configured under storage.compression.
func ByName(name string) (Compressor, error) {
	switch name {
	case config.CompressionZstd:
		return ZstdCompressor{}, nil
	case config.CompressionGzip:
		return GzipCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compressor %q", name)
	}
}
