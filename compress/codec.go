package compress

import (
	"fmt"

	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
)

// Compressor compresses one block.
//
// The returned slice is newly allocated and owned by the caller; the input is
// not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress inflates a single block. It returns an error if data is
	// corrupt or was produced by another algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns the codec for the method bits of flags, ignoring encoder
// hints. CompressNone yields a NoOpCompressor.
func CreateCodec(flags format.CompressionFlags) (Codec, error) {
	switch flags.Method() {
	case format.CompressNone:
		return NewNoOpCompressor(), nil
	case format.CompressZLIB:
		return defaultZlib, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, flags)
	}
}

var defaultZlib = mustZlib(DefaultLevel)

func mustZlib(level int) *ZlibCompressor {
	c, err := NewZlibCompressor(level)
	if err != nil {
		panic(fmt.Sprintf("compress: default zlib level rejected: %v", err))
	}

	return c
}
