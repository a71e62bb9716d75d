// Package compress provides the block codecs used by compressed package
// chunks.
//
// Package files only ever carry one real method, zlib-wrapped deflate, selected
// by format.CompressZLIB. The other method bits (LZO, LZX) are recognized by
// the format package but rejected here with errs.ErrUnsupportedCompression.
//
// # Interfaces
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Usage
//
//	codec, err := compress.CreateCodec(format.CompressZLIB)
//	if err != nil {
//	    return err
//	}
//	block, err := codec.Compress(raw)
//
// ZlibCompressor keeps its writers and readers in pools, so a single value can
// be shared by many goroutines.
package compress
