package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/upk/errs"
)

// DefaultLevel is the deflate level used when none is configured.
const DefaultLevel = zlib.DefaultCompression

// ZlibCompressor compresses blocks as zlib streams (RFC 1950), the format the
// engine writes into every compressed chunk.
//
// Writers and readers are pooled: the klauspost implementation allocates its
// hash tables on construction and is designed to be Reset and reused.
type ZlibCompressor struct {
	level   int
	writers sync.Pool
	readers sync.Pool
}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor returns a compressor at the given deflate level, from
// zlib.HuffmanOnly to zlib.BestCompression.
func NewZlibCompressor(level int) (*ZlibCompressor, error) {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		return nil, fmt.Errorf("%w: zlib level %d", errs.ErrInvalidOption, level)
	}

	return &ZlibCompressor{level: level}, nil
}

// Level returns the configured deflate level.
func (c *ZlibCompressor) Level() int { return c.level }

// Compress deflates data into a complete zlib stream.
func (c *ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data)/2 + 64)

	w, ok := c.writers.Get().(*zlib.Writer)
	if ok {
		w.Reset(&out)
	} else {
		var err error
		if w, err = zlib.NewWriterLevel(&out, c.level); err != nil {
			return nil, fmt.Errorf("zlib writer: %w", err)
		}
	}
	defer c.writers.Put(w)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}

	return out.Bytes(), nil
}

// Decompress inflates a single zlib stream. Trailing bytes after the stream
// are ignored.
func (c *ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := c.inflate(&out, data); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// DecompressInto inflates data into dst, which must be exactly the size of
// the uncompressed block.
func (c *ZlibCompressor) DecompressInto(dst, data []byte) error {
	w := fixedWriter{buf: dst}
	if err := c.inflate(&w, data); err != nil {
		return err
	}
	if w.n != len(dst) {
		return fmt.Errorf("%w: zlib block inflated to %d bytes, want %d", errs.ErrInvalidChunkHeader, w.n, len(dst))
	}

	return nil
}

func (c *ZlibCompressor) inflate(dst io.Writer, data []byte) error {
	src := bytes.NewReader(data)

	r, ok := c.readers.Get().(io.ReadCloser)
	if ok {
		if err := r.(zlib.Resetter).Reset(src, nil); err != nil {
			c.readers.Put(r)
			return fmt.Errorf("%w: zlib header: %w", errs.ErrFormat, err)
		}
	} else {
		var err error
		if r, err = zlib.NewReader(src); err != nil {
			return fmt.Errorf("%w: zlib header: %w", errs.ErrFormat, err)
		}
	}
	defer c.readers.Put(r)

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("%w: zlib inflate: %w", errs.ErrFormat, err)
	}

	return r.Close()
}

// fixedWriter writes into a preallocated slice and fails on overflow.
type fixedWriter struct {
	buf []byte
	n   int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		return 0, fmt.Errorf("%w: zlib block larger than %d bytes", errs.ErrInvalidChunkHeader, len(w.buf))
	}
	w.n += copy(w.buf[w.n:], p)

	return len(p), nil
}
