package chunk

import (
	"fmt"
	"io"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/compress"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/section"
)

const (
	// DefaultCacheSize is the number of inflated chunks a Reader keeps.
	DefaultCacheSize = 4
	// MaxInflateRatio bounds the uncompressed bytes a chunk may claim per
	// compressed byte. Deflate never expands data by more than 1032:1.
	MaxInflateRatio = 1032
)

type blockInflater interface {
	DecompressInto(dst, src []byte) error
}

// Reader gives random access to the logical file of a compressed package.
// Reads below the summary end are served from the file itself; reads past it
// inflate the covering chunks, which are kept in an LRU cache.
//
// A Reader is safe for concurrent use.
type Reader struct {
	src       []byte
	offsetEnd int64
	entries   []section.CompressedChunk
	codec     compress.Decompressor
	cache     *lru.Cache[int, []byte]
}

var _ io.ReaderAt = (*Reader)(nil)

// NewReader returns a reader over the compressed file src described by sum.
// The chunk directory must start at sum.OffsetEnd, be contiguous in both the
// logical and the on-disk layout, and lie inside src. No chunk may claim more
// than MaxInflateRatio times its compressed size, so nothing the directory
// says can make the reader allocate more than that multiple of src.
func NewReader(src []byte, sum *section.Summary, codec compress.Decompressor, cacheSize int) (*Reader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[int, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk cache: %w", errs.ErrInvalidOption, err)
	}

	r := &Reader{
		src:       src,
		offsetEnd: sum.OffsetEnd,
		entries:   sum.CompressedChunks,
		codec:     codec,
		cache:     cache,
	}
	if err := r.checkDirectory(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reader) checkDirectory() error {
	if len(r.entries) == 0 {
		return fmt.Errorf("%w: empty chunk directory", errs.ErrChunkBoundaryMismatch)
	}

	logical, disk := r.offsetEnd, int64(r.entries[0].CompressedOffset)
	for i, e := range r.entries {
		if int64(e.UncompressedOffset) != logical {
			return fmt.Errorf("%w: chunk %d starts at logical offset %d, want %d",
				errs.ErrChunkBoundaryMismatch, i, e.UncompressedOffset, logical)
		}
		if int64(e.CompressedOffset) != disk {
			return fmt.Errorf("%w: chunk %d starts at file offset %d, want %d",
				errs.ErrChunkBoundaryMismatch, i, e.CompressedOffset, disk)
		}
		if e.UncompressedSize <= 0 || e.CompressedSize <= 0 {
			return fmt.Errorf("%w: chunk %d sizes %d/%d",
				errs.ErrChunkBoundaryMismatch, i, e.UncompressedSize, e.CompressedSize)
		}
		if int64(e.UncompressedSize) > int64(e.CompressedSize)*MaxInflateRatio {
			return fmt.Errorf("%w: chunk %d claims %d bytes from %d compressed",
				errs.ErrInvalidChunkHeader, i, e.UncompressedSize, e.CompressedSize)
		}
		logical, disk = e.UncompressedEnd(), e.CompressedEnd()
	}
	if logical > math.MaxInt32 {
		return fmt.Errorf("%w: logical file of %d bytes", errs.ErrChunkBoundaryMismatch, logical)
	}
	if disk > int64(len(r.src)) || int64(r.entries[0].CompressedOffset) < r.offsetEnd {
		return fmt.Errorf("%w: chunks span [%d, %d) in a %d byte file",
			errs.ErrChunkBoundaryMismatch, r.entries[0].CompressedOffset, disk, len(r.src))
	}

	return nil
}

// Size returns the size of the logical file.
func (r *Reader) Size() int64 {
	return r.entries[len(r.entries)-1].UncompressedEnd()
}

// Len returns the number of chunks.
func (r *Reader) Len() int { return len(r.entries) }

// Chunk returns the inflated bytes of chunk i. The slice is shared with the
// cache and must not be modified.
func (r *Reader) Chunk(i int) ([]byte, error) {
	if i < 0 || i >= len(r.entries) {
		return nil, fmt.Errorf("%w: chunk %d of %d", errs.ErrIndexOutOfRange, i, len(r.entries))
	}
	if data, ok := r.cache.Get(i); ok {
		return data, nil
	}

	data, err := r.inflate(i)
	if err != nil {
		return nil, err
	}
	r.cache.Add(i, data)

	return data, nil
}

func (r *Reader) inflate(i int) ([]byte, error) {
	e := r.entries[i]
	a := archive.NewLoader(r.src[:e.CompressedEnd()])
	if err := a.SeekTo(int64(e.CompressedOffset)); err != nil {
		return nil, err
	}

	var h Header
	h.Serialize(a)
	if err := a.Err(); err != nil {
		return nil, fmt.Errorf("chunk %d: %w", i, err)
	}
	if h.UncompressedSize != e.UncompressedSize {
		return nil, fmt.Errorf("%w: chunk %d header holds %d bytes, directory says %d",
			errs.ErrChunkBoundaryMismatch, i, h.UncompressedSize, e.UncompressedSize)
	}

	out := make([]byte, h.UncompressedSize)
	var pos int
	for j, b := range h.Blocks {
		packed, err := a.View(a.Pos(), int64(b.CompressedSize))
		if err != nil {
			return nil, fmt.Errorf("chunk %d block %d: %w", i, j, err)
		}
		if err := r.inflateBlock(out[pos:pos+int(b.UncompressedSize)], packed); err != nil {
			return nil, fmt.Errorf("chunk %d block %d: %w", i, j, err)
		}
		_ = a.SeekTo(a.Pos() + int64(b.CompressedSize))
		pos += int(b.UncompressedSize)
	}

	if a.Pos() != e.CompressedEnd() {
		return nil, fmt.Errorf("%w: chunk %d ends at file offset %d, directory says %d",
			errs.ErrChunkBoundaryMismatch, i, a.Pos(), e.CompressedEnd())
	}

	return out, nil
}

func (r *Reader) inflateBlock(dst, packed []byte) error {
	if bi, ok := r.codec.(blockInflater); ok {
		return bi.DecompressInto(dst, packed)
	}

	raw, err := r.codec.Decompress(packed)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("%w: block inflated to %d bytes, want %d", errs.ErrInvalidChunkHeader, len(raw), len(dst))
	}
	copy(dst, raw)

	return nil
}

// find returns the chunk covering logical offset off.
func (r *Reader) find(off int64) int {
	return sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].UncompressedEnd() > off
	})
}

// ReadAt reads len(p) bytes of the logical file starting at off.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", errs.ErrSeekOutOfRange, off)
	}

	var n int
	if off < r.offsetEnd {
		n = copy(p, r.src[off:r.offsetEnd])
		off += int64(n)
	}

	for n < len(p) {
		i := r.find(off)
		if i == len(r.entries) {
			return n, io.EOF
		}
		data, err := r.Chunk(i)
		if err != nil {
			return n, err
		}
		c := copy(p[n:], data[off-int64(r.entries[i].UncompressedOffset):])
		n += c
		off += int64(c)
	}

	return n, nil
}

// Inflate returns the whole logical file: the summary bytes of src followed
// by every chunk inflated in order.
func (r *Reader) Inflate() ([]byte, error) {
	out := make([]byte, r.Size())
	copy(out, r.src[:r.offsetEnd])
	for i, e := range r.entries {
		data, err := r.Chunk(i)
		if err != nil {
			return nil, err
		}
		if copy(out[e.UncompressedOffset:], data) != len(data) {
			return nil, fmt.Errorf("%w: chunk %d overruns the logical file", errs.ErrChunkBoundaryMismatch, i)
		}
	}

	return out, nil
}
