package chunk

import (
	"fmt"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/compress"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/internal/pool"
	"github.com/arloliu/upk/section"
)

// Writer writes chunks through a saving archive.
type Writer struct {
	BlockSize int
	Codec     compress.Compressor
}

// NewWriter returns a writer with the default block size.
func NewWriter(codec compress.Compressor) *Writer {
	return &Writer{BlockSize: DefaultBlockSize, Codec: codec}
}

// WriteChunk writes data as one chunk at the cursor of a and returns the
// number of bytes written, header included.
func (w *Writer) WriteChunk(a *archive.Archive, data []byte) (int64, error) {
	if w.BlockSize <= 0 {
		return 0, fmt.Errorf("%w: block size %d", errs.ErrInvalidOption, w.BlockSize)
	}

	start := a.Pos()
	tag, blockSize, raw := Tag, int32(w.BlockSize), int32(len(data)) //nolint: gosec
	a.Uint32(&tag)
	a.Int32(&blockSize)
	total := archive.Reserve[int32](a)
	a.Int32(&raw)

	count := BlockCount(int64(len(data)), int64(w.BlockSize))
	sizes := make([]archive.Placeholder[int32], count)
	for i := range count {
		sizes[i] = archive.Reserve[int32](a)
		n := int32(min(w.BlockSize, len(data)-i*w.BlockSize)) //nolint: gosec
		a.Int32(&n)
	}
	if err := a.Err(); err != nil {
		return 0, err
	}

	packed := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(packed)

	var sum int32
	for i := range count {
		block := data[i*w.BlockSize : min((i+1)*w.BlockSize, len(data))]
		out, err := w.Codec.Compress(block)
		if err != nil {
			return 0, fmt.Errorf("block %d: %w", i, err)
		}
		_, _ = packed.Write(out)
		sizes[i].Commit(a, int32(len(out))) //nolint: gosec
		sum += int32(len(out))              //nolint: gosec
	}
	total.Commit(a, sum)
	a.Raw(packed.Bytes())
	if err := a.Err(); err != nil {
		return 0, err
	}

	return a.Pos() - start, nil
}

// WriteAll writes one chunk per directory entry, taking each entry's bytes
// from the logical image, and fills in the entries' compressed offset and
// size. Chunks are written back to back from the cursor of a.
func (w *Writer) WriteAll(a *archive.Archive, logical []byte, entries []section.CompressedChunk) error {
	for i := range entries {
		e := &entries[i]
		if e.UncompressedOffset < 0 || e.UncompressedEnd() > int64(len(logical)) {
			return fmt.Errorf("%w: chunk %d range [%d, %d) outside %d bytes",
				errs.ErrChunkBoundaryMismatch, i, e.UncompressedOffset, e.UncompressedEnd(), len(logical))
		}

		off := a.Pos()
		n, err := w.WriteChunk(a, logical[e.UncompressedOffset:e.UncompressedEnd()])
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		e.CompressedOffset = int32(off) //nolint: gosec
		e.CompressedSize = int32(n)     //nolint: gosec
	}

	return nil
}
