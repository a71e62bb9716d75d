package chunk

import (
	"fmt"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/section"
)

// Tag opens every chunk header. It equals the package tag.
const Tag = section.PackageTag

// headerFixedSize is the size of the four fixed header fields.
const headerFixedSize = 16

// BlockInfo is one entry of a chunk's block table.
type BlockInfo struct {
	CompressedSize   int32
	UncompressedSize int32
}

func (b *BlockInfo) Serialize(a *archive.Archive) {
	a.Int32(&b.CompressedSize)
	a.Int32(&b.UncompressedSize)
}

// Header is the per-chunk header including its block table.
type Header struct {
	Tag              uint32
	BlockSize        int32
	CompressedSize   int32
	UncompressedSize int32
	Blocks           []BlockInfo
}

// BlockCount returns the number of blocks needed for size bytes.
func BlockCount(size, blockSize int64) int {
	if size <= 0 || blockSize <= 0 {
		return 0
	}

	return int((size + blockSize - 1) / blockSize)
}

// Size returns the serialized size of the header.
func (h *Header) Size() int64 {
	return headerFixedSize + 8*int64(len(h.Blocks))
}

// Serialize reads or writes the header. On load it rejects a bad tag or block
// size, a block table longer than the remaining data, and any block table
// whose sizes disagree with the totals.
func (h *Header) Serialize(a *archive.Archive) {
	a.Uint32(&h.Tag)
	a.Int32(&h.BlockSize)
	a.Int32(&h.CompressedSize)
	a.Int32(&h.UncompressedSize)
	if a.Err() != nil {
		return
	}
	if err := h.checkFixed(); err != nil {
		a.Fail(err)
		return
	}

	count := BlockCount(int64(h.UncompressedSize), int64(h.BlockSize))
	if a.IsLoading() && int64(count)*8 > a.Remaining() {
		a.Fail(fmt.Errorf("%w: %d blocks do not fit in %d bytes", errs.ErrInvalidChunkHeader, count, a.Remaining()))
		return
	}
	archive.SliceN(a, &h.Blocks, count, archive.Object[BlockInfo, *BlockInfo])
	if a.IsLoading() && a.Err() == nil {
		a.Fail(h.checkBlocks())
	}
}

func (h *Header) checkFixed() error {
	if h.Tag != Tag {
		return fmt.Errorf("%w: tag 0x%08X", errs.ErrInvalidChunkHeader, h.Tag)
	}
	if h.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", errs.ErrInvalidChunkHeader, h.BlockSize)
	}
	if h.CompressedSize < 0 || h.UncompressedSize < 0 {
		return fmt.Errorf("%w: sizes %d/%d", errs.ErrInvalidChunkHeader, h.CompressedSize, h.UncompressedSize)
	}

	return nil
}

func (h *Header) checkBlocks() error {
	var packed, raw int64
	last := len(h.Blocks) - 1
	for i, b := range h.Blocks {
		if b.CompressedSize < 0 || b.UncompressedSize <= 0 || b.UncompressedSize > h.BlockSize {
			return fmt.Errorf("%w: block %d sizes %d/%d", errs.ErrInvalidChunkHeader, i, b.CompressedSize, b.UncompressedSize)
		}
		if i < last && b.UncompressedSize != h.BlockSize {
			return fmt.Errorf("%w: block %d holds %d bytes, want %d", errs.ErrInvalidChunkHeader, i, b.UncompressedSize, h.BlockSize)
		}
		packed += int64(b.CompressedSize)
		raw += int64(b.UncompressedSize)
	}
	if packed != int64(h.CompressedSize) || raw != int64(h.UncompressedSize) {
		return fmt.Errorf("%w: blocks total %d/%d, header says %d/%d",
			errs.ErrInvalidChunkHeader, packed, raw, h.CompressedSize, h.UncompressedSize)
	}

	return nil
}
