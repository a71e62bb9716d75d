package section

import "github.com/arloliu/upk/archive"

// CompressedChunk is one entry of the summary's chunk directory. Uncompressed
// offsets address the logical uncompressed file, whose first OffsetEnd bytes
// are the summary itself; compressed offsets address the file on disk.
type CompressedChunk struct {
	UncompressedOffset int32
	UncompressedSize   int32
	CompressedOffset   int32
	CompressedSize     int32
}

func (c *CompressedChunk) Serialize(a *archive.Archive) {
	a.Int32(&c.UncompressedOffset)
	a.Int32(&c.UncompressedSize)
	a.Int32(&c.CompressedOffset)
	a.Int32(&c.CompressedSize)
}

// UncompressedEnd returns the logical offset right after the chunk.
func (c CompressedChunk) UncompressedEnd() int64 {
	return int64(c.UncompressedOffset) + int64(c.UncompressedSize)
}

// CompressedEnd returns the file offset right after the chunk.
func (c CompressedChunk) CompressedEnd() int64 {
	return int64(c.CompressedOffset) + int64(c.CompressedSize)
}
