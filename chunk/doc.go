// Package chunk implements the compressed chunk layout of package files.
//
// A compressed package keeps its summary uncompressed. Everything after the
// summary (tables and export data) is split into chunks, each stored as
//
//	Tag              u32  0x9E2A83C1
//	BlockSize        i32  nominal uncompressed size of a block
//	CompressedSize   i32  sum of the blocks' compressed sizes
//	UncompressedSize i32  sum of the blocks' uncompressed sizes
//	Blocks           {CompressedSize i32, UncompressedSize i32} per block
//	Data             one zlib stream per block, in order
//
// The number of blocks is not stored; it follows from UncompressedSize and
// BlockSize. Every block except the last holds exactly BlockSize bytes.
//
// The summary's chunk directory maps each chunk's range in the logical
// (uncompressed) file to its span on disk, header included. Partition decides
// the ranges, Writer produces the on-disk form and Reader inflates it back,
// either one chunk at a time or through io.ReaderAt.
package chunk
