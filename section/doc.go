// Package section defines the package summary, the fixed header at the start
// of every package file, and the small records it embeds.
//
// # Summary layout
//
// All integers are little-endian. The field order is the wire format:
//
//	Tag                      u32   0x9E2A83C1
//	PackageVersion           i16
//	LicenseeVersion          i16
//	TotalHeaderSize          i32
//	FolderName               FString
//	PackageFlags             u32
//	NameCount, NameOffset    i32, i32
//	ExportCount, ExportOffset i32, i32
//	ImportCount, ImportOffset i32, i32
//	DependsOffset            i32
//	ImportExportGuidsOffset  i32
//	ImportGuidsCount         i32
//	ExportGuidsCount         i32
//	ThumbnailTableOffset     i32
//	Guid                     16 bytes
//	Generations              array of GenerationInfo
//	EngineVersion            i32
//	CookerVersion            i32
//	CompressionFlags         u32
//	CompressedChunks         array of CompressedChunk
//	PackageSource            u32
//	AdditionalPackagesToCook array of FString
//	TextureAllocations       array of TextureType
//
// The position right after the summary is recorded as Summary.OffsetEnd. It is
// the first byte of the name table in an uncompressed package and the first
// byte covered by the chunk directory in a compressed one.
package section
