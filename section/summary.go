package section

import (
	"fmt"
	"slices"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/endian"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
)

const (
	// PackageTag is the magic number at offset 0 of every package.
	PackageTag uint32 = 0x9E2A83C1

	DefaultPackageVersion  int16 = 868
	DefaultLicenseeVersion int16 = 0
	DefaultEngineVersion   int32 = 8788
	DefaultCookerVersion   int32 = 0
)

// Guid is a 128-bit identifier stored as four little-endian 32-bit words.
type Guid struct {
	A, B, C, D uint32
}

// IsZero reports whether all words are zero.
func (g Guid) IsZero() bool {
	return g == Guid{}
}

func (g Guid) String() string {
	return fmt.Sprintf("%08X%08X%08X%08X", g.A, g.B, g.C, g.D)
}

// GenerationInfo records table sizes of an earlier save of the package.
type GenerationInfo struct {
	ExportCount    int32
	NameCount      int32
	NetObjectCount int32
}

func (g *GenerationInfo) Serialize(a *archive.Archive) {
	a.Int32(&g.ExportCount)
	a.Int32(&g.NameCount)
	a.Int32(&g.NetObjectCount)
}

// TextureType groups exports that share a texture allocation footprint.
type TextureType struct {
	SizeX          int32
	SizeY          int32
	NumMips        int32
	Format         uint32
	TexCreateFlags uint32
	ExportIndices  []int32
}

func (t *TextureType) Serialize(a *archive.Archive) {
	a.Int32(&t.SizeX)
	a.Int32(&t.SizeY)
	a.Int32(&t.NumMips)
	a.Uint32(&t.Format)
	a.Uint32(&t.TexCreateFlags)
	archive.Slice(a, &t.ExportIndices, (*archive.Archive).Int32)
}

// Summary is the package file header.
type Summary struct {
	Tag                      uint32
	PackageVersion           int16
	LicenseeVersion          int16
	TotalHeaderSize          int32
	FolderName               string
	PackageFlags             format.PackageFlags
	NameCount                int32
	NameOffset               int32
	ExportCount              int32
	ExportOffset             int32
	ImportCount              int32
	ImportOffset             int32
	DependsOffset            int32
	ImportExportGuidsOffset  int32
	ImportGuidsCount         int32
	ExportGuidsCount         int32
	ThumbnailTableOffset     int32
	Guid                     Guid
	Generations              []GenerationInfo
	EngineVersion            int32
	CookerVersion            int32
	CompressionFlags         format.CompressionFlags
	CompressedChunks         []CompressedChunk
	PackageSource            uint32
	AdditionalPackagesToCook []string
	TextureAllocations       []TextureType

	// OffsetEnd is the position right after the summary. Not serialized.
	OffsetEnd int64
}

// NewSummary returns a summary with the tag and default version numbers set.
func NewSummary() *Summary {
	return &Summary{
		Tag:             PackageTag,
		PackageVersion:  DefaultPackageVersion,
		LicenseeVersion: DefaultLicenseeVersion,
		FolderName:      "None",
		EngineVersion:   DefaultEngineVersion,
		CookerVersion:   DefaultCookerVersion,
	}
}

// Serialize reads or writes the summary. On load the tag is checked first: a
// byte-swapped tag fails with errs.ErrUnsupportedEndianness and any other
// mismatch with errs.ErrUnrecognizedFormat, before any other field is read.
func (s *Summary) Serialize(a *archive.Archive) {
	a.Uint32(&s.Tag)
	if a.IsLoading() && a.Err() == nil {
		switch endian.Classify(s.Tag, PackageTag) {
		case endian.Little:
		case endian.Swapped:
			a.Fail(fmt.Errorf("%w: tag 0x%08X", errs.ErrUnsupportedEndianness, s.Tag))
			return
		default:
			a.Fail(fmt.Errorf("%w: tag 0x%08X", errs.ErrUnrecognizedFormat, s.Tag))
			return
		}
	}

	a.Int16(&s.PackageVersion)
	a.Int16(&s.LicenseeVersion)
	a.Int32(&s.TotalHeaderSize)
	a.String(&s.FolderName)
	archive.Fixed(a, &s.PackageFlags)
	a.Int32(&s.NameCount)
	a.Int32(&s.NameOffset)
	a.Int32(&s.ExportCount)
	a.Int32(&s.ExportOffset)
	a.Int32(&s.ImportCount)
	a.Int32(&s.ImportOffset)
	a.Int32(&s.DependsOffset)
	a.Int32(&s.ImportExportGuidsOffset)
	a.Int32(&s.ImportGuidsCount)
	a.Int32(&s.ExportGuidsCount)
	a.Int32(&s.ThumbnailTableOffset)
	archive.Fixed(a, &s.Guid)
	archive.Slice(a, &s.Generations, archive.Object[GenerationInfo, *GenerationInfo])
	a.Int32(&s.EngineVersion)
	a.Int32(&s.CookerVersion)
	archive.Fixed(a, &s.CompressionFlags)
	archive.Slice(a, &s.CompressedChunks, archive.Object[CompressedChunk, *CompressedChunk])
	a.Uint32(&s.PackageSource)
	archive.Slice(a, &s.AdditionalPackagesToCook, (*archive.Archive).String)
	archive.Slice(a, &s.TextureAllocations, archive.Object[TextureType, *TextureType])

	s.OffsetEnd = a.Pos()
}

// IsCompressed reports whether the package data after the summary is stored
// as compressed chunks.
func (s *Summary) IsCompressed() bool {
	return s.CompressionFlags.IsCompressed()
}

// Validate checks counts and table offsets against the size of the
// uncompressed package.
func (s *Summary) Validate(fileSize int64) error {
	tables := []struct {
		name          string
		count, offset int32
	}{
		{"name", s.NameCount, s.NameOffset},
		{"import", s.ImportCount, s.ImportOffset},
		{"export", s.ExportCount, s.ExportOffset},
	}
	for _, t := range tables {
		if t.count < 0 {
			return fmt.Errorf("%w: %s count %d", errs.ErrInvalidCount, t.name, t.count)
		}
		if t.count == 0 {
			continue
		}
		if int64(t.offset) < s.OffsetEnd || int64(t.offset) >= fileSize {
			return fmt.Errorf("%w: %s table offset %d outside [%d, %d)", errs.ErrFormat, t.name, t.offset, s.OffsetEnd, fileSize)
		}
	}

	return nil
}

// Size returns the serialized size of the summary.
func (s *Summary) Size() (int64, error) {
	w := archive.NewSaver()
	c := s.Clone()
	c.Serialize(w)
	if err := w.Err(); err != nil {
		return 0, err
	}

	return w.Len(), nil
}

// Relocate shifts every absolute file offset in the summary by delta.
// Offsets of zero mean "absent" and are left alone.
func (s *Summary) Relocate(delta int32) {
	for _, p := range []*int32{
		&s.TotalHeaderSize,
		&s.NameOffset,
		&s.ExportOffset,
		&s.ImportOffset,
		&s.DependsOffset,
		&s.ImportExportGuidsOffset,
		&s.ThumbnailTableOffset,
	} {
		if *p > 0 {
			*p += delta
		}
	}
}

// Clone returns a deep copy of the summary.
func (s *Summary) Clone() *Summary {
	c := *s
	c.Generations = slices.Clone(s.Generations)
	c.CompressedChunks = slices.Clone(s.CompressedChunks)
	c.AdditionalPackagesToCook = slices.Clone(s.AdditionalPackagesToCook)
	c.TextureAllocations = make([]TextureType, len(s.TextureAllocations))
	for i, t := range s.TextureAllocations {
		t.ExportIndices = slices.Clone(t.ExportIndices)
		c.TextureAllocations[i] = t
	}
	if s.TextureAllocations == nil {
		c.TextureAllocations = nil
	}

	return &c
}
