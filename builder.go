package upk

import (
	"fmt"
	"math"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
	"github.com/arloliu/upk/object"
	"github.com/arloliu/upk/section"
)

// DefaultNameFlags are the object flags given to names the Builder adds.
const DefaultNameFlags = format.ObjectLoadForClient | format.ObjectLoadForServer | format.ObjectLoadForEdit

// ExportSpec describes one export for Builder.AddExport.
type ExportSpec struct {
	Name      string
	Number    int32
	Class     object.Index
	Super     object.Index
	Outer     object.Index
	Archetype object.Index
	Flags     format.ObjectFlags
	Data      []byte
}

// Builder lays out a new uncompressed package:
//
//	summary | names | imports | exports | depends | export data
//
// The depends table holds one empty list per export. TotalHeaderSize ends
// after it. A Builder always starts with the name "None".
type Builder struct {
	summary  *section.Summary
	names    *object.NameTable
	imports  []*object.Import
	exports  []*object.Export
	payloads [][]byte
}

// NewBuilder returns a builder with a default summary.
func NewBuilder() *Builder {
	b := &Builder{
		summary: section.NewSummary(),
		names:   object.NewNameTable(nil),
	}
	b.names.Add("None", DefaultNameFlags)

	return b
}

// Summary returns the summary to fill in. Counts, offsets and the compression
// fields are overwritten by Build.
func (b *Builder) Summary() *section.Summary { return b.summary }

// Name returns an FName for name with the given instance number, adding the
// name to the table when needed.
func (b *Builder) Name(name string, number int32) object.FName {
	return object.NewFName(b.names.Add(name, DefaultNameFlags), number)
}

// AddImport appends an import and returns its index.
func (b *Builder) AddImport(classPackage, className string, outer object.Index, name string) object.Index {
	b.imports = append(b.imports, &object.Import{
		ClassPackage: b.Name(classPackage, 0),
		ClassName:    b.Name(className, 0),
		OuterIndex:   outer,
		ObjectName:   b.Name(name, 0),
	})

	return object.ImportIndex(len(b.imports) - 1)
}

// AddExport appends an export and returns its index.
func (b *Builder) AddExport(spec ExportSpec) object.Index {
	b.exports = append(b.exports, &object.Export{
		ClassIndex:     spec.Class,
		SuperIndex:     spec.Super,
		OuterIndex:     spec.Outer,
		ObjectName:     b.Name(spec.Name, spec.Number),
		ArchetypeIndex: spec.Archetype,
		ObjectFlags:    spec.Flags,
	})
	b.payloads = append(b.payloads, spec.Data)

	return object.ExportIndex(len(b.exports) - 1)
}

// Build serializes the package.
//
// The summary is written first with provisional offsets, the tables and
// export data follow, and the summary is rewritten once every offset is
// known. Export sizes and offsets are patched through the export records.
func (b *Builder) Build() ([]byte, error) {
	s := b.summary
	s.NameCount = int32(b.names.Len())
	s.ImportCount = int32(len(b.imports))
	s.ExportCount = int32(len(b.exports))
	s.CompressionFlags = format.CompressNone
	s.CompressedChunks = nil
	if len(s.Generations) == 0 {
		s.Generations = []section.GenerationInfo{{ExportCount: s.ExportCount, NameCount: s.NameCount}}
	}
	for _, e := range b.exports {
		if len(e.GenerationNetObjectCount) != len(s.Generations) {
			e.GenerationNetObjectCount = make([]int32, len(s.Generations))
		}
	}

	a := archive.NewSaver()
	s.Serialize(a)

	pos := func() int32 { return int32(a.Pos()) } //nolint: gosec
	entries := b.names.Entries()
	s.NameOffset = pos()
	archive.ObjectsN(a, &entries, len(entries))
	s.ImportOffset = pos()
	archive.ObjectsN(a, &b.imports, len(b.imports))
	s.ExportOffset = pos()
	archive.ObjectsN(a, &b.exports, len(b.exports))
	s.DependsOffset = pos()
	for range b.exports {
		var none []int32
		archive.Slice(a, &none, (*archive.Archive).Int32)
	}
	s.TotalHeaderSize = pos()
	if err := a.Err(); err != nil {
		return nil, err
	}

	for i, e := range b.exports {
		data := b.payloads[i]
		if a.Len()+int64(len(data)) > math.MaxInt32 {
			return nil, fmt.Errorf("%w: package larger than 2 GiB", errs.ErrWriteFailed)
		}
		offset := a.Append(data)
		if err := e.PatchSerial(a, int32(len(data)), int32(offset)); err != nil { //nolint: gosec
			return nil, err
		}
	}

	_ = a.SeekTo(0)
	s.Serialize(a)
	if err := a.Err(); err != nil {
		return nil, err
	}

	return a.Buffer(), nil
}

// Package builds the package and loads it.
func (b *Builder) Package(opts ...LoadOption) (*Package, error) {
	data, err := b.Build()
	if err != nil {
		return nil, err
	}

	return Load(data, opts...)
}
