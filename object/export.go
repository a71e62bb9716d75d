package object

import (
	"fmt"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/format"
	"github.com/arloliu/upk/section"
)

// Export is an object whose serialized data lives in this package.
type Export struct {
	resource

	ClassIndex               Index
	SuperIndex               Index
	OuterIndex               Index
	ObjectName               FName
	ArchetypeIndex           Index
	ObjectFlags              format.ObjectFlags
	SerialSize               int32
	SerialOffset             int32
	ExportFlags              uint32
	GenerationNetObjectCount []int32
	PackageGuid              section.Guid
	PackageFlags             format.PackageFlags

	class      Resource
	super      Resource
	archetype  Resource
	sizeSlot   archive.Placeholder[int32]
	offsetSlot archive.Placeholder[int32]
}

var _ Resource = (*Export)(nil)

func (e *Export) Serialize(a *archive.Archive) {
	e.tableOffset = a.Pos()
	e.ClassIndex.Serialize(a)
	e.SuperIndex.Serialize(a)
	e.OuterIndex.Serialize(a)
	e.ObjectName.Serialize(a)
	e.ArchetypeIndex.Serialize(a)
	archive.Fixed(a, &e.ObjectFlags)
	e.sizeSlot = archive.Mark[int32](a)
	a.Int32(&e.SerialSize)
	e.offsetSlot = archive.Mark[int32](a)
	a.Int32(&e.SerialOffset)
	a.Uint32(&e.ExportFlags)
	archive.Slice(a, &e.GenerationNetObjectCount, (*archive.Archive).Int32)
	archive.Fixed(a, &e.PackageGuid)
	archive.Fixed(a, &e.PackageFlags)
}

func (e *Export) Name() FName { return e.ObjectName }
func (e *Export) OuterRef() Index { return e.OuterIndex }
func (e *Export) FullName() string { return fullName(e) }
func (e *Export) String() string { return describe(e) }

// Class returns the name of the export's class, or "Class" for an export
// with no class (a class definition itself).
func (e *Export) Class() string {
	if e.class == nil {
		return "Class"
	}

	return e.class.Name().String()
}

// ClassObject returns the resolved class resource.
func (e *Export) ClassObject() Resource { return e.class }

// Super returns the resolved super struct, if any.
func (e *Export) Super() Resource { return e.super }

// Archetype returns the resolved archetype, if any.
func (e *Export) Archetype() Resource { return e.archetype }

// SerialEnd returns the file offset right after the export's data.
func (e *Export) SerialEnd() int64 {
	return int64(e.SerialOffset) + int64(e.SerialSize)
}

// SerialOffsetSlot returns the position of the SerialOffset field in the
// archive the record was last serialized through.
func (e *Export) SerialOffsetSlot() archive.Placeholder[int32] { return e.offsetSlot }

// Covers reports whether offset falls inside the export's data.
func (e *Export) Covers(offset int64) bool {
	return e.SerialSize > 0 && offset >= int64(e.SerialOffset) && offset < e.SerialEnd()
}

// PatchSerial rewrites SerialSize and SerialOffset in place at the positions
// the export record occupies in a, which must be saving and must be the
// archive the record was last serialized through.
func (e *Export) PatchSerial(a *archive.Archive, size, offset int32) error {
	e.sizeSlot.Commit(a, size)
	e.offsetSlot.Commit(a, offset)
	if err := a.Err(); err != nil {
		return fmt.Errorf("patch export %d: %w", e.index.ExportSlot(), err)
	}
	e.SerialSize = size
	e.SerialOffset = offset

	return nil
}

// Link resolves the export's name, outer, class, super and archetype and
// registers it as a user of its object name.
func (e *Export) Link(l *Linker) error {
	if err := e.ObjectName.Resolve(l.Names); err != nil {
		return fmt.Errorf("export %d: %w", e.index.ExportSlot(), err)
	}

	refs := []struct {
		name string
		idx  Index
		dst  *Resource
	}{
		{"outer", e.OuterIndex, &e.outer},
		{"class", e.ClassIndex, &e.class},
		{"super", e.SuperIndex, &e.super},
		{"archetype", e.ArchetypeIndex, &e.archetype},
	}
	for _, ref := range refs {
		r, err := l.Resolve(ref.idx)
		if err != nil {
			return fmt.Errorf("export %d %s: %w", e.index.ExportSlot(), ref.name, err)
		}
		*ref.dst = r
	}
	e.ObjectName.entry.addUser(e)

	return nil
}
