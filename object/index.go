package object

import (
	"strconv"

	"github.com/arloliu/upk/archive"
)

// Index is a signed reference into the import or export table.
type Index int32

// Null is the index of no object.
const Null Index = 0

// ExportIndex returns the index of the export at the given table slot.
func ExportIndex(slot int) Index {
	return Index(slot + 1) //nolint: gosec
}

// ImportIndex returns the index of the import at the given table slot.
func ImportIndex(slot int) Index {
	return Index(^slot) //nolint: gosec
}

// IsNull reports whether i refers to no object.
func (i Index) IsNull() bool { return i == Null }

// IsExport reports whether i refers to an export.
func (i Index) IsExport() bool { return i > 0 }

// IsImport reports whether i refers to an import.
func (i Index) IsImport() bool { return i < 0 }

// ExportSlot returns the export table position of an export index.
func (i Index) ExportSlot() int { return int(i) - 1 }

// ImportSlot returns the import table position of an import index.
func (i Index) ImportSlot() int { return int(^i) }

func (i Index) String() string {
	switch {
	case i.IsExport():
		return "Export#" + strconv.Itoa(i.ExportSlot())
	case i.IsImport():
		return "Import#" + strconv.Itoa(i.ImportSlot())
	default:
		return "None"
	}
}

// Serialize reads or writes the index as a 32-bit integer.
func (i *Index) Serialize(a *archive.Archive) {
	v := int32(*i)
	a.Int32(&v)
	*i = Index(v)
}
