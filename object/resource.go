package object

import (
	"slices"
	"strings"
)

// Resource is an entry of the import or export table.
type Resource interface {
	// Index returns the resource's own signed index.
	Index() Index
	// Name returns the object name.
	Name() FName
	// OuterRef returns the stored outer index.
	OuterRef() Index
	// Outer returns the resolved outer, or nil for a top-level object or before linking.
	Outer() Resource
	// Class returns the class name of the object.
	Class() string
	// FullName returns the dot-joined names from the outermost object down to this one.
	FullName() string
	// TableOffset returns the file offset the table record was read from or written to.
	TableOffset() int64
	// Link resolves the stored indices against the linker's tables.
	Link(l *Linker) error
}

type resource struct {
	index       Index
	outer       Resource
	tableOffset int64
}

func (r *resource) Index() Index { return r.index }
func (r *resource) Outer() Resource { return r.outer }
func (r *resource) TableOffset() int64 { return r.tableOffset }
func (r *resource) setIndex(i Index) { r.index = i }

// fullName walks the outer chain of r. A cyclic chain stops at the first
// repeated resource.
func fullName(r Resource) string {
	parts := []string{r.Name().String()}
	seen := map[Resource]struct{}{r: {}}
	for o := r.Outer(); o != nil; o = o.Outer() {
		if _, ok := seen[o]; ok {
			break
		}
		seen[o] = struct{}{}
		parts = append(parts, o.Name().String())
	}
	slices.Reverse(parts)

	return strings.Join(parts, ".")
}

// describe formats r as Class'Full.Name'.
func describe(r Resource) string {
	return r.Class() + "'" + r.FullName() + "'"
}
