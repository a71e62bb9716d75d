package object

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arloliu/upk/errs"
)

// Linker owns the three tables of a package and resolves indices against them.
type Linker struct {
	Names   *NameTable
	Imports []*Import
	Exports []*Export
}

// NewLinker returns a linker over the given tables.
func NewLinker(names *NameTable, imports []*Import, exports []*Export) *Linker {
	return &Linker{Names: names, Imports: imports, Exports: exports}
}

// Resolve returns the resource i refers to, or nil for Null.
func (l *Linker) Resolve(i Index) (Resource, error) {
	switch {
	case i.IsExport():
		if slot := i.ExportSlot(); slot < len(l.Exports) {
			return l.Exports[slot], nil
		}
	case i.IsImport():
		if slot := i.ImportSlot(); slot < len(l.Imports) {
			return l.Imports[slot], nil
		}
	default:
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %s with %d imports and %d exports", errs.ErrIndexOutOfRange, i, len(l.Imports), len(l.Exports))
}

// Link assigns every resource its own index, links imports then exports in
// table order, and finally normalizes the name table. Running it again
// rebuilds all references from scratch.
func (l *Linker) Link() error {
	for slot, imp := range l.Imports {
		imp.setIndex(ImportIndex(slot))
	}
	for slot, exp := range l.Exports {
		exp.setIndex(ExportIndex(slot))
	}

	l.Names.resetUsers()
	for _, imp := range l.Imports {
		if err := imp.Link(l); err != nil {
			return err
		}
	}
	for _, exp := range l.Exports {
		if err := exp.Link(l); err != nil {
			return err
		}
	}
	l.Names.Normalize()

	return nil
}

var numberedName = regexp.MustCompile(`^(.+)_([0-9]+)$`)

// Find returns the resource named by a dot-separated path such as
// "Package.Group.Object", comparing names case-insensitively.
//
// The last path segment selects the name entry; its users are scanned for one
// whose display name matches the segment and whose outer matches the rest of
// the path, either as a full name or as the outer's own name. With a single
// segment the first user with a matching name is returned. A segment such as
// "Foo_2" also matches instances of "Foo" when the table has no "Foo_2" entry.
func (l *Linker) Find(path string) (Resource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", errs.ErrObjectNotFound)
	}

	prefix, leaf := "", path
	if dot := strings.LastIndexByte(path, '.'); dot >= 0 {
		prefix, leaf = path[:dot], path[dot+1:]
	}

	entry := l.Names.Lookup(leaf)
	if entry == nil {
		if m := numberedName.FindStringSubmatch(leaf); m != nil {
			entry = l.Names.Lookup(m[1])
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no name %q", errs.ErrObjectNotFound, leaf)
	}

	for _, u := range entry.users {
		if !strings.EqualFold(u.Name().String(), leaf) {
			continue
		}
		if prefix == "" || outerMatches(u.Outer(), prefix) {
			return u, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrObjectNotFound, path)
}

func outerMatches(outer Resource, prefix string) bool {
	if outer == nil {
		return false
	}

	return strings.EqualFold(outer.FullName(), prefix) || strings.EqualFold(outer.Name().String(), prefix)
}

// ExportAt returns the first export whose data range covers offset, or nil.
func (l *Linker) ExportAt(offset int64) *Export {
	for _, e := range l.Exports {
		if e.Covers(offset) {
			return e
		}
	}

	return nil
}
