package object

import (
	"fmt"

	"github.com/arloliu/upk/archive"
)

// Import references an object that lives in another package.
type Import struct {
	resource

	ClassPackage FName
	ClassName    FName
	OuterIndex   Index
	ObjectName   FName
}

var _ Resource = (*Import)(nil)

func (i *Import) Serialize(a *archive.Archive) {
	i.tableOffset = a.Pos()
	i.ClassPackage.Serialize(a)
	i.ClassName.Serialize(a)
	i.OuterIndex.Serialize(a)
	i.ObjectName.Serialize(a)
}

func (i *Import) Name() FName { return i.ObjectName }
func (i *Import) OuterRef() Index { return i.OuterIndex }
func (i *Import) Class() string { return i.ClassName.String() }
func (i *Import) FullName() string { return fullName(i) }
func (i *Import) String() string { return describe(i) }

// Link resolves the import's names and outer and registers it as a user of
// its object name.
func (i *Import) Link(l *Linker) error {
	for _, n := range []*FName{&i.ClassPackage, &i.ClassName, &i.ObjectName} {
		if err := n.Resolve(l.Names); err != nil {
			return fmt.Errorf("import %d: %w", i.index.ImportSlot(), err)
		}
	}

	outer, err := l.Resolve(i.OuterIndex)
	if err != nil {
		return fmt.Errorf("import %d outer: %w", i.index.ImportSlot(), err)
	}
	i.outer = outer
	i.ObjectName.entry.addUser(i)

	return nil
}
