package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
	"github.com/arloliu/upk/internal/hash"
)

// NameEntry is one interned string of the name table.
type NameEntry struct {
	Name  string
	Flags format.ObjectFlags

	index  int
	users  []Resource
	offset bool
}

func (n *NameEntry) Serialize(a *archive.Archive) {
	a.String(&n.Name)
	archive.Fixed(a, &n.Flags)
}

// Index returns the position of the entry in its table.
func (n *NameEntry) Index() int { return n.index }

// Users returns the resources whose object name is this entry, in link order.
func (n *NameEntry) Users() []Resource { return n.users }

// Offset reports whether the entry displays instance numbers without the
// minus-one adjustment. It is set by NameTable.Normalize when any linked user
// carries a nonzero instance number.
func (n *NameEntry) Offset() bool { return n.offset }

// Display formats the entry with an instance number.
//
// Number 0 is the bare name. A nonzero number N is shown as Name_(N-1), or as
// Name_N once the entry has been offset by Normalize.
func (n *NameEntry) Display(number int32) string {
	if number <= 0 {
		return n.Name
	}
	if !n.offset {
		number--
	}

	return n.Name + "_" + strconv.Itoa(int(number))
}

func (n *NameEntry) addUser(r Resource) {
	n.users = append(n.users, r)
}

// NameTable is the ordered list of names with a case-insensitive lookup index.
type NameTable struct {
	entries []*NameEntry
	lookup  map[uint64][]*NameEntry
}

// NewNameTable builds a table over entries and assigns their indices.
func NewNameTable(entries []*NameEntry) *NameTable {
	t := &NameTable{
		entries: entries,
		lookup:  make(map[uint64][]*NameEntry, len(entries)),
	}
	for i, e := range entries {
		e.index = i
		key := hash.NameKey(e.Name)
		t.lookup[key] = append(t.lookup[key], e)
	}

	return t
}

// Len returns the number of entries.
func (t *NameTable) Len() int { return len(t.entries) }

// Entries returns the entries in table order.
func (t *NameTable) Entries() []*NameEntry { return t.entries }

// At returns the entry at index i.
func (t *NameTable) At(i int32) (*NameEntry, error) {
	if i < 0 || int(i) >= len(t.entries) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrNameIndexOutOfRange, i, len(t.entries))
	}

	return t.entries[i], nil
}

// Lookup returns the first entry equal to name ignoring case, or nil.
func (t *NameTable) Lookup(name string) *NameEntry {
	for _, e := range t.lookup[hash.NameKey(name)] {
		if strings.EqualFold(e.Name, name) {
			return e
		}
	}

	return nil
}

// Add returns the entry for name, appending a new one when absent. Existing
// resources keep their indices because entries are only ever appended.
func (t *NameTable) Add(name string, flags format.ObjectFlags) *NameEntry {
	if e := t.Lookup(name); e != nil {
		return e
	}

	e := &NameEntry{Name: name, Flags: flags, index: len(t.entries)}
	t.entries = append(t.entries, e)
	key := hash.NameKey(name)
	t.lookup[key] = append(t.lookup[key], e)

	return e
}

func (t *NameTable) resetUsers() {
	for _, e := range t.entries {
		e.users = e.users[:0]
		e.offset = false
	}
}

// Normalize recomputes the display offset of every entry from its current
// users: an entry is offset when any user's object name has a nonzero
// instance number. Linker.Link runs it after linking; run it again after
// registering users by other means.
func (t *NameTable) Normalize() {
	for _, e := range t.entries {
		e.offset = false
		for _, u := range e.users {
			if u.Name().Number > 0 {
				e.offset = true
				break
			}
		}
	}
}

// FName is a reference to a name table entry plus an instance number that
// tells apart objects sharing a base name.
type FName struct {
	Index  int32
	Number int32

	entry *NameEntry
}

// NewFName returns an FName already resolved to entry.
func NewFName(entry *NameEntry, number int32) FName {
	return FName{Index: int32(entry.index), Number: number, entry: entry} //nolint: gosec
}

func (f *FName) Serialize(a *archive.Archive) {
	a.Int32(&f.Index)
	a.Int32(&f.Number)
}

// Resolve binds the FName to its entry in t.
func (f *FName) Resolve(t *NameTable) error {
	e, err := t.At(f.Index)
	if err != nil {
		return err
	}
	f.entry = e

	return nil
}

// Entry returns the resolved entry, or nil before Resolve.
func (f FName) Entry() *NameEntry { return f.entry }

// Equal reports whether both FNames name the same entry and instance.
func (f FName) Equal(o FName) bool {
	return f.Index == o.Index && f.Number == o.Number
}

func (f FName) String() string {
	if f.entry == nil {
		return fmt.Sprintf("<name#%d:%d>", f.Index, f.Number)
	}

	return f.entry.Display(f.Number)
}
