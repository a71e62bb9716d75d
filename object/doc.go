// Package object models the name, import and export tables of a package and
// the object graph they encode.
//
// Tables reference each other only by integer. Names are referenced by their
// position in the name table plus an instance number (FName). Objects are
// referenced by a signed Index:
//
//	 0      no object
//	 N > 0  export N-1
//	 N < 0  import ^N (that is, -N-1)
//
// After all three tables are read, Linker.Link walks every import then every
// export once and resolves these integers into navigable references: Outer for
// all resources, plus Class, Super and Archetype for exports. The tables act as
// the arena; a resolved reference is only valid until the tables change, and
// Link must be run again after any mutation of an index.
package object
