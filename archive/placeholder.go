package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/upk/errs"
)

// Placeholder marks the position of a fixed-size field of type T so it can be
// rewritten later without the caller tracking raw offsets.
//
// The usual pattern is write-then-patch: Reserve the field, write the data it
// describes, then Commit the real value once it is known.
type Placeholder[T any] struct {
	pos   int64
	valid bool
}

// Mark records the cursor position as the location of a T without reading or
// writing. Use it right before serializing a field that may be patched later.
func Mark[T any](a *Archive) Placeholder[T] {
	return Placeholder[T]{pos: a.pos, valid: a.err == nil}
}

// Reserve writes the zero value of T at the cursor and returns its placeholder.
// The archive must be saving.
func Reserve[T any](a *Archive) Placeholder[T] {
	if a.err == nil && a.mode != Saving {
		a.Fail(fmt.Errorf("%w: reserve while %s", errs.ErrInvalidMode, a.mode))
	}

	p := Mark[T](a)
	var zero T
	Fixed(a, &zero)

	return p
}

// Offset returns the position of the field.
func (p Placeholder[T]) Offset() int64 { return p.pos }

// Shift returns a placeholder for the same field moved by delta bytes, for
// use on a copy of the buffer whose layout has been relocated.
func (p Placeholder[T]) Shift(delta int64) Placeholder[T] {
	p.pos += delta
	return p
}

// Valid reports whether the placeholder was taken from a healthy archive.
func (p Placeholder[T]) Valid() bool { return p.valid }

// End returns the position right after the field.
func (p Placeholder[T]) End() int64 {
	var zero T
	return p.pos + int64(binary.Size(zero))
}

// Commit writes v at the placeholder and restores the cursor. The archive must
// be saving.
func (p Placeholder[T]) Commit(a *Archive, v T) {
	if a.err != nil {
		return
	}
	if !p.valid {
		a.Fail(fmt.Errorf("%w: commit to an unset placeholder", errs.ErrInvalidMode))
		return
	}
	if a.mode != Saving {
		a.Fail(fmt.Errorf("%w: commit while %s", errs.ErrInvalidMode, a.mode))
		return
	}

	saved := a.pos
	a.pos = p.pos
	Fixed(a, &v)
	a.pos = saved
}

// Load reads the current value at the placeholder without moving the cursor.
func (p Placeholder[T]) Load(a *Archive) (T, error) {
	var v T
	if !p.valid {
		return v, fmt.Errorf("%w: load from an unset placeholder", errs.ErrInvalidMode)
	}

	b, err := a.View(p.pos, int64(binary.Size(v)))
	if err != nil {
		return v, err
	}
	_, err = binary.Decode(b, binary.LittleEndian, &v)

	return v, err
}
