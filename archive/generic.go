package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/upk/errs"
)

// Fixed serializes any value with a fixed-size little-endian layout: sized
// integers, floats, named types over them, arrays and structs made only of
// those. Types with a variable size (strings, slices, maps) are rejected.
func Fixed[T any](a *Archive, v *T) {
	if a.err != nil {
		return
	}

	n := binary.Size(*v)
	if n < 0 {
		a.Fail(fmt.Errorf("%w: %T has no fixed binary size", errs.ErrInvalidMode, *v))
		return
	}

	b := a.next(n)
	if b == nil {
		return
	}

	var err error
	if a.mode == Loading {
		_, err = binary.Decode(b, binary.LittleEndian, v)
	} else {
		_, err = binary.Encode(b, binary.LittleEndian, *v)
	}
	a.Fail(err)
}

// Object serializes a record through its Serialize method. On load the value
// is reset to its zero value first.
func Object[T any, PT interface {
	*T
	Serializable
}](a *Archive, v *T) {
	if a.err != nil {
		return
	}
	if a.mode == Loading {
		var zero T
		*v = zero
	}
	PT(v).Serialize(a)
}

// Slice serializes a sequence preceded by its 32-bit element count.
func Slice[T any](a *Archive, s *[]T, elem func(*Archive, *T)) {
	n := int32(len(*s)) //nolint: gosec
	a.Int32(&n)
	if a.err != nil {
		return
	}
	SliceN(a, s, int(n), elem)
}

// SliceN serializes exactly count elements without a count prefix, for
// sequences whose length is stored elsewhere. When saving, count must equal
// len(*s).
func SliceN[T any](a *Archive, s *[]T, count int, elem func(*Archive, *T)) {
	if a.err != nil {
		return
	}

	if a.mode == Loading {
		// Every element occupies at least one byte, so a count larger than the
		// remaining data can only come from a corrupt file.
		if count < 0 || int64(count) > a.Remaining() {
			a.Fail(fmt.Errorf("%w: %d elements with %d bytes left", errs.ErrInvalidCount, count, a.Remaining()))
			return
		}
		*s = make([]T, count)
	} else if count != len(*s) {
		a.Fail(fmt.Errorf("%w: count %d does not match %d elements", errs.ErrInvalidCount, count, len(*s)))
		return
	}

	for i := range *s {
		elem(a, &(*s)[i])
		if a.err != nil {
			return
		}
	}
}

// Objects serializes a count-prefixed sequence of records held by pointer.
// On load each element is allocated before it is filled.
func Objects[T any, PT interface {
	*T
	Serializable
}](a *Archive, s *[]PT) {
	Slice(a, s, objectElem[T, PT])
}

// ObjectsN is Objects for sequences whose count is stored elsewhere.
func ObjectsN[T any, PT interface {
	*T
	Serializable
}](a *Archive, s *[]PT, count int) {
	SliceN(a, s, count, objectElem[T, PT])
}

func objectElem[T any, PT interface {
	*T
	Serializable
}](a *Archive, p *PT) {
	if a.mode == Loading || *p == nil {
		*p = PT(new(T))
	}
	(*p).Serialize(a)
}
