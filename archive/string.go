package archive

import (
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/upk/errs"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// String serializes a length-prefixed string.
//
// Wire format: a signed 32-bit count N, then N narrow bytes when N > 0 or
// -N UTF-16LE code units when N < 0. Both forms include a trailing NUL that N
// counts. N == 0 is the empty string with no data.
//
// Narrow bytes are Latin-1. When saving, the narrow form is used unless the
// string has a code point above U+00FF or wide strings are forced, so a
// loaded narrow string is written back unchanged.
func (a *Archive) String(s *string) {
	if a.err != nil {
		return
	}
	if a.mode == Loading {
		a.loadString(s)
	} else {
		a.saveString(*s)
	}
}

func (a *Archive) loadString(s *string) {
	var n int32
	a.Int32(&n)
	if a.err != nil {
		return
	}

	switch {
	case n == 0:
		*s = ""
	case n > 0:
		b := a.next(int(n))
		if b == nil {
			return
		}
		*s = decodeNarrow(trimNul(b, 1))
	default:
		units := -int64(n)
		if units > a.Remaining()/2 {
			a.Fail(fmt.Errorf("%w: wide string of %d units at offset %d", errs.ErrUnexpectedEOF, units, a.pos-4))
			return
		}
		b := a.next(int(units * 2))
		if b == nil {
			return
		}
		out, err := utf16LE.NewDecoder().Bytes(trimNul(b, 2))
		if err != nil {
			a.Fail(fmt.Errorf("%w: decode wide string: %w", errs.ErrFormat, err))
			return
		}
		*s = string(out)
	}
}

func (a *Archive) saveString(s string) {
	if s == "" {
		var zero int32
		a.Int32(&zero)
		return
	}

	if !a.forceWide && isLatin1(s) {
		narrow := []byte(s)
		if !isASCII(s) {
			var err error
			if narrow, err = charmap.ISO8859_1.NewEncoder().Bytes(narrow); err != nil {
				a.Fail(fmt.Errorf("%w: encode narrow string: %w", errs.ErrFormat, err))
				return
			}
		}
		if len(narrow)+1 > math.MaxInt32 {
			a.Fail(fmt.Errorf("%w: string of %d bytes", errs.ErrInvalidCount, len(narrow)))
			return
		}
		n := int32(len(narrow) + 1) //nolint: gosec
		a.Int32(&n)
		b := a.next(len(narrow) + 1)
		if b == nil {
			return
		}
		copy(b, narrow)
		b[len(narrow)] = 0

		return
	}

	encoded, err := utf16LE.NewEncoder().Bytes([]byte(s + "\x00"))
	if err != nil {
		a.Fail(fmt.Errorf("%w: encode wide string: %w", errs.ErrFormat, err))
		return
	}
	n := -int32(len(encoded) / 2) //nolint: gosec
	a.Int32(&n)
	a.Raw(encoded)
}

// trimNul drops one trailing terminator of the given width if present.
func trimNul(b []byte, width int) []byte {
	if len(b) < width {
		return b
	}
	for _, c := range b[len(b)-width:] {
		if c != 0 {
			return b
		}
	}

	return b[:len(b)-width]
}

// decodeNarrow returns b as a string. Bytes above 0x7F are read as Latin-1 so
// the result is always valid UTF-8.
func decodeNarrow(b []byte) string {
	if isASCIIBytes(b) {
		return string(b)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}

	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// isLatin1 reports whether every code point of s fits one narrow byte.
func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}

	return true
}

func isASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
