// Package archive implements the bidirectional binary cursor every package
// structure is serialized through.
//
// An Archive owns a byte buffer, a cursor and a mode. Each serialization
// routine takes a pointer to the value: in Loading mode the value is filled
// from the buffer, in Saving mode it is written to the buffer. A record type
// therefore describes its wire layout once, in a single Serialize method:
//
//	func (g *GenerationInfo) Serialize(a *archive.Archive) {
//		a.Int32(&g.ExportCount)
//		a.Int32(&g.NameCount)
//		a.Int32(&g.NetObjectCount)
//	}
//
// Errors are sticky. The first failure (a truncated read, a bad seek, a record
// rejecting its content via Fail) is kept and every later call becomes a no-op,
// so a Serialize body never checks errors between fields; the caller checks
// Err once the record is done.
//
// An Archive is not safe for concurrent use.
package archive

import (
	"fmt"

	"github.com/arloliu/upk/endian"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/internal/pool"
)

// Mode selects the direction of serialization.
type Mode uint8

const (
	// Loading reads values from the buffer.
	Loading Mode = iota
	// Saving writes values to the buffer.
	Saving
)

func (m Mode) String() string {
	if m == Saving {
		return "Saving"
	}

	return "Loading"
}

// Serializable is implemented by every composite record.
type Serializable interface {
	Serialize(a *Archive)
}

// Archive is a seekable, growable byte cursor with a read/write mode.
type Archive struct {
	buf       *pool.ByteBuffer
	pos       int64
	mode      Mode
	engine    endian.EndianEngine
	forceWide bool
	err       error
}

// NewLoader returns an archive in Loading mode over data. The archive takes
// ownership of data; later writes in Saving mode modify it in place.
func NewLoader(data []byte) *Archive {
	return &Archive{
		buf:    pool.WrapByteBuffer(data),
		mode:   Loading,
		engine: endian.GetLittleEndianEngine(),
	}
}

// NewSaver returns an empty archive in Saving mode.
func NewSaver() *Archive {
	return &Archive{
		buf:    pool.NewByteBuffer(pool.ArchiveBufferDefaultSize),
		mode:   Saving,
		engine: endian.GetLittleEndianEngine(),
	}
}

// Mode returns the current mode.
func (a *Archive) Mode() Mode { return a.mode }

// SetMode switches the direction of subsequent calls. The cursor is kept.
func (a *Archive) SetMode(m Mode) { a.mode = m }

// IsLoading reports whether the archive is in Loading mode.
func (a *Archive) IsLoading() bool { return a.mode == Loading }

// IsSaving reports whether the archive is in Saving mode.
func (a *Archive) IsSaving() bool { return a.mode == Saving }

// SetForceWideStrings makes String always write UTF-16, even for ASCII text.
func (a *Archive) SetForceWideStrings(force bool) { a.forceWide = force }

// ForceWideStrings reports whether wide strings are forced.
func (a *Archive) ForceWideStrings() bool { return a.forceWide }

// Pos returns the cursor position.
func (a *Archive) Pos() int64 { return a.pos }

// Len returns the size of the buffer.
func (a *Archive) Len() int64 { return int64(a.buf.Len()) }

// Remaining returns the number of bytes between the cursor and the end of the buffer.
func (a *Archive) Remaining() int64 {
	if r := a.Len() - a.pos; r > 0 {
		return r
	}

	return 0
}

// Buffer returns the underlying bytes. The slice is invalidated by the next write
// that grows the buffer.
func (a *Archive) Buffer() []byte { return a.buf.Bytes() }

// Err returns the first error recorded by the archive.
func (a *Archive) Err() error { return a.err }

// Fail records err unless an error is already recorded.
func (a *Archive) Fail(err error) {
	if a.err == nil && err != nil {
		a.err = err
	}
}

// SeekTo moves the cursor to the absolute position pos. Positions past the end
// are allowed: a read there fails, a write there zero-fills the gap.
func (a *Archive) SeekTo(pos int64) error {
	if a.err != nil {
		return a.err
	}
	if pos < 0 {
		a.Fail(fmt.Errorf("%w: %d", errs.ErrSeekOutOfRange, pos))
		return a.err
	}
	a.pos = pos

	return nil
}

// SeekEnd moves the cursor to the end of the buffer and returns the position.
func (a *Archive) SeekEnd() int64 {
	a.pos = a.Len()
	return a.pos
}

// next returns the n bytes at the cursor and advances it. In Saving mode the
// buffer is extended as needed. It returns nil once the archive has failed.
func (a *Archive) next(n int) []byte {
	if a.err != nil {
		return nil
	}

	end := a.pos + int64(n)
	if a.mode == Loading {
		if end > a.Len() {
			a.Fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrUnexpectedEOF, n, a.pos, a.Remaining()))
			return nil
		}
	} else if end > a.Len() {
		a.buf.Resize(int(end))
	}

	b := a.buf.Bytes()[a.pos:end]
	a.pos = end

	return b
}

// Raw reads len(p) bytes into p, or writes p, depending on the mode.
func (a *Archive) Raw(p []byte) {
	b := a.next(len(p))
	if b == nil {
		return
	}
	if a.mode == Loading {
		copy(p, b)
	} else {
		copy(b, p)
	}
}

// View returns the n bytes at off without moving the cursor. The slice aliases
// the buffer.
func (a *Archive) View(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > a.Len() {
		return nil, fmt.Errorf("%w: range [%d, %d) outside buffer of %d bytes", errs.ErrUnexpectedEOF, off, off+n, a.Len())
	}

	return a.buf.Bytes()[off : off+n], nil
}

// Append writes p at the end of the buffer, leaves the cursor after it and
// returns the offset p was written at. The archive must be saving.
func (a *Archive) Append(p []byte) int64 {
	if a.err != nil {
		return -1
	}
	if a.mode != Saving {
		a.Fail(fmt.Errorf("%w: append while %s", errs.ErrInvalidMode, a.mode))
		return -1
	}

	off := a.SeekEnd()
	a.Raw(p)

	return off
}

// Uint8 serializes a byte.
func (a *Archive) Uint8(v *uint8) {
	b := a.next(1)
	if b == nil {
		return
	}
	if a.mode == Loading {
		*v = b[0]
	} else {
		b[0] = *v
	}
}

// Uint16 serializes a 16-bit unsigned integer.
func (a *Archive) Uint16(v *uint16) {
	b := a.next(2)
	if b == nil {
		return
	}
	if a.mode == Loading {
		*v = a.engine.Uint16(b)
	} else {
		a.engine.PutUint16(b, *v)
	}
}

// Int16 serializes a 16-bit signed integer.
func (a *Archive) Int16(v *int16) {
	u := uint16(*v) //nolint: gosec
	a.Uint16(&u)
	*v = int16(u) //nolint: gosec
}

// Uint32 serializes a 32-bit unsigned integer.
func (a *Archive) Uint32(v *uint32) {
	b := a.next(4)
	if b == nil {
		return
	}
	if a.mode == Loading {
		*v = a.engine.Uint32(b)
	} else {
		a.engine.PutUint32(b, *v)
	}
}

// Int32 serializes a 32-bit signed integer.
func (a *Archive) Int32(v *int32) {
	u := uint32(*v) //nolint: gosec
	a.Uint32(&u)
	*v = int32(u) //nolint: gosec
}

// Uint64 serializes a 64-bit unsigned integer.
func (a *Archive) Uint64(v *uint64) {
	b := a.next(8)
	if b == nil {
		return
	}
	if a.mode == Loading {
		*v = a.engine.Uint64(b)
	} else {
		a.engine.PutUint64(b, *v)
	}
}

// Int64 serializes a 64-bit signed integer.
func (a *Archive) Int64(v *int64) {
	u := uint64(*v) //nolint: gosec
	a.Uint64(&u)
	*v = int64(u) //nolint: gosec
}

// Bool serializes a boolean stored as a 32-bit integer.
func (a *Archive) Bool(v *bool) {
	var u uint32
	if *v {
		u = 1
	}
	a.Uint32(&u)
	*v = u != 0
}
