// Package errs defines the sentinel errors returned by upk.
//
// Every specific error wraps one of four roots so callers can branch on the
// category with errors.Is:
//
//   - ErrFormat: the bytes are not a well-formed package (bad tag, truncation, bad chunk)
//   - ErrUnsupportedFeature: well-formed, but uses something this engine does not handle
//   - ErrLink: a resource index points outside its table
//   - ErrIO: the backing buffer or file rejected a read or write
package errs

import (
	"errors"
	"fmt"
)

// Taxonomy roots.
var (
	ErrFormat             = errors.New("format error")
	ErrUnsupportedFeature = errors.New("unsupported feature")
	ErrLink               = errors.New("link error")
	ErrIO                 = errors.New("io error")
)

// Format errors.
var (
	// ErrUnexpectedEOF means a read ran past the end of the buffer.
	ErrUnexpectedEOF = fmt.Errorf("%w: unexpected end of data", ErrFormat)
	// ErrUnrecognizedFormat means the package tag matches neither byte order.
	ErrUnrecognizedFormat = fmt.Errorf("%w: unrecognized package tag", ErrFormat)
	// ErrUnsupportedEndianness means the tag is byte-swapped (big-endian package).
	ErrUnsupportedEndianness = fmt.Errorf("%w: big-endian packages are not supported", ErrFormat)
	// ErrInvalidCount means a serialized element count is negative or cannot fit the remaining data.
	ErrInvalidCount = fmt.Errorf("%w: invalid element count", ErrFormat)
	// ErrInvalidChunkHeader means a compressed chunk header is malformed.
	ErrInvalidChunkHeader = fmt.Errorf("%w: invalid compressed chunk header", ErrFormat)
	// ErrChunkBoundaryMismatch means a chunk did not end where the directory says the next one starts.
	ErrChunkBoundaryMismatch = fmt.Errorf("%w: compressed chunk boundary mismatch", ErrFormat)
)

// Unsupported feature errors.
var (
	// ErrCompressedPackage means tables were requested from a package that is still compressed.
	ErrCompressedPackage = fmt.Errorf("%w: package is compressed", ErrUnsupportedFeature)
	// ErrUnsupportedCompression means compression flags other than ZLIB were requested or found.
	ErrUnsupportedCompression = fmt.Errorf("%w: compression method", ErrUnsupportedFeature)
	// ErrNotCompressed means decompression was requested for an uncompressed package.
	ErrNotCompressed = fmt.Errorf("%w: package is not compressed", ErrUnsupportedFeature)
	// ErrLayoutChanged means an in-place rewrite would change the size of the summary or a table.
	ErrLayoutChanged = fmt.Errorf("%w: table size changed, rebuild the package instead", ErrUnsupportedFeature)
)

// Link errors.
var (
	// ErrIndexOutOfRange means an import/export index resolves outside its table.
	ErrIndexOutOfRange = fmt.Errorf("%w: object index out of range", ErrLink)
	// ErrNameIndexOutOfRange means an FName refers past the end of the name table.
	ErrNameIndexOutOfRange = fmt.Errorf("%w: name index out of range", ErrLink)
)

// IO errors.
var (
	// ErrSeekOutOfRange means a seek targeted a negative position.
	ErrSeekOutOfRange = fmt.Errorf("%w: seek out of range", ErrIO)
	// ErrWriteFailed means persisting the buffer failed.
	ErrWriteFailed = fmt.Errorf("%w: write failed", ErrIO)
)

var (
	// ErrObjectNotFound means FindObject had no match.
	ErrObjectNotFound = errors.New("object not found")
	// ErrForeignExport means the export does not belong to the package it was passed to.
	ErrForeignExport = errors.New("export does not belong to this package")
	// ErrPackageFailed means the package is in a sticky error state from an earlier failure.
	ErrPackageFailed = errors.New("package is in an error state")
	// ErrInvalidOption means an option value is out of range.
	ErrInvalidOption = errors.New("invalid option")
	// ErrInvalidMode means an operation was attempted in the wrong archive mode.
	ErrInvalidMode = errors.New("operation not valid in current archive mode")
)
