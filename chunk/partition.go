package chunk

import (
	"slices"

	"github.com/arloliu/upk/section"
)

const (
	// DefaultMaxChunkSize bounds the uncompressed size of a chunk unless a
	// single export or the package tables alone are larger.
	DefaultMaxChunkSize = 1 << 20
	// DefaultBlockSize is the nominal uncompressed size of a block.
	DefaultBlockSize = 0x20000
)

// Span is a byte range of the logical file, usually one export's data.
type Span struct {
	Offset int64
	Size   int64
}

// End returns the offset right after the span.
func (s Span) End() int64 { return s.Offset + s.Size }

// Partition splits the logical range [offsetEnd, fileSize) into contiguous
// chunks and returns them with only the uncompressed fields set.
//
// The first chunk always reaches at least headerEnd so the tables are never
// split. Spans are then added in offset order; a chunk is closed before a
// span that would grow it past maxSize, and a span is never split, so a span
// larger than maxSize gets a chunk of its own. Bytes not covered by any span,
// such as data orphaned by an edit, join the following span when they fit
// and are otherwise cut into chunks of at most maxSize. Only the tables and
// single spans may exceed maxSize.
func Partition(offsetEnd, headerEnd, fileSize int64, spans []Span, maxSize int64) []section.CompressedChunk {
	if fileSize <= offsetEnd {
		return nil
	}

	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Size > 0 {
			sorted = append(sorted, s)
		}
	}
	slices.SortFunc(sorted, func(a, b Span) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		default:
			return 0
		}
	})

	var chunks []section.CompressedChunk
	start, end := offsetEnd, max(offsetEnd, min(headerEnd, fileSize))
	closeAt := func(at int64) {
		chunks = append(chunks, section.CompressedChunk{
			UncompressedOffset: int32(start),      //nolint: gosec
			UncompressedSize:   int32(at - start), //nolint: gosec
		})
		start = at
	}
	// cut closes chunks of at most maxSize until start reaches to.
	cut := func(to int64) {
		for to-start > maxSize {
			closeAt(start + maxSize)
		}
		if to > start {
			closeAt(to)
		}
	}

	for _, s := range sorted {
		spanEnd := min(s.End(), fileSize)
		if spanEnd <= end {
			continue
		}
		if spanEnd-start > maxSize && end > start {
			closeAt(end)
		}
		if gapEnd := max(end, s.Offset); spanEnd-start > maxSize && gapEnd > start {
			cut(gapEnd)
		}
		end = spanEnd
	}
	if fileSize-start > maxSize && end > start {
		closeAt(end)
	}
	cut(fileSize)

	return chunks
}

// Validate checks that chunks cover [offsetEnd, fileSize) contiguously.
func Validate(chunks []section.CompressedChunk, offsetEnd, fileSize int64) bool {
	next := offsetEnd
	for _, c := range chunks {
		if int64(c.UncompressedOffset) != next || c.UncompressedSize <= 0 {
			return false
		}
		next = c.UncompressedEnd()
	}

	return next == fileSize
}
