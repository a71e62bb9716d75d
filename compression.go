package upk

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/chunk"
	"github.com/arloliu/upk/compress"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
	"github.com/arloliu/upk/internal/options"
	"github.com/arloliu/upk/section"
)

// headerEnd returns the end of the region that must stay in the first chunk:
// the summary, the tables and everything up to TotalHeaderSize.
func (p *Package) headerEnd() int64 {
	end := max(int64(p.summary.TotalHeaderSize), p.summary.OffsetEnd)
	for _, t := range p.tables {
		end = max(end, t.end)
	}

	return end
}

// Compress returns the package in compressed form. The package itself is not
// modified.
//
// Everything after the summary is split into chunks of at most
// WithMaxChunkSize uncompressed bytes, never splitting an export and keeping
// the tables in the first chunk. The compressed summary is larger by one
// directory entry per chunk, so every absolute offset in the summary and every
// export SerialOffset is shifted by that difference. Decompress shifts them
// back, which makes the round trip byte exact.
func (p *Package) Compress(opts ...CompressOption) ([]byte, error) {
	if err := p.usable(); err != nil {
		return nil, err
	}
	cfg := newCompressConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	w, err := cfg.writer()
	if err != nil {
		return nil, err
	}

	spans := make([]chunk.Span, len(p.exports))
	for i, e := range p.exports {
		spans[i] = chunk.Span{Offset: int64(e.SerialOffset), Size: int64(e.SerialSize)}
	}
	entries := chunk.Partition(p.summary.OffsetEnd, p.headerEnd(), p.ar.Len(), spans, cfg.maxChunkSize)

	sum := p.summary.Clone()
	sum.CompressionFlags = cfg.flags
	sum.CompressedChunks = make([]section.CompressedChunk, len(entries))
	delta, err := relocate(sum, p.summary.OffsetEnd, p.ar.ForceWideStrings())
	if err != nil {
		return nil, err
	}

	logical, err := p.relocatedImage(sum, delta)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].UncompressedOffset += int32(delta) //nolint: gosec
	}

	out := archive.NewSaver()
	out.SetForceWideStrings(p.ar.ForceWideStrings())
	out.Raw(logical[:sum.OffsetEnd])
	if err := w.WriteAll(out, logical, entries); err != nil {
		return nil, err
	}
	sum.CompressedChunks = entries
	_ = out.SeekTo(0)
	sum.Serialize(out)
	if err := out.Err(); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"chunks":       len(entries),
		"uncompressed": humanize.IBytes(uint64(len(logical))),
		"compressed":   humanize.IBytes(uint64(out.Len())),
	}).Debug("package compressed")

	return out.Buffer(), nil
}

// relocate sets the size-dependent fields of sum for a summary that will
// replace one ending at oldEnd, and returns the shift applied to offsets.
func relocate(sum *section.Summary, oldEnd int64, forceWide bool) (int64, error) {
	size := measure([]*section.Summary{sum}, forceWide)
	if size > math.MaxInt32 {
		return 0, fmt.Errorf("%w: summary of %d bytes", errs.ErrWriteFailed, size)
	}
	delta := size - oldEnd
	sum.Relocate(int32(delta)) //nolint: gosec
	sum.OffsetEnd = size

	return delta, nil
}

// relocatedImage returns the uncompressed file with sum in place of the
// current summary and every export SerialOffset shifted by delta.
func (p *Package) relocatedImage(sum *section.Summary, delta int64) ([]byte, error) {
	a := archive.NewSaver()
	a.SetForceWideStrings(p.ar.ForceWideStrings())
	sum.Serialize(a)
	a.Raw(p.ar.Buffer()[p.summary.OffsetEnd:])

	for _, e := range p.exports {
		if e.SerialOffset > 0 {
			e.SerialOffsetSlot().Shift(delta).Commit(a, e.SerialOffset+int32(delta)) //nolint: gosec
		}
	}
	if err := a.Err(); err != nil {
		return nil, err
	}

	return a.Buffer(), nil
}

// Decompress inflates a compressed package in place, then reads and links its
// tables. The chunk directory is dropped from the summary and all offsets are
// shifted back by the size it took.
//
// A chunk that does not end exactly where the directory says fails with
// errs.ErrChunkBoundaryMismatch, and the package keeps that error.
func (p *Package) Decompress() error {
	if p.err != nil {
		return fmt.Errorf("%w: %w", errs.ErrPackageFailed, p.err)
	}
	if p.hasData {
		return errs.ErrNotCompressed
	}

	codec, err := compress.CreateCodec(p.summary.CompressionFlags)
	if err != nil {
		return err
	}
	r, err := chunk.NewReader(p.ar.Buffer(), p.summary, codec, p.cfg.chunkCacheSize)
	if err != nil {
		return p.fail(err)
	}
	logical, err := r.Inflate()
	if err != nil {
		return p.fail(err)
	}

	sum := p.summary.Clone()
	sum.CompressionFlags = format.CompressNone
	sum.CompressedChunks = nil
	delta, err := relocate(sum, p.summary.OffsetEnd, p.ar.ForceWideStrings())
	if err != nil {
		return p.fail(err)
	}

	a := archive.NewSaver()
	a.SetForceWideStrings(p.ar.ForceWideStrings())
	sum.Serialize(a)
	a.Raw(logical[p.summary.OffsetEnd:])
	a.SetMode(archive.Loading)
	if err := a.Err(); err != nil {
		return p.fail(err)
	}

	p.log.WithFields(logrus.Fields{
		"chunks":       r.Len(),
		"compressed":   humanize.IBytes(uint64(p.ar.Len())),
		"uncompressed": humanize.IBytes(uint64(a.Len())),
	}).Debug("package decompressed")

	p.ar, p.summary = a, sum
	if err := p.readTables(); err != nil {
		return p.fail(err)
	}

	a.SetMode(archive.Saving)
	for _, e := range p.exports {
		if e.SerialOffset > 0 {
			if err := e.PatchSerial(a, e.SerialSize, e.SerialOffset+int32(delta)); err != nil { //nolint: gosec
				a.SetMode(archive.Loading)
				return p.fail(err)
			}
		}
	}
	a.SetMode(archive.Loading)

	return p.Link()
}

// Compress loads an uncompressed package and returns it compressed.
func Compress(data []byte, opts ...CompressOption) ([]byte, error) {
	p, err := Load(data)
	if err != nil {
		return nil, err
	}

	return p.Compress(opts...)
}

// Decompress loads a compressed package and returns it uncompressed.
func Decompress(data []byte, opts ...LoadOption) ([]byte, error) {
	opts = append(opts[:len(opts):len(opts)], WithAutoDecompress(false))
	p, err := Load(data, opts...)
	if err != nil {
		return nil, err
	}
	if !p.IsCompressed() {
		return nil, errs.ErrNotCompressed
	}
	if err := p.Decompress(); err != nil {
		return nil, err
	}

	return p.Bytes()
}
