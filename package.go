package upk

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/arloliu/upk/archive"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/internal/options"
	"github.com/arloliu/upk/object"
	"github.com/arloliu/upk/section"
)

// extent is the byte range a table occupies in the package.
type extent struct {
	start, end int64
}

// Package is a loaded package file.
//
// A package owns one archive over the whole uncompressed file. Tables are
// read from it once, linked, and patched in place by ReplaceExportData and
// Flush. A compressed package is held summary-only until Decompress runs.
//
// Once an operation leaves the package inconsistent its error is kept, and
// every later call fails with errs.ErrPackageFailed wrapping it.
//
// A Package is not safe for concurrent use.
type Package struct {
	summary *section.Summary
	names   *object.NameTable
	imports []*object.Import
	exports []*object.Export
	linker  *object.Linker

	ar      *archive.Archive
	cfg     *LoadConfig
	log     logrus.FieldLogger
	err     error
	tables  [3]extent
	hasData bool
}

// Load parses a package from data. The slice is copied; later edits never
// touch the caller's bytes.
//
// A compressed package loads summary-only: table operations fail with
// errs.ErrCompressedPackage until Decompress is called, unless
// WithAutoDecompress is given.
func Load(data []byte, opts ...LoadOption) (*Package, error) {
	cfg := newLoadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	ar := archive.NewLoader(slices.Clone(data))
	ar.SetForceWideStrings(cfg.forceWide)

	sum := &section.Summary{}
	sum.Serialize(ar)
	if err := ar.Err(); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	p := &Package{summary: sum, ar: ar, cfg: cfg, log: cfg.logger}
	p.log.WithFields(logrus.Fields{
		"size":        humanize.IBytes(uint64(len(data))),
		"version":     sum.PackageVersion,
		"licensee":    sum.LicenseeVersion,
		"compression": sum.CompressionFlags,
	}).Debug("package summary loaded")

	if sum.IsCompressed() {
		if !cfg.autoDecompress {
			return p, nil
		}
		if err := p.Decompress(); err != nil {
			return nil, err
		}

		return p, nil
	}

	if err := p.readTables(); err != nil {
		return nil, err
	}
	if err := p.Link(); err != nil {
		return nil, err
	}

	return p, nil
}

// LoadFile reads and parses the package at path.
func LoadFile(path string, opts ...LoadOption) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return Load(data, opts...)
}

func (p *Package) readTables() error {
	s, a := p.summary, p.ar
	if err := s.Validate(a.Len()); err != nil {
		return err
	}

	var (
		names   []*object.NameEntry
		imports []*object.Import
		exports []*object.Export
	)
	read := func(i int, offset, count int32, fn func(n int)) {
		if a.Err() != nil {
			return
		}
		if count > 0 {
			_ = a.SeekTo(int64(offset))
		}
		p.tables[i].start = a.Pos()
		fn(int(count))
		p.tables[i].end = a.Pos()
	}
	read(0, s.NameOffset, s.NameCount, func(n int) { archive.ObjectsN(a, &names, n) })
	read(1, s.ImportOffset, s.ImportCount, func(n int) { archive.ObjectsN(a, &imports, n) })
	read(2, s.ExportOffset, s.ExportCount, func(n int) { archive.ObjectsN(a, &exports, n) })
	if err := a.Err(); err != nil {
		return fmt.Errorf("tables: %w", err)
	}

	p.names = object.NewNameTable(names)
	p.imports, p.exports = imports, exports
	p.linker = object.NewLinker(p.names, p.imports, p.exports)
	p.hasData = true

	p.log.WithFields(logrus.Fields{
		"names":   len(names),
		"imports": len(imports),
		"exports": len(exports),
	}).Debug("package tables loaded")

	return nil
}

// fail records err as the sticky error and returns it.
func (p *Package) fail(err error) error {
	if p.err == nil {
		p.err = err
		p.log.WithError(err).Debug("package failed")
	}

	return err
}

// usable reports why table operations cannot run, if they cannot.
func (p *Package) usable() error {
	if p.err != nil {
		return fmt.Errorf("%w: %w", errs.ErrPackageFailed, p.err)
	}
	if !p.hasData {
		return errs.ErrCompressedPackage
	}

	return nil
}

// Err returns the sticky error, or nil while the package is healthy.
func (p *Package) Err() error { return p.err }

// Summary returns the package summary.
func (p *Package) Summary() *section.Summary { return p.summary }

// IsCompressed reports whether the package is still held in compressed form.
func (p *Package) IsCompressed() bool { return !p.hasData }

// Names returns the name table, or nil while compressed.
func (p *Package) Names() *object.NameTable { return p.names }

// Imports returns the import table.
func (p *Package) Imports() []*object.Import { return p.imports }

// Exports returns the export table.
func (p *Package) Exports() []*object.Export { return p.exports }

// Link rebuilds every resolved reference from the stored indices. Load links
// once; call it again after changing indices or object names.
func (p *Package) Link() error {
	if err := p.usable(); err != nil {
		return err
	}
	if err := p.linker.Link(); err != nil {
		return p.fail(err)
	}
	p.log.WithField("exports", len(p.exports)).Debug("package linked")

	return nil
}

// FindObject returns the import or export named by a dot-separated path such
// as "Package.Group.Object". Matching is case-insensitive.
func (p *Package) FindObject(path string) (object.Resource, error) {
	if err := p.usable(); err != nil {
		return nil, err
	}

	return p.linker.Find(path)
}

// ObjectAtOffset returns the export whose data covers the file offset.
func (p *Package) ObjectAtOffset(offset int64) (*object.Export, error) {
	if err := p.usable(); err != nil {
		return nil, err
	}
	if e := p.linker.ExportAt(offset); e != nil {
		return e, nil
	}

	return nil, fmt.Errorf("%w: no export covers offset %d", errs.ErrObjectNotFound, offset)
}

func (p *Package) owns(e *object.Export) bool {
	if e == nil || !e.Index().IsExport() {
		return false
	}
	slot := e.Index().ExportSlot()

	return slot < len(p.exports) && p.exports[slot] == e
}

// ExportData returns a copy of the serialized data of e.
func (p *Package) ExportData(e *object.Export) ([]byte, error) {
	if err := p.usable(); err != nil {
		return nil, err
	}
	if !p.owns(e) {
		return nil, errs.ErrForeignExport
	}

	b, err := p.ar.View(int64(e.SerialOffset), int64(e.SerialSize))
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", e.FullName(), err)
	}

	return slices.Clone(b), nil
}

// ReplaceExportData appends data at the end of the package and points e at
// it, rewriting SerialSize and SerialOffset in the export table in place. The
// previous data stays in the file unreferenced.
func (p *Package) ReplaceExportData(e *object.Export, data []byte) error {
	if err := p.usable(); err != nil {
		return err
	}
	if !p.owns(e) {
		return errs.ErrForeignExport
	}
	if end := p.ar.Len() + int64(len(data)); end > math.MaxInt32 {
		return fmt.Errorf("%w: package would grow to %s", errs.ErrWriteFailed, humanize.IBytes(uint64(end)))
	}

	p.ar.SetMode(archive.Saving)
	defer p.ar.SetMode(archive.Loading)

	offset := p.ar.Append(data)
	if err := p.ar.Err(); err != nil {
		return p.fail(err)
	}
	if err := e.PatchSerial(p.ar, int32(len(data)), int32(offset)); err != nil { //nolint: gosec
		return p.fail(err)
	}

	p.log.WithFields(logrus.Fields{
		"export": e.FullName(),
		"offset": offset,
		"size":   humanize.IBytes(uint64(len(data))),
	}).Debug("export data replaced")

	return nil
}

// Flush re-serializes the summary and the name, import and export tables in
// place, so edits to their fields reach the bytes returned by Bytes. Each must
// keep its serialized size; otherwise Flush fails with errs.ErrLayoutChanged
// and nothing is written.
func (p *Package) Flush() error {
	if err := p.usable(); err != nil {
		return err
	}

	wide := p.ar.ForceWideStrings()
	s := p.summary.Clone()
	s.NameCount = int32(p.names.Len())
	s.ImportCount = int32(len(p.imports))
	s.ExportCount = int32(len(p.exports))

	if size := measure([]*section.Summary{s}, wide); size != p.summary.OffsetEnd {
		return fmt.Errorf("%w: summary %d bytes, was %d", errs.ErrLayoutChanged, size, p.summary.OffsetEnd)
	}
	sizes := [3]int64{
		measure(p.names.Entries(), wide),
		measure(p.imports, wide),
		measure(p.exports, wide),
	}
	for i, t := range p.tables {
		if sizes[i] != t.end-t.start {
			return fmt.Errorf("%w: %s table %d bytes, was %d", errs.ErrLayoutChanged, tableNames[i], sizes[i], t.end-t.start)
		}
	}
	p.summary.NameCount, p.summary.ImportCount, p.summary.ExportCount = s.NameCount, s.ImportCount, s.ExportCount
	s = p.summary

	a := p.ar
	a.SetMode(archive.Saving)
	defer a.SetMode(archive.Loading)

	_ = a.SeekTo(0)
	s.Serialize(a)
	write := func(i int, fn func()) {
		_ = a.SeekTo(p.tables[i].start)
		fn()
	}
	entries := p.names.Entries()
	write(0, func() { archive.ObjectsN(a, &entries, len(entries)) })
	write(1, func() { archive.ObjectsN(a, &p.imports, len(p.imports)) })
	write(2, func() { archive.ObjectsN(a, &p.exports, len(p.exports)) })
	if err := a.Err(); err != nil {
		return p.fail(err)
	}

	return nil
}

var tableNames = [3]string{"name", "import", "export"}

// measure returns the serialized size of records without touching them.
func measure[T any, PT interface {
	*T
	archive.Serializable
}](records []PT, forceWide bool) int64 {
	a := archive.NewSaver()
	a.SetForceWideStrings(forceWide)
	for _, r := range records {
		c := *r
		PT(&c).Serialize(a)
	}

	return a.Len()
}

// Bytes returns a copy of the package file as it would be saved.
func (p *Package) Bytes() ([]byte, error) {
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrPackageFailed, p.err)
	}

	return slices.Clone(p.ar.Buffer()), nil
}

// Save writes the package file to w.
func (p *Package) Save(w io.Writer) (int64, error) {
	if p.err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrPackageFailed, p.err)
	}

	n, err := w.Write(p.ar.Buffer())
	if err != nil {
		return int64(n), fmt.Errorf("%w: %w", errs.ErrWriteFailed, err)
	}

	return int64(n), nil
}

// SaveFile writes the package file to path.
func (p *Package) SaveFile(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("%w: %w", errs.ErrWriteFailed, err)
	}
	p.log.WithFields(logrus.Fields{"path": path, "size": humanize.IBytes(uint64(len(data)))}).Debug("package saved")

	return nil
}
