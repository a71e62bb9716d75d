package upk

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/upk/endian"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
	"github.com/arloliu/upk/object"
	"github.com/arloliu/upk/section"
)

func TestBuilder_Minimal(t *testing.T) {
	data, err := NewBuilder().Build()
	require.NoError(t, err)

	p, err := Load(data)
	require.NoError(t, err)
	require.False(t, p.IsCompressed())
	require.Equal(t, 1, p.Names().Len())
	require.Equal(t, "None", p.Names().Entries()[0].Name)
	require.Equal(t, DefaultNameFlags, p.Names().Entries()[0].Flags)
	require.Empty(t, p.Imports())
	require.Empty(t, p.Exports())

	s := p.Summary()
	require.Equal(t, section.PackageTag, s.Tag)
	require.Equal(t, int32(s.OffsetEnd), s.NameOffset)
	require.Equal(t, int32(len(data)), s.TotalHeaderSize)
	require.Len(t, s.Generations, 1)

	got, err := p.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestBuilder_Layout(t *testing.T) {
	p, data := loadMeshes(t)
	s := p.Summary()

	require.Equal(t, int32(8), s.NameCount, "None plus seven distinct names")
	require.Equal(t, int32(4), s.ImportCount)
	require.Equal(t, int32(3), s.ExportCount)
	require.Less(t, s.NameOffset, s.ImportOffset)
	require.Less(t, s.ImportOffset, s.ExportOffset)
	require.Less(t, s.ExportOffset, s.DependsOffset)
	require.Equal(t, s.DependsOffset+3*4, s.TotalHeaderSize)

	exports := p.Exports()
	require.Equal(t, s.TotalHeaderSize, exports[0].SerialOffset)
	require.Zero(t, exports[0].SerialSize)
	require.Equal(t, s.TotalHeaderSize, exports[1].SerialOffset)
	require.Equal(t, exports[1].SerialEnd(), int64(exports[2].SerialOffset))
	require.Equal(t, int64(len(data)), exports[2].SerialEnd())
	for _, e := range exports {
		require.Len(t, e.GenerationNetObjectCount, 1)
	}
}

func TestPackage_RoundTrip(t *testing.T) {
	p, data := loadMeshes(t)

	got, err := p.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, got)

	require.NoError(t, p.Flush())
	got, err = p.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, got, "re-serializing unchanged tables is byte exact")

	var buf bytes.Buffer
	n, err := p.Save(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)
	require.Equal(t, data, buf.Bytes())
}

func TestPackage_Link(t *testing.T) {
	p, _ := loadMeshes(t)
	imports, exports := p.Imports(), p.Exports()

	require.Equal(t, "Meshes", exports[0].FullName())
	require.Equal(t, "Package", exports[0].Class())
	require.Equal(t, "Meshes.Rock", exports[1].FullName())
	require.Equal(t, "StaticMesh", exports[1].Class())
	require.Equal(t, "Meshes.Rock_1", exports[2].FullName())
	require.Same(t, exports[1], exports[2].Archetype())
	require.Equal(t, "Engine.StaticMesh", imports[2].FullName())
	require.Equal(t, "Core.Package", imports[3].FullName())
	require.Equal(t, "StaticMesh'Meshes.Rock_1'", exports[2].String())

	for slot, e := range exports {
		require.Equal(t, object.ExportIndex(slot), e.Index())
	}
	for slot, imp := range imports {
		require.Equal(t, object.ImportIndex(slot), imp.Index())
	}

	require.NoError(t, p.Link(), "relinking is allowed")
	require.Equal(t, "Meshes.Rock_1", exports[2].FullName())
}

func TestPackage_FindObject(t *testing.T) {
	p, _ := loadMeshes(t)
	exports, imports := p.Exports(), p.Imports()

	tests := []struct {
		path string
		want object.Resource
	}{
		{"Meshes.Rock", exports[1]},
		{"meshes.ROCK", exports[1]},
		{"Meshes.Rock_1", exports[2]},
		{"Rock_1", exports[2]},
		{"Meshes", exports[0]},
		{"Engine.StaticMesh", imports[2]},
		{"Core", imports[0]},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := p.FindObject(tt.path)
			require.NoError(t, err)
			require.Same(t, tt.want, got)
		})
	}

	for _, path := range []string{"Meshes.Stone", "Other.Rock", "Meshes.Rock_2"} {
		_, err := p.FindObject(path)
		require.ErrorIs(t, err, errs.ErrObjectNotFound, path)
	}
}

func TestPackage_ObjectAtOffset(t *testing.T) {
	p, _ := loadMeshes(t)
	rock, second := p.Exports()[1], p.Exports()[2]

	got, err := p.ObjectAtOffset(int64(rock.SerialOffset) + 3)
	require.NoError(t, err)
	require.Same(t, rock, got)

	got, err = p.ObjectAtOffset(int64(second.SerialOffset))
	require.NoError(t, err)
	require.Same(t, second, got)

	_, err = p.ObjectAtOffset(0)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	_, err = p.ObjectAtOffset(second.SerialEnd())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestPackage_ReplaceExportData(t *testing.T) {
	p, data := loadMeshes(t)
	rock := p.Exports()[1]
	oldOffset := rock.SerialOffset

	old, err := p.ExportData(rock)
	require.NoError(t, err)
	require.Equal(t, []byte("rock-data"), old)

	replacement := []byte("a much longer replacement payload")
	require.NoError(t, p.ReplaceExportData(rock, replacement))
	require.Equal(t, int32(len(replacement)), rock.SerialSize)
	require.Equal(t, int32(len(data)), rock.SerialOffset, "appended at the old end of file")

	got, err := p.ExportData(rock)
	require.NoError(t, err)
	require.Equal(t, replacement, got)

	saved, err := p.Bytes()
	require.NoError(t, err)
	require.Len(t, saved, len(data)+len(replacement))
	require.Equal(t, old, saved[oldOffset:int(oldOffset)+len(old)], "old data is left in place")

	t.Run("reload sees the patched table", func(t *testing.T) {
		again, err := Load(saved)
		require.NoError(t, err)
		r, err := again.FindObject("Meshes.Rock")
		require.NoError(t, err)
		got, err := again.ExportData(r.(*object.Export))
		require.NoError(t, err)
		require.Equal(t, replacement, got)
	})

	t.Run("object at old offset is gone", func(t *testing.T) {
		_, err := p.ObjectAtOffset(int64(oldOffset))
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("foreign export", func(t *testing.T) {
		other, _ := loadMeshes(t)
		err := p.ReplaceExportData(other.Exports()[1], []byte("x"))
		require.ErrorIs(t, err, errs.ErrForeignExport)
		_, err = p.ExportData(&object.Export{})
		require.ErrorIs(t, err, errs.ErrForeignExport)
		require.NoError(t, p.Err())
	})
}

func TestPackage_Flush(t *testing.T) {
	p, _ := loadMeshes(t)
	rock := p.Exports()[1]
	rock.ObjectFlags = format.ObjectPublic | format.ObjectStandalone
	p.Summary().PackageFlags = format.PackageCooked
	require.NoError(t, p.Flush())

	saved, err := p.Bytes()
	require.NoError(t, err)
	again, err := Load(saved)
	require.NoError(t, err)
	require.Equal(t, format.PackageCooked, again.Summary().PackageFlags)
	require.Equal(t, format.ObjectPublic|format.ObjectStandalone, again.Exports()[1].ObjectFlags)

	t.Run("layout change is rejected", func(t *testing.T) {
		p.Names().Add("Brand new name", 0)
		err := p.Flush()
		require.ErrorIs(t, err, errs.ErrLayoutChanged)
		require.NoError(t, p.Err(), "rejected flush leaves the package usable")

		after, err := p.Bytes()
		require.NoError(t, err)
		require.Equal(t, saved, after)
	})

	t.Run("latin-1 names flush unchanged", func(t *testing.T) {
		b := meshBuilder()
		b.Summary().FolderName = "Météo"
		b.AddExport(ExportSpec{Name: "Épée", Data: []byte("blade")})
		data, err := b.Build()
		require.NoError(t, err)
		require.True(t, bytes.Contains(data, []byte{'M', 0xE9, 't', 0xE9, 'o', 0}), "stored as narrow Latin-1")

		q, err := Load(data)
		require.NoError(t, err)
		require.NoError(t, q.Flush())
		got, err := q.Bytes()
		require.NoError(t, err)
		require.Equal(t, data, got)

		_, err = q.FindObject("épée")
		require.NoError(t, err)
	})

	t.Run("forced wide strings change the layout", func(t *testing.T) {
		wide, _ := loadMeshes(t, WithForceWideStrings(true))
		require.ErrorIs(t, wide.Flush(), errs.ErrLayoutChanged)
	})
}

func TestLoad_Errors(t *testing.T) {
	data, err := meshBuilder().Build()
	require.NoError(t, err)

	t.Run("byte-swapped tag", func(t *testing.T) {
		bad := bytes.Clone(data)
		binary.LittleEndian.PutUint32(bad, endian.Swap32(section.PackageTag))
		_, err := Load(bad)
		require.ErrorIs(t, err, errs.ErrUnsupportedEndianness)
		require.ErrorIs(t, err, errs.ErrFormat)
	})

	t.Run("unknown tag", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] ^= 0xFF
		_, err := Load(bad)
		require.ErrorIs(t, err, errs.ErrUnrecognizedFormat)
	})

	t.Run("truncated tables", func(t *testing.T) {
		p, _ := loadMeshes(t)
		_, err := Load(data[:p.Summary().ExportOffset+10])
		require.ErrorIs(t, err, errs.ErrFormat)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Load(nil)
		require.ErrorIs(t, err, errs.ErrUnexpectedEOF)
	})

	t.Run("link error", func(t *testing.T) {
		b := NewBuilder()
		b.AddExport(ExportSpec{Name: "Orphan", Outer: object.ExportIndex(7)})
		_, err := b.Package()
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
		require.ErrorIs(t, err, errs.ErrLink)
	})

	t.Run("input is not modified", func(t *testing.T) {
		orig := bytes.Clone(data)
		p, err := Load(data)
		require.NoError(t, err)
		require.NoError(t, p.ReplaceExportData(p.Exports()[1], []byte("changed")))
		require.Equal(t, orig, data)
	})
}

func TestPackage_StickyError(t *testing.T) {
	p, _ := loadMeshes(t)
	p.Exports()[1].OuterIndex = object.ExportIndex(40)

	err := p.Link()
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	require.ErrorIs(t, p.Err(), errs.ErrIndexOutOfRange)

	_, err = p.FindObject("Meshes.Rock")
	require.ErrorIs(t, err, errs.ErrPackageFailed)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange, "the cause stays visible")

	_, err = p.Bytes()
	require.ErrorIs(t, err, errs.ErrPackageFailed)
	_, err = p.Compress()
	require.ErrorIs(t, err, errs.ErrPackageFailed)
	require.ErrorIs(t, p.ReplaceExportData(p.Exports()[0], nil), errs.ErrPackageFailed)
	require.ErrorIs(t, p.Link(), errs.ErrPackageFailed)
}

func TestFiles(t *testing.T) {
	p, data := loadMeshes(t)
	path := filepath.Join(t.TempDir(), "Meshes.upk")
	require.NoError(t, p.SaveFile(path))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, onDisk)

	again, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, again.Exports(), 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.upk"))
	require.ErrorIs(t, err, errs.ErrIO)

	require.ErrorIs(t, p.SaveFile(filepath.Join(t.TempDir(), "no", "such", "dir.upk")), errs.ErrWriteFailed)
}

func TestLoadOptions(t *testing.T) {
	data, err := meshBuilder().Build()
	require.NoError(t, err)

	_, err = Load(data, WithLogger(nil))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
	_, err = Load(data, WithChunkCacheSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	t.Run("logger receives debug records", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)

		p, err := Load(data, WithLogger(logger))
		require.NoError(t, err)
		require.NoError(t, p.ReplaceExportData(p.Exports()[1], []byte("x")))

		var messages []string
		for _, e := range hook.AllEntries() {
			messages = append(messages, e.Message)
		}
		require.Contains(t, messages, "package summary loaded")
		require.Contains(t, messages, "package tables loaded")
		require.Contains(t, messages, "package linked")
		require.Contains(t, messages, "export data replaced")
		require.Equal(t, "Meshes.Rock", hook.LastEntry().Data["export"])
	})
}
