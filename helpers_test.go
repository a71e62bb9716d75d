package upk

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/upk/object"
)

// payload returns n deterministic, compressible bytes.
func payload(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, 0xC0FFEE))
	out := make([]byte, n)
	for i := range out {
		out[i] = "StaticMesh_Rock"[rng.IntN(15)]
	}

	return out
}

// meshBuilder describes a small package:
//
//	imports: Core, Engine, Engine.StaticMesh (class), Core.Package (class)
//	exports: Meshes (package), Meshes.Rock, Meshes.Rock_1 (static meshes)
func meshBuilder() *Builder {
	b := NewBuilder()
	b.Summary().FolderName = "Meshes"

	core := b.AddImport("Core", "Package", object.Null, "Core")
	engine := b.AddImport("Core", "Package", object.Null, "Engine")
	staticMesh := b.AddImport("Core", "Class", engine, "StaticMesh")
	pkgClass := b.AddImport("Core", "Class", core, "Package")

	meshes := b.AddExport(ExportSpec{Name: "Meshes", Class: pkgClass})
	rock := b.AddExport(ExportSpec{Name: "Rock", Class: staticMesh, Outer: meshes, Data: []byte("rock-data")})
	b.AddExport(ExportSpec{Name: "Rock", Number: 1, Class: staticMesh, Outer: meshes, Archetype: rock, Data: []byte("second-rock")})

	return b
}

func loadMeshes(t *testing.T, opts ...LoadOption) (*Package, []byte) {
	t.Helper()

	data, err := meshBuilder().Build()
	require.NoError(t, err)
	p, err := Load(data, opts...)
	require.NoError(t, err)

	return p, data
}

// largeBuilder describes a package whose export data spans several chunks,
// with one export larger than a chunk in the middle.
func largeBuilder() *Builder {
	b := NewBuilder()
	class := b.AddImport("Core", "Class", object.Null, "Texture2D")
	outer := b.AddExport(ExportSpec{Name: "Textures", Class: object.Null})
	for i := range 12 {
		if i == 6 {
			b.AddExport(ExportSpec{Name: "Huge", Class: class, Outer: outer, Data: payload(3<<19, 99)})
		}
		b.AddExport(ExportSpec{Name: "Tex", Number: int32(i + 1), Class: class, Outer: outer, Data: payload(256<<10, uint64(i))})
	}

	return b
}
