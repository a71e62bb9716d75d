package format

import (
	"fmt"
	"strings"
)

type (
	// CompressionFlags is the package-level compression bitmask.
	CompressionFlags uint32
	// PackageFlags is the summary package flag bitmask.
	PackageFlags uint32
	// ObjectFlags is the 64-bit object flag bitmask carried by names and exports.
	ObjectFlags uint64
)

const (
	CompressNone       CompressionFlags = 0x00
	CompressZLIB       CompressionFlags = 0x01 // CompressZLIB selects zlib-wrapped deflate.
	CompressLZO        CompressionFlags = 0x02
	CompressLZX        CompressionFlags = 0x04
	CompressBiasMemory CompressionFlags = 0x10 // CompressBiasMemory is an encoder hint, not a method.
	CompressBiasSpeed  CompressionFlags = 0x20 // CompressBiasSpeed is an encoder hint, not a method.

	compressMethodMask = CompressZLIB | CompressLZO | CompressLZX
)

// Method returns the flags with encoder hints stripped.
func (c CompressionFlags) Method() CompressionFlags {
	return c & compressMethodMask
}

// IsCompressed reports whether any compression method bit is set.
func (c CompressionFlags) IsCompressed() bool {
	return c.Method() != CompressNone
}

func (c CompressionFlags) String() string {
	switch c.Method() {
	case CompressNone:
		return "None"
	case CompressZLIB:
		return "ZLIB"
	case CompressLZO:
		return "LZO"
	case CompressLZX:
		return "LZX"
	default:
		return fmt.Sprintf("Unknown(0x%x)", uint32(c))
	}
}

const (
	PackageAllowDownload   PackageFlags = 0x00000001
	PackageClientOptional  PackageFlags = 0x00000002
	PackageServerSideOnly  PackageFlags = 0x00000004
	PackageCooked          PackageFlags = 0x00000008
	PackageUnsecure        PackageFlags = 0x00000010
	PackageNeed            PackageFlags = 0x00008000
	PackageCompiling       PackageFlags = 0x00010000
	PackageContainsMap     PackageFlags = 0x00020000
	PackageContainsScript  PackageFlags = 0x00200000
	PackageStoreCompressed PackageFlags = 0x02000000
	PackageStoreFullyComp  PackageFlags = 0x04000000
)

var packageFlagNames = []struct {
	flag PackageFlags
	name string
}{
	{PackageAllowDownload, "AllowDownload"},
	{PackageClientOptional, "ClientOptional"},
	{PackageServerSideOnly, "ServerSideOnly"},
	{PackageCooked, "Cooked"},
	{PackageUnsecure, "Unsecure"},
	{PackageNeed, "Need"},
	{PackageCompiling, "Compiling"},
	{PackageContainsMap, "ContainsMap"},
	{PackageContainsScript, "ContainsScript"},
	{PackageStoreCompressed, "StoreCompressed"},
	{PackageStoreFullyComp, "StoreFullyCompressed"},
}

// Has reports whether all bits of f are set.
func (p PackageFlags) Has(f PackageFlags) bool {
	return p&f == f
}

func (p PackageFlags) String() string {
	if p == 0 {
		return "None"
	}

	var parts []string
	rest := p
	for _, fn := range packageFlagNames {
		if p.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}

	return strings.Join(parts, "|")
}

const (
	ObjectTransactional ObjectFlags = 0x0000000000000001
	ObjectPublic        ObjectFlags = 0x0000000000000004
	ObjectTransient     ObjectFlags = 0x0000000000004000
	ObjectStandalone    ObjectFlags = 0x0000000000080000
	ObjectNative        ObjectFlags = 0x0000000004000000
	ObjectLoadForClient ObjectFlags = 0x0000000000010000
	ObjectLoadForServer ObjectFlags = 0x0000000000020000
	ObjectLoadForEdit   ObjectFlags = 0x0000000000040000
	ObjectHasStack      ObjectFlags = 0x0000000002000000
)

// Has reports whether all bits of f are set.
func (o ObjectFlags) Has(f ObjectFlags) bool {
	return o&f == f
}

func (o ObjectFlags) String() string {
	return fmt.Sprintf("0x%016X", uint64(o))
}
