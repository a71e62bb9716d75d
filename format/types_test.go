package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressionFlags(t *testing.T) {
	require.False(t, CompressNone.IsCompressed())
	require.True(t, CompressZLIB.IsCompressed())
	require.False(t, CompressBiasSpeed.IsCompressed())

	require.Equal(t, CompressZLIB, (CompressZLIB | CompressBiasMemory).Method())
	require.Equal(t, "ZLIB", (CompressZLIB | CompressBiasSpeed).String())
	require.Equal(t, "LZO", CompressLZO.String())
	require.Equal(t, "None", CompressNone.String())
	require.Equal(t, "Unknown(0x3)", (CompressZLIB | CompressLZO).String())
}

func TestPackageFlags(t *testing.T) {
	require.Equal(t, "None", PackageFlags(0).String())
	require.Equal(t, "AllowDownload|Cooked", (PackageAllowDownload | PackageCooked).String())
	require.Equal(t, "Cooked|0x100", (PackageCooked | 0x100).String())
	require.True(t, (PackageCooked | PackageContainsMap).Has(PackageContainsMap))
}

func TestObjectFlags(t *testing.T) {
	f := ObjectPublic | ObjectStandalone
	require.True(t, f.Has(ObjectPublic))
	require.False(t, f.Has(ObjectNative))
	require.Equal(t, "0x0000000000080004", f.String())
}
