package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameKey(t *testing.T) {
	tests := []struct {
		name string
		data string
		key  uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"lower case", "test", 0x4fdcca5ddb678139},
		{"mixed case", "TeSt", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, NameKey(tt.data))
		})
	}

	require.Equal(t, NameKey("StaticMesh"), NameKey("STATICMESH"))
	require.NotEqual(t, NameKey("Foo"), NameKey("Foo_1"))
}
