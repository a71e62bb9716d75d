package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()
	require.Equal(t, binary.LittleEndian, engine)

	buf := engine.AppendUint32(nil, 0x9E2A83C1)
	require.Equal(t, []byte{0xC1, 0x83, 0x2A, 0x9E}, buf)
}

func TestSwap32(t *testing.T) {
	require.Equal(t, uint32(0xC1832A9E), Swap32(0x9E2A83C1))
	require.Equal(t, uint32(0x9E2A83C1), Swap32(Swap32(0x9E2A83C1)))
}

func TestClassify(t *testing.T) {
	const tag = 0x9E2A83C1

	tests := []struct {
		name string
		got  uint32
		want Order
	}{
		{"little", tag, Little},
		{"swapped", 0xC1832A9E, Swapped},
		{"unknown", 0x12345678, Unknown},
		{"zero", 0, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.got, tag))
		})
	}

	require.Equal(t, "byte-swapped", Swapped.String())
	require.Equal(t, "unknown", Unknown.String())
}
