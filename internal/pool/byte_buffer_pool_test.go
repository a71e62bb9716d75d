package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_Resize(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.B = append(bb.B, 1, 2, 3)

	bb.Resize(8)
	require.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, bb.Bytes())

	bb.Resize(2)
	require.Equal(t, []byte{1, 2}, bb.Bytes())

	// Shrinking then growing again must not resurrect stale bytes.
	bb.Resize(4)
	require.Equal(t, []byte{1, 2, 0, 0}, bb.Bytes())
}

func TestByteBuffer_WriteAt(t *testing.T) {
	t.Run("overwrite in place", func(t *testing.T) {
		bb := WrapByteBuffer([]byte("hello world"))
		n, err := bb.WriteAt([]byte("WORLD"), 6)
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, "hello WORLD", string(bb.Bytes()))
	})

	t.Run("extends past end", func(t *testing.T) {
		bb := NewByteBuffer(0)
		_, err := bb.WriteAt([]byte{0xAA}, 3)
		require.NoError(t, err)
		require.Equal(t, []byte{0, 0, 0, 0xAA}, bb.Bytes())
	})

	t.Run("straddles end", func(t *testing.T) {
		bb := WrapByteBuffer([]byte{1, 2})
		_, err := bb.WriteAt([]byte{9, 9, 9}, 1)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 9, 9, 9}, bb.Bytes())
	})
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(0)
	bb.Grow(10)
	require.GreaterOrEqual(t, bb.Cap(), growStep)

	big := NewByteBuffer(largeBufferThreshold * 2)
	big.B = big.B[:big.Cap()]
	big.Grow(1)
	require.GreaterOrEqual(t, big.Cap(), largeBufferThreshold*2+largeBufferThreshold/2)
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(0)
	_, _ = bb.Write([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())

	_, _ = bb.Write([]byte("abc"))
	p.Put(bb)
	p.Put(nil)

	again := p.Get()
	require.Equal(t, 0, again.Len())

	chunk := GetChunkBuffer()
	require.Equal(t, 0, chunk.Len())
	PutChunkBuffer(chunk)
}
