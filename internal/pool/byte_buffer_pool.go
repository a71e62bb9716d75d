package pool

import (
	"io"
	"sync"
)

const (
	ArchiveBufferDefaultSize = 1024 * 64        // 64KiB
	ChunkBufferDefaultSize   = 1024 * 1024      // 1MiB, one partition chunk
	ChunkBufferMaxThreshold  = 1024 * 1024 * 4  // 4MiB
	growStep                 = 1024 * 16        // 16KiB
	largeBufferThreshold     = 4 * growStep     // grow by 25% past this capacity
)

// ByteBuffer is a growable byte slice that supports writes at arbitrary
// positions, zero-filling any gap between the current length and the write.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates an empty ByteBuffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// WrapByteBuffer creates a ByteBuffer over data without copying it.
func WrapByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{B: data}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow ensures at least requiredBytes can be appended without reallocating.
//
// Small buffers grow in 16KiB steps; larger buffers grow by 25% of their
// capacity, or by requiredBytes if that is more.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := growStep
	if cap(bb.B) > largeBufferThreshold {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Resize sets the length to n, growing and zero-filling as needed.
func (bb *ByteBuffer) Resize(n int) {
	if n <= len(bb.B) {
		bb.B = bb.B[:n]
		return
	}

	start := len(bb.B)
	bb.Grow(n - start)
	bb.B = bb.B[:n]
	clear(bb.B[start:n])
}

// WriteAt copies p into the buffer at off, extending the buffer if the write
// runs past its end.
func (bb *ByteBuffer) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(bb.B) {
		bb.Resize(end)
	}

	return copy(bb.B[off:end], p), nil
}

// Write appends data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers that drops buffers grown past
// maxThreshold instead of retaining them.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given default capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var chunkPool = NewByteBufferPool(ChunkBufferDefaultSize, ChunkBufferMaxThreshold)

// GetChunkBuffer retrieves a scratch buffer sized for one compressed chunk.
func GetChunkBuffer() *ByteBuffer {
	return chunkPool.Get()
}

// PutChunkBuffer returns a scratch buffer to the chunk pool.
func PutChunkBuffer(bb *ByteBuffer) {
	chunkPool.Put(bb)
}
