package pool

import (
	"sync"
)

const (
	// SmallChunkSize defines the size for small read chunks (4KB)
	SmallChunkSize = 4 * 1024
	// DefaultChunkSize is the read chunk used by workers (64KB)
	DefaultChunkSize = 64 * 1024
	// LargeChunkSize defines the size for large read chunks (1MB)
	LargeChunkSize = 1024 * 1024
)

// ChunkPool hands out fixed-size read buffers. It is safe for concurrent use.
type ChunkPool struct {
	size int
	pool *sync.Pool
}

// New creates a pool of size-byte chunks. Sizes outside
// [SmallChunkSize, LargeChunkSize] are clamped.
func New(size int) *ChunkPool {
	switch {
	case size < SmallChunkSize:
		size = SmallChunkSize
	case size > LargeChunkSize:
		size = LargeChunkSize
	}

	return &ChunkPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get returns a full-length chunk. Return it with Put when done.
func (p *ChunkPool) Get() *[]byte {
	bufPtr := p.pool.Get().(*[]byte)
	*bufPtr = (*bufPtr)[:cap(*bufPtr)]
	return bufPtr
}

// Put returns a chunk to the pool. Chunks of a foreign size are dropped.
func (p *ChunkPool) Put(bufPtr *[]byte) {
	if bufPtr == nil || cap(*bufPtr) != p.size {
		return
	}
	p.pool.Put(bufPtr)
}

// Size returns the chunk size.
func (p *ChunkPool) Size() int {
	return p.size
}

var defaultPool = New(DefaultChunkSize)

// Default returns the shared pool of DefaultChunkSize chunks.
func Default() *ChunkPool {
	return defaultPool
}
