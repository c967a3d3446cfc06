package bufferpool

import (
	"bytes"
	"sync"
)

// Pool hands out reusable byte buffers for response bodies.
type Pool struct {
	pool        sync.Pool
	maxRetained int
}

// New creates a pool whose fresh buffers start at initialCapacity bytes.
// Buffers that grew past maxRetained are dropped on Put instead of being kept alive;
// maxRetained <= 0 keeps everything.
func New(initialCapacity, maxRetained int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialCapacity))
			},
		},
		maxRetained: maxRetained,
	}
}

// Get retrieves an empty buffer
func (p *Pool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put returns a buffer to the pool after resetting it
func (p *Pool) Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if p.maxRetained > 0 && buf.Cap() > p.maxRetained {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}
