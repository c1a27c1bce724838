// Package bufpool implements the platform buffer pool: a free-list
// of reusable byte slices so every socket read,
// child-process read, and rendered-frame write in internal/server and
// internal/term avoids a per-event allocation.
package bufpool

import "fmt"

// Pool is a free-list of []byte buffers. It is not safe for concurrent
// use by multiple goroutines without external synchronization; the
// reactor loops in internal/server own one Pool each and only ever
// touch it from their single consumer goroutine, so the pool needs
// no lock.
type Pool struct {
	free [][]byte
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{}
}

// Acquire returns a buffer with len==0, reusing a free-list entry's
// capacity when one is available.
func (p *Pool) Acquire() []byte {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		return b[:0]
	}
	return nil
}

// Release clears b and returns it to the free list. Every buffer
// handed out by Acquire (or received in a request/event) must pass
// back through Release exactly once; there is no finalizer-based
// reclamation; a leaked buffer is a bug, not a GC detail.
func (p *Pool) Release(b []byte) {
	if b == nil {
		return
	}
	p.free = append(p.free, b[:0])
}

// Guard wraps a []byte borrowed from a Pool so the borrow is visible
// at the call site. Guard never releases itself and has no finalizer:
// MustBeReleased panics when called on a Guard still held, so a
// forgotten buffer fails loudly rather than silently leaking.
type Guard struct {
	pool *Pool
	buf  []byte
	done bool
}

// Borrow acquires a buffer from p and wraps it in a Guard.
func Borrow(p *Pool) *Guard {
	return &Guard{pool: p, buf: p.Acquire()}
}

// Bytes returns the buffer's current contents.
func (g *Guard) Bytes() []byte { return g.buf }

// Append grows the guarded buffer.
func (g *Guard) Append(p []byte) {
	g.buf = append(g.buf, p...)
}

// Release returns the buffer to its pool. Calling Release twice, or
// never, is a programming error surfaced loudly, not as a silent
// leak.
func (g *Guard) Release() {
	if g.done {
		panic("bufpool: Guard released twice")
	}
	g.done = true
	g.pool.Release(g.buf)
}

// MustBeReleased panics if g was never released. Callers that keep a
// Guard across a request/response boundary should defer this at the
// point where every code path is known to have called Release, as a
// cheap assertion that the request/event plumbing actually gave the
// buffer back.
func (g *Guard) MustBeReleased() {
	if !g.done {
		panic(fmt.Sprintf("bufpool: buffer of length %d leaked without Release", len(g.buf)))
	}
}
